package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		want    zapcore.Level
		wantErr bool
	}{
		{"prod default", "prod", "", zapcore.InfoLevel, false},
		{"local default", "local", "", zapcore.DebugLevel, false},
		{"cli default", "cli", "", zapcore.WarnLevel, false},
		{"override", "prod", "error", zapcore.ErrorLevel, false},
		{"unknown env", "staging", "", 0, true},
		{"bad level", "local", "loud", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.want) {
				t.Errorf("level %s not enabled", tt.want)
			}
			if tt.want > zapcore.DebugLevel && l.Core().Enabled(tt.want-1) {
				t.Errorf("level %s should be disabled", tt.want-1)
			}
		})
	}
}

func TestFromContext_NopFallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected a nop logger")
	}
}

func TestWithFields_PropagatesThroughContext(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := ContextWithLogger(context.Background(), zap.New(core))

	ctx, _ = WithFields(ctx, zap.String("query_id", "q-1"))
	FromContext(ctx).Info("step done")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["query_id"]; got != "q-1" {
		t.Errorf("query_id = %v, want q-1", got)
	}
}
