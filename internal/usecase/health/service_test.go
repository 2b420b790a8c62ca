package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockPinger struct {
	err   error
	calls int
}

func (m *mockPinger) Ping(ctx context.Context) error {
	m.calls++
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("check ran without a deadline")
	}
	return m.err
}

// --- Tests ---

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		cacheErr   error
		sourceErr  error
		wantStatus Status
		wantCache  CheckResult
		wantEDGAR  CheckResult
	}{
		{"all healthy", nil, nil, Healthy, CheckOK, CheckOK},
		{"cache down", errors.New("conn refused"), nil, Degraded, CheckError, CheckOK},
		{"edgar down", nil, errors.New("503"), Degraded, CheckOK, CheckError},
		{"both down", errors.New("conn refused"), errors.New("503"), Degraded, CheckError, CheckError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockPinger{err: tt.cacheErr}, &mockPinger{err: tt.sourceErr})
			r := svc.Check(context.Background())

			if r.Status != tt.wantStatus {
				t.Errorf("expected %q, got %q", tt.wantStatus, r.Status)
			}
			if r.Checks[ComponentCache] != tt.wantCache {
				t.Errorf("expected cache %q, got %q", tt.wantCache, r.Checks[ComponentCache])
			}
			if r.Checks[ComponentEDGAR] != tt.wantEDGAR {
				t.Errorf("expected edgar %q, got %q", tt.wantEDGAR, r.Checks[ComponentEDGAR])
			}
		})
	}
}

func TestCheck_NoCache(t *testing.T) {
	source := &mockPinger{}
	svc := New(nil, source)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks[ComponentCache]; ok {
		t.Error("cache check should be absent when caching is disabled")
	}
	if source.calls != 1 {
		t.Errorf("expected 1 edgar ping, got %d", source.calls)
	}
}
