package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"redis without addrs", func(c *Config) { c.Cache.Driver = DriverRedis }, "cache.addrs"},
		{"valkey with addrs", func(c *Config) {
			c.Cache.Driver = DriverValkey
			c.Cache.Addrs = []string{"localhost:6379"}
		}, ""},
		{"unknown driver", func(c *Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"unknown listing", func(c *Config) { c.EDGAR.Listing = "rss" }, "edgar.listing"},
		{"over fair-access limit", func(c *Config) { c.EDGAR.RequestsPerSecond = 20 }, "requests_per_second"},
		{"score floor above one", func(c *Config) { c.Engine.ScoreFloor = 1.5 }, "score_floor"},
		{"filings ceiling", func(c *Config) { c.Engine.ThematicMaxFilings = 500 }, "thematic_max_filings"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error mentioning %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("ReadTimeoutSec = %d, want 10", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 120 {
		t.Errorf("WriteTimeoutSec = %d, want 120", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.Driver != DriverNone || cfg.Cache.Enabled() {
		t.Errorf("Cache.Driver = %q, want none", cfg.Cache.Driver)
	}
	if cfg.Cache.TTLSec != 300 {
		t.Errorf("Cache.TTLSec = %d, want 300", cfg.Cache.TTLSec)
	}
	if cfg.EDGAR.RequestsPerSecond != 10 || cfg.EDGAR.Burst != 1 {
		t.Errorf("EDGAR rate = %v/%d, want 10/1", cfg.EDGAR.RequestsPerSecond, cfg.EDGAR.Burst)
	}
	if cfg.EDGAR.Listing != "submissions" {
		t.Errorf("EDGAR.Listing = %q, want submissions", cfg.EDGAR.Listing)
	}
	if cfg.Engine.MaxConcurrency != 1 {
		t.Errorf("Engine.MaxConcurrency = %d, want 1", cfg.Engine.MaxConcurrency)
	}
	if cfg.Engine.ThematicMaxFilings != 100 {
		t.Errorf("Engine.ThematicMaxFilings = %d, want 100", cfg.Engine.ThematicMaxFilings)
	}
	if cfg.Engine.ScoreFloor != 0.1 || cfg.Engine.SnippetLength != 300 {
		t.Errorf("Engine scoring = %v/%d, want 0.1/300", cfg.Engine.ScoreFloor, cfg.Engine.SnippetLength)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{ReadTimeoutSec: 30},
		Cache:  CacheConfig{Driver: DriverRedis, TTLSec: 60},
		EDGAR:  EDGARConfig{Listing: "atom", RequestsPerSecond: 2},
		Engine: EngineConfig{MaxConcurrency: 4, SnippetLength: 120},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("ReadTimeoutSec = %d, want 30", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Cache.Driver != DriverRedis || cfg.Cache.TTLSec != 60 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
	if cfg.EDGAR.Listing != "atom" || cfg.EDGAR.RequestsPerSecond != 2 {
		t.Errorf("EDGAR = %+v", cfg.EDGAR)
	}
	if cfg.Engine.MaxConcurrency != 4 || cfg.Engine.SnippetLength != 120 {
		t.Errorf("Engine = %+v", cfg.Engine)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("EDGARSEARCH_TEST_PORT", "9090")
	t.Setenv("EDGARSEARCH_TEST_UA", "acme research ops@acme.test")

	cfg, err := Parse([]byte(`
http:
  port: ${EDGARSEARCH_TEST_PORT}
edgar:
  user_agent: "${EDGARSEARCH_TEST_UA}"
  listing: ${EDGARSEARCH_TEST_UNSET:-atom}
engine:
  hybrid_concurrent: true
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.EDGAR.UserAgent != "acme research ops@acme.test" {
		t.Errorf("UserAgent = %q", cfg.EDGAR.UserAgent)
	}
	if cfg.EDGAR.Listing != "atom" {
		t.Errorf("Listing = %q, want default from expression", cfg.EDGAR.Listing)
	}
	if !cfg.Engine.HybridConcurrent {
		t.Error("expected hybrid_concurrent")
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_LocalConfig(t *testing.T) {
	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port == 0 {
		t.Error("expected port from config/local.yaml")
	}
}
