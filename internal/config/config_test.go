package config

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.HTTP.Port = 0 }, "http.port must be between 1 and 65535, got 0"},
		{"port too large", func(c *Config) { c.HTTP.Port = 70000 }, "http.port must be between 1 and 65535, got 70000"},
		{"negative count", func(c *Config) { c.Index.SearchCount = -1 }, "index.search_count must not be negative, got -1"},
		{"negative timeout", func(c *Config) { c.Index.SearchTimeoutMs = -5 }, "index.search_timeout_ms must not be negative, got -5"},
		{"relative image base", func(c *Config) { c.Images.URLBase = "/images" }, `images.url_base must be an absolute URL, got "/images"`},
		{"image base", func(c *Config) { c.Images.URLBase = "https://cdn.example.com/tcg/" }, ""},
		{"empty cache addr", func(c *Config) { c.Cache.Addrs = []string{"localhost:6379", " "} }, "cache.addrs must not contain empty entries"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{}
			cfg.ApplyDefaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.wantErr {
				t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 30 {
		t.Errorf("expected WriteTimeoutSec=30, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Index.Dir != "index" || cfg.Index.DataDir != "data" {
		t.Errorf("expected index/data dirs, got %q/%q", cfg.Index.Dir, cfg.Index.DataDir)
	}
	if cfg.Index.MaxPageSize != 250 {
		t.Errorf("expected MaxPageSize=250, got %d", cfg.Index.MaxPageSize)
	}
	if cfg.Index.BatchSize != 500 {
		t.Errorf("expected BatchSize=500, got %d", cfg.Index.BatchSize)
	}
	if cfg.Index.SearchCount != 0 || cfg.Index.SearchTimeout() != 0 {
		t.Errorf("expected no search cap, got %d/%s", cfg.Index.SearchCount, cfg.Index.SearchTimeout())
	}
	if cfg.Cache.TTL() != 5*time.Minute {
		t.Errorf("expected TTL=5m, got %s", cfg.Cache.TTL())
	}
	if cfg.Cache.Enabled() {
		t.Error("expected cache disabled without addrs")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 9000, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Index: IndexConfig{Dir: "/tmp/idx", MaxPageSize: 50, SearchTimeoutMs: 1500},
		Cache: CacheConfig{TTLSec: 60},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.Dir != "/tmp/idx" {
		t.Errorf("expected Dir=/tmp/idx, got %q", cfg.Index.Dir)
	}
	if cfg.Index.MaxPageSize != 50 {
		t.Errorf("expected MaxPageSize=50, got %d", cfg.Index.MaxPageSize)
	}
	if cfg.Index.SearchTimeout() != 1500*time.Millisecond {
		t.Errorf("expected SearchTimeout=1.5s, got %s", cfg.Index.SearchTimeout())
	}
	if cfg.Cache.TTL() != time.Minute {
		t.Errorf("expected TTL=1m, got %s", cfg.Cache.TTL())
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CARDEX_TEST_PORT", "9191")
	t.Setenv("CARDEX_TEST_CACHE", "cache:6379")

	cfg, err := Parse([]byte(`
http:
  port: ${CARDEX_TEST_PORT}
index:
  dir: ${CARDEX_TEST_UNSET:-/var/lib/cardex}
  search_count: 100
cache:
  addrs:
    - ${CARDEX_TEST_CACHE}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("expected Port=9191, got %d", cfg.HTTP.Port)
	}
	if cfg.Index.Dir != "/var/lib/cardex" {
		t.Errorf("expected default dir, got %q", cfg.Index.Dir)
	}
	if cfg.Index.SearchCount != 100 {
		t.Errorf("expected SearchCount=100, got %d", cfg.Index.SearchCount)
	}
	if !cfg.Cache.Enabled() || cfg.Cache.Addrs[0] != "cache:6379" {
		t.Errorf("unexpected cache addrs %v", cfg.Cache.Addrs)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: -1\n")); err == nil {
		t.Error("expected validation error")
	}
}

func TestLoad_ShippedConfigs(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		t.Run(env, func(t *testing.T) {
			if _, err := Load(env); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
