package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func TestDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if cfg.Port != "8082" {
		t.Errorf("Expected port 8082, got %s", cfg.Port)
	}
	if cfg.GinMode != "release" {
		t.Errorf("Expected release mode, got %s", cfg.GinMode)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Errorf("Expected memory store, got %s", cfg.StoreDriver)
	}
	if cfg.RateLimitRPS != 2 || cfg.RateLimitBurst != 5 {
		t.Errorf("Expected 2 rps with burst 5, got %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
	if cfg.CacheTTL != 30*time.Minute || cfg.MaxCacheSize != 1000 {
		t.Errorf("Expected 30m cache of 1000 entries, got %s/%d", cfg.CacheTTL, cfg.MaxCacheSize)
	}
	if cfg.FetchTimeout != 15*time.Second {
		t.Errorf("Expected 15s fetch timeout, got %s", cfg.FetchTimeout)
	}
	if cfg.MaxBodyBytes != 5<<20 {
		t.Errorf("Expected 5 MiB body limit, got %d", cfg.MaxBodyBytes)
	}
	if cfg.Addr() != ":8082" {
		t.Errorf("Expected :8082, got %s", cfg.Addr())
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"PORT":             "9000",
		"GIN_MODE":         "debug",
		"DEV_MODE":         "true",
		"DATA_DIR":         "/var/lib/tagscope",
		"STORE_DRIVER":     "sqlite",
		"RATE_LIMIT_RPS":   "0.5",
		"RATE_LIMIT_BURST": "10",
		"FETCH_TIMEOUT":    "3s",
		"CACHE_TTL":        "0",
		"MAX_CACHE_SIZE":   "20",
		"USER_AGENT":       "TestBot/2.0",
		"MAX_BODY_BYTES":   "1024",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	if !cfg.DevMode || cfg.GinMode != "debug" || cfg.Port != "9000" {
		t.Errorf("Unexpected server settings: %+v", cfg)
	}
	if cfg.SQLitePath() != filepath.Join("/var/lib/tagscope", "analyses.db") {
		t.Errorf("Unexpected sqlite path: %s", cfg.SQLitePath())
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 10 {
		t.Errorf("Unexpected rate limit: %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	fetchOpts := cfg.FetcherOptions()
	if fetchOpts.Timeout != 3*time.Second || fetchOpts.UserAgent != "TestBot/2.0" || fetchOpts.MaxBodyBytes != 1024 {
		t.Errorf("Unexpected fetcher options: %+v", fetchOpts)
	}

	svcOpts := cfg.ServiceOptions()
	if svcOpts.CacheTTL != 0 || svcOpts.MaxCacheSize != 20 {
		t.Errorf("Unexpected service options: %+v", svcOpts)
	}
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"RATE_LIMIT_RPS", "fast"},
		{"RATE_LIMIT_RPS", "-1"},
		{"RATE_LIMIT_BURST", "1.5"},
		{"FETCH_TIMEOUT", "15"},
		{"CACHE_TTL", "-1m"},
		{"MAX_CACHE_SIZE", "0"},
		{"MAX_BODY_BYTES", "lots"},
		{"DEV_MODE", "maybe"},
		{"STORE_DRIVER", "postgres"},
		{"GIN_MODE", "verbose"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			_, err := FromEnv(envMap(map[string]string{tt.key: tt.value}))
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("Expected error to name %s, got %v", tt.key, err)
			}
		})
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PORT=9191\n"), 0644); err != nil {
		t.Fatalf("Failed to write .env: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	t.Setenv("PORT", "")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9191" {
		t.Errorf("Expected port from .env, got %s", cfg.Port)
	}
}
