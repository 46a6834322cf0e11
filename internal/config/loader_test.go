package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("TEST_VAR", "hello")
	defer os.Unsetenv("TEST_VAR")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_VAR}", "hello"},
		{"${TEST_VAR:default}", "hello"},
		{"${UNSET_VAR:fallback}", "fallback"},
		{"${UNSET_VAR}", ""},
		{"no vars here", "no vars here"},
		{"prefix-${TEST_VAR}-suffix", "prefix-hello-suffix"},
	}

	for _, tt := range tests {
		got := expandEnvVars(tt.input)
		if got != tt.expected {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calculator.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9999
storage:
  backend: sqlite
  path: /var/lib/llmcost
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	if err := LoadFile(path, cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("expected sqlite backend, got %s", cfg.Storage.Backend)
	}
	// Untouched sections keep their defaults.
	if cfg.Sync.ServiceCode != "AmazonBedrock" {
		t.Errorf("expected default service code, got %s", cfg.Sync.ServiceCode)
	}
}

func TestLoadFile_WithEnvVars(t *testing.T) {
	os.Setenv("TEST_PORT", "7777")
	defer os.Unsetenv("TEST_PORT")

	path := filepath.Join(t.TempDir(), "calculator.yaml")
	content := `
server:
  host: "${TEST_HOST:127.0.0.1}"
  port: ${TEST_PORT}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	var cfg Config
	if err := LoadFile(path, &cfg); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("expected host 127.0.0.1 (default), got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("expected port 7777, got %d", cfg.Server.Port)
	}
}

func TestLoader_MissingDirUsesDefaults(t *testing.T) {
	l := NewLoader(filepath.Join(t.TempDir(), "nope"), discardLogger())
	if err := l.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := l.Config()
	if cfg.Server.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.Server.Port)
	}
	if len(cfg.Parsing.ExcludedKeywords) != 8 {
		t.Errorf("expected 8 default excluded keywords, got %d", len(cfg.Parsing.ExcludedKeywords))
	}
	if refs := l.References(); refs == nil || len(refs.Providers) != 0 {
		t.Errorf("expected empty references override, got %+v", refs)
	}
}

func TestLoader_References(t *testing.T) {
	dir := t.TempDir()
	content := `
providers:
  Acme: ["roadrunner"]
without_api_pricing: ["Acme"]
`
	if err := os.WriteFile(filepath.Join(dir, referencesFile), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLoader(dir, discardLogger())
	if err := l.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	refs := l.References()
	if kw := refs.Providers["Acme"]; len(kw) != 1 || kw[0] != "roadrunner" {
		t.Errorf("unexpected keywords: %v", kw)
	}
	if len(refs.WithoutAPIPricing) != 1 {
		t.Errorf("expected one provider without api pricing, got %v", refs.WithoutAPIPricing)
	}
}

func TestLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, calculatorFile), []byte("server: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(dir, discardLogger())
	if err := l.Load(); err == nil {
		t.Fatal("expected error for invalid yaml")
	}
}

func TestApplySyncEnv(t *testing.T) {
	t.Setenv("OUTPUT_BUCKET", "bedrock-pricing-cache")
	t.Setenv("FETCH_TIMEOUT", "45s")

	cfg := DefaultConfig()
	if err := ApplySyncEnv(cfg); err != nil {
		t.Fatalf("ApplySyncEnv failed: %v", err)
	}
	if cfg.Sync.OutputBucket != "bedrock-pricing-cache" {
		t.Errorf("expected bucket from env, got %q", cfg.Sync.OutputBucket)
	}
	if cfg.Sync.FetchTimeout != 45*time.Second {
		t.Errorf("expected 45s timeout, got %v", cfg.Sync.FetchTimeout)
	}
	if cfg.Sync.ServiceCode != "AmazonBedrock" {
		t.Errorf("unset env should keep default, got %q", cfg.Sync.ServiceCode)
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "llmcost", User: "u", Password: "p"}
	want := "postgres://u:p@db:5432/llmcost?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
