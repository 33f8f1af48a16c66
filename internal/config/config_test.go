package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
server:
  host: "0.0.0.0"
  port: 8080
database:
  host: "localhost"
  port: 5432
  name: "repsmith"
  user: "repsmith"
  password: "secret"
  sslmode: "disable"
auth:
  api_key: "test-key-123"
genai:
  enabled: true
  endpoint: "https://api.anthropic.com/v1/messages"
  api_key: "sk-test"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoadValid verifies that a well-formed YAML config loads with all fields populated.
func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("server.host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server.port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "repsmith" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "repsmith")
	}
	if cfg.Auth.APIKey != "test-key-123" {
		t.Errorf("auth.api_key = %q, want %q", cfg.Auth.APIKey, "test-key-123")
	}
	if !cfg.GenAI.Enabled {
		t.Error("genai.enabled = false, want true")
	}
}

// TestGenAIDefaults verifies that unset engine knobs get the standard
// defaults.
func TestGenAIDefaults(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := cfg.GenAI
	if g.Model != "claude-sonnet-4-5" {
		t.Errorf("model = %q, want claude-sonnet-4-5", g.Model)
	}
	if g.MaxRetries != 3 {
		t.Errorf("max_retries = %d, want 3", g.MaxRetries)
	}
	if g.AttemptTimeoutSec != 20 {
		t.Errorf("attempt_timeout_sec = %d, want 20", g.AttemptTimeoutSec)
	}
	if g.BaseDelayMs != 500 {
		t.Errorf("base_delay_ms = %d, want 500", g.BaseDelayMs)
	}
	if g.CacheTTLMin != 60 {
		t.Errorf("cache_ttl_min = %d, want 60", g.CacheTTLMin)
	}
	if g.CacheMaxEntries != 256 {
		t.Errorf("cache_max_entries = %d, want 256", g.CacheMaxEntries)
	}
}

// TestAttemptTimeoutClamped verifies the attempt timeout is held inside the
// window the latency budget was sized against.
func TestAttemptTimeoutClamped(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{5, 15},
		{15, 15},
		{20, 20},
		{25, 25},
		{60, 25},
	}
	for _, tc := range cases {
		g := GenAIConfig{AttemptTimeoutSec: tc.in}
		applyGenAIDefaults(&g)
		if g.AttemptTimeoutSec != tc.want {
			t.Errorf("clamp(%d) = %d, want %d", tc.in, g.AttemptTimeoutSec, tc.want)
		}
	}
}

// TestEnvOverride verifies that REPSMITH_ env vars take precedence over YAML values.
func TestEnvOverride(t *testing.T) {
	t.Setenv("REPSMITH_DB_HOST", "override-host")
	t.Setenv("REPSMITH_DB_PORT", "9999")
	t.Setenv("REPSMITH_GENAI_MODEL", "claude-haiku-4-5")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Database.Host != "override-host" {
		t.Errorf("database.host = %q, want %q", cfg.Database.Host, "override-host")
	}
	if cfg.Database.Port != 9999 {
		t.Errorf("database.port = %d, want 9999", cfg.Database.Port)
	}
	if cfg.GenAI.Model != "claude-haiku-4-5" {
		t.Errorf("genai.model = %q, want env override", cfg.GenAI.Model)
	}
	// Unchanged fields should keep YAML values
	if cfg.Database.Name != "repsmith" {
		t.Errorf("database.name = %q, want %q", cfg.Database.Name, "repsmith")
	}
}

// TestValidateMissing verifies validation failures for required fields.
func TestValidateMissing(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no server port", `
database: {host: h, port: 5432, name: n, user: u}
auth: {api_key: k}
`},
		{"no database host", `
server: {port: 8080}
database: {port: 5432, name: n, user: u}
auth: {api_key: k}
`},
		{"no api key", `
server: {port: 8080}
database: {host: h, port: 5432, name: n, user: u}
`},
		{"genai enabled without endpoint", `
server: {port: 8080}
database: {host: h, port: 5432, name: n, user: u}
auth: {api_key: k}
genai: {enabled: true, api_key: sk}
`},
		{"genai enabled without key", `
server: {port: 8080}
database: {host: h, port: 5432, name: n, user: u}
auth: {api_key: k}
genai: {enabled: true, endpoint: "https://example.com"}
`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tc.yaml)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

// TestDSN verifies the connection string format.
func TestDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, Name: "repsmith", User: "app", Password: "pw"}
	want := "postgres://app:pw@db:5432/repsmith?sslmode=disable"
	if got := d.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

// TestLoadMissingFile verifies a clear error when the config file is absent.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file, got nil")
	}
}
