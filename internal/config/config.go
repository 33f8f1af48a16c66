package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	GenAI     GenAIConfig     `yaml:"genai"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// GenAIConfig controls the plan-generation engine. With Enabled false the
// engine never calls the remote endpoint and serves fallback plans only.
type GenAIConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Endpoint          string `yaml:"endpoint"`
	APIKey            string `yaml:"api_key"`
	Model             string `yaml:"model"`
	MaxRetries        int    `yaml:"max_retries"`
	AttemptTimeoutSec int    `yaml:"attempt_timeout_sec"`
	BaseDelayMs       int    `yaml:"base_delay_ms"`
	CacheTTLMin       int    `yaml:"cache_ttl_min"`
	CacheMaxEntries   int    `yaml:"cache_max_entries"`
	AuditPath         string `yaml:"audit_path"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix REPSMITH_ and underscore-separated
// paths:
//
//	REPSMITH_SERVER_HOST, REPSMITH_SERVER_PORT,
//	REPSMITH_DB_HOST, REPSMITH_DB_PORT, REPSMITH_DB_NAME,
//	REPSMITH_DB_USER, REPSMITH_DB_PASSWORD, REPSMITH_DB_SSLMODE,
//	REPSMITH_AUTH_API_KEY,
//	REPSMITH_GENAI_ENABLED, REPSMITH_GENAI_ENDPOINT,
//	REPSMITH_GENAI_API_KEY, REPSMITH_GENAI_MODEL
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyGenAIDefaults(&cfg.GenAI)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPSMITH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPSMITH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPSMITH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPSMITH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPSMITH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPSMITH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPSMITH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPSMITH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPSMITH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPSMITH_GENAI_ENABLED"); v != "" {
		cfg.GenAI.Enabled = v == "true"
	}
	if v := os.Getenv("REPSMITH_GENAI_ENDPOINT"); v != "" {
		cfg.GenAI.Endpoint = v
	}
	if v := os.Getenv("REPSMITH_GENAI_API_KEY"); v != "" {
		cfg.GenAI.APIKey = v
	}
	if v := os.Getenv("REPSMITH_GENAI_MODEL"); v != "" {
		cfg.GenAI.Model = v
	}
}

// applyGenAIDefaults fills zero values with the engine defaults. The
// attempt timeout is clamped to the 15-25s window the end-to-end latency
// budget was sized against.
func applyGenAIDefaults(g *GenAIConfig) {
	if g.Model == "" {
		g.Model = "claude-sonnet-4-5"
	}
	if g.MaxRetries <= 0 {
		g.MaxRetries = 3
	}
	if g.AttemptTimeoutSec == 0 {
		g.AttemptTimeoutSec = 20
	}
	if g.AttemptTimeoutSec < 15 {
		g.AttemptTimeoutSec = 15
	}
	if g.AttemptTimeoutSec > 25 {
		g.AttemptTimeoutSec = 25
	}
	if g.BaseDelayMs <= 0 {
		g.BaseDelayMs = 500
	}
	if g.CacheTTLMin <= 0 {
		g.CacheTTLMin = 60
	}
	if g.CacheMaxEntries <= 0 {
		g.CacheMaxEntries = 256
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.GenAI.Enabled && c.GenAI.Endpoint == "" {
		return fmt.Errorf("genai.endpoint is required when genai.enabled is true")
	}
	if c.GenAI.Enabled && c.GenAI.APIKey == "" {
		return fmt.Errorf("genai.api_key is required when genai.enabled is true")
	}
	return nil
}
