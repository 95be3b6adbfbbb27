package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Account modes.
const (
	ModeSingle      = "single"
	ModeRoles       = "roles"
	ModeWebIdentity = "web-identity"
)

// Config represents the main configuration
type Config struct {
	Version    string          `yaml:"version"`
	Account    AccountConfig   `yaml:"account"`
	Regions    RegionsConfig   `yaml:"regions,omitempty"`
	Export     ExportConfig    `yaml:"export,omitempty"`
	Retry      RetryConfig     `yaml:"retry,omitempty"`
	PolicyFile string          `yaml:"policy_file,omitempty"`
	Output     OutputConfig    `yaml:"output,omitempty"`
	Telemetry  TelemetryConfig `yaml:"telemetry,omitempty"`
}

// AccountConfig selects the session strategy and its credentials
type AccountConfig struct {
	Mode            string            `yaml:"mode"`
	Region          string            `yaml:"region"`
	AccessKeyID     string            `yaml:"access_key_id,omitempty"`
	SecretAccessKey string            `yaml:"secret_access_key,omitempty"`
	SessionToken    string            `yaml:"session_token,omitempty"`
	RoleARNs        []string          `yaml:"role_arns,omitempty"`
	ExternalID      string            `yaml:"external_id,omitempty"`
	SessionName     string            `yaml:"session_name,omitempty"`
	ProbeBatch      int               `yaml:"probe_batch,omitempty"`
	WebIdentity     WebIdentityConfig `yaml:"web_identity,omitempty"`
}

// WebIdentityConfig holds web identity federation settings
type WebIdentityConfig struct {
	RoleARN   string `yaml:"role_arn"`
	TokenFile string `yaml:"token_file"`
}

// RegionsConfig holds the allow and deny lists applied to enabled regions
type RegionsConfig struct {
	Allow []string `yaml:"allow,omitempty"`
	Deny  []string `yaml:"deny,omitempty"`
}

// ExportConfig selects kinds and batch behavior
type ExportConfig struct {
	BatchSize         int                 `yaml:"batch_size"`
	Kinds             []string            `yaml:"kinds,omitempty"`
	CloudControlTypes []string            `yaml:"cloud_control_types,omitempty"`
	Include           map[string][]string `yaml:"include,omitempty"`
}

// RetryConfig holds the resync retry policy. Delay is parsed from the
// delay string after load.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	DelayStr    string        `yaml:"delay"`
	Delay       time.Duration `yaml:"-"`
}

// OutputConfig selects where documents go
type OutputConfig struct {
	Format string `yaml:"format"`
	Path   string `yaml:"path"`
}

// TelemetryConfig holds OTEL settings
type TelemetryConfig struct {
	ServiceName  string `yaml:"service_name"`
	OTELEndpoint string `yaml:"otel_endpoint,omitempty"`
	Insecure     bool   `yaml:"insecure,omitempty"`
	MetricsAddr  string `yaml:"metrics_addr,omitempty"`
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyDefaults(&cfg)

	if err := parseDelay(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Account.Mode == "" {
		cfg.Account.Mode = ModeSingle
	}
	if cfg.Account.Region == "" {
		cfg.Account.Region = "us-east-1"
	}
	if cfg.Account.SessionName == "" {
		cfg.Account.SessionName = "harava"
	}
	if cfg.Export.BatchSize == 0 {
		cfg.Export.BatchSize = 100
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 3
	}
	if cfg.Retry.DelayStr == "" {
		cfg.Retry.DelayStr = "2s"
	}
	if cfg.Output.Format == "" {
		cfg.Output.Format = "ndjson"
	}
	if cfg.Output.Path == "" {
		cfg.Output.Path = "-"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "harava"
	}
	if cfg.Telemetry.MetricsAddr == "" {
		cfg.Telemetry.MetricsAddr = ":9090"
	}
}

func parseDelay(cfg *Config) error {
	d, err := time.ParseDuration(cfg.Retry.DelayStr)
	if err != nil {
		return fmt.Errorf("parse retry delay %q: %w", cfg.Retry.DelayStr, err)
	}
	cfg.Retry.Delay = d
	return nil
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}

	switch c.Account.Mode {
	case ModeSingle:
	case ModeRoles:
		if len(c.Account.RoleARNs) == 0 {
			return fmt.Errorf("account: roles mode requires at least one role ARN")
		}
	case ModeWebIdentity:
		if c.Account.WebIdentity.RoleARN == "" {
			return fmt.Errorf("account: web-identity mode requires web_identity.role_arn")
		}
		if c.Account.WebIdentity.TokenFile == "" {
			return fmt.Errorf("account: web-identity mode requires web_identity.token_file")
		}
	default:
		return fmt.Errorf("account: unknown mode %q", c.Account.Mode)
	}

	if c.Account.ProbeBatch < 0 {
		return fmt.Errorf("account: probe_batch must not be negative")
	}
	if c.Export.BatchSize <= 0 {
		return fmt.Errorf("export: batch_size must be positive")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry: max_attempts must be at least 1")
	}
	if c.Output.Format != "ndjson" && c.Output.Format != "dir" {
		return fmt.Errorf("output: unknown format %q", c.Output.Format)
	}
	if c.Output.Format == "dir" && c.Output.Path == "-" {
		return fmt.Errorf("output: dir format requires a directory path")
	}
	return nil
}
