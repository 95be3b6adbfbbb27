package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	// Create a temp config file
	content := `
version: "1"

account:
  mode: roles
  region: eu-west-1
  role_arns:
    - arn:aws:iam::111111111111:role/harava-export
    - arn:aws:iam::222222222222:role/harava-export
  external_id: org-scan
  probe_batch: 2

regions:
  deny:
    - ap-southeast-4

export:
  batch_size: 50
  kinds:
    - AWS::EC2::Instance
    - AWS::S3::Bucket
  include:
    AWS::ECR::Repository: [Tags, LifecyclePolicy]

retry:
  max_attempts: 5
  delay: 500ms

output:
  format: dir
  path: ./out
`
	tmpfile, err := os.CreateTemp("", "harava-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	// Load the config
	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	// Verify config
	if cfg.Account.Mode != ModeRoles {
		t.Errorf("Account.Mode = %v, want roles", cfg.Account.Mode)
	}
	if cfg.Account.Region != "eu-west-1" {
		t.Errorf("Account.Region = %v, want eu-west-1", cfg.Account.Region)
	}
	if len(cfg.Account.RoleARNs) != 2 {
		t.Errorf("RoleARNs count = %v, want 2", len(cfg.Account.RoleARNs))
	}
	if cfg.Export.BatchSize != 50 {
		t.Errorf("Export.BatchSize = %v, want 50", cfg.Export.BatchSize)
	}
	if got := cfg.Export.Include["AWS::ECR::Repository"]; len(got) != 2 {
		t.Errorf("Include[AWS::ECR::Repository] = %v, want 2 entries", got)
	}
	if cfg.Retry.Delay != 500*time.Millisecond {
		t.Errorf("Retry.Delay = %v, want 500ms", cfg.Retry.Delay)
	}
	if cfg.Output.Format != "dir" {
		t.Errorf("Output.Format = %v, want dir", cfg.Output.Format)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	content := `
version: "1"
account:
  mode: single
`
	tmpfile, err := os.CreateTemp("", "harava-config-*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = os.Remove(tmpfile.Name())
	}()

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(tmpfile.Name())
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Account.Region != "us-east-1" {
		t.Errorf("Account.Region = %v, want us-east-1", cfg.Account.Region)
	}
	if cfg.Account.SessionName != "harava" {
		t.Errorf("Account.SessionName = %v, want harava", cfg.Account.SessionName)
	}
	if cfg.Export.BatchSize != 100 {
		t.Errorf("Export.BatchSize = %v, want 100", cfg.Export.BatchSize)
	}
	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Retry.MaxAttempts = %v, want 3", cfg.Retry.MaxAttempts)
	}
	if cfg.Retry.Delay != 2*time.Second {
		t.Errorf("Retry.Delay = %v, want 2s", cfg.Retry.Delay)
	}
	if cfg.Output.Format != "ndjson" || cfg.Output.Path != "-" {
		t.Errorf("Output = %v %v, want ndjson -", cfg.Output.Format, cfg.Output.Path)
	}
	if cfg.Telemetry.MetricsAddr != ":9090" {
		t.Errorf("Telemetry.MetricsAddr = %v, want :9090", cfg.Telemetry.MetricsAddr)
	}
}

func validConfig() Config {
	return Config{
		Version: "1",
		Account: AccountConfig{Mode: ModeSingle, Region: "us-east-1"},
		Export:  ExportConfig{BatchSize: 100},
		Retry:   RetryConfig{MaxAttempts: 3, DelayStr: "2s"},
		Output:  OutputConfig{Format: "ndjson", Path: "-"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing version",
			mutate:  func(c *Config) { c.Version = "" },
			wantErr: true,
		},
		{
			name:    "unknown mode",
			mutate:  func(c *Config) { c.Account.Mode = "keys" },
			wantErr: true,
		},
		{
			name:    "roles mode without role ARNs",
			mutate:  func(c *Config) { c.Account.Mode = ModeRoles },
			wantErr: true,
		},
		{
			name: "roles mode with role ARNs",
			mutate: func(c *Config) {
				c.Account.Mode = ModeRoles
				c.Account.RoleARNs = []string{"arn:aws:iam::111111111111:role/x"}
			},
			wantErr: false,
		},
		{
			name:    "web identity without token file",
			mutate:  func(c *Config) { c.Account.Mode = ModeWebIdentity; c.Account.WebIdentity.RoleARN = "arn:aws:iam::111111111111:role/x" },
			wantErr: true,
		},
		{
			name: "web identity complete",
			mutate: func(c *Config) {
				c.Account.Mode = ModeWebIdentity
				c.Account.WebIdentity.RoleARN = "arn:aws:iam::111111111111:role/x"
				c.Account.WebIdentity.TokenFile = "/var/run/token"
			},
			wantErr: false,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.Export.BatchSize = 0 },
			wantErr: true,
		},
		{
			name:    "dir output without path",
			mutate:  func(c *Config) { c.Output.Format = "dir" },
			wantErr: true,
		},
		{
			name:    "unknown output format",
			mutate:  func(c *Config) { c.Output.Format = "parquet" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
