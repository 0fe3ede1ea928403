package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8080},
		Database: DatabaseConfig{Addrs: []string{"localhost:6379"}},
		Source:   SourceConfig{DSN: "/tmp/logs.db"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingValkeyAddrs(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Addrs = []string{}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing valkey addrs")
	}
}

func TestValidate_Drivers(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"redis engine", func(c *Config) { c.Database.Driver = "redis" }, ""},
		{"unknown engine", func(c *Config) { c.Database.Driver = "memcached" }, "database.driver"},
		{"postgres source", func(c *Config) { c.Source.Driver = "postgres" }, ""},
		{"unknown source", func(c *Config) { c.Source.Driver = "oracle" }, "source.driver"},
		{"missing dsn", func(c *Config) { c.Source.DSN = "" }, "source.dsn is required"},
		{"same separators", func(c *Config) { c.Details.KeyValueSeparator = ";" }, "must differ"},
		{"pair contains key/value", func(c *Config) {
			c.Details.PairSeparator = "=="
			c.Details.KeyValueSeparator = "="
		}, "overlap"},
		{"key/value contains pair", func(c *Config) { c.Details.KeyValueSeparator = ";=" }, "overlap"},
		{"distinct multi-char", func(c *Config) {
			c.Details.PairSeparator = "||"
			c.Details.KeyValueSeparator = "=>"
		}, ""},
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
				t.Fatalf("got error %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("expected WriteTimeoutSec=60, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Database.Driver != "valkey" {
		t.Errorf("expected Driver=valkey, got %q", cfg.Database.Driver)
	}
	if cfg.Database.ReadinessTimeout != 10 {
		t.Errorf("expected ReadinessTimeout=10, got %d", cfg.Database.ReadinessTimeout)
	}
	if cfg.Source.Driver != "sqlite" {
		t.Errorf("expected Source.Driver=sqlite, got %q", cfg.Source.Driver)
	}
	if cfg.Index.Name != "log" {
		t.Errorf("expected Index.Name=log, got %q", cfg.Index.Name)
	}
	if cfg.Index.KeyPrefix != "logdex:" {
		t.Errorf("expected KeyPrefix='logdex:', got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Index.MaxBatchSize != 100 || cfg.Index.Workers != 4 || cfg.Index.PageSize != 500 {
		t.Errorf("unexpected index defaults: %+v", cfg.Index)
	}
	if cfg.Details.PairSeparator != ";" || cfg.Details.KeyValueSeparator != "=" {
		t.Errorf("unexpected details defaults: %+v", cfg.Details)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:     HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 90, ShutdownSec: 5},
		Database: DatabaseConfig{ReadinessTimeout: 15},
		Index:    IndexConfig{Name: "audit", KeyPrefix: "custom:", MaxBatchSize: 50, Workers: 8, PageSize: 100},
		Details:  DetailsConfig{PairSeparator: "&", KeyValueSeparator: ":"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 {
		t.Errorf("expected ReadTimeoutSec=30, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.WriteTimeoutSec != 90 {
		t.Errorf("expected WriteTimeoutSec=90, got %d", cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Index.Name != "audit" || cfg.Index.Workers != 8 {
		t.Errorf("index overridden: %+v", cfg.Index)
	}
	if cfg.Index.KeyPrefix != "custom:" {
		t.Errorf("expected KeyPrefix='custom:', got %q", cfg.Index.KeyPrefix)
	}
	if cfg.Details.PairSeparator != "&" || cfg.Details.KeyValueSeparator != ":" {
		t.Errorf("details overridden: %+v", cfg.Details)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("LOGDEX_TEST_DSN", "/data/logs.db")
	data := []byte(`
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
source:
  dsn: ${LOGDEX_TEST_DSN}
auth:
  api_keys: ["${LOGDEX_TEST_MISSING:-dev-key}"]
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Source.DSN != "/data/logs.db" {
		t.Errorf("DSN = %q", cfg.Source.DSN)
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "dev-key" {
		t.Errorf("APIKeys = %v, want [dev-key]", cfg.Auth.APIKeys)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}
