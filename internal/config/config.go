package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/logdex/internal/kvformat"
)

// Config holds the logdex service configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Source   SourceConfig   `yaml:"source"`
	Index    IndexConfig    `yaml:"index"`
	Details  DetailsConfig  `yaml:"details"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds search engine connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // valkey, redis (default: valkey)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// SourceConfig holds record store settings.
type SourceConfig struct {
	Driver  string `yaml:"driver"` // sqlite, postgres (default: sqlite)
	DSN     string `yaml:"dsn"`
	Migrate bool   `yaml:"migrate"`
}

// IndexConfig holds index naming and reindex settings.
type IndexConfig struct {
	Name         string `yaml:"name"`       // default: log
	KeyPrefix    string `yaml:"key_prefix"` // default: logdex:
	MaxBatchSize int    `yaml:"max_batch_size"`
	Workers      int    `yaml:"workers"`
	PageSize     int    `yaml:"page_size"`
}

// DetailsConfig holds the separators of the details payload.
type DetailsConfig struct {
	PairSeparator     string `yaml:"pair_separator"`      // default: ;
	KeyValueSeparator string `yaml:"key_value_separator"` // default: =
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "valkey"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Source.Driver == "" {
		c.Source.Driver = "sqlite"
	}
	if c.Index.Name == "" {
		c.Index.Name = "log"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "logdex:"
	}
	if c.Index.MaxBatchSize <= 0 {
		c.Index.MaxBatchSize = 100
	}
	if c.Index.Workers <= 0 {
		c.Index.Workers = 4
	}
	if c.Index.PageSize <= 0 {
		c.Index.PageSize = 500
	}
	if c.Details.PairSeparator == "" {
		c.Details.PairSeparator = ";"
	}
	if c.Details.KeyValueSeparator == "" {
		c.Details.KeyValueSeparator = "="
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "valkey", "redis":
	default:
		return fmt.Errorf("database.driver must be \"valkey\" or \"redis\", got %q", c.Database.Driver)
	}
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	switch c.Source.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("source.driver must be \"sqlite\" or \"postgres\", got %q", c.Source.Driver)
	}
	if c.Source.DSN == "" {
		return fmt.Errorf("source.dsn is required")
	}
	if err := kvformat.CheckSeparators(c.Details.PairSeparator, c.Details.KeyValueSeparator); err != nil {
		return fmt.Errorf("details: %w", err)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
