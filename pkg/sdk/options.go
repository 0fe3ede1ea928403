package logdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	sourceDriver string // "sqlite" or "postgres"
	sourceDSN    string
	migrate      bool

	indexName string
	keyPrefix string

	pairSeparator     string
	keyValueSeparator string

	workers      int
	maxBatchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to write to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to write to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithSQLite reads log entries from a SQLite database file.
// The logs table is created when missing.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceDriver = "sqlite"
		c.sourceDSN = path
		c.migrate = true
	})
}

// WithPostgres reads log entries from PostgreSQL. The logs table must exist.
func WithPostgres(dsn string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sourceDriver = "postgres"
		c.sourceDSN = dsn
	})
}

// WithIndex sets the index name and the key prefix of stored documents.
// Defaults: "log" and "logdex:".
func WithIndex(name, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexName = name
		c.keyPrefix = keyPrefix
	})
}

// WithDetailsSeparators overrides the separators of the details payload.
// Defaults: ";" between pairs and "=" between key and value.
func WithDetailsSeparators(pair, keyValue string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pairSeparator = pair
		c.keyValueSeparator = keyValue
	})
}

// WithWorkers sets how many keys are indexed concurrently. Default: 4.
func WithWorkers(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.workers = n
	})
}

// WithMaxBatchSize sets the maximum number of keys per IndexKeys call.
// Default: 100.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
