package logdex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/logdex/internal/db"
	dbRedis "github.com/kailas-cloud/logdex/internal/db/redis"
	dombatch "github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	"github.com/kailas-cloud/logdex/internal/kvformat"
	"github.com/kailas-cloud/logdex/internal/repository/logindex"
	"github.com/kailas-cloud/logdex/internal/source"
	healthuc "github.com/kailas-cloud/logdex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/logdex/internal/usecase/indexing"
	normalizeruc "github.com/kailas-cloud/logdex/internal/usecase/normalizer"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interface, swapped out in tests.
type indexingUseCase interface {
	Reindex(ctx context.Context, key string) (int, error)
	ReindexKeys(ctx context.Context, keys []string) ([]dombatch.Result, error)
	ReindexAll(ctx context.Context) (dombatch.Summary, error)
	Preview(ctx context.Context, key string) ([]index.Upsert, error)
	PreviewEntry(entry logentry.Entry) []index.Upsert
	Document(ctx context.Context, key string) (map[string]any, error)
	IsIndexed(ctx context.Context, key string) (bool, error)
}

// Client is the logdex SDK entry point.
type Client struct {
	closers   []func()
	pinger    healthuc.Pinger
	schema    *schema.Schema
	mapping   *db.IndexDefinition
	indexing  indexingUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client, connects to the search engine and opens the record store.
// The provided context is used for the initial readiness checks.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("logdex: database address required (use WithValkey or WithRedis)")
	}
	if cfg.sourceDSN == "" {
		return nil, errors.New("logdex: record store required (use WithSQLite or WithPostgres)")
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("logdex: database not ready: %w", err)
	}

	records, err := source.Open(ctx, cfg.sourceDriver, cfg.sourceDSN)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("logdex: open record store: %w", err)
	}
	if cfg.migrate {
		if err := records.Migrate(ctx); err != nil {
			store.Close()
			_ = records.Close()
			return nil, fmt.Errorf("logdex: migrate record store: %w", err)
		}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		_ = records.Close()
		return nil, err
	}

	c, err := wireClient(store, records, cfg, obs)
	if err != nil {
		store.Close()
		_ = records.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("logdex: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("logdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, records *source.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	s, err := logentry.NewSchema(cfg.indexName)
	if err != nil {
		return nil, fmt.Errorf("logdex: %w", err)
	}
	keyPrefix := cfg.keyPrefix
	if keyPrefix == "" {
		keyPrefix = "logdex:"
	}
	mapping, err := logindex.BuildIndex(s, keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("logdex: %w", err)
	}

	codec, err := kvformat.New(
		kvformat.WithPairSeparator(cfg.pairSeparator),
		kvformat.WithKeyValueSeparator(cfg.keyValueSeparator),
	)
	if err != nil {
		return nil, fmt.Errorf("logdex: %w", err)
	}

	norm, err := normalizeruc.New(s, records)
	if err != nil {
		return nil, fmt.Errorf("logdex: %w", err)
	}
	norm.WithCodec(codec)

	indexing := indexinguc.New(norm, logindex.New(store, keyPrefix), records).
		WithWorkers(cfg.workers).
		WithMaxBatchSize(cfg.maxBatchSize)

	if zl := obs.zapLogger(); zl != nil {
		norm.WithLogger(zl.Named("normalizer"))
		indexing.WithLogger(zl.Named("indexing"))
	}
	if sc := obs.skipCounter(); sc != nil {
		norm.WithSkipCounter(sc)
	}

	return &Client{
		closers:   []func(){store.Close, func() { _ = records.Close() }},
		pinger:    store,
		schema:    s,
		mapping:   mapping,
		indexing:  indexing,
		healthSvc: healthuc.New(store, records),
		obs:       obs,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	for _, fn := range c.closers {
		fn()
	}
	c.closers = nil
}

// Ping checks search engine connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.pinger.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Index loads the record stored under key, normalizes it and writes it to the index.
// Returns ErrNotFound when no record exists.
func (c *Client) Index(ctx context.Context, key string) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index", start, err) }()

	return c.indexing.Reindex(ctx, key)
}

// IndexKeys indexes several keys concurrently and reports one result per key, in input order.
func (c *Client) IndexKeys(ctx context.Context, keys []string) (_ []Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_keys", start, err) }()

	results, err := c.indexing.ReindexKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(results))
	var sum dombatch.Summary
	for i, r := range results {
		out[i] = Result{Key: r.Key(), Status: string(r.Status()), Upserts: r.Upserts(), Err: r.Err()}
		sum.Add(r)
	}
	c.obs.countKeys(summaryFromDomain(sum))
	return out, nil
}

// IndexAll walks the whole record store and indexes every entry.
func (c *Client) IndexAll(ctx context.Context) (_ Summary, err error) {
	start := time.Now()
	defer func() { c.obs.observe("index_all", start, err) }()

	sum, err := c.indexing.ReindexAll(ctx)
	out := summaryFromDomain(sum)
	c.obs.countKeys(out)
	return out, err
}

// Preview returns the operations Index would write for key, without writing them.
func (c *Client) Preview(ctx context.Context, key string) (_ []Operation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("preview", start, err) }()

	ops, err := c.indexing.Preview(ctx, key)
	if err != nil {
		return nil, err
	}
	return operationsFromDomain(ops), nil
}

// Normalize converts a caller-supplied entry into index operations. No I/O is performed.
func (c *Client) Normalize(e Entry) ([]Operation, error) {
	entry, err := logentry.New(e.Key, e.Type, e.Author, e.Message, e.ExecutionTime, e.CreatedAt, e.Data)
	if err != nil {
		return nil, err
	}
	return operationsFromDomain(c.indexing.PreviewEntry(entry)), nil
}

// Mapping describes the fields written by the client and the matching index definition.
func (c *Client) Mapping() Mapping {
	roles := c.schema.Roles()
	fields := c.schema.Fields()
	m := Mapping{
		Entity: c.schema.Entity(),
		Index:  c.schema.IndexName(),
		Fields: make([]FieldInfo, len(fields)),
	}
	for i, f := range fields {
		m.Fields[i] = FieldInfo{
			Role:       string(roles[i]),
			Name:       f.Name(),
			Type:       string(f.FieldType()),
			Searchable: f.IsSearchable(),
			Sortable:   f.IsSortable(),
		}
	}
	if c.mapping != nil {
		m.Create = c.mapping.String()
	}
	return m
}

// Document reads back the document indexed for key. Dates are unix milliseconds.
// Returns ErrNotFound when nothing is indexed for key.
func (c *Client) Document(ctx context.Context, key string) (_ map[string]any, err error) {
	start := time.Now()
	defer func() { c.obs.observe("document", start, err) }()

	return c.indexing.Document(ctx, key)
}

// IsIndexed reports whether a document is indexed for key.
func (c *Client) IsIndexed(ctx context.Context, key string) (_ bool, err error) {
	start := time.Now()
	defer func() { c.obs.observe("is_indexed", start, err) }()

	return c.indexing.IsIndexed(ctx, key)
}

func operationsFromDomain(ops []index.Upsert) []Operation {
	out := make([]Operation, len(ops))
	for i := range ops {
		out[i] = Operation{Index: ops[i].Index, ID: ops[i].ID, Doc: ops[i].Doc.Clone()}
	}
	return out
}

func summaryFromDomain(s dombatch.Summary) Summary {
	return Summary{Indexed: s.Indexed, NotFound: s.NotFound, Failed: s.Failed}
}
