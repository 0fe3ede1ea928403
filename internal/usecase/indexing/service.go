package indexing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	"github.com/kailas-cloud/logdex/internal/metrics"
)

// Defaults for batch reindexing.
const (
	DefaultWorkers      = 4
	DefaultMaxBatchSize = 100
	DefaultPageSize     = 500
)

// Service loads records, normalizes them and writes the result to the search index.
type Service struct {
	norm     Normalizer
	idx      Indexer
	keys     KeyLister
	logger   *zap.Logger
	workers  int
	maxBatch int
	pageSize int
}

// New creates an indexing service. keys may be nil when ReindexAll is not used.
func New(norm Normalizer, idx Indexer, keys KeyLister) *Service {
	return &Service{
		norm:     norm,
		idx:      idx,
		keys:     keys,
		logger:   zap.NewNop(),
		workers:  DefaultWorkers,
		maxBatch: DefaultMaxBatchSize,
		pageSize: DefaultPageSize,
	}
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithWorkers configures how many keys are reindexed concurrently.
func (s *Service) WithWorkers(n int) *Service {
	if n > 0 {
		s.workers = n
	}
	return s
}

// WithMaxBatchSize configures the maximum number of keys per ReindexKeys call.
func (s *Service) WithMaxBatchSize(n int) *Service {
	if n > 0 {
		s.maxBatch = n
	}
	return s
}

// WithPageSize configures how many keys ReindexAll reads per page.
func (s *Service) WithPageSize(n int) *Service {
	if n > 0 {
		s.pageSize = n
	}
	return s
}

// Reindex normalizes one record and applies the result.
// Returns domain.ErrNotFound when the record does not exist.
func (s *Service) Reindex(ctx context.Context, key string) (int, error) {
	r := s.reindexOne(ctx, key)
	switch r.Status() {
	case batch.StatusNotFound:
		return 0, fmt.Errorf("log entry %q: %w", key, domain.ErrNotFound)
	case batch.StatusError:
		return 0, r.Err()
	}
	return r.Upserts(), nil
}

// ReindexKeys reindexes keys concurrently and reports one result per key, in input order.
// A failing key does not stop the others.
func (s *Service) ReindexKeys(ctx context.Context, keys []string) ([]batch.Result, error) {
	if len(keys) > s.maxBatch {
		return nil, fmt.Errorf("%d keys exceeds %d: %w", len(keys), s.maxBatch, domain.ErrBatchTooLarge)
	}

	results := make([]batch.Result, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, key := range keys {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = batch.NewError(key, err)
				return nil
			}
			results[i] = s.reindexOne(gctx, key)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// ReindexAll walks every key of the record store and reindexes it page by page.
func (s *Service) ReindexAll(ctx context.Context) (batch.Summary, error) {
	var sum batch.Summary
	if s.keys == nil {
		return sum, errors.New("no record store configured")
	}

	after := ""
	for {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		keys, err := s.keys.ListKeys(ctx, after, s.pageSize)
		if err != nil {
			return sum, fmt.Errorf("list keys after %q: %w", after, err)
		}
		if len(keys) == 0 {
			break
		}

		for start := 0; start < len(keys); start += s.maxBatch {
			end := min(start+s.maxBatch, len(keys))
			results, err := s.ReindexKeys(ctx, keys[start:end])
			if err != nil {
				return sum, err
			}
			for _, r := range results {
				sum.Add(r)
			}
		}

		after = keys[len(keys)-1]
		if len(keys) < s.pageSize {
			break
		}
	}

	s.logger.Info("Reindex finished",
		zap.Int("indexed", sum.Indexed),
		zap.Int("not_found", sum.NotFound),
		zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// Preview returns the operations Reindex would apply, without writing them.
func (s *Service) Preview(ctx context.Context, key string) ([]index.Upsert, error) {
	ops, err := s.norm.Normalize(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("log entry %q: %w", key, domain.ErrNotFound)
	}
	return ops, nil
}

// PreviewEntry normalizes a caller-supplied entry without touching any store.
func (s *Service) PreviewEntry(entry logentry.Entry) []index.Upsert {
	return s.norm.NormalizeEntry(entry)
}

// Document reads back the indexed document of the record stored under key.
// Returns domain.ErrNotFound when nothing was indexed for key.
func (s *Service) Document(ctx context.Context, key string) (map[string]any, error) {
	indexName, id := s.norm.DocumentRef(key)
	doc, err := s.idx.Get(ctx, indexName, id)
	if err != nil {
		return nil, fmt.Errorf("indexed document of %q: %w", key, err)
	}
	return doc, nil
}

// IsIndexed reports whether a document exists in the index for key.
func (s *Service) IsIndexed(ctx context.Context, key string) (bool, error) {
	indexName, id := s.norm.DocumentRef(key)
	ok, err := s.idx.Exists(ctx, indexName, id)
	if err != nil {
		return false, fmt.Errorf("indexed document of %q: %w", key, err)
	}
	return ok, nil
}

func (s *Service) reindexOne(ctx context.Context, key string) batch.Result {
	start := time.Now()
	defer func() { metrics.NormalizeDuration.Observe(time.Since(start).Seconds()) }()

	ops, err := s.norm.Normalize(ctx, key)
	if err != nil {
		metrics.NormalizeTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Normalize failed", zap.String("key", key), zap.Error(err))
		return batch.NewError(key, err)
	}
	if len(ops) == 0 {
		metrics.NormalizeTotal.WithLabelValues("not_found").Inc()
		return batch.NewNotFound(key)
	}

	if err := s.idx.Apply(ctx, ops); err != nil {
		metrics.NormalizeTotal.WithLabelValues("error").Inc()
		s.logger.Warn("Index apply failed", zap.String("key", key), zap.Error(err))
		return batch.NewError(key, fmt.Errorf("apply: %w", err))
	}

	metrics.NormalizeTotal.WithLabelValues("indexed").Inc()
	for i := range ops {
		metrics.UpsertsTotal.WithLabelValues(ops[i].Index).Inc()
	}
	return batch.NewIndexed(key, len(ops))
}
