package indexing

import (
	"context"

	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// Normalizer turns stored log entries into index operations.
type Normalizer interface {
	Normalize(ctx context.Context, key string) ([]index.Upsert, error)
	NormalizeEntry(entry logentry.Entry) []index.Upsert
	DocumentRef(key string) (indexName, id string)
}

// Indexer applies index operations to the search engine and reads documents back.
type Indexer interface {
	Apply(ctx context.Context, ops []index.Upsert) error
	Get(ctx context.Context, indexName, id string) (map[string]any, error)
	Exists(ctx context.Context, indexName, id string) (bool, error)
}

// KeyLister pages through the keys of the record store in ascending order.
type KeyLister interface {
	ListKeys(ctx context.Context, after string, limit int) ([]string, error)
}
