package indexing

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// mockNormalizer returns one upsert per known key.
type mockNormalizer struct {
	known map[string]bool
	errs  map[string]error
	delay time.Duration
}

func (m *mockNormalizer) Normalize(ctx context.Context, key string) ([]index.Upsert, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.errs[key]; err != nil {
		return nil, err
	}
	if !m.known[key] {
		return nil, nil
	}
	return []index.Upsert{index.NewUpsert("log", "id-"+key, index.Document{"key": key})}, nil
}

func (m *mockNormalizer) NormalizeEntry(entry logentry.Entry) []index.Upsert {
	return []index.Upsert{index.NewUpsert("log", "id-"+entry.Key(), index.Document{"key": entry.Key()})}
}

func (m *mockNormalizer) DocumentRef(key string) (string, string) {
	return "log", "id-" + key
}

// mockIndexer records applied operations.
type mockIndexer struct {
	mu      sync.Mutex
	applied []index.Upsert
	applyFn func(ops []index.Upsert) error
	readErr error
}

func (m *mockIndexer) Apply(_ context.Context, ops []index.Upsert) error {
	if m.applyFn != nil {
		if err := m.applyFn(ops); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applied = append(m.applied, ops...)
	return nil
}

func (m *mockIndexer) Get(_ context.Context, indexName, id string) (map[string]any, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.applied) - 1; i >= 0; i-- {
		if m.applied[i].Index == indexName && m.applied[i].ID == id {
			return map[string]any(m.applied[i].Doc), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockIndexer) Exists(ctx context.Context, indexName, id string) (bool, error) {
	_, err := m.Get(ctx, indexName, id)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (m *mockIndexer) ids() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.applied))
	for i := range m.applied {
		out[i] = m.applied[i].ID
	}
	sort.Strings(out)
	return out
}

// mockKeys serves a sorted key list page by page.
type mockKeys struct {
	keys  []string
	err   error
	pages int
}

func (m *mockKeys) ListKeys(_ context.Context, after string, limit int) ([]string, error) {
	m.pages++
	if m.err != nil {
		return nil, m.err
	}
	var out []string
	for _, k := range m.keys {
		if k > after && len(out) < limit {
			out = append(out, k)
		}
	}
	return out, nil
}

func knownKeys(keys ...string) map[string]bool {
	m := make(map[string]bool, len(keys))
	for _, k := range keys {
		m[k] = true
	}
	return m
}
