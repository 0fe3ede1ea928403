package logdex

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/logdex/internal/db"
	dombatch "github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	healthuc "github.com/kailas-cloud/logdex/internal/usecase/health"
)

// --- indexingUseCase mock ---

type mockIndexingUC struct {
	reindexFn     func(ctx context.Context, key string) (int, error)
	reindexKeysFn func(ctx context.Context, keys []string) ([]dombatch.Result, error)
	reindexAllFn  func(ctx context.Context) (dombatch.Summary, error)
	previewFn     func(ctx context.Context, key string) ([]index.Upsert, error)
}

func (m *mockIndexingUC) Reindex(ctx context.Context, key string) (int, error) {
	return m.reindexFn(ctx, key)
}

func (m *mockIndexingUC) ReindexKeys(ctx context.Context, keys []string) ([]dombatch.Result, error) {
	return m.reindexKeysFn(ctx, keys)
}

func (m *mockIndexingUC) ReindexAll(ctx context.Context) (dombatch.Summary, error) {
	return m.reindexAllFn(ctx)
}

func (m *mockIndexingUC) Preview(ctx context.Context, key string) ([]index.Upsert, error) {
	return m.previewFn(ctx, key)
}

func (m *mockIndexingUC) Document(_ context.Context, key string) (map[string]any, error) {
	return map[string]any{"key": key}, nil
}

func (m *mockIndexingUC) IsIndexed(_ context.Context, _ string) (bool, error) {
	return true, nil
}

func (m *mockIndexingUC) PreviewEntry(entry logentry.Entry) []index.Upsert {
	return []index.Upsert{index.NewUpsert("log", "id-"+entry.Key(), index.Document{"key": entry.Key()})}
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- db.Store fake ---

// fakeStore records JSON writes in memory.
type fakeStore struct {
	mu      sync.Mutex
	docs    map[string][]byte
	pingErr error
	closed  bool
}

var _ db.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore { return &fakeStore{docs: make(map[string][]byte)} }

func (f *fakeStore) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeStore) JSONSet(_ context.Context, key, _ string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[key] = data
	return nil
}

func (f *fakeStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	for _, it := range items {
		if err := f.JSONSet(ctx, it.Key, it.Path, it.Data); err != nil {
			return err
		}
	}
	return nil
}

// JSONGet mimics the engine: the "$" path wraps the document in an array.
func (f *fakeStore) JSONGet(_ context.Context, key string, paths ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.docs[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if len(paths) == 1 && paths[0] == "$" {
		return []byte("[" + string(data) + "]"), nil
	}
	return data, nil
}

func (f *fakeStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[key]
	return ok, nil
}

func (f *fakeStore) IndexExists(_ context.Context, _ string) (bool, error) { return true, nil }

func (f *fakeStore) Close() { f.closed = true }

func (f *fakeStore) WaitForReady(_ context.Context, _ time.Duration) error { return nil }

func (f *fakeStore) get(key string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.docs[key]
	return data, ok
}
