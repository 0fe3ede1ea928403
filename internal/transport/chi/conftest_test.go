package chi

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	dombatch "github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	"github.com/kailas-cloud/logdex/internal/repository/logindex"
	healthuc "github.com/kailas-cloud/logdex/internal/usecase/health"
)

// mockIndexer implements Indexer with function fields.
type mockIndexer struct {
	reindexFn      func(ctx context.Context, key string) (int, error)
	reindexKeysFn  func(ctx context.Context, keys []string) ([]dombatch.Result, error)
	reindexAllFn   func(ctx context.Context) (dombatch.Summary, error)
	previewFn      func(ctx context.Context, key string) ([]index.Upsert, error)
	previewEntryFn func(entry logentry.Entry) []index.Upsert
	documentFn     func(ctx context.Context, key string) (map[string]any, error)
	isIndexedFn    func(ctx context.Context, key string) (bool, error)
}

func (m *mockIndexer) Reindex(ctx context.Context, key string) (int, error) {
	if m.reindexFn != nil {
		return m.reindexFn(ctx, key)
	}
	return 1, nil
}

func (m *mockIndexer) ReindexKeys(ctx context.Context, keys []string) ([]dombatch.Result, error) {
	if m.reindexKeysFn != nil {
		return m.reindexKeysFn(ctx, keys)
	}
	out := make([]dombatch.Result, len(keys))
	for i, k := range keys {
		out[i] = dombatch.NewIndexed(k, 1)
	}
	return out, nil
}

func (m *mockIndexer) ReindexAll(ctx context.Context) (dombatch.Summary, error) {
	if m.reindexAllFn != nil {
		return m.reindexAllFn(ctx)
	}
	return dombatch.Summary{}, nil
}

func (m *mockIndexer) Preview(ctx context.Context, key string) ([]index.Upsert, error) {
	if m.previewFn != nil {
		return m.previewFn(ctx, key)
	}
	return []index.Upsert{index.NewUpsert("log", "id-"+key, index.Document{"key": key})}, nil
}

func (m *mockIndexer) PreviewEntry(entry logentry.Entry) []index.Upsert {
	if m.previewEntryFn != nil {
		return m.previewEntryFn(entry)
	}
	return []index.Upsert{index.NewUpsert("log", "id-"+entry.Key(), index.Document{"key": entry.Key()})}
}

func (m *mockIndexer) Document(ctx context.Context, key string) (map[string]any, error) {
	if m.documentFn != nil {
		return m.documentFn(ctx, key)
	}
	return map[string]any{"key": key}, nil
}

func (m *mockIndexer) IsIndexed(ctx context.Context, key string) (bool, error) {
	if m.isIndexedFn != nil {
		return m.isIndexedFn(ctx, key)
	}
	return true, nil
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(t *testing.T, idx *mockIndexer) http.Handler {
	t.Helper()
	s, err := logentry.NewSchema("log")
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	def, err := logindex.BuildIndex(s, "logdex:")
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	hc := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{healthuc.SearchEngine: healthuc.CheckOK},
	}}
	srv := NewServer(idx, hc, s, def, zap.NewNop())
	return HandlerWithOptions(srv, ServerOptions{BaseRouter: chi.NewRouter()})
}
