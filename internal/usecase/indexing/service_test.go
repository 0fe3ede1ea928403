package indexing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// --- Reindex ---

func TestReindex_Indexed(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(&mockNormalizer{known: knownKeys("k1")}, idx, nil)

	n, err := svc.Reindex(context.Background(), "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("upserts = %d, want 1", n)
	}
	if ids := idx.ids(); len(ids) != 1 || ids[0] != "id-k1" {
		t.Errorf("applied = %v", ids)
	}
}

func TestReindex_NotFound(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(&mockNormalizer{}, idx, nil)

	_, err := svc.Reindex(context.Background(), "missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(idx.ids()) != 0 {
		t.Error("nothing should be applied for a missing record")
	}
}

func TestReindex_NormalizeError(t *testing.T) {
	boom := errors.New("db down")
	svc := New(&mockNormalizer{errs: map[string]error{"k1": boom}}, &mockIndexer{}, nil)

	if _, err := svc.Reindex(context.Background(), "k1"); !errors.Is(err, boom) {
		t.Fatalf("expected normalize error, got %v", err)
	}
}

func TestReindex_ApplyError(t *testing.T) {
	boom := errors.New("engine down")
	idx := &mockIndexer{applyFn: func(_ []index.Upsert) error { return boom }}
	svc := New(&mockNormalizer{known: knownKeys("k1")}, idx, nil)

	if _, err := svc.Reindex(context.Background(), "k1"); !errors.Is(err, boom) {
		t.Fatalf("expected apply error, got %v", err)
	}
}

// --- ReindexKeys ---

func TestReindexKeys_PerKeyResults(t *testing.T) {
	boom := errors.New("bad row")
	norm := &mockNormalizer{
		known: knownKeys("a", "c"),
		errs:  map[string]error{"d": boom},
	}
	idx := &mockIndexer{}
	svc := New(norm, idx, nil).WithWorkers(2)

	results, err := svc.ReindexKeys(context.Background(), []string{"a", "b", "c", "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []batch.ItemStatus{batch.StatusIndexed, batch.StatusNotFound, batch.StatusIndexed, batch.StatusError}
	for i, r := range results {
		if r.Status() != want[i] {
			t.Errorf("results[%d] (%s) = %q, want %q", i, r.Key(), r.Status(), want[i])
		}
	}
	if !errors.Is(results[3].Err(), boom) {
		t.Errorf("results[3].Err() = %v, want %v", results[3].Err(), boom)
	}
	if ids := idx.ids(); len(ids) != 2 || ids[0] != "id-a" || ids[1] != "id-c" {
		t.Errorf("applied = %v, want [id-a id-c]", ids)
	}
}

func TestReindexKeys_TooLarge(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil).WithMaxBatchSize(2)
	_, err := svc.ReindexKeys(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, domain.ErrBatchTooLarge) {
		t.Fatalf("expected ErrBatchTooLarge, got %v", err)
	}
}

func TestReindexKeys_Empty(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil)
	results, err := svc.ReindexKeys(context.Background(), nil)
	if err != nil || len(results) != 0 {
		t.Fatalf("ReindexKeys(nil) = %v, %v", results, err)
	}
}

func TestReindexKeys_CancelledContext(t *testing.T) {
	norm := &mockNormalizer{known: knownKeys("a", "b"), delay: time.Second}
	svc := New(norm, &mockIndexer{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := svc.ReindexKeys(ctx, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Status() != batch.StatusError || !errors.Is(r.Err(), context.Canceled) {
			t.Errorf("result %s = %q (%v), want cancelled error", r.Key(), r.Status(), r.Err())
		}
	}
}

// --- ReindexAll ---

func TestReindexAll_Pages(t *testing.T) {
	all := make([]string, 0, 7)
	for i := range 7 {
		all = append(all, fmt.Sprintf("k%02d", i))
	}
	keys := &mockKeys{keys: all}
	norm := &mockNormalizer{known: knownKeys(all[:6]...)}
	idx := &mockIndexer{}
	svc := New(norm, idx, keys).WithPageSize(3).WithMaxBatchSize(2)

	sum, err := svc.ReindexAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Indexed != 6 || sum.NotFound != 1 || sum.Failed != 0 {
		t.Errorf("summary = %+v, want 6 indexed, 1 not found", sum)
	}
	if keys.pages != 3 {
		t.Errorf("pages read = %d, want 3", keys.pages)
	}
	if len(idx.ids()) != 6 {
		t.Errorf("applied = %d, want 6", len(idx.ids()))
	}
}

func TestReindexAll_ExactPageBoundary(t *testing.T) {
	keys := &mockKeys{keys: []string{"a", "b"}}
	svc := New(&mockNormalizer{known: knownKeys("a", "b")}, &mockIndexer{}, keys).WithPageSize(2)

	sum, err := svc.ReindexAll(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Indexed != 2 {
		t.Errorf("indexed = %d, want 2", sum.Indexed)
	}
	if keys.pages != 2 {
		t.Errorf("pages read = %d, want 2 (last page empty)", keys.pages)
	}
}

func TestReindexAll_ListError(t *testing.T) {
	boom := errors.New("db down")
	svc := New(&mockNormalizer{}, &mockIndexer{}, &mockKeys{err: boom})
	if _, err := svc.ReindexAll(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected list error, got %v", err)
	}
}

func TestReindexAll_NoKeyLister(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil)
	if _, err := svc.ReindexAll(context.Background()); err == nil {
		t.Fatal("expected error without key lister")
	}
}

// --- Preview ---

func TestPreview(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(&mockNormalizer{known: knownKeys("k1")}, idx, nil)

	ops, err := svc.Preview(context.Background(), "k1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ops) != 1 || ops[0].ID != "id-k1" {
		t.Errorf("ops = %+v", ops)
	}
	if len(idx.ids()) != 0 {
		t.Error("Preview must not write to the index")
	}
}

func TestPreview_NotFound(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil)
	if _, err := svc.Preview(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPreviewEntry(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil)
	e := logentry.Reconstruct("k9", "QPROFILE", "", "", 0, time.Unix(0, 0), "")
	ops := svc.PreviewEntry(e)
	if len(ops) != 1 || ops[0].ID != "id-k9" {
		t.Errorf("ops = %+v", ops)
	}
}

func TestDocument_AfterReindex(t *testing.T) {
	idx := &mockIndexer{}
	svc := New(&mockNormalizer{known: knownKeys("k1")}, idx, nil)

	if ok, err := svc.IsIndexed(context.Background(), "k1"); err != nil || ok {
		t.Fatalf("IsIndexed before reindex = %v, %v", ok, err)
	}
	if _, err := svc.Reindex(context.Background(), "k1"); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	doc, err := svc.Document(context.Background(), "k1")
	if err != nil {
		t.Fatalf("Document: %v", err)
	}
	if doc["key"] != "k1" {
		t.Errorf("doc = %v", doc)
	}
	if ok, err := svc.IsIndexed(context.Background(), "k1"); err != nil || !ok {
		t.Errorf("IsIndexed after reindex = %v, %v", ok, err)
	}
}

func TestDocument_NotIndexed(t *testing.T) {
	svc := New(&mockNormalizer{}, &mockIndexer{}, nil)
	if _, err := svc.Document(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsIndexed_ReadError(t *testing.T) {
	boom := errors.New("engine down")
	svc := New(&mockNormalizer{}, &mockIndexer{readErr: boom}, nil)
	if _, err := svc.IsIndexed(context.Background(), "k1"); !errors.Is(err, boom) {
		t.Fatalf("expected read error, got %v", err)
	}
}
