package logindex

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/logdex/internal/db"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	jsonSetFn      func(ctx context.Context, key, path string, data []byte) error
	jsonSetMultiFn func(ctx context.Context, items []db.JSONSetItem) error
	jsonGetFn      func(ctx context.Context, key string, paths ...string) ([]byte, error)
	existsFn       func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) JSONSet(ctx context.Context, key, path string, data []byte) error {
	if m.jsonSetFn != nil {
		return m.jsonSetFn(ctx, key, path, data)
	}
	return nil
}

func (m *mockStore) JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error {
	if m.jsonSetMultiFn != nil {
		return m.jsonSetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error) {
	if m.jsonGetFn != nil {
		return m.jsonGetFn(ctx, key, paths...)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "logdex:"), ms
}

var testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testUpsert(id string) index.Upsert {
	return index.NewUpsert("log", id, index.Document{
		"key":           "k1",
		"type":          "QPROFILE",
		"author":        "alice",
		"message":       "changed rule",
		"executionTime": int64(42),
		"date":          testTime,
		"details":       map[string]string{"severity": "MAJOR"},
	})
}

func testSchema(t *testing.T, indexName string) *schema.Schema {
	t.Helper()
	s, err := logentry.NewSchema(indexName)
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}
