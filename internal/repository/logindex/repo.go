package logindex

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/kailas-cloud/logdex/internal/db"
	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/index"
)

// ErrPartialUpdate rejects operations whose update and insert documents differ.
var ErrPartialUpdate = errors.New("partial updates are not supported")

// store is the consumer interface for the search engine (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []db.JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo applies index upserts to a JSON document store.
type Repo struct {
	store     store
	keyPrefix string
}

// New creates an index repository writing keys under keyPrefix.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, keyPrefix: keyPrefix}
}

// Apply writes every operation as a whole-document JSON.SET, which creates the
// document when absent and replaces it otherwise. A single operation uses one
// round-trip, several are pipelined.
func (r *Repo) Apply(ctx context.Context, ops []index.Upsert) error {
	if len(ops) == 0 {
		return nil
	}

	items := make([]db.JSONSetItem, len(ops))
	for i := range ops {
		item, err := r.item(&ops[i])
		if err != nil {
			return err
		}
		items[i] = item
	}

	if len(items) == 1 {
		if err := r.store.JSONSet(ctx, items[0].Key, items[0].Path, items[0].Data); err != nil {
			return fmt.Errorf("json.set %s: %w", items[0].Key, err)
		}
		return nil
	}
	if err := r.store.JSONSetMulti(ctx, items); err != nil {
		return fmt.Errorf("json.set %d documents: %w", len(items), err)
	}
	return nil
}

// Exists reports whether the document with id is stored in index.
func (r *Repo) Exists(ctx context.Context, indexName, id string) (bool, error) {
	key := docKey(r.keyPrefix, indexName, id)
	ok, err := r.store.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("check exists %s: %w", key, err)
	}
	return ok, nil
}

// Get reads back a stored document as decoded JSON (dates as unix millis).
// Returns domain.ErrNotFound when the document is absent.
func (r *Repo) Get(ctx context.Context, indexName, id string) (map[string]any, error) {
	key := docKey(r.keyPrefix, indexName, id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, fmt.Errorf("document %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseJSONGetResult(raw)
}

func (r *Repo) item(op *index.Upsert) (db.JSONSetItem, error) {
	if op.Index == "" || op.ID == "" {
		return db.JSONSetItem{}, fmt.Errorf("upsert requires index and id, got %q/%q", op.Index, op.ID)
	}
	if op.UpsertDoc != nil && !reflect.DeepEqual(op.Doc, op.UpsertDoc) {
		return db.JSONSetItem{}, fmt.Errorf("document %s: %w", op.ID, ErrPartialUpdate)
	}
	data, err := buildJSONDoc(op.Doc)
	if err != nil {
		return db.JSONSetItem{}, fmt.Errorf("document %s: %w", op.ID, err)
	}
	return db.JSONSetItem{
		Key:  docKey(r.keyPrefix, op.Index, op.ID),
		Path: "$",
		Data: data,
	}, nil
}
