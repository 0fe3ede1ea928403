// Package index holds the documents and write operations produced for the search engine.
package index

import (
	"maps"

	"github.com/google/uuid"
)

// documentNamespace seeds DocumentID. Changing it re-keys every indexed document.
var documentNamespace = uuid.MustParse("6f1c2a7e-3b52-4d0a-9f7e-2c5b8e41d903")

// Document maps field names to values: string, int64, float64, time.Time or map[string]string.
type Document map[string]any

// Clone returns a shallow copy; nested maps are copied one level deep.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	c := make(Document, len(d))
	for k, v := range d {
		if m, ok := v.(map[string]string); ok {
			v = maps.Clone(m)
		}
		c[k] = v
	}
	return c
}

// Upsert writes Doc when the target document exists and UpsertDoc when it does not.
// Normalizers set both to the same document: replace-or-create, never a partial patch.
type Upsert struct {
	Index     string
	ID        string
	Doc       Document
	UpsertDoc Document
}

// NewUpsert creates a replace-or-create operation for doc.
func NewUpsert(indexName, id string, doc Document) Upsert {
	return Upsert{Index: indexName, ID: id, Doc: doc, UpsertDoc: doc}
}

// DocumentID derives a stable document identifier from an entity kind and record key.
// The same pair always yields the same id; distinct pairs collide only on a SHA-1 collision.
func DocumentID(entity, key string) string {
	return uuid.NewSHA1(documentNamespace, []byte(entity+":"+key)).String()
}
