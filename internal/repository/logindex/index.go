package logindex

import (
	"fmt"

	"github.com/kailas-cloud/logdex/internal/db"
	"github.com/kailas-cloud/logdex/internal/domain/index/field"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
)

// BuildIndex derives the FT index definition for documents of s stored under keyPrefix.
//
// Mapping: searchable strings are TEXT, other strings TAG; numerics and dates
// (unix millis) are NUMERIC; objects index their values as a TAG on "$.<name>.*".
// Only NUMERIC, TAG and TEXT fields of scalar types honour SORTABLE.
func BuildIndex(s *schema.Schema, keyPrefix string) (*db.IndexDefinition, error) {
	b := db.NewIndex(IndexName(keyPrefix, s.IndexName())).
		OnJSON().
		Prefix(DocPrefix(keyPrefix, s.IndexName()))

	for _, f := range s.Fields() {
		path := "$." + f.Name()
		switch f.FieldType() {
		case field.String:
			if f.IsSearchable() {
				b.Text(path)
			} else {
				b.Tag(path)
			}
		case field.Numeric, field.Date:
			b.Numeric(path)
		case field.Object:
			b.TagWithOpts(path+".*", ",", true)
		default:
			return nil, fmt.Errorf("unknown field type %q for %q", f.FieldType(), f.Name())
		}
		b.As(f.Name())
		if f.IsSortable() && f.FieldType() != field.Object {
			b.Sortable()
		}
	}

	def, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build index %q: %w", s.IndexName(), err)
	}
	return def, nil
}

// IndexName returns the FT index name of an index.
func IndexName(keyPrefix, index string) string {
	return fmt.Sprintf("%s%s:idx", keyPrefix, index)
}

// DocPrefix returns the key prefix of the documents of an index.
func DocPrefix(keyPrefix, index string) string {
	return fmt.Sprintf("%s%s:", keyPrefix, index)
}

func docKey(keyPrefix, index, id string) string {
	return DocPrefix(keyPrefix, index) + id
}
