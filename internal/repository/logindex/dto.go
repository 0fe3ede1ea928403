package logindex

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain/index"
)

// buildJSONDoc converts a document into its stored JSON form.
// Times become unix millis so the engine can range-query and sort them as NUMERIC.
func buildJSONDoc(doc index.Document) ([]byte, error) {
	m := make(map[string]any, len(doc))
	for k, v := range doc {
		switch tv := v.(type) {
		case time.Time:
			if tv.IsZero() {
				m[k] = nil
				continue
			}
			m[k] = tv.UnixMilli()
		case map[string]string:
			if tv == nil {
				tv = map[string]string{}
			}
			m[k] = tv
		default:
			m[k] = v
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return data, nil
}

// parseJSONGetResult unwraps the single-element array JSON.GET returns for the "$" path.
func parseJSONGetResult(raw []byte) (map[string]any, error) {
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	if len(docs) == 0 || docs[0] == nil {
		return nil, fmt.Errorf("unmarshal document: empty result")
	}
	return docs[0], nil
}
