package logdex

import "time"

// Entry is a log entry supplied by the caller.
type Entry struct {
	Key           string
	Type          string
	Author        string
	Message       string
	ExecutionTime int64 // milliseconds
	CreatedAt     time.Time
	Data          string // "k1=v1;k2=v2"
}

// Operation is one replace-or-create write against the search index.
type Operation struct {
	Index string
	ID    string
	Doc   map[string]any
}

// Result is the outcome of indexing one key.
type Result struct {
	Key     string
	Status  string // "indexed", "not_found", "error"
	Upserts int
	Err     error
}

// Summary counts results of a bulk indexing run.
type Summary struct {
	Indexed  int
	NotFound int
	Failed   int
}

// FieldInfo describes one registered index field.
type FieldInfo struct {
	Role       string
	Name       string
	Type       string
	Searchable bool
	Sortable   bool
}

// Mapping describes the search index documents are written to.
type Mapping struct {
	Entity string
	Index  string
	Fields []FieldInfo
	// Create is the FT.CREATE command matching the fields.
	Create string
}
