package db

import (
	"context"
	"time"
)

// Store is the search-engine facade combining all sub-interfaces.
type Store interface {
	Pinger
	JSONStore
	IndexInspector
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONSetItem holds a single key+path+data triple for pipelined JSON.SET.
type JSONSetItem struct {
	Key  string
	Path string
	Data []byte
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetMulti(ctx context.Context, items []JSONSetItem) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// IndexInspector reads FT index state. Creating and dropping indexes is left to operators.
type IndexInspector interface {
	IndexExists(ctx context.Context, name string) (bool, error)
}
