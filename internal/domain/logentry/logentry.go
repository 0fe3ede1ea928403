package logentry

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain"
)

// MaxKeyLength is the maximum log entry key length.
const MaxKeyLength = 256

// Entry is an activity log record (immutable value object).
type Entry struct {
	key           string
	entryType     string
	author        string
	message       string
	executionTime int64
	createdAt     time.Time
	data          string
}

// New validates and creates an Entry.
// Key and type are required; execution time (millis) must not be negative.
// data is the raw "k1=v1;k2=v2" details payload and may be empty.
func New(
	key, entryType, author, message string,
	executionTime int64, createdAt time.Time, data string,
) (Entry, error) {
	if key == "" {
		return Entry{}, fmt.Errorf("key is required: %w", domain.ErrInvalidEntry)
	}
	if len(key) > MaxKeyLength {
		return Entry{}, fmt.Errorf("key too long (max %d): %w", MaxKeyLength, domain.ErrInvalidEntry)
	}
	if entryType == "" {
		return Entry{}, fmt.Errorf("type is required: %w", domain.ErrInvalidEntry)
	}
	if executionTime < 0 {
		return Entry{}, fmt.Errorf("execution time must not be negative: %w", domain.ErrInvalidEntry)
	}
	return Reconstruct(key, entryType, author, message, executionTime, createdAt, data), nil
}

// Reconstruct creates an Entry without validation (storage hydration).
func Reconstruct(
	key, entryType, author, message string,
	executionTime int64, createdAt time.Time, data string,
) Entry {
	return Entry{
		key:           key,
		entryType:     entryType,
		author:        author,
		message:       message,
		executionTime: executionTime,
		createdAt:     createdAt.UTC(),
		data:          data,
	}
}

// Key returns the record key.
func (e Entry) Key() string { return e.key }

// Type returns the activity type, e.g. QPROFILE.
func (e Entry) Type() string { return e.entryType }

// Author returns the login of the user behind the activity.
func (e Entry) Author() string { return e.author }

// Message returns the free-text message.
func (e Entry) Message() string { return e.message }

// ExecutionTime returns the execution time in milliseconds.
func (e Entry) ExecutionTime() int64 { return e.executionTime }

// CreatedAt returns the creation time in UTC.
func (e Entry) CreatedAt() time.Time { return e.createdAt }

// Data returns the raw details payload.
func (e Entry) Data() string { return e.data }

// Session is a scoped read session on the log record store.
// Close must be called on every exit path once the session is open.
type Session interface {
	// GetByKey returns the entry stored under key, or domain.ErrNotFound.
	GetByKey(ctx context.Context, key string) (Entry, error)
	Close() error
}
