package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidSchema signals an invalid index schema definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrInvalidEntry signals a log entry that fails validation.
	ErrInvalidEntry = errors.New("invalid log entry")
	// ErrBatchTooLarge signals a reindex batch above the configured limit.
	ErrBatchTooLarge = errors.New("batch too large")
)
