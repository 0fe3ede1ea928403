package logdex

import "github.com/kailas-cloud/logdex/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound      = domain.ErrNotFound
	ErrInvalidSchema = domain.ErrInvalidSchema
	ErrInvalidEntry  = domain.ErrInvalidEntry
	ErrBatchTooLarge = domain.ErrBatchTooLarge
)
