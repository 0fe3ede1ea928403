package normalizer

import (
	"context"

	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// SessionOpener opens scoped sessions on the log record store.
type SessionOpener interface {
	OpenSession(ctx context.Context) (logentry.Session, error)
}

// SkipCounter counts dropped details segments.
type SkipCounter interface {
	Add(float64)
}
