package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// Session is a lookup scope pinned to one pooled connection.
// It must be closed by the caller; it is not safe for concurrent use.
type Session struct {
	conn   *sql.Conn
	lookup string
}

// OpenSession reserves a connection for a sequence of lookups.
func (s *Store) OpenSession(ctx context.Context) (logentry.Session, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, &Error{Op: OpOpenSession, Err: err}
	}
	return &Session{
		conn: conn,
		lookup: fmt.Sprintf(`SELECT log_key, log_type, author, message, execution_time, created_at, data
FROM logs WHERE log_key = %s`, s.placeholder(1)),
	}, nil
}

// GetByKey loads the entry stored under key, or domain.ErrNotFound.
func (s *Session) GetByKey(ctx context.Context, key string) (logentry.Entry, error) {
	var (
		k, typ                string
		author, message, data sql.NullString
		execTime, createdAt   int64
	)
	err := s.conn.QueryRowContext(ctx, s.lookup, key).Scan(
		&k, &typ, &author, &message, &execTime, &createdAt, &data,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return logentry.Entry{}, domain.ErrNotFound
	}
	if err != nil {
		return logentry.Entry{}, &Error{Op: OpGetByKey, Err: fmt.Errorf("key %q: %w", key, err)}
	}

	return logentry.Reconstruct(
		k, typ, author.String, message.String,
		execTime, time.UnixMilli(createdAt), data.String,
	), nil
}

// Close returns the connection to the pool.
func (s *Session) Close() error {
	return s.conn.Close()
}
