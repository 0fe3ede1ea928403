// Package source is the relational record store holding raw log entries.
//
// Two drivers are supported: "sqlite" (modernc.org/sqlite, pure Go) and
// "postgres" (pgx through database/sql). Both share one table layout.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kailas-cloud/logdex/internal/domain/logentry"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const ddlLogs = `CREATE TABLE IF NOT EXISTS logs (
	log_key        VARCHAR(256) PRIMARY KEY,
	log_type       VARCHAR(64)  NOT NULL,
	author         VARCHAR(255),
	message        TEXT,
	execution_time BIGINT       NOT NULL DEFAULT 0,
	created_at     BIGINT       NOT NULL,
	data           TEXT
)`

// Store is a database/sql backed record store.
type Store struct {
	db     *sql.DB
	driver string
}

// Open connects to the record store and verifies the connection.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
	case DriverPostgres:
		var cfg *pgx.ConnConfig
		cfg, err = pgx.ParseConfig(dsn)
		if err == nil {
			db = stdlib.OpenDB(*cfg)
		}
	default:
		return nil, &Error{Op: OpOpen, Err: fmt.Errorf("%w: %q", ErrUnknownDriver, driver)}
	}
	if err != nil {
		return nil, &Error{Op: OpOpen, Err: err}
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &Error{Op: OpOpen, Err: err}
	}
	return &Store{db: db, driver: driver}, nil
}

// sqliteDSN enables WAL and a busy timeout unless the DSN sets pragmas itself.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "_pragma") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

// Driver returns the driver name the store was opened with.
func (s *Store) Driver() string { return s.driver }

// Migrate creates the logs table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, ddlLogs); err != nil {
		return &Error{Op: OpMigrate, Err: err}
	}
	return nil
}

// Ping checks record store connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put inserts an entry or replaces the stored entry with the same key.
func (s *Store) Put(ctx context.Context, e logentry.Entry) error {
	q := fmt.Sprintf(`INSERT INTO logs (log_key, log_type, author, message, execution_time, created_at, data)
VALUES (%s)
ON CONFLICT (log_key) DO UPDATE SET
	log_type = excluded.log_type,
	author = excluded.author,
	message = excluded.message,
	execution_time = excluded.execution_time,
	created_at = excluded.created_at,
	data = excluded.data`, s.placeholders(1, 7))

	_, err := s.db.ExecContext(ctx, q,
		e.Key(), e.Type(), nullString(e.Author()), nullString(e.Message()),
		e.ExecutionTime(), e.CreatedAt().UnixMilli(), nullString(e.Data()),
	)
	if err != nil {
		return &Error{Op: OpPut, Err: fmt.Errorf("key %q: %w", e.Key(), err)}
	}
	return nil
}

// ListKeys returns up to limit keys greater than after, in ascending order.
func (s *Store) ListKeys(ctx context.Context, after string, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	q := fmt.Sprintf("SELECT log_key FROM logs WHERE log_key > %s ORDER BY log_key LIMIT %s",
		s.placeholder(1), s.placeholder(2))
	rows, err := s.db.QueryContext(ctx, q, after, limit)
	if err != nil {
		return nil, &Error{Op: OpListKeys, Err: err}
	}
	defer rows.Close()

	keys := make([]string, 0, limit)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, &Error{Op: OpListKeys, Err: err}
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, &Error{Op: OpListKeys, Err: err}
	}
	return keys, nil
}

func (s *Store) placeholder(n int) string {
	if s.driver == DriverPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *Store) placeholders(from, count int) string {
	ps := make([]string, count)
	for i := range ps {
		ps[i] = s.placeholder(from + i)
	}
	return strings.Join(ps, ", ")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
