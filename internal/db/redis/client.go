package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/logdex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// Config holds connection parameters for a Redis or Valkey store.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string // reported by CLIENT LIST; defaults to "logdex"
}

// Store implements db.Store via rueidis. It speaks to Redis 8+ and to Valkey
// with the JSON and search modules loaded.
type Store struct {
	client rueidis.Client
}

// NewStore creates a store via rueidis. Client-side caching is off: documents are write-only here.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = "logdex"
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

const (
	readyInitialDelay = 50 * time.Millisecond
	readyMaxDelay     = time.Second
)

// WaitForReady pings until the store responds or timeout expires.
// The first ping is immediate; retries back off up to one second apart.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	delay := readyInitialDelay
	for {
		lastErr := s.Ping(ctx)
		if lastErr == nil {
			return nil
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("timeout waiting for database: %w (last error: %v)", ctx.Err(), lastErr)
		case <-t.C:
		}
		delay = min(delay*2, readyMaxDelay)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// isRedisErr reports whether err is a server error whose message contains any of substrs,
// compared case-insensitively.
func isRedisErr(err error, substrs ...string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	msg := strings.ToLower(re.Error())
	for _, sub := range substrs {
		if strings.Contains(msg, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
