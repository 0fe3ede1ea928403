package normalizer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/logdex/internal/domain"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	"github.com/kailas-cloud/logdex/internal/kvformat"
)

// roles written by NormalizeEntry; the schema must register all of them.
var roles = []schema.Role{
	logentry.RoleKey,
	logentry.RoleType,
	logentry.RoleAuthor,
	logentry.RoleMessage,
	logentry.RoleExecution,
	logentry.RoleDate,
	logentry.RoleDetails,
}

// Service turns log entries into index upserts. It holds no mutable state.
type Service struct {
	schema   *schema.Schema
	sessions SessionOpener
	codec    *kvformat.Codec
	logger   *zap.Logger
	skipped  SkipCounter
}

// New creates a normalizer over the log schema.
// It fails when the schema lacks a role the normalizer writes.
func New(s *schema.Schema, sessions SessionOpener) (*Service, error) {
	if s == nil {
		return nil, fmt.Errorf("schema is required: %w", domain.ErrInvalidSchema)
	}
	for _, r := range roles {
		if _, ok := s.Lookup(r); !ok {
			return nil, fmt.Errorf("schema %q lacks role %s: %w", s.Entity(), r, domain.ErrInvalidSchema)
		}
	}
	return &Service{
		schema:   s,
		sessions: sessions,
		codec:    kvformat.Default(),
		logger:   zap.NewNop(),
	}, nil
}

// WithCodec sets the details payload codec.
func (s *Service) WithCodec(c *kvformat.Codec) *Service {
	if c != nil {
		s.codec = c
	}
	return s
}

// WithLogger sets the logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithSkipCounter sets the counter of dropped details segments.
func (s *Service) WithSkipCounter(c SkipCounter) *Service {
	s.skipped = c
	return s
}

// Schema returns the schema documents are built from.
func (s *Service) Schema() *schema.Schema { return s.schema }

// DocumentRef returns the index and document id the entry stored under key is written to.
func (s *Service) DocumentRef(key string) (indexName, id string) {
	return s.schema.IndexName(), index.DocumentID(s.schema.Entity(), key)
}

// Normalize loads the entry stored under key and normalizes it.
// A missing entry yields no operations and no error.
func (s *Service) Normalize(ctx context.Context, key string) ([]index.Upsert, error) {
	if s.sessions == nil {
		return nil, errors.New("normalizer has no record store")
	}

	sess, err := s.sessions.OpenSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			s.logger.Warn("close record store session", zap.String("key", key), zap.Error(cerr))
		}
	}()

	entry, err := sess.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get log entry %q: %w", key, err)
	}

	return s.NormalizeEntry(entry), nil
}

// NormalizeEntry builds the single upsert for entry. It does not read the store.
func (s *Service) NormalizeEntry(entry logentry.Entry) []index.Upsert {
	details, err := s.codec.DecodeReport(entry.Data())
	if err != nil {
		skipped := kvformat.Skipped(err)
		s.logger.Debug("dropped malformed details segments",
			zap.String("key", entry.Key()),
			zap.Int("skipped", len(skipped)),
			zap.Error(err),
		)
		if s.skipped != nil {
			s.skipped.Add(float64(len(skipped)))
		}
	}

	doc := index.Document{
		s.schema.Name(logentry.RoleKey):       entry.Key(),
		s.schema.Name(logentry.RoleType):      entry.Type(),
		s.schema.Name(logentry.RoleAuthor):    entry.Author(),
		s.schema.Name(logentry.RoleMessage):   entry.Message(),
		s.schema.Name(logentry.RoleExecution): entry.ExecutionTime(),
		s.schema.Name(logentry.RoleDate):      entry.CreatedAt(),
		s.schema.Name(logentry.RoleDetails):   details,
	}

	indexName, id := s.DocumentRef(entry.Key())
	return []index.Upsert{index.NewUpsert(indexName, id, doc)}
}
