package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/logdex/internal/db"
	"github.com/kailas-cloud/logdex/internal/domain"
	dombatch "github.com/kailas-cloud/logdex/internal/domain/batch"
	"github.com/kailas-cloud/logdex/internal/domain/index"
	"github.com/kailas-cloud/logdex/internal/domain/index/schema"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	logpkg "github.com/kailas-cloud/logdex/internal/logger"
	healthuc "github.com/kailas-cloud/logdex/internal/usecase/health"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Indexer is the indexing use case consumed by the API.
type Indexer interface {
	Reindex(ctx context.Context, key string) (int, error)
	ReindexKeys(ctx context.Context, keys []string) ([]dombatch.Result, error)
	ReindexAll(ctx context.Context) (dombatch.Summary, error)
	Preview(ctx context.Context, key string) ([]index.Upsert, error)
	PreviewEntry(entry logentry.Entry) []index.Upsert
	Document(ctx context.Context, key string) (map[string]any, error)
	IsIndexed(ctx context.Context, key string) (bool, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server serves the logdex HTTP API.
type Server struct {
	indexing      Indexer
	health        HealthChecker
	schema        *schema.Schema
	mapping       *db.IndexDefinition
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. mapping is the index definition derived from s.
func NewServer(
	indexing Indexer,
	health HealthChecker,
	s *schema.Schema,
	mapping *db.IndexDefinition,
	logger *zap.Logger,
) *Server {
	srv := &Server{
		indexing: indexing,
		health:   health,
		schema:   s,
		mapping:  mapping,
		logger:   logger,
	}
	srv.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorResponseCodeLogNotFound),
		sentinelHandler(domain.ErrInvalidEntry, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrBatchTooLarge, http.StatusRequestEntityTooLarge, ErrorResponseCodeBatchTooLarge),
	}
	return srv
}

// ReindexLog handles POST /v1/logs/{key}/index.
func (s *Server) ReindexLog(w http.ResponseWriter, r *http.Request, key string) {
	n, err := s.indexing.Reindex(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReindexResponse{Key: key, Upserts: n})
}

// PreviewLog handles POST /v1/logs/{key}/preview.
func (s *Server) PreviewLog(w http.ResponseWriter, r *http.Request, key string) {
	ops, err := s.indexing.Preview(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, NormalizeResponse{Operations: operationsToAPI(ops)})
}

// GetDocument handles GET /v1/logs/{key}/document.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, key string) {
	doc, err := s.indexing.Document(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentResponse{Key: key, Document: doc})
}

// HeadDocument handles HEAD /v1/logs/{key}/document: 200 when indexed, 404 otherwise.
func (s *Server) HeadDocument(w http.ResponseWriter, r *http.Request, key string) {
	ok, err := s.indexing.IsIndexed(r.Context(), key)
	if err != nil {
		logpkg.FromContext(r.Context()).Warn("document exists check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ReindexBatch handles POST /v1/logs/index.
func (s *Server) ReindexBatch(w http.ResponseWriter, r *http.Request) {
	var req ReindexBatchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req.Keys) == 0 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "keys must not be empty")
		return
	}

	results, err := s.indexing.ReindexKeys(r.Context(), req.Keys)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	resp := ReindexBatchResponse{Items: make([]BatchResultItem, len(results))}
	var sum dombatch.Summary
	for i, res := range results {
		resp.Items[i] = batchResultToAPI(res)
		sum.Add(res)
	}
	resp.Summary = summaryToAPI(sum)
	writeJSON(w, http.StatusOK, resp)
}

// ReindexAll handles POST /v1/logs/index-all.
func (s *Server) ReindexAll(w http.ResponseWriter, r *http.Request) {
	sum, err := s.indexing.ReindexAll(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToAPI(sum))
}

// NormalizeEntry handles POST /v1/logs/normalize.
func (s *Server) NormalizeEntry(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	entry, err := logentry.New(
		req.Key, req.Type, req.Author, req.Message, req.ExecutionTime, req.CreatedAt, req.Data,
	)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, err.Error())
		return
	}

	ops := s.indexing.PreviewEntry(entry)
	writeJSON(w, http.StatusOK, NormalizeResponse{Operations: operationsToAPI(ops)})
}

// GetMapping handles GET /v1/mapping.
func (s *Server) GetMapping(w http.ResponseWriter, _ *http.Request) {
	roles := s.schema.Roles()
	fields := s.schema.Fields()
	resp := MappingResponse{
		Entity: s.schema.Entity(),
		Index:  s.schema.IndexName(),
		Fields: make([]MappingField, len(fields)),
	}
	for i, f := range fields {
		resp.Fields[i] = MappingField{
			Role:       string(roles[i]),
			Name:       f.Name(),
			Type:       string(f.FieldType()),
			Searchable: f.IsSearchable(),
			Sortable:   f.IsSortable(),
		}
	}
	if s.mapping != nil {
		resp.Create = s.mapping.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotFound,
		domain.ErrInvalidEntry,
		domain.ErrBatchTooLarge,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContext(r.Context())
	log.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}

func operationsToAPI(ops []index.Upsert) []UpsertOperation {
	out := make([]UpsertOperation, len(ops))
	for i := range ops {
		out[i] = UpsertOperation{
			Index: ops[i].Index,
			ID:    ops[i].ID,
			Doc:   ops[i].Doc,
		}
	}
	return out
}

func batchResultToAPI(r dombatch.Result) BatchResultItem {
	item := BatchResultItem{
		Key:     r.Key(),
		Status:  string(r.Status()),
		Upserts: r.Upserts(),
	}
	if r.Err() != nil {
		item.Error = &ErrorResponse{
			Code:    batchErrorCode(r.Err()),
			Message: safeDomainMessage(r.Err()),
		}
	}
	return item
}

func batchErrorCode(err error) ErrorResponseCode {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return ErrorResponseCodeLogNotFound
	case errors.Is(err, domain.ErrInvalidEntry):
		return ErrorResponseCodeValidationFailed
	default:
		return ErrorResponseCodeInternalError
	}
}

func summaryToAPI(s dombatch.Summary) BatchSummary {
	return BatchSummary{Indexed: s.Indexed, NotFound: s.NotFound, Failed: s.Failed}
}
