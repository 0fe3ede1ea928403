package chi

import "time"

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeLogNotFound      ErrorResponseCode = "log_not_found"
	ErrorResponseCodeBatchTooLarge    ErrorResponseCode = "batch_too_large"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// ReindexResponse is returned by POST /v1/logs/{key}/index.
type ReindexResponse struct {
	Key     string `json:"key"`
	Upserts int    `json:"upserts"`
}

// DocumentResponse is returned by GET /v1/logs/{key}/document.
type DocumentResponse struct {
	Key      string         `json:"key"`
	Document map[string]any `json:"document"`
}

// ReindexBatchRequest is the body of POST /v1/logs/index.
type ReindexBatchRequest struct {
	Keys []string `json:"keys"`
}

// BatchResultItem is the outcome of one key in a batch reindex.
type BatchResultItem struct {
	Key     string         `json:"key"`
	Status  string         `json:"status"`
	Upserts int            `json:"upserts,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}

// BatchSummary counts batch outcomes.
type BatchSummary struct {
	Indexed  int `json:"indexed"`
	NotFound int `json:"not_found"`
	Failed   int `json:"failed"`
}

// ReindexBatchResponse is returned by POST /v1/logs/index.
type ReindexBatchResponse struct {
	Items   []BatchResultItem `json:"items"`
	Summary BatchSummary      `json:"summary"`
}

// NormalizeRequest carries a log entry to normalize without storing it.
type NormalizeRequest struct {
	Key           string    `json:"key"`
	Type          string    `json:"type"`
	Author        string    `json:"author,omitempty"`
	Message       string    `json:"message,omitempty"`
	ExecutionTime int64     `json:"execution_time"`
	CreatedAt     time.Time `json:"created_at"`
	Data          string    `json:"data,omitempty"`
}

// UpsertOperation is the wire form of one index operation.
type UpsertOperation struct {
	Index string         `json:"index"`
	ID    string         `json:"id"`
	Doc   map[string]any `json:"doc"`
}

// NormalizeResponse lists the operations a normalization produced.
type NormalizeResponse struct {
	Operations []UpsertOperation `json:"operations"`
}

// MappingField describes one registered index field.
type MappingField struct {
	Role       string `json:"role"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Searchable bool   `json:"searchable"`
	Sortable   bool   `json:"sortable"`
}

// MappingResponse is returned by GET /v1/mapping.
type MappingResponse struct {
	Entity string         `json:"entity"`
	Index  string         `json:"index"`
	Fields []MappingField `json:"fields"`
	Create string         `json:"create"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
