package chi

import (
	"github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
)

// ErrorCode is a machine-readable error code in ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest         ErrorCode = "bad_request"
	ErrorCodeValidationFailed   ErrorCode = "validation_failed"
	ErrorCodeUnauthorized       ErrorCode = "unauthorized"
	ErrorCodeForbidden          ErrorCode = "forbidden"
	ErrorCodeNotFound           ErrorCode = "not_found"
	ErrorCodeMethodNotAllowed   ErrorCode = "method_not_allowed"
	ErrorCodeIndexNotFound      ErrorCode = "index_not_found"
	ErrorCodeNoIngestSource     ErrorCode = "no_ingest_source"
	ErrorCodeBackendUnavailable ErrorCode = "backend_unavailable"
	ErrorCodeNotImplemented     ErrorCode = "not_implemented"
	ErrorCodeInternalError      ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /search body. Size and PageNumber are pointers so
// a missing field can take its default while an explicit 0 is clamped.
type SearchRequest struct {
	SearchTerm string    `json:"searchTerm"`
	Pinned     []pin.Pin `json:"pinned"`
	Size       *int      `json:"size"`
	PageNumber *int      `json:"pageNumber"`
}

// SearchResponse is an assembled page.
type SearchResponse struct {
	PageNumber int                 `json:"pageNumber"`
	Size       int                 `json:"size"`
	Results    []document.Document `json:"results"`
	Count      int                 `json:"count"`
}

// IngestFailure describes one record the ingest call could not store.
type IngestFailure struct {
	Line  int    `json:"line"`
	ID    string `json:"id,omitempty"`
	Error string `json:"error"`
}

// IngestResponse summarizes an ingest call.
type IngestResponse struct {
	Ingested int             `json:"ingested"`
	Errors   bool            `json:"errors"`
	Skipped  int             `json:"skipped"`
	Failed   []IngestFailure `json:"failed"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
