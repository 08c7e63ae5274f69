package db

import (
	"errors"
	"fmt"
)

// Sentinel errors for backend operations.
var (
	ErrIndexNotFound = errors.New("db: index not found")
	ErrIndexExists   = errors.New("db: index already exists")
)

// Op constants name backend commands and endpoints for error context.
const (
	OpCreateIndex = "FT.CREATE"
	OpIndexInfo   = "FT.INFO"
	OpSearch      = "FT.SEARCH"
	OpJSONMGet    = "JSON.MGET"
	OpJSONSet     = "JSON.SET"
	OpPing        = "PING"

	OpMGet   = "_mget"
	OpQuery  = "_search"
	OpBulk   = "_bulk"
	OpHealth = "_cluster/health"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

// HTTPStatusError represents a non-2xx response from a backend HTTP call.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.URL == "" {
		return fmt.Sprintf("http status %d", e.StatusCode)
	}
	if e.Body == "" {
		return fmt.Sprintf("http %s returned status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("http %s returned status %d: %s", e.URL, e.StatusCode, e.Body)
}
