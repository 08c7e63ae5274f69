package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest signals malformed caller input that cannot be clamped.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrBackendUnavailable signals a backend call that failed the request.
	ErrBackendUnavailable = errors.New("search backend unavailable")
	// ErrIndexNotFound signals a missing search index.
	ErrIndexNotFound = errors.New("index not found")
	// ErrNoIngestSource signals an ingest call with neither a body nor a data file.
	ErrNoIngestSource = errors.New("no ingest source")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// LineError describes a malformed NDJSON line.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %s: %v", e.Line, ErrInvalidRequest.Error(), e.Err)
}

func (e *LineError) Unwrap() []error { return []error{ErrInvalidRequest, e.Err} }

// NewLineError wraps err with the 1-based line number it occurred on.
func NewLineError(line int, err error) error {
	return &LineError{Line: line, Err: err}
}
