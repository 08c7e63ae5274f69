package pinsearch

import "github.com/kailas-cloud/pinsearch/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidRequest     = domain.ErrInvalidRequest
	ErrBackendUnavailable = domain.ErrBackendUnavailable
	ErrIndexNotFound      = domain.ErrIndexNotFound
	ErrNoIngestSource     = domain.ErrNoIngestSource
)
