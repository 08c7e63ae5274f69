package ingest

import (
	"context"

	domdoc "github.com/kailas-cloud/pinsearch/internal/domain/document"
)

// Repository writes ingested documents.
type Repository interface {
	EnsureIndex(ctx context.Context, index string) error
	// Save returns one error per doc, in order, nil on success. A non-nil
	// second value means the whole batch failed.
	Save(ctx context.Context, index string, docs []domdoc.Raw) ([]error, error)
}
