package search

import (
	"context"

	"github.com/kailas-cloud/pinsearch/internal/domain/document"
)

// Repository defines the storage contract for page assembly.
type Repository interface {
	// FetchByIDs returns the documents that exist among ids, keyed by id.
	FetchByIDs(ctx context.Context, ids []string) (map[string]document.Document, error)

	// SearchRanked returns up to limit ranked documents starting at offset,
	// skipping every id in excludeIDs.
	SearchRanked(
		ctx context.Context, term string, excludeIDs []string, offset, limit int,
	) ([]document.Document, error)
}
