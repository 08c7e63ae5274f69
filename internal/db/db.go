package db

import (
	"context"
	"time"
)

// Store is the search backend facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	Fetcher
	RankedSearcher
	BulkIndexer
	IndexManager
	Name() string
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Fetcher looks documents up by id in a single round-trip.
type Fetcher interface {
	// FetchByIDs returns the subset of ids that exist. Missing ids are not an error.
	FetchByIDs(ctx context.Context, index string, ids []string) (map[string]Hit, error)
}

// RankedSearcher runs relevance-ranked queries with id exclusion and from/size paging.
type RankedSearcher interface {
	SearchRanked(ctx context.Context, q *RankedQuery) (*SearchResult, error)
}

// BulkIndexer writes many documents in one request.
type BulkIndexer interface {
	BulkIndex(ctx context.Context, index string, items []BulkItem) (*BulkResult, error)
}

// IndexManager prepares the search index before writes.
type IndexManager interface {
	// EnsureIndex creates the index if it is missing. Backends that create
	// indexes implicitly on first write return nil.
	EnsureIndex(ctx context.Context, def *IndexDefinition) error
}
