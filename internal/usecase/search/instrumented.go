package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/logger"
	"github.com/kailas-cloud/pinsearch/internal/metrics"
)

// Op labels for backend metrics.
const (
	opFetchByIDs   = "fetch_by_ids"
	opSearchRanked = "search_ranked"
)

// InstrumentedRepository wraps Repository with backend metrics and debug logging.
type InstrumentedRepository struct {
	inner   Repository
	backend string
}

// NewInstrumentedRepository wraps repo; backend labels the metrics ("elasticsearch", "redis").
func NewInstrumentedRepository(repo Repository, backend string) *InstrumentedRepository {
	return &InstrumentedRepository{inner: repo, backend: backend}
}

// FetchByIDs delegates to the inner repository and records the call.
func (r *InstrumentedRepository) FetchByIDs(
	ctx context.Context, ids []string,
) (map[string]document.Document, error) {
	start := time.Now()
	docs, err := r.inner.FetchByIDs(ctx, ids)
	metrics.ObserveBackend(r.backend, opFetchByIDs, start, err)

	logger.FromContext(ctx).Debug("Backend fetch by ids",
		zap.String("backend", r.backend),
		zap.Int("requested", len(ids)),
		zap.Int("found", len(docs)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return docs, err
}

// SearchRanked delegates to the inner repository and records the call.
func (r *InstrumentedRepository) SearchRanked(
	ctx context.Context, term string, excludeIDs []string, offset, limit int,
) ([]document.Document, error) {
	start := time.Now()
	docs, err := r.inner.SearchRanked(ctx, term, excludeIDs, offset, limit)
	metrics.ObserveBackend(r.backend, opSearchRanked, start, err)

	logger.FromContext(ctx).Debug("Backend ranked search",
		zap.String("backend", r.backend),
		zap.Int("offset", offset),
		zap.Int("limit", limit),
		zap.Int("excluded", len(excludeIDs)),
		zap.Int("returned", len(docs)),
		zap.Duration("duration", time.Since(start)),
		zap.Error(err),
	)
	return docs, err
}
