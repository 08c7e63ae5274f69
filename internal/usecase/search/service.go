package search

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	"github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/domain/page"
	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
	"github.com/kailas-cloud/pinsearch/internal/logger"
	"github.com/kailas-cloud/pinsearch/internal/metrics"
)

// Service assembles result pages that mix pinned documents into ranked results.
type Service struct {
	repo Repository
}

// New creates a search service.
func New(repo Repository) *Service {
	return &Service{repo: repo}
}

// Search builds the requested page with at most two backend reads: one lookup
// of the pinned ids and one ranked query that skips them.
//
// A failed pin lookup degrades to a page without pins. A failed ranked query
// fails the request.
func (s *Service) Search(ctx context.Context, req *page.Request) (*page.Page, error) {
	ctx = logger.With(ctx, zap.Int("page", req.Number()), zap.Int("size", req.Size()))
	log := logger.FromContext(ctx)
	geo := req.Geometry()
	pinIDs := pin.IDs(req.Pins())

	resolved := s.fetchPinned(ctx, pinIDs)
	slots, pinnedBefore := classify(req.Pins(), resolved, geo)

	var ranked []document.Document
	needed := max(0, req.Size()-len(slots))
	if needed > 0 {
		from := max(0, (geo.Start-1)-pinnedBefore)
		var err error
		ranked, err = s.repo.SearchRanked(ctx, req.Term(), pinIDs, from, needed)
		if err != nil {
			if errors.Is(err, domain.ErrIndexNotFound) {
				return nil, fmt.Errorf("ranked search: %w", err)
			}
			return nil, fmt.Errorf("%w: ranked search: %w", domain.ErrBackendUnavailable, err)
		}
	}

	results := merge(geo, slots, ranked)

	log.Debug("Page assembled",
		zap.Int("pins_requested", len(req.Pins())),
		zap.Int("pins_resolved", len(resolved)),
		zap.Int("pinned_before", pinnedBefore),
		zap.Int("pinned_in_page", len(slots)),
		zap.Int("ranked", len(ranked)),
		zap.Int("count", len(results)),
	)

	return &page.Page{
		Number:  req.Number(),
		Size:    req.Size(),
		Results: results,
	}, nil
}

// fetchPinned looks up the pinned ids in one call. Errors are logged and
// counted, and the page is built as if no pin resolved.
func (s *Service) fetchPinned(ctx context.Context, ids []string) map[string]document.Document {
	if len(ids) == 0 {
		return nil
	}

	docs, err := s.repo.FetchByIDs(ctx, ids)
	if err != nil {
		metrics.PinFetchFailuresTotal.Inc()
		logger.FromContext(ctx).Warn("Pinned lookup failed, serving page without pins",
			zap.Int("pins", len(ids)),
			zap.Error(err),
		)
		return nil
	}
	return docs
}

// classify places resolved pins against the page. It returns the in-page
// slots keyed by absolute position and the number of distinct resolved
// positions before the page. The first listed resolved pin claims a position.
func classify(
	pins []pin.Normalized, resolved map[string]document.Document, geo page.Geometry,
) (slots map[int]document.Document, before int) {
	slots = make(map[int]document.Document)
	claimed := make(map[int]struct{}, len(pins))

	for _, p := range pins {
		doc, ok := resolved[p.ID]
		if !ok || p.ID == "" {
			metrics.PinsPlacedTotal.WithLabelValues("unresolved").Inc()
			continue
		}
		if _, taken := claimed[p.Position]; taken {
			metrics.PinsPlacedTotal.WithLabelValues("shadowed").Inc()
			continue
		}
		claimed[p.Position] = struct{}{}

		switch {
		case p.Position < geo.Start:
			before++
			metrics.PinsPlacedTotal.WithLabelValues("before_page").Inc()
		case geo.Contains(p.Position):
			slots[p.Position] = doc
			metrics.PinsPlacedTotal.WithLabelValues("placed").Inc()
		default:
			metrics.PinsPlacedTotal.WithLabelValues("after_page").Inc()
		}
	}
	return slots, before
}

// merge walks the page positions, emitting the pin at each position or else
// the next ranked document. It stops at the first unpinned position with no
// ranked document left.
func merge(geo page.Geometry, slots map[int]document.Document, ranked []document.Document) []document.Document {
	out := make([]document.Document, 0, min(geo.Len(), len(slots)+len(ranked)))
	next := 0
	for pos := geo.Start; pos <= geo.End; pos++ {
		if doc, ok := slots[pos]; ok {
			out = append(out, doc)
			continue
		}
		if next >= len(ranked) {
			break
		}
		out = append(out, ranked[next])
		next++
	}
	return out
}
