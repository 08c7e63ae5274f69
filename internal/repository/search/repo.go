package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pinsearch/internal/db"
	"github.com/kailas-cloud/pinsearch/internal/domain"
	"github.com/kailas-cloud/pinsearch/internal/domain/document"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	FetchByIDs(ctx context.Context, index string, ids []string) (map[string]db.Hit, error)
	SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

// Repo implements usecase/search.Repository over one index.
type Repo struct {
	store  store
	index  string
	fields []db.Field
}

// New creates a search repository bound to index, matching the term against fields.
func New(s store, index string, fields []db.Field) *Repo {
	return &Repo{store: s, index: index, fields: fields}
}

// Index returns the index the repository reads from.
func (r *Repo) Index() string { return r.index }

// FetchByIDs returns the documents that exist among ids, keyed by id.
func (r *Repo) FetchByIDs(ctx context.Context, ids []string) (map[string]document.Document, error) {
	hits, err := r.store.FetchByIDs(ctx, r.index, ids)
	if err != nil {
		return nil, fmt.Errorf("fetch %d ids from %s: %w", len(ids), r.index, mapErr(err))
	}

	out := make(map[string]document.Document, len(hits))
	for id, h := range hits {
		out[id] = document.New(h.ID, h.Source)
	}
	return out, nil
}

// SearchRanked returns up to limit relevance-ranked documents starting at offset,
// never including any id in excludeIDs.
func (r *Repo) SearchRanked(
	ctx context.Context, term string, excludeIDs []string, offset, limit int,
) ([]document.Document, error) {
	sr, err := r.store.SearchRanked(ctx, &db.RankedQuery{
		Index:      r.index,
		Term:       term,
		Fields:     r.fields,
		ExcludeIDs: excludeIDs,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, fmt.Errorf("ranked search %s: %w", r.index, mapErr(err))
	}
	if sr == nil {
		return nil, nil
	}

	docs := make([]document.Document, 0, len(sr.Hits))
	for _, h := range sr.Hits {
		docs = append(docs, document.New(h.ID, h.Source))
	}
	return docs, nil
}

func mapErr(err error) error {
	if errors.Is(err, db.ErrIndexNotFound) {
		return fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
	}
	return err
}
