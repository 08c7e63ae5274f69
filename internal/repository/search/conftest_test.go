package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	fetchByIDsFn   func(ctx context.Context, index string, ids []string) (map[string]db.Hit, error)
	searchRankedFn func(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error)
}

func (m *mockStore) FetchByIDs(ctx context.Context, index string, ids []string) (map[string]db.Hit, error) {
	if m.fetchByIDsFn != nil {
		return m.fetchByIDsFn(ctx, index, ids)
	}
	return map[string]db.Hit{}, nil
}

func (m *mockStore) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if m.searchRankedFn != nil {
		return m.searchRankedFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, "products", []db.Field{{Name: "title", Boost: 3}})
	return repo, ms
}
