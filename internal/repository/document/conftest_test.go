package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	bulkIndexFn   func(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error)
	ensureIndexFn func(ctx context.Context, def *db.IndexDefinition) error
}

func (m *mockStore) BulkIndex(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	if m.bulkIndexFn != nil {
		return m.bulkIndexFn(ctx, index, items)
	}
	res := &db.BulkResult{Items: make([]db.BulkItemResult, len(items))}
	for i, it := range items {
		res.Items[i].ID = it.ID
	}
	return res, nil
}

func (m *mockStore) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.ensureIndexFn != nil {
		return m.ensureIndexFn(ctx, def)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms, []db.Field{{Name: "title", Boost: 3}, {Name: "description", Boost: 1}})
	return repo, ms
}
