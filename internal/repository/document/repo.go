package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/pinsearch/internal/db"
	"github.com/kailas-cloud/pinsearch/internal/domain"
	domdoc "github.com/kailas-cloud/pinsearch/internal/domain/document"
)

// store is the consumer interface for document writes (ISP).
type store interface {
	BulkIndex(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error)
	EnsureIndex(ctx context.Context, def *db.IndexDefinition) error
}

// Repo implements usecase/ingest.Repository.
type Repo struct {
	store  store
	fields []db.Field
}

// New creates a document repository. fields become weighted TEXT fields of the index.
func New(s store, fields []db.Field) *Repo {
	return &Repo{store: s, fields: fields}
}

// EnsureIndex makes sure index exists with the searchable fields.
func (r *Repo) EnsureIndex(ctx context.Context, index string) error {
	if err := r.store.EnsureIndex(ctx, IndexDefinition(index, r.fields)); err != nil {
		return fmt.Errorf("ensure index %s: %w", index, err)
	}
	return nil
}

// IndexDefinition describes index as JSON documents with one TEXT field per search field.
func IndexDefinition(index string, fields []db.Field) *db.IndexDefinition {
	def := &db.IndexDefinition{Name: index, StorageType: db.StorageJSON}
	for _, f := range fields {
		def.Fields = append(def.Fields, db.IndexField{
			Name:   "$." + f.Name,
			Alias:  f.Name,
			Type:   db.IndexFieldText,
			Weight: f.Boost,
		})
	}
	return def
}

// Save bulk-indexes docs. The returned slice holds one entry per doc, in order,
// nil on success. A non-nil error means the whole batch failed.
func (r *Repo) Save(ctx context.Context, index string, docs []domdoc.Raw) ([]error, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	items := make([]db.BulkItem, len(docs))
	for i, d := range docs {
		items[i] = db.BulkItem{ID: d.ID, Source: d.Body}
	}

	res, err := r.store.BulkIndex(ctx, index, items)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			err = fmt.Errorf("%w: %w", domain.ErrIndexNotFound, err)
		}
		return nil, fmt.Errorf("bulk index %d docs into %s: %w", len(docs), index, err)
	}
	if len(res.Items) != len(docs) {
		return nil, fmt.Errorf("bulk index %s: got %d results for %d docs", index, len(res.Items), len(docs))
	}

	errs := make([]error, len(docs))
	for i, it := range res.Items {
		errs[i] = it.Err
	}
	return errs, nil
}
