package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

// EnsureIndex creates the FT index over the JSON keyspace of def.Name if missing.
// The store owns naming: the index name, key prefix and __id tag field are
// derived from def.Name, so callers only describe the searchable fields.
func (s *Store) EnsureIndex(ctx context.Context, def *db.IndexDefinition) error {
	ft, err := s.storeDefinition(def)
	if err != nil {
		return err
	}

	exists, err := s.indexExists(ctx, ft.Name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	args, err := buildCreateArgs(ft)
	if err != nil {
		return err
	}
	cmd := s.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return &db.Error{Op: db.OpCreateIndex, Err: fmt.Errorf("%s: %w", ft, err)}
	}
	return nil
}

func (s *Store) storeDefinition(def *db.IndexDefinition) (*db.IndexDefinition, error) {
	b := db.NewIndex(s.ftIndex(def.Name)).
		OnJSON().
		Prefix(s.keyspace(def.Name)).
		TagWithOpts("$."+idField, idField, idSeparator, true)
	for _, f := range def.Fields {
		if f.Alias == idField {
			continue
		}
		switch f.Type {
		case db.IndexFieldText:
			b.Text(f.Name, f.Alias, f.Weight)
		case db.IndexFieldNumeric:
			b.Numeric(f.Name)
		case db.IndexFieldTag:
			b.TagWithOpts(f.Name, f.Alias, f.TagSeparator, f.TagCaseSensitive)
		}
	}
	return b.Build()
}

// indexExists probes index existence via FT.INFO; "unknown index name" means absent.
func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	cmd := s.b().Arbitrary("FT.INFO").Args(name).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") || isRedisErr(err, "no such index") {
			return false, nil
		}
		return false, &db.Error{Op: db.OpIndexInfo, Err: err}
	}
	return true, nil
}

func buildCreateArgs(idx *db.IndexDefinition) ([]string, error) {
	if idx.Name == "" {
		return nil, errors.New("index name is required")
	}
	if len(idx.Fields) == 0 {
		return nil, errors.New("at least one field is required")
	}

	args := []string{idx.Name}

	storage := idx.StorageType
	if storage == "" {
		storage = db.StorageHash
	}
	args = append(args, "ON", string(storage))

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}

	args = append(args, "SCHEMA")

	for i := range idx.Fields {
		fieldArgs, err := buildFieldArgs(&idx.Fields[i])
		if err != nil {
			return nil, err
		}
		args = append(args, fieldArgs...)
	}

	return args, nil
}

func buildFieldArgs(f *db.IndexField) ([]string, error) {
	if f.Name == "" {
		return nil, errors.New("field name is required")
	}

	args := []string{f.Name}

	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case db.IndexFieldNumeric:
		args = append(args, "NUMERIC")

	case db.IndexFieldText:
		args = append(args, "TEXT")
		if f.Weight > 0 && f.Weight != 1 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.Weight, 'f', -1, 64))
		}

	case db.IndexFieldTag:
		args = append(args, "TAG")
		if f.TagSeparator != "" {
			args = append(args, "SEPARATOR", f.TagSeparator)
		}
		if f.TagCaseSensitive {
			args = append(args, "CASESENSITIVE")
		}

	default:
		return nil, errors.New("unknown field type")
	}

	return args, nil
}
