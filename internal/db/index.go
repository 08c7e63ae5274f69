package db

import (
	"errors"
	"fmt"
	"regexp"
)

// StorageType is the document layout an FT index reads from.
type StorageType string

const (
	StorageHash StorageType = "HASH"
	StorageJSON StorageType = "JSON"
)

// IndexFieldType enumerates schema field kinds.
type IndexFieldType int

const (
	IndexFieldNumeric IndexFieldType = iota
	IndexFieldTag
	IndexFieldText
)

// IndexField is one schema entry. Name is the document path ($.title for JSON
// storage); Alias is what queries refer to.
type IndexField struct {
	Name  string
	Alias string
	Type  IndexFieldType

	// Weight boosts TEXT matches; 0 and 1 both mean unboosted.
	Weight float64

	TagSeparator     string
	TagCaseSensitive bool
}

// key is the name queries use for the field.
func (f *IndexField) key() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// IndexDefinition describes a search index. Elasticsearch creates indices on
// first write and only looks at Name; the Redis store turns the whole
// definition into FT.CREATE.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string
	Fields      []IndexField
}

// Validate checks the definition before it is sent to a backend.
func (idx *IndexDefinition) Validate() error {
	switch {
	case idx.Name == "":
		return errors.New("index name is required")
	case !IsValidIdentifier(idx.Name):
		return fmt.Errorf("index name %q contains invalid characters", idx.Name)
	case len(idx.Fields) == 0:
		return fmt.Errorf("index %s: at least one field is required", idx.Name)
	}

	seen := make(map[string]struct{}, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("index %s: field %d has no name", idx.Name, i)
		}
		k := f.key()
		if _, dup := seen[k]; dup {
			return fmt.Errorf("index %s: duplicate field name %s", idx.Name, k)
		}
		seen[k] = struct{}{}

		if f.Type == IndexFieldText && f.Weight < 0 {
			return fmt.Errorf("index %s: field %s has negative weight %g", idx.Name, k, f.Weight)
		}
	}
	return nil
}

var identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// IsValidIdentifier reports whether s is safe to use as an index or key name.
func IsValidIdentifier(s string) bool {
	return identifierRe.MatchString(s)
}
