package db

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Field is a searchable field with an optional relevance boost ("title^3").
type Field struct {
	Name  string
	Boost float64
}

// ParseField parses "name" or "name^boost".
func ParseField(s string) (Field, error) {
	name, boostStr, hasBoost := strings.Cut(strings.TrimSpace(s), "^")
	if name == "" {
		return Field{}, fmt.Errorf("empty field name in %q", s)
	}
	if !hasBoost {
		return Field{Name: name, Boost: 1}, nil
	}
	boost, err := strconv.ParseFloat(boostStr, 64)
	if err != nil || boost <= 0 {
		return Field{}, fmt.Errorf("invalid boost in %q", s)
	}
	return Field{Name: name, Boost: boost}, nil
}

// ParseFields parses a list of field specs.
func ParseFields(specs []string) ([]Field, error) {
	out := make([]Field, 0, len(specs))
	for _, s := range specs {
		f, err := ParseField(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// String renders the field in Elasticsearch "name^boost" form.
func (f Field) String() string {
	if f.Boost == 0 || f.Boost == 1 {
		return f.Name
	}
	return f.Name + "^" + strconv.FormatFloat(f.Boost, 'f', -1, 64)
}

// RankedQuery is the input for a relevance-ranked page of hits.
type RankedQuery struct {
	Index      string
	Term       string
	Fields     []Field
	ExcludeIDs []string
	Offset     int
	Limit      int
}

// SearchResult is the output of a ranked search.
type SearchResult struct {
	Total int
	Hits  []Hit
}

// Hit is a single document returned by the backend.
type Hit struct {
	ID     string
	Score  float64
	Source map[string]any
}

// BulkItem is a document to index under an explicit id.
type BulkItem struct {
	ID     string
	Source json.RawMessage
}

// BulkItemResult is the backend's verdict for one BulkItem.
type BulkItemResult struct {
	ID  string
	Err error
}

// BulkResult is the output of a bulk write, one entry per submitted item, in order.
type BulkResult struct {
	Items []BulkItemResult
}

// HasErrors reports whether any item failed.
func (r *BulkResult) HasErrors() bool {
	for _, it := range r.Items {
		if it.Err != nil {
			return true
		}
	}
	return false
}
