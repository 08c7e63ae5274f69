package pinsearch

import (
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
)

// ProductID identifies a pinned document: a number, a string, or nothing.
// The zero value is the absent id, which never matches a document.
type ProductID struct {
	id pin.ProductID
}

// NumericID returns a numeric product id. It resolves to "P" + the number
// zero-padded to four digits.
func NumericID(n uint64) ProductID { return ProductID{id: pin.Numeric(n)} }

// StringID returns a string product id. Digit-only strings resolve like
// NumericID; anything else is used as-is.
func StringID(s string) ProductID { return ProductID{id: pin.String(s)} }

// Canonical returns the backend document id the pin resolves to, or "" when
// the id is absent.
func (p ProductID) Canonical() string { return pin.Normalize(p.id) }

// Pin forces a document to an absolute 1-based position in the result list.
type Pin struct {
	ProductID ProductID
	Position  int
}

// SearchRequest describes one result page.
type SearchRequest struct {
	// Term is matched against the configured search fields. Empty matches all.
	Term string
	Pins []Pin
	// Size is the page size. Zero uses 20; negative values clamp to 1. Sizes
	// above 1000, or pages ending past position 2^31-1, are ErrInvalidRequest.
	Size int
	// Page is the 1-based page number. Zero uses 1; negative values clamp to 1.
	Page int
}

// Document is a stored record.
type Document struct {
	ID     string
	Source map[string]any
}

// Decode converts a document's source record into T via JSON.
func Decode[T any](d Document) (T, error) {
	var out T
	raw, err := json.Marshal(d.Source)
	if err != nil {
		return out, fmt.Errorf("pinsearch: encode %s: %w", d.ID, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("pinsearch: decode %s: %w", d.ID, err)
	}
	return out, nil
}

// Page is an assembled result page. It never holds more than Size results
// and is not padded when the backend runs out of matches.
type Page struct {
	Number  int
	Size    int
	Results []Document
}

// Count returns the number of results on the page.
func (p *Page) Count() int { return len(p.Results) }

// IngestFailure is a record that could not be stored.
type IngestFailure struct {
	Line int
	// ID is empty when the line was not a JSON object.
	ID  string
	Err error
}

// IngestResult summarizes an Ingest call.
type IngestResult struct {
	// Ingested counts records the backend acknowledged, failed ones included.
	Ingested int
	Skipped  int
	Errors   bool
	Failed   []IngestFailure
}
