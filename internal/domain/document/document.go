package document

import (
	"encoding/json"
	"maps"
)

// Document is an opaque record held by the search backend.
type Document struct {
	id     string
	source map[string]any
}

// New creates a Document. The source map is copied.
func New(id string, source map[string]any) Document {
	return Document{id: id, source: maps.Clone(source)}
}

// ID returns the backend document id.
func (d Document) ID() string { return d.id }

// Source returns the stored record.
func (d Document) Source() map[string]any { return d.source }

// IsZero reports whether the document is empty.
func (d Document) IsZero() bool { return d.id == "" && d.source == nil }

// MarshalJSON renders the source record; a nil source becomes {}.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.source == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.source)
}

// Raw is an ingest-ready record: the document id and its JSON object body.
type Raw struct {
	ID   string
	Body json.RawMessage
}
