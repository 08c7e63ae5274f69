// Package batch describes the outcome of a bulk ingest call.
package batch

// ItemStatus is the processing outcome of a single ingested record.
type ItemStatus string

// Item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of one NDJSON record.
type Result struct {
	id     string
	line   int
	status ItemStatus
	err    error
}

// NewOK creates a successful result.
func NewOK(id string, line int) Result { return Result{id: id, line: line, status: StatusOK} }

// NewError creates a failed result. id may be empty when the line never parsed.
func NewError(id string, line int, err error) Result {
	return Result{id: id, line: line, status: StatusError, err: err}
}

// ID returns the document id.
func (r Result) ID() string { return r.id }

// Line returns the 1-based source line.
func (r Result) Line() int { return r.line }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Summary aggregates an ingest call.
type Summary struct {
	// Ingested counts records the backend acknowledged, including item-level failures.
	Ingested int
	// Skipped counts blank lines.
	Skipped int
	Items   []Result
}

// HasErrors reports whether any record failed.
func (s *Summary) HasErrors() bool {
	for _, r := range s.Items {
		if r.status == StatusError {
			return true
		}
	}
	return false
}

// Failed returns the failed records in source order.
func (s *Summary) Failed() []Result {
	var out []Result
	for _, r := range s.Items {
		if r.status == StatusError {
			out = append(out, r)
		}
	}
	return out
}
