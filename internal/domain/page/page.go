// Package page holds the page request, its geometry and the assembled page.
package page

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/pinsearch/internal/domain"
	"github.com/kailas-cloud/pinsearch/internal/domain/document"
	"github.com/kailas-cloud/pinsearch/internal/domain/pin"
)

// Request defaults and limits.
const (
	DefaultSize   = 20
	DefaultNumber = 1

	// MaxSize caps the page size.
	MaxSize = 1000
	// MaxPosition caps the last absolute position a page may cover.
	MaxPosition = math.MaxInt32
)

// Request is a clamped search page request with normalized pins.
type Request struct {
	term   string
	pins   []pin.Normalized
	size   int
	number int
}

// NewRequest clamps size and number to at least 1 and normalizes pins. A size
// above MaxSize, or a page ending past MaxPosition, is ErrInvalidRequest.
func NewRequest(term string, pins []pin.Pin, size, number int) (Request, error) {
	size, number = max(1, size), max(1, number)
	if size > MaxSize {
		return Request{}, fmt.Errorf("%w: size %d exceeds %d", domain.ErrInvalidRequest, size, MaxSize)
	}
	if number > MaxPosition/size {
		return Request{}, fmt.Errorf("%w: page %d of size %d ends past position %d",
			domain.ErrInvalidRequest, number, size, MaxPosition)
	}
	return Request{
		term:   term,
		pins:   pin.NormalizeAll(pins),
		size:   size,
		number: number,
	}, nil
}

// Term returns the search term (may be empty).
func (r *Request) Term() string { return r.term }

// Pins returns the normalized pins in caller order.
func (r *Request) Pins() []pin.Normalized { return r.pins }

// Size returns the page size.
func (r *Request) Size() int { return r.size }

// Number returns the 1-based page number.
func (r *Request) Number() int { return r.number }

// Geometry returns the absolute position range the page covers.
func (r *Request) Geometry() Geometry {
	return Geometry{
		Start: (r.number-1)*r.size + 1,
		End:   r.number * r.size,
	}
}

// Geometry is the inclusive 1-based range [Start, End] of a page over the
// combined pinned and ranked ordering.
type Geometry struct {
	Start int
	End   int
}

// Contains reports whether pos falls inside the page.
func (g Geometry) Contains(pos int) bool { return pos >= g.Start && pos <= g.End }

// Len returns the number of positions on the page.
func (g Geometry) Len() int { return g.End - g.Start + 1 }

// Page is an assembled result page.
type Page struct {
	Number  int
	Size    int
	Results []document.Document
}

// Count returns the number of emitted documents.
func (p *Page) Count() int { return len(p.Results) }
