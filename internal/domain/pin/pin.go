// Package pin models caller-supplied pins and canonicalizes their document ids.
package pin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDPrefix is prepended to numeric product ids.
const IDPrefix = "P"

// minDigits is the zero-padded width of a numeric id.
const minDigits = 4

// Kind tags which variant a ProductID holds.
type Kind uint8

// ProductID variants.
const (
	KindAbsent Kind = iota
	KindNumeric
	KindString
	KindInvalid
)

// ProductID is a pin document identifier: numeric, string, or absent.
type ProductID struct {
	kind Kind
	num  uint64
	str  string
}

// Numeric returns a numeric ProductID.
func Numeric(n uint64) ProductID { return ProductID{kind: KindNumeric, num: n} }

// String returns a string ProductID. Digit-only strings stay strings here;
// Normalize treats them as numbers.
func String(s string) ProductID { return ProductID{kind: KindString, str: s} }

// Absent returns the null ProductID.
func Absent() ProductID { return ProductID{} }

// Kind returns the variant tag.
func (id ProductID) Kind() Kind { return id.kind }

// UnmarshalJSON accepts a JSON number, string or null.
func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*id = Absent()
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("product id: %w", err)
		}
		*id = String(s)
		return nil
	case data[0] == '-' || (data[0] >= '0' && data[0] <= '9'):
		n, err := strconv.ParseUint(string(data), 10, 64)
		if err != nil {
			// negative, fractional or out of range: keep the request, never match
			*id = ProductID{kind: KindInvalid, str: string(data)}
			return nil
		}
		*id = Numeric(n)
		return nil
	default:
		if !json.Valid(data) {
			return fmt.Errorf("product id: invalid JSON %q", data)
		}
		*id = ProductID{kind: KindInvalid, str: string(data)}
		return nil
	}
}

// MarshalJSON renders the id in its original shape.
func (id ProductID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case KindNumeric:
		return []byte(strconv.FormatUint(id.num, 10)), nil
	case KindString:
		return json.Marshal(id.str)
	default:
		return []byte("null"), nil
	}
}

// Normalize returns the canonical backend id for a ProductID.
// Numeric ids (and digit-only strings) become "P" + at least four digits;
// other strings pass through; absent and invalid ids map to "".
func Normalize(id ProductID) string {
	switch id.kind {
	case KindNumeric:
		return formatDigits(strconv.FormatUint(id.num, 10))
	case KindString:
		if isDigits(id.str) {
			return formatDigits(id.str)
		}
		return id.str
	default:
		return ""
	}
}

// formatDigits pads a digit string to minDigits after dropping leading zeros.
// Works on the text so ids wider than uint64 are not truncated.
func formatDigits(digits string) string {
	digits = strings.TrimLeft(digits, "0")
	if len(digits) < minDigits {
		digits = strings.Repeat("0", minDigits-len(digits)) + digits
	}
	return IDPrefix + digits
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Pin forces a document to an absolute 1-based result position.
type Pin struct {
	ProductID ProductID `json:"productId"`
	Position  int       `json:"pinPosition"`
}

// Normalized is a pin whose id has been canonicalized.
type Normalized struct {
	ID       string
	Position int
}

// NormalizeAll canonicalizes pins in input order, discarding pins with a
// non-positive position. Sentinel ids are kept so their positions stay
// visible to the caller but they never reach the backend.
func NormalizeAll(pins []Pin) []Normalized {
	out := make([]Normalized, 0, len(pins))
	for _, p := range pins {
		if p.Position < 1 {
			continue
		}
		out = append(out, Normalized{ID: Normalize(p.ProductID), Position: p.Position})
	}
	return out
}

// IDs returns the distinct non-sentinel ids of pins, in first-seen order.
func IDs(pins []Normalized) []string {
	seen := make(map[string]struct{}, len(pins))
	ids := make([]string, 0, len(pins))
	for _, p := range pins {
		if p.ID == "" {
			continue
		}
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		ids = append(ids, p.ID)
	}
	return ids
}
