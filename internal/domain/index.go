package domain

import (
	"fmt"
	"regexp"
)

// DefaultIndex is the index used when a request names none.
const DefaultIndex = "products"

var indexNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_:-]+$`)

// ValidateIndexName checks an index name: ^[a-zA-Z0-9_:-]+$, 1-128 chars.
func ValidateIndexName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: index name is required", ErrInvalidRequest)
	}
	if len(name) > 128 {
		return fmt.Errorf("%w: index name too long (max 128)", ErrInvalidRequest)
	}
	if !indexNameRegex.MatchString(name) {
		return fmt.Errorf("%w: index name must be alphanumeric with underscores, colons and hyphens", ErrInvalidRequest)
	}
	return nil
}
