package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// Keys holds the API keys accepted by BearerAuthMiddleware. Admin keys open
// every route; search keys only open POST /search, so a storefront can query
// without being able to ingest.
type Keys struct {
	Admin  []string
	Search []string
}

type scope int

const (
	scopeNone scope = iota
	scopeSearch
	scopeAdmin
)

// publicPaths are served without a key so probes and scrapers need none.
var publicPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// searchPaths accept search-scoped keys. Everything else needs an admin key.
var searchPaths = map[string]bool{
	"/search": true,
}

// BearerAuthMiddleware checks "Authorization: Bearer <key>" against keys.
// With no non-empty keys configured it passes every request through.
func BearerAuthMiddleware(keys Keys) func(http.Handler) http.Handler {
	admin, search := nonEmpty(keys.Admin), nonEmpty(keys.Search)

	return func(next http.Handler) http.Handler {
		if len(admin)+len(search) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if publicPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			auth := r.Header.Get("Authorization")
			if auth == "" {
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "missing authorization header")
				return
			}
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok {
				writeError(w, http.StatusUnauthorized,
					ErrorCodeUnauthorized, "authorization header must use Bearer scheme")
				return
			}

			switch scopeOf(strings.TrimSpace(token), admin, search) {
			case scopeAdmin:
			case scopeSearch:
				if !searchPaths[r.URL.Path] {
					writeError(w, http.StatusForbidden, ErrorCodeForbidden, "api key is limited to search")
					return
				}
			default:
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func scopeOf(token string, admin, search [][]byte) scope {
	switch {
	case matchesAny(token, admin):
		return scopeAdmin
	case matchesAny(token, search):
		return scopeSearch
	default:
		return scopeNone
	}
}

// matchesAny compares in constant time per key.
func matchesAny(token string, keys [][]byte) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare([]byte(token), k)
	}
	return found == 1
}

func nonEmpty(keys []string) [][]byte {
	out := make([][]byte, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, []byte(k))
		}
	}
	return out
}
