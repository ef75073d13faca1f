package rest

import (
	"net/http"
)

// HeaderAPIKey carries the caller's API key.
const HeaderAPIKey = "x-api-key"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyMiddleware returns a middleware that validates the x-api-key header.
// Unknown or missing keys get 403 {"error":"Forbidden"}.
// If apiKeys is empty, authentication is disabled (pass-through).
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	validKeys := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			validKeys[k] = struct{}{}
		}
	}

	return func(next http.Handler) http.Handler {
		// Auth disabled, pass everything through
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := validKeys[r.Header.Get(HeaderAPIKey)]; !ok {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
