package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/csvunion/internal/logging"
)

// APIKeyAuth rejects requests whose X-API-Key header does not match one of
// keys. With no keys configured every request passes.
//
// The merge endpoints fetch arbitrary locators on the caller's behalf, so any
// deployment reachable beyond localhost should set at least one key.
func APIKeyAuth(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			logger := logging.FromContext(r.Context())

			if key == "" {
				logger.Warn("auth: missing API key", "path", r.URL.Path, "ip", r.RemoteAddr)
				writeError(w, http.StatusUnauthorized, "AUTH001", "missing API key")
				return
			}
			if !validKey(key, keys) {
				logger.Warn("auth: invalid API key", "path", r.URL.Path, "ip", r.RemoteAddr)
				writeError(w, http.StatusForbidden, "AUTH002", "invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// validKey compares against every key in constant time.
func validKey(key string, keys []string) bool {
	valid := 0
	for _, k := range keys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return valid == 1
}
