package middleware

import (
	"io"
	"net/http"
)

// DefaultMaxBodyBytes fits the largest muscle map page an admin can save.
const DefaultMaxBodyBytes = 1 << 20

// DrainAndCloseRequest caps the request body at maxBodyBytes, and drains and closes
// whatever the handler left unread, so the connection can be reused.
func DrainAndCloseRequest(maxBodyBytes int64) func(next http.Handler) http.Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
			}
			next.ServeHTTP(w, r)
			if r.Body != nil {
				_, _ = io.Copy(io.Discard, r.Body)
				_ = r.Body.Close()
			}
		})
	}
}
