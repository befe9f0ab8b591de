package middleware

import (
	"net/http"

	"github.com/benvon/mcp-edge-router/internal/request"
)

const (
	// DefaultMaxRequestSize is the default maximum request body size (4MB). JSON-RPC batches
	// carrying screenshots or page content can be large.
	DefaultMaxRequestSize int64 = 4 << 20
)

// MaxRequestSize limits request bodies. Requests declaring a larger Content-Length are
// rejected before the agent sees them; chunked bodies are cut off at maxBytes and the reader
// fails with *http.MaxBytesError, which the proxy agent answers with 413.
func MaxRequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				request.Reject(r.Context(), request.RejectTooLarge)
				http.Error(w, "Request Entity Too Large", http.StatusRequestEntityTooLarge)
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
