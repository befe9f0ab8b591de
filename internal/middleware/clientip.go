package middleware

import (
	"net/http"

	"github.com/benvon/mcp-edge-router/internal/request"
)

// ClientIP resolves the client address once per request for logging and rate limiting.
// X-Forwarded-For and X-Real-IP are honoured only with trustProxy, i.e. when a proxy in front
// of the router overwrites them; otherwise the connection's remote IP is used.
func ClientIP(trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := request.RemoteIP(r)
			if trustProxy {
				if fwd := request.ForwardedIP(r); fwd != "" {
					ip = fwd
				}
			}
			next.ServeHTTP(w, r.WithContext(request.WithClientIP(r.Context(), ip)))
		})
	}
}
