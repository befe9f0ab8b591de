package middleware

import (
	"net/http"

	logpkg "github.com/benvon/mcp-edge-router/internal/logger"
	"github.com/benvon/mcp-edge-router/internal/request"
	"go.uber.org/zap"
)

// Audit logs requests the edge rejected on its own: oversized bodies and rate limit
// violations. Rejections are recorded with request.Reject by MaxRequestSize, RateLimit and
// the proxy agent, so a 413 or 429 passed through from the backend is not audited. It must
// wrap those middlewares.
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, rejected := request.TrackRejection(r.Context())
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r.WithContext(ctx))

			event := rejected()
			if event == "" {
				return
			}
			logger.Warn(event,
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("origin", logpkg.SanitizeOrigin(request.Origin(r))),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), 64)),
				zap.Int("status_code", wrapped.statusCode),
				zap.Int64("content_length", r.ContentLength),
			)
		})
	}
}
