package middleware

import (
	"net/http"

	"github.com/benvon/mcp-edge-router/internal/origins"
	"github.com/rs/cors"
)

// AdminCORS lets allow-listed dashboards read the admin endpoints. Unlike the MCP routes,
// origins outside the policy get no CORS headers at all; there is no wildcard fallback.
func AdminCORS(source origins.Source) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowOriginFunc: func(origin string) bool {
			return source.Current().Allows(origin)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         600,
	})
	return c.Handler
}
