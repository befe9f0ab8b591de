// Package cors holds the CORS options record handed to MCP endpoints.
package cors

import (
	"net/http"
	"strconv"
	"strings"
)

// Header names written by Apply.
const (
	HeaderAllowOrigin   = "Access-Control-Allow-Origin"
	HeaderAllowHeaders  = "Access-Control-Allow-Headers"
	HeaderAllowMethods  = "Access-Control-Allow-Methods"
	HeaderExposeHeaders = "Access-Control-Expose-Headers"
	HeaderMaxAge        = "Access-Control-Max-Age"
)

// Options is the per-request CORS policy. Only Origin varies between requests.
type Options struct {
	Origin        string `json:"origin"`
	Headers       string `json:"headers"`
	Methods       string `json:"methods"`
	ExposeHeaders string `json:"exposeHeaders"`
	MaxAge        int    `json:"maxAge"`
}

// Defaults returns the fixed MCP CORS options with the wildcard origin.
func Defaults() Options {
	return Options{
		Origin:        "*",
		Headers:       "Content-Type, mcp-session-id, mcp-protocol-version",
		Methods:       "GET, POST, OPTIONS",
		ExposeHeaders: "mcp-session-id",
		MaxAge:        86400,
	}
}

// WithOrigin returns a copy of o with Origin replaced.
func (o Options) WithOrigin(origin string) Options {
	o.Origin = origin
	return o
}

// Apply writes the CORS response headers. Empty fields are skipped.
func (o Options) Apply(h http.Header) {
	set := func(key, value string) {
		if value != "" {
			h.Set(key, value)
		}
	}
	set(HeaderAllowOrigin, o.Origin)
	set(HeaderAllowHeaders, o.Headers)
	set(HeaderAllowMethods, o.Methods)
	set(HeaderExposeHeaders, o.ExposeHeaders)
	if o.MaxAge > 0 {
		h.Set(HeaderMaxAge, strconv.Itoa(o.MaxAge))
	}
	// The allowed origin differs per request, so shared caches must key on it.
	if o.Origin != "*" && o.Origin != "" {
		h.Add("Vary", "Origin")
	}
}

// Strip removes every Access-Control-* header, e.g. ones set by an upstream server.
func Strip(h http.Header) {
	for key := range h {
		if strings.HasPrefix(http.CanonicalHeaderKey(key), "Access-Control-") {
			h.Del(key)
		}
	}
}

// IsPreflight reports whether r is a CORS preflight request.
func IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions
}
