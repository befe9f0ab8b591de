// Package agent defines the contract between the router and an MCP agent.
//
// The agent owns everything protocol related: sessions, SSE framing, JSON-RPC. The router only
// asks it for an endpoint handler per request, passing the CORS options to use, and hands the
// request over through Handler.Fetch.
package agent

import (
	"net/http"
	"net/url"

	"github.com/benvon/mcp-edge-router/internal/cors"
)

// ServeOptions configures one endpoint handler.
type ServeOptions struct {
	CORS cors.Options
}

// Handler processes a request routed to an agent endpoint.
type Handler interface {
	Fetch(w http.ResponseWriter, r *http.Request, env *Env, ec ExecutionContext)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, env *Env, ec ExecutionContext)

// Fetch calls f.
func (f HandlerFunc) Fetch(w http.ResponseWriter, r *http.Request, env *Env, ec ExecutionContext) {
	f(w, r, env, ec)
}

// Agent exposes the two MCP transports.
type Agent interface {
	// ServeSSE returns the Server-Sent-Events endpoint mounted at path. It also owns
	// path + "/message", where clients post their messages.
	ServeSSE(path string, opts ServeOptions) Handler
	// Serve returns the streamable HTTP endpoint mounted at path.
	Serve(path string, opts ServeOptions) Handler
}

// Factory builds an agent bound to a browser-automation backend.
type Factory func(browser *Browser) Agent

// Browser is the binding to the browser-automation backend.
type Browser struct {
	// Endpoint is the base URL of the backend.
	Endpoint *url.URL
	// Client is used for every call to the backend. Nil means http.DefaultClient.
	Client *http.Client
}

// NewBrowser parses rawURL into a Browser binding.
func NewBrowser(rawURL string, client *http.Client) (*Browser, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &url.Error{Op: "parse", URL: rawURL, Err: errUnsupportedScheme}
	}
	return &Browser{Endpoint: u, Client: client}, nil
}

// HTTPClient returns the client to use for backend calls.
func (b *Browser) HTTPClient() *http.Client {
	if b == nil || b.Client == nil {
		return http.DefaultClient
	}
	return b.Client
}

// Env is the per-deployment environment handed to every Fetch call.
type Env struct {
	Browser *Browser
	Vars    map[string]string
}

// Var returns the named environment variable, or "" if unset.
func (e *Env) Var(name string) string {
	if e == nil {
		return ""
	}
	return e.Vars[name]
}
