// Package router dispatches public requests to the agent's MCP endpoints.
//
// Three paths are served: /sse and /sse/message go to the agent's SSE endpoint, /mcp to its
// streamable HTTP endpoint. Every other path is answered with a plain-text 404. Paths are
// matched exactly as sent: they are not cleaned, trailing slashes are not redirected and
// percent-encoded bytes are not decoded before matching. Unlike WHATWG URL parsing, dot
// segments are not resolved, so /sse/../mcp is a 404 and so are /%6Dcp and /sse%2Fmessage.
//
// For each dispatched request the router computes the CORS options from the request's Origin
// header and hands them to the agent, which writes the response headers.
package router

import (
	"io"
	"net/http"

	"github.com/benvon/mcp-edge-router/internal/agent"
	"github.com/benvon/mcp-edge-router/internal/cors"
	logpkg "github.com/benvon/mcp-edge-router/internal/logger"
	"github.com/benvon/mcp-edge-router/internal/metrics"
	"github.com/benvon/mcp-edge-router/internal/origins"
	"github.com/benvon/mcp-edge-router/internal/request"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Mount paths handed to the agent.
const (
	SSEPath = "/sse"
	MCPPath = "/mcp"
)

type route struct {
	path     string
	endpoint string
}

// routes is the dispatch table. The SSE endpoint owns its message path.
var routes = []route{
	{path: SSEPath, endpoint: metrics.EndpointSSE},
	{path: SSEPath + "/message", endpoint: metrics.EndpointSSE},
	{path: MCPPath, endpoint: metrics.EndpointMCP},
}

// Resolve returns the endpoint label a path dispatches to: "sse", "mcp" or "not_found".
func Resolve(path string) string {
	for _, rt := range routes {
		if rt.path == path {
			return rt.endpoint
		}
	}
	return metrics.EndpointNotFound
}

// Router is the public HTTP handler.
type Router struct {
	agent  agent.Agent
	env    *agent.Env
	tasks  *agent.Tasks
	policy origins.Source
	log    *zap.Logger
	mux    *mux.Router
}

// Option configures a Router.
type Option func(*routerOptions)

type routerOptions struct {
	middleware []mux.MiddlewareFunc
	tasks      *agent.Tasks
	log        *zap.Logger
}

// WithMiddleware wraps the dispatched routes. It does not run for 404 responses.
func WithMiddleware(mw ...mux.MiddlewareFunc) Option {
	return func(o *routerOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithTasks sets the group backing each request's ExecutionContext.
func WithTasks(tasks *agent.Tasks) Option {
	return func(o *routerOptions) {
		o.tasks = tasks
	}
}

// WithLogger sets the router's logger.
func WithLogger(log *zap.Logger) Option {
	return func(o *routerOptions) {
		o.log = log
	}
}

// New creates a Router dispatching to a. The policy is consulted on every request, so a
// reloading Source takes effect without a restart. A nil policy means origins.DefaultPolicy.
func New(a agent.Agent, env *agent.Env, policy origins.Source, opts ...Option) *Router {
	o := &routerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.tasks == nil {
		o.tasks = agent.NewTasks(o.log)
	}
	if policy == nil {
		policy = origins.DefaultPolicy()
	}
	if env == nil {
		env = &agent.Env{}
	}

	rt := &Router{
		agent:  a,
		env:    env,
		tasks:  o.tasks,
		policy: policy,
		log:    o.log,
	}

	m := mux.NewRouter().SkipClean(true).UseEncodedPath()
	for _, r := range routes {
		m.Path(r.path).Name(r.path).Handler(rt.dispatch(r.endpoint))
	}
	m.Use(o.middleware...)
	m.NotFoundHandler = http.HandlerFunc(notFound)
	rt.mux = m

	return rt
}

// ServeHTTP implements http.Handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// CORSOptions returns the CORS options for r: the fixed defaults with the origin chosen by
// the policy.
func (rt *Router) CORSOptions(r *http.Request) cors.Options {
	origin := request.Origin(r)
	allowed := rt.policy.Current().AllowedOrigin(origin)

	decision := metrics.DecisionEcho
	if allowed == origins.Wildcard {
		decision = metrics.DecisionWildcard
	}
	metrics.OriginDecisions.WithLabelValues(decision).Inc()
	rt.log.Debug("cors_origin_decided",
		zap.String("origin", logpkg.SanitizeOrigin(origin)),
		zap.String("decision", decision),
	)

	return cors.Defaults().WithOrigin(allowed)
}

func (rt *Router) dispatch(endpoint string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		opts := agent.ServeOptions{CORS: rt.CORSOptions(r)}
		metrics.DispatchTotal.WithLabelValues(endpoint).Inc()

		var h agent.Handler
		switch endpoint {
		case metrics.EndpointSSE:
			h = rt.agent.ServeSSE(SSEPath, opts)
		default:
			h = rt.agent.Serve(MCPPath, opts)
		}
		h.Fetch(w, r, rt.env, rt.tasks.Context())
	})
}

func notFound(w http.ResponseWriter, _ *http.Request) {
	metrics.DispatchTotal.WithLabelValues(metrics.EndpointNotFound).Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	_, _ = io.WriteString(w, "Not Found")
}
