// Package proxy implements agent.Agent by relaying MCP traffic to an upstream MCP server,
// typically a browser-automation server that speaks both the SSE and streamable HTTP transports.
//
// The proxy does not interpret the protocol. It keeps each endpoint to its own paths, answers
// CORS preflights locally and replaces upstream CORS headers with the options chosen by the router.
package proxy

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httputil"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/benvon/mcp-edge-router/internal/agent"
	"github.com/benvon/mcp-edge-router/internal/cors"
	logpkg "github.com/benvon/mcp-edge-router/internal/logger"
	"github.com/benvon/mcp-edge-router/internal/metrics"
	"github.com/benvon/mcp-edge-router/internal/request"
	"github.com/benvon/mcp-edge-router/internal/telemetry"
	"go.uber.org/zap"
)

// messageSuffix is appended to the SSE mount path for client-to-server messages.
const messageSuffix = "/message"

// Agent relays requests to the browser binding's endpoint.
type Agent struct {
	browser *agent.Browser
	log     *zap.Logger
}

// New creates a proxy agent bound to browser.
func New(browser *agent.Browser, log *zap.Logger) *Agent {
	if log == nil {
		log = zap.NewNop()
	}
	return &Agent{browser: browser, log: log}
}

// Factory returns an agent.Factory producing proxy agents that log to log.
func Factory(log *zap.Logger) agent.Factory {
	return func(browser *agent.Browser) agent.Agent {
		return New(browser, log)
	}
}

// ServeSSE returns the SSE endpoint. Writes are flushed immediately so events are not held back.
func (a *Agent) ServeSSE(path string, opts agent.ServeOptions) agent.Handler {
	return a.endpoint(metrics.EndpointSSE, opts.CORS, -1, path, path+messageSuffix)
}

// Serve returns the streamable HTTP endpoint.
func (a *Agent) Serve(path string, opts agent.ServeOptions) agent.Handler {
	return a.endpoint(metrics.EndpointMCP, opts.CORS, 0, path)
}

func (a *Agent) endpoint(name string, opts cors.Options, flush time.Duration, paths ...string) *endpoint {
	e := &endpoint{
		name:  name,
		paths: paths,
		cors:  opts,
		log:   a.log.With(zap.String("endpoint", name)),
	}
	e.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(a.browser.Endpoint)
			pr.SetXForwarded()
			telemetry.InjectHeaders(pr.Out.Context(), pr.Out.Header)
		},
		Transport:      a.browser.HTTPClient().Transport,
		FlushInterval:  flush,
		ModifyResponse: e.modifyResponse,
		ErrorHandler:   e.upstreamError,
		ErrorLog:       zap.NewStdLog(e.log),
	}
	return e
}

type endpoint struct {
	name  string
	paths []string
	cors  cors.Options
	proxy *httputil.ReverseProxy
	log   *zap.Logger
}

// Fetch implements agent.Handler.
func (e *endpoint) Fetch(w http.ResponseWriter, r *http.Request, _ *agent.Env, _ agent.ExecutionContext) {
	if !slices.Contains(e.paths, r.URL.EscapedPath()) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, "Not Found")
		return
	}

	if cors.IsPreflight(r) {
		e.cors.Apply(w.Header())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	ctx := context.WithValue(r.Context(), startKey{}, time.Now())
	e.proxy.ServeHTTP(w, r.WithContext(ctx))
}

type startKey struct{}

func (e *endpoint) modifyResponse(resp *http.Response) error {
	if start, ok := resp.Request.Context().Value(startKey{}).(time.Time); ok {
		metrics.UpstreamDuration.WithLabelValues(e.name).Observe(time.Since(start).Seconds())
	}

	cors.Strip(resp.Header)
	e.cors.Apply(resp.Header)

	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream") {
		metrics.OpenStreams.Inc()
		resp.Body = &streamBody{ReadCloser: resp.Body}
		e.log.Debug("sse_stream_opened",
			zap.String("path", logpkg.SanitizePath(resp.Request.URL.Path)),
		)
	}
	return nil
}

func (e *endpoint) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if maxErr := (*http.MaxBytesError)(nil); errors.As(err, &maxErr) {
		// The body cap tripped while the request was being relayed.
		request.Reject(r.Context(), request.RejectTooLarge)
		e.log.Debug("request_body_too_large",
			zap.String("path", logpkg.SanitizePath(r.URL.Path)),
			zap.Int64("limit", maxErr.Limit),
		)
		e.cors.Apply(w.Header())
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusRequestEntityTooLarge)
		_, _ = io.WriteString(w, "Request Entity Too Large")
		return
	}

	metrics.UpstreamErrors.WithLabelValues(e.name).Inc()
	if r.Context().Err() != nil {
		// Client went away; nothing useful can be written.
		e.log.Debug("upstream_request_cancelled", zap.String("error", logpkg.SanitizeError(err)))
		return
	}
	e.log.Error("upstream_request_failed",
		zap.String("method", r.Method),
		zap.String("path", logpkg.SanitizePath(r.URL.Path)),
		zap.String("error", logpkg.SanitizeError(err)),
	)
	e.cors.Apply(w.Header())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusBadGateway)
	_, _ = io.WriteString(w, "Bad Gateway")
}

// streamBody decrements the open stream gauge exactly once when the relay closes it.
type streamBody struct {
	io.ReadCloser
	once sync.Once
}

func (b *streamBody) Close() error {
	b.once.Do(metrics.OpenStreams.Dec)
	return b.ReadCloser.Close()
}
