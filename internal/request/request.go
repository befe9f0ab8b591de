package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	clientIPContextKey  contextKey = "client_ip"
	rejectionContextKey contextKey = "rejection"
)

// Events recorded with Reject.
const (
	RejectTooLarge    = "request_too_large"
	RejectRateLimited = "rate_limit_violation"
)

// HeaderRequestID carries the request id in both directions.
const HeaderRequestID = "X-Request-Id"

// RemoteIP returns the host part of r.RemoteAddr, without the port.
func RemoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ForwardedIP returns the first X-Forwarded-For entry, else X-Real-IP, else "".
// The headers are client-controlled unless a trusted proxy overwrites them.
func ForwardedIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return strings.TrimSpace(r.Header.Get("X-Real-IP"))
}

// WithClientIP returns a context carrying the resolved client IP.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey, ip)
}

// ClientIP returns the IP resolved by the client IP middleware, falling back to RemoteIP.
func ClientIP(r *http.Request) string {
	if ip, _ := r.Context().Value(clientIPContextKey).(string); ip != "" {
		return ip
	}
	return RemoteIP(r)
}

// Origin returns the raw Origin header, or "" when absent.
func Origin(r *http.Request) string {
	return r.Header.Get("Origin")
}

// WithRequestID returns a context carrying id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, id)
}

// RequestID returns the request id stored on the context, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// EnsureRequestID reuses a well-formed inbound X-Request-Id or mints a new UUID.
func EnsureRequestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

type rejection struct {
	event string
}

// TrackRejection returns a context on which Reject records why the router itself refused the
// request, and a func reporting the recorded event ("" when none). Responses the agent or its
// backend produce are never recorded.
func TrackRejection(ctx context.Context) (context.Context, func() string) {
	rec := &rejection{}
	return context.WithValue(ctx, rejectionContextKey, rec), func() string { return rec.event }
}

// Reject records event on a context prepared by TrackRejection. It is a no-op otherwise.
func Reject(ctx context.Context, event string) {
	if rec, ok := ctx.Value(rejectionContextKey).(*rejection); ok {
		rec.event = event
	}
}
