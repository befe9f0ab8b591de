package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benvon/mcp-edge-router/internal/agent"
)

// Pinger checks a dependency's connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests
type HealthChecker struct {
	browser *agent.Browser
	redis   Pinger
	timeout time.Duration
}

// NewHealthChecker creates a health checker. redis may be nil when rate limiting uses the
// in-process store.
func NewHealthChecker(browser *agent.Browser, redis Pinger) *HealthChecker {
	return &HealthChecker{browser: browser, redis: redis, timeout: 5 * time.Second}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles /healthz. The basic mode only reports that the process serves requests;
// ?mode=extended also probes the browser backend and Redis.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	statusCode := http.StatusOK

	if r.URL.Query().Get("mode") == "extended" {
		checks := make(map[string]string)

		if err := h.checkBrowser(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["browser"] = "unhealthy: " + err.Error()
		} else {
			checks["browser"] = "healthy"
		}

		if h.redis == nil {
			checks["redis"] = "not configured"
		} else if err := h.checkRedis(r.Context()); err != nil {
			response.Status = "unhealthy"
			checks["redis"] = "unhealthy: " + err.Error()
		} else {
			checks["redis"] = "healthy"
		}

		response.Checks = checks
		if response.Status == "unhealthy" {
			statusCode = http.StatusServiceUnavailable
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// checkBrowser verifies the backend answers HTTP. Any status below 500 counts as up: the
// backend's root path is not an MCP endpoint and may legitimately return 404.
func (h *HealthChecker) checkBrowser(ctx context.Context) error {
	if h.browser == nil || h.browser.Endpoint == nil {
		return fmt.Errorf("not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.browser.Endpoint.String(), nil)
	if err != nil {
		return err
	}
	resp, err := h.browser.HTTPClient().Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

func (h *HealthChecker) checkRedis(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.redis.Ping(ctx)
}
