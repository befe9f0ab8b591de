package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benvon/mcp-edge-router/internal/agent"
)

func newTestBrowser(t *testing.T, status int) *agent.Browser {
	t.Helper()
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	t.Cleanup(backend.Close)

	browser, err := agent.NewBrowser(backend.URL, backend.Client())
	if err != nil {
		t.Fatalf("NewBrowser() error = %v", err)
	}
	return browser
}

func TestHealthChecker_BasicMode(t *testing.T) {
	t.Parallel()

	// Basic mode must not touch dependencies, so a failing backend is irrelevant.
	h := NewHealthChecker(newTestBrowser(t, http.StatusBadGateway), PingFunc(func(context.Context) error {
		return errors.New("down")
	}))

	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got '%s'", resp.Status)
	}
	if resp.Checks != nil {
		t.Errorf("Expected no checks in basic mode, got %v", resp.Checks)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("Timestamp '%s' is not valid RFC3339: %v", resp.Timestamp, err)
	}
}

func TestHealthChecker_ExtendedMode(t *testing.T) {
	t.Parallel()

	okRedis := PingFunc(func(context.Context) error { return nil })
	badRedis := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name          string
		browserStatus int
		redis         Pinger
		wantCode      int
		wantBrowser   string
		wantRedis     string
	}{
		{
			name:          "all healthy",
			browserStatus: http.StatusOK,
			redis:         okRedis,
			wantCode:      http.StatusOK,
			wantBrowser:   "healthy",
			wantRedis:     "healthy",
		},
		{
			name:          "backend 404 still counts as up",
			browserStatus: http.StatusNotFound,
			redis:         nil,
			wantCode:      http.StatusOK,
			wantBrowser:   "healthy",
			wantRedis:     "not configured",
		},
		{
			name:          "backend 5xx",
			browserStatus: http.StatusServiceUnavailable,
			redis:         okRedis,
			wantCode:      http.StatusServiceUnavailable,
			wantBrowser:   "unhealthy: status 503",
			wantRedis:     "healthy",
		},
		{
			name:          "redis down",
			browserStatus: http.StatusOK,
			redis:         badRedis,
			wantCode:      http.StatusServiceUnavailable,
			wantBrowser:   "healthy",
			wantRedis:     "unhealthy: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := NewHealthChecker(newTestBrowser(t, tt.browserStatus), tt.redis)
			w := httptest.NewRecorder()
			h.HealthCheck(w, httptest.NewRequest("GET", "/healthz?mode=extended", nil))

			if w.Code != tt.wantCode {
				t.Errorf("Expected status %d, got %d", tt.wantCode, w.Code)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if got := resp.Checks["browser"]; got != tt.wantBrowser {
				t.Errorf("Expected browser check '%s', got '%s'", tt.wantBrowser, got)
			}
			if got := resp.Checks["redis"]; got != tt.wantRedis {
				t.Errorf("Expected redis check '%s', got '%s'", tt.wantRedis, got)
			}
		})
	}
}

func TestHealthChecker_NoBrowser(t *testing.T) {
	t.Parallel()

	h := NewHealthChecker(nil, nil)
	w := httptest.NewRecorder()
	h.HealthCheck(w, httptest.NewRequest("GET", "/healthz?mode=extended", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected status 503 without a browser backend, got %d", w.Code)
	}
}
