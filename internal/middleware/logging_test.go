package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/mcp-edge-router/internal/request"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		method        string
		path          string
		handlerStatus int
	}{
		{name: "GET sse", method: "GET", path: "/sse", handlerStatus: http.StatusOK},
		{name: "POST message", method: "POST", path: "/sse/message", handlerStatus: http.StatusAccepted},
		{name: "bad gateway", method: "POST", path: "/mcp", handlerStatus: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			core, logs := observer.New(zap.InfoLevel)
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.handlerStatus)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("Origin", "https://foo.mcpcentral.io")
			w := httptest.NewRecorder()
			Logging(zap.New(core))(handler).ServeHTTP(w, req)

			if w.Code != tt.handlerStatus {
				t.Errorf("Expected status %d, got %d", tt.handlerStatus, w.Code)
			}

			entries := logs.FilterMessage("http_request").All()
			if len(entries) != 1 {
				t.Fatalf("Expected 1 http_request entry, got %d", len(entries))
			}
			fields := entries[0].ContextMap()
			if fields["status_code"] != int64(tt.handlerStatus) {
				t.Errorf("Expected status_code %d, got %v", tt.handlerStatus, fields["status_code"])
			}
			if fields["path"] != tt.path {
				t.Errorf("Expected path %s, got %v", tt.path, fields["path"])
			}
			if fields["origin"] != "https://foo.mcpcentral.io" {
				t.Errorf("Expected origin logged, got %v", fields["origin"])
			}
		})
	}
}

func TestLoggingResponseWriter_FirstStatusWins(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	_, _ = rw.Write([]byte("data"))
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected implicit 200 to be recorded, got %d", rw.statusCode)
	}
	if rw.bytes != 4 {
		t.Errorf("Expected 4 bytes, got %d", rw.bytes)
	}
}

func TestLoggingResponseWriter_Flush(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("event: endpoint\n\n"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			t.Errorf("Flush through logging writer failed: %v", err)
		}
	})

	Logging(zap.NewNop())(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/sse", nil))

	if !rec.Flushed {
		t.Error("Expected the underlying writer to be flushed")
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	var seen string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = request.RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/mcp", nil))

	if seen == "" {
		t.Fatal("Expected a request id in the context")
	}
	if got := w.Header().Get("X-Request-Id"); got != seen {
		t.Errorf("Expected response header %q, got %q", seen, got)
	}
}
