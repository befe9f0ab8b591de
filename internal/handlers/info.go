package handlers

import (
	"net/http"

	"github.com/benvon/mcp-edge-router/internal/cors"
	"github.com/benvon/mcp-edge-router/internal/origins"
	"github.com/benvon/mcp-edge-router/internal/router"
	"github.com/gorilla/mux"
)

// Version is overridden at build time with -ldflags "-X .../handlers.Version=...".
var Version = "dev"

// InfoHandler serves read-only views of the router's configuration on the admin listener.
type InfoHandler struct {
	policy origins.Source
}

// NewInfoHandler creates an InfoHandler reading the live policy from source.
func NewInfoHandler(source origins.Source) *InfoHandler {
	return &InfoHandler{policy: source}
}

// RegisterRoutes registers the info routes.
func (h *InfoHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)
	r.HandleFunc("/origins", h.GetOrigins).Methods(http.MethodGet)
	r.HandleFunc("/origins/check", h.CheckOrigin).Methods(http.MethodGet)
}

// GetVersion handles GET /version
func (h *InfoHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// GetOrigins handles GET /origins and lists the allow-list in force.
func (h *InfoHandler) GetOrigins(w http.ResponseWriter, r *http.Request) {
	p := h.policy.Current()
	respondJSON(w, http.StatusOK, map[string]any{
		"exact":    p.Exact,
		"suffixes": p.Suffixes,
	})
}

// OriginCheckResponse reports what the MCP routes would answer for an origin and path.
type OriginCheckResponse struct {
	Origin   string       `json:"origin"`
	Path     string       `json:"path,omitempty"`
	Endpoint string       `json:"endpoint,omitempty"`
	CORS     cors.Options `json:"cors"`
}

// CheckOrigin handles GET /origins/check?origin=...&path=...
func (h *InfoHandler) CheckOrigin(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if !q.Has("origin") {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "origin query parameter is required (may be empty)")
		return
	}
	origin := q.Get("origin")

	resp := OriginCheckResponse{
		Origin: origin,
		CORS:   cors.Defaults().WithOrigin(h.policy.Current().AllowedOrigin(origin)),
	}
	if path := q.Get("path"); path != "" {
		resp.Path = path
		resp.Endpoint = router.Resolve(path)
	}
	respondJSON(w, http.StatusOK, resp)
}
