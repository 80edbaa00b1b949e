package http

import (
	"net/http"
	"time"

	"github.com/go-chi/render"
)

// HealthHandler serves liveness information
type HealthHandler struct {
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version: version,
		started: time.Now(),
	}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// Render implements render.Renderer
func (h *HealthResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return nil
}

// Handle responds to GET /api/health
func (h *HealthHandler) Handle(w http.ResponseWriter, r *http.Request) {
	render.Render(w, r, &HealthResponse{
		Status:  "ok",
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	})
}
