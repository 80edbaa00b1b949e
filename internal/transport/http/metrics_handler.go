package http

import (
	"net/http"
)

// MetricsHandler exposes the Prometheus scrape endpoint. The handler is
// whatever the metrics provider produced; nil falls back to 404 so the
// route stays mounted even when metrics are disabled.
type MetricsHandler struct {
	prometheus http.Handler
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(prometheus http.Handler) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus}
}

// Handle responds to GET /metrics
func (h *MetricsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}
