package handlers

import (
	"net/http"
	"time"

	"github.com/Pkra99/minichat-v2/internal/store"
)

const timeLayout = time.RFC3339Nano

// healthResponse is the gateway health report. Status is "healthy" when both
// the store and the responder are reachable, "degraded" otherwise; a degraded
// gateway still serves traffic because the generator contract is total.
type healthResponse struct {
	Status          string      `json:"status"`
	Service         string      `json:"service"`
	Version         string      `json:"version"`
	Timestamp       string      `json:"timestamp"`
	Store           string      `json:"store"`
	ResponderStatus string      `json:"responderStatus"`
	Stats           store.Stats `json:"stats"`
}

// Health reports gateway liveness plus dependency reachability.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	responderStatus := "connected"
	if !h.probe.Health(r.Context()) {
		responderStatus = "disconnected"
		status = "degraded"
	}

	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
	}

	stats, err := h.store.GlobalStats(r.Context())
	if err != nil {
		status = "degraded"
	}

	h.JSON(w, http.StatusOK, healthResponse{
		Status:          status,
		Service:         "minichat-gateway",
		Version:         version,
		Timestamp:       time.Now().UTC().Format(timeLayout),
		Store:           h.backend,
		ResponderStatus: responderStatus,
		Stats:           stats,
	})
}

// Info describes the service and its routes.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	h.JSON(w, http.StatusOK, map[string]any{
		"service":     "minichat-gateway",
		"version":     version,
		"description": "Multi-tenant chat gateway with streamed replies",
		"endpoints": map[string]string{
			"POST /api/v2/chat":          "Submit a message (202 ack)",
			"GET /api/v2/chat/stream":    "Stream a reply over SSE (?msg=&mode=&gran=&size=)",
			"GET /api/v2/debug/state":    "Inspect tenant history",
			"DELETE /api/v2/debug/state": "Clear tenant history",
			"GET /health":                "Health check",
			"GET /metrics":               "Prometheus metrics",
		},
	})
}
