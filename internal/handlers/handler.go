package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Pkra99/minichat-v2/internal/store"
	"github.com/Pkra99/minichat-v2/internal/stream"
)

const version = "2.0.0"

// ResponderProbe reports whether the responder service is reachable.
type ResponderProbe interface {
	Health(ctx context.Context) bool
}

// Handler contains shared dependencies for the gateway HTTP handlers.
type Handler struct {
	store     store.HistoryStore
	orch      *stream.Orchestrator
	probe     ResponderProbe
	backend   string // history store backend name, for health reporting
	chunkSize int    // default fixed-size unit target
}

// NewHandler creates a gateway Handler.
func NewHandler(st store.HistoryStore, orch *stream.Orchestrator, probe ResponderProbe, backend string, chunkSize int) *Handler {
	return &Handler{
		store:     st,
		orch:      orch,
		probe:     probe,
		backend:   backend,
		chunkSize: chunkSize,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// ErrorDetail sends a JSON error response with an extra human-readable note.
func (h *Handler) ErrorDetail(w http.ResponseWriter, status int, errMsg, detail string) {
	h.JSON(w, status, map[string]string{"error": errMsg, "message": detail})
}
