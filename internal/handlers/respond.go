package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Pkra99/minichat-v2/internal/engine"
	"github.com/Pkra99/minichat-v2/internal/metrics"
	"github.com/Pkra99/minichat-v2/internal/models"
)

// ResponderHandler serves the responder service: one stateless endpoint that
// turns a user message into a complete reply.
type ResponderHandler struct {
	engine engine.Engine
	logger zerolog.Logger
}

// NewResponderHandler creates a ResponderHandler.
func NewResponderHandler(eng engine.Engine, logger zerolog.Logger) *ResponderHandler {
	return &ResponderHandler{engine: eng, logger: logger}
}

// respondRequest is the POST /respond request body.
type respondRequest struct {
	Message  string `json:"message"`
	TenantID string `json:"tenantId"`
	Mode     string `json:"mode,omitempty"`
}

// Respond generates one complete reply for a message.
func (h *ResponderHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.error(w, http.StatusBadRequest, `Missing or invalid "message" field`)
		return
	}
	if req.Message == "" {
		h.error(w, http.StatusBadRequest, `Missing or invalid "message" field`)
		return
	}
	if req.TenantID == "" {
		h.error(w, http.StatusBadRequest, `Missing or invalid "tenantId" field`)
		return
	}

	reply, err := h.engine.GenerateReply(r.Context(), req.Message, models.ParseMode(req.Mode))
	if err != nil {
		h.logger.Error().Err(err).Str("tenant", req.TenantID).Msg("engine failed to generate reply")
		h.error(w, http.StatusInternalServerError, "failed to generate reply")
		return
	}

	metrics.RepliesGenerated.WithLabelValues(h.engine.Name()).Inc()
	h.logger.Debug().
		Str("tenant", req.TenantID).
		Str("engine", h.engine.Name()).
		Int("chars", len(reply)).
		Msg("generated reply")

	h.json(w, http.StatusOK, models.GeneratedReply{
		Reply:     reply,
		Engine:    h.engine.Name(),
		Timestamp: time.Now().UTC(),
	})
}

// Health reports responder liveness.
func (h *ResponderHandler) Health(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"service":   "minichat-responder",
		"version":   version,
		"engine":    h.engine.Name(),
		"timestamp": time.Now().UTC().Format(timeLayout),
	})
}

// Info describes the service and its routes.
func (h *ResponderHandler) Info(w http.ResponseWriter, r *http.Request) {
	h.json(w, http.StatusOK, map[string]any{
		"service": "minichat-responder",
		"version": version,
		"engine":  h.engine.Name(),
		"endpoints": map[string]string{
			"POST /respond": "Generate a reply for a message",
			"GET /health":   "Health check",
			"GET /metrics":  "Prometheus metrics",
		},
	})
}

func (h *ResponderHandler) json(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *ResponderHandler) error(w http.ResponseWriter, status int, message string) {
	h.json(w, status, map[string]string{"error": message})
}
