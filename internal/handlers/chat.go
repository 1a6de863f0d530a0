package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/Pkra99/minichat-v2/internal/api/middleware"
	"github.com/Pkra99/minichat-v2/internal/models"
	"github.com/Pkra99/minichat-v2/internal/segment"
	"github.com/Pkra99/minichat-v2/internal/stream"
)

// maxMessageLength is the largest accepted inbound message.
const maxMessageLength = 4096

// ChatRequest is the POST /api/v2/chat request body.
type ChatRequest struct {
	Message  string          `json:"message"`
	Metadata models.Metadata `json:"metadata,omitempty"`
}

// ChatAccepted is the immediate acknowledgment for a stored message.
type ChatAccepted struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
}

// PostChat accepts a message and stores it. The reply is fetched separately
// over the streaming endpoint.
func (h *Handler) PostChat(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r)

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, `Missing or invalid "message" field`)
		return
	}

	if req.Message == "" {
		h.Error(w, http.StatusBadRequest, `Missing or invalid "message" field`)
		return
	}
	if len(req.Message) > maxMessageLength {
		h.ErrorDetail(w, http.StatusBadRequest, "Message too long",
			"Message must be 4096 characters or less")
		return
	}

	if _, err := h.store.Append(r.Context(), tenantID, models.RoleUser, req.Message, req.Metadata); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	h.JSON(w, http.StatusAccepted, ChatAccepted{
		Accepted: true,
		Message:  "Message received. Use /api/v2/chat/stream to get the response.",
	})
}

// StreamChat answers one turn over SSE: chunk events carrying delivery units,
// then one done event, or an error event on mid-stream failure.
func (h *Handler) StreamChat(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r)

	msg := r.URL.Query().Get("msg")
	if msg == "" {
		h.Error(w, http.StatusBadRequest, `Missing or invalid "msg" query parameter`)
		return
	}
	if len(msg) > maxMessageLength {
		h.ErrorDetail(w, http.StatusBadRequest, "Message too long",
			"Message must be 4096 characters or less")
		return
	}

	mode := models.ParseMode(r.URL.Query().Get("mode"))
	granularity := h.granularityFrom(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.Error(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	h.orch.Run(r.Context(), stream.Turn{
		TenantID:    tenantID,
		Message:     msg,
		Mode:        mode,
		Granularity: granularity,
	}, &sseSink{w: w, flusher: flusher})
}

// granularityFrom reads the optional gran/size query parameters. Word
// granularity is the default typewriter behavior.
func (h *Handler) granularityFrom(r *http.Request) segment.Granularity {
	if r.URL.Query().Get("gran") != "chunk" {
		return segment.ByWord()
	}

	size := h.chunkSize
	if v := r.URL.Query().Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			size = n
		}
	}
	return segment.BySize(size)
}
