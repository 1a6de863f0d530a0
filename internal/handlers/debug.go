package handlers

import (
	"net/http"

	"github.com/Pkra99/minichat-v2/internal/api/middleware"
	"github.com/Pkra99/minichat-v2/internal/models"
	"github.com/Pkra99/minichat-v2/internal/store"
)

// tenantSummary is the per-tenant block of the debug state response.
type tenantSummary struct {
	ID             string `json:"id"`
	MessageCount   int    `json:"messageCount"`
	CreatedAt      string `json:"createdAt"`
	LastActivityAt string `json:"lastActivityAt"`
}

// stateResponse exposes the caller's full history plus store-wide counters.
type stateResponse struct {
	Tenant      tenantSummary    `json:"tenant"`
	Messages    []models.Message `json:"messages"`
	GlobalStats store.Stats      `json:"globalStats"`
}

// GetState returns the calling tenant's complete history. Intended for
// demos and debugging, not production traffic.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r)

	history, err := h.store.GetOrCreate(r.Context(), tenantID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to read state")
		return
	}

	stats, err := h.store.GlobalStats(r.Context())
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to read stats")
		return
	}

	h.JSON(w, http.StatusOK, stateResponse{
		Tenant: tenantSummary{
			ID:             history.TenantID,
			MessageCount:   len(history.Messages),
			CreatedAt:      history.CreatedAt.UTC().Format(timeLayout),
			LastActivityAt: history.LastActivityAt.UTC().Format(timeLayout),
		},
		Messages:    history.Messages,
		GlobalStats: stats,
	})
}

// ClearState deletes the calling tenant's history.
func (h *Handler) ClearState(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.TenantID(r)

	cleared, err := h.store.Clear(r.Context(), tenantID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to clear state")
		return
	}

	h.JSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"cleared":  cleared,
		"tenantId": tenantID,
	})
}
