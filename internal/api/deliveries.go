package api

import (
	"net/http"
	"strconv"

	"github.com/ndquoc/library-notify/internal/store"
)

type DeliveryHandler struct {
	log store.DeliveryLog
}

func NewDeliveryHandler(log store.DeliveryLog) *DeliveryHandler {
	return &DeliveryHandler{log: log}
}

func (h *DeliveryHandler) List(w http.ResponseWriter, r *http.Request) {
	eventType := r.URL.Query().Get("event_type")
	status := r.URL.Query().Get("status")
	limitStr := r.URL.Query().Get("limit")

	limit := 50
	if limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	attempts, err := h.log.ListDeliveryAttempts(r.Context(), eventType, status, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list delivery attempts")
		return
	}

	respondJSON(w, http.StatusOK, attempts)
}
