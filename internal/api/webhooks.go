package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ndquoc/library-notify/internal/auth"
	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/service"
)

type WebhookHandler struct {
	webhooks *service.WebhookService
}

func NewWebhookHandler(webhooks *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

func (h *WebhookHandler) Register(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing principal")
		return
	}

	var req domain.RegisterWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	wh, err := h.webhooks.Register(r.Context(), ownerID, req.Event, req.URL)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to register webhook")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Webhook registered",
		"data":    wh,
	})
}

func (h *WebhookHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := auth.PrincipalID(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing principal")
		return
	}

	webhooks, err := h.webhooks.ListByOwner(r.Context(), ownerID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list webhooks")
		return
	}

	respondJSON(w, http.StatusOK, webhooks)
}
