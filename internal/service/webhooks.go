package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/store"
)

// WebhookService owns webhook registrations. Registrations are validated
// before anything is persisted and are immutable afterwards. Duplicate
// (event, url) pairs are accepted; each gets notified on its own.
type WebhookService struct {
	webhooks store.WebhookStore
	logger   *slog.Logger
}

func NewWebhookService(webhooks store.WebhookStore, logger *slog.Logger) *WebhookService {
	return &WebhookService{webhooks: webhooks, logger: logger}
}

func (s *WebhookService) Register(ctx context.Context, ownerID int64, eventType, targetURL string) (*domain.Webhook, error) {
	if eventType == "" {
		return nil, invalidf("event is required")
	}
	if targetURL == "" {
		return nil, invalidf("url is required")
	}
	if u, err := url.Parse(targetURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, invalidf("url must be an absolute URL")
	}

	wh, err := s.webhooks.CreateWebhook(ctx, ownerID, eventType, targetURL)
	if err != nil {
		return nil, fmt.Errorf("registering webhook: %w", err)
	}

	s.logger.Info("webhook registered",
		"webhook_id", wh.ID,
		"owner_id", ownerID,
		"event_type", eventType,
		"target_url", targetURL,
	)

	return wh, nil
}

func (s *WebhookService) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Webhook, error) {
	webhooks, err := s.webhooks.ListWebhooksByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing webhooks: %w", err)
	}
	return webhooks, nil
}
