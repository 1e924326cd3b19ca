package store

import (
	"context"
	"fmt"

	"github.com/ndquoc/library-notify/internal/domain"
)

func (s *PostgresStore) CreateWebhook(ctx context.Context, ownerID int64, eventType, targetURL string) (*domain.Webhook, error) {
	var wh domain.Webhook
	err := s.pool.QueryRow(ctx, `
		INSERT INTO webhooks (owner_id, event_type, target_url)
		VALUES ($1, $2, $3)
		RETURNING id, owner_id, event_type, target_url, created_at
	`, ownerID, eventType, targetURL).Scan(
		&wh.ID, &wh.OwnerID, &wh.EventType, &wh.TargetURL, &wh.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting webhook: %w", err)
	}
	return &wh, nil
}

func (s *PostgresStore) ListWebhooksByEvent(ctx context.Context, eventType string) ([]domain.Webhook, error) {
	return s.listWebhooks(ctx, `
		SELECT id, owner_id, event_type, target_url, created_at
		FROM webhooks WHERE event_type = $1
		ORDER BY created_at
	`, eventType)
}

func (s *PostgresStore) ListWebhooksByOwner(ctx context.Context, ownerID int64) ([]domain.Webhook, error) {
	return s.listWebhooks(ctx, `
		SELECT id, owner_id, event_type, target_url, created_at
		FROM webhooks WHERE owner_id = $1
		ORDER BY created_at
	`, ownerID)
}

func (s *PostgresStore) listWebhooks(ctx context.Context, query string, arg interface{}) ([]domain.Webhook, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("querying webhooks: %w", err)
	}
	defer rows.Close()

	var webhooks []domain.Webhook
	for rows.Next() {
		var wh domain.Webhook
		if err := rows.Scan(&wh.ID, &wh.OwnerID, &wh.EventType, &wh.TargetURL, &wh.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning webhook: %w", err)
		}
		webhooks = append(webhooks, wh)
	}

	if webhooks == nil {
		webhooks = []domain.Webhook{}
	}

	return webhooks, nil
}
