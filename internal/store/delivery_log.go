package store

import (
	"context"
	"fmt"

	"github.com/ndquoc/library-notify/internal/domain"
)

func (s *PostgresStore) RecordDeliveryAttempt(ctx context.Context, attempt domain.DeliveryAttempt) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO delivery_attempts (webhook_id, event_id, event_type, target_url, status, http_status_code, response_time_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, attempt.WebhookID, attempt.EventID, attempt.EventType, attempt.TargetURL,
		attempt.Status, attempt.HTTPStatusCode, attempt.ResponseTimeMs, attempt.ErrorMessage)
	if err != nil {
		return fmt.Errorf("inserting delivery attempt: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListDeliveryAttempts(ctx context.Context, eventType, status string, limit int) ([]domain.DeliveryAttempt, error) {
	query := `SELECT id, webhook_id, event_id, event_type, target_url, status, http_status_code, response_time_ms, error_message, created_at FROM delivery_attempts`
	args := []interface{}{}
	argIdx := 1
	conditions := []string{}

	if eventType != "" {
		conditions = append(conditions, fmt.Sprintf("event_type = $%d", argIdx))
		args = append(args, eventType)
		argIdx++
	}
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, status)
		argIdx++
	}

	if len(conditions) > 0 {
		query += " WHERE "
		for i, c := range conditions {
			if i > 0 {
				query += " AND "
			}
			query += c
		}
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		err := rows.Scan(
			&a.ID, &a.WebhookID, &a.EventID, &a.EventType, &a.TargetURL,
			&a.Status, &a.HTTPStatusCode, &a.ResponseTimeMs, &a.ErrorMessage, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning delivery attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	if attempts == nil {
		attempts = []domain.DeliveryAttempt{}
	}

	return attempts, nil
}
