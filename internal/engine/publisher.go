package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/metrics"
	"github.com/ndquoc/library-notify/internal/store"
	"github.com/redis/go-redis/v9"
)

const DeliveryQueueKey = "delivery_queue"

// DeliveryJob is a single webhook delivery task queued in Redis.
// One job is created per registration: two registrations for the same
// event and URL produce two jobs.
type DeliveryJob struct {
	EventID   string          `json:"event_id"`
	WebhookID string          `json:"webhook_id"`
	TargetURL string          `json:"target_url"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher fans events out to matching registrations. It takes a
// point-in-time snapshot of the registry, enqueues one job per match and
// returns without waiting for any delivery outcome. Delivery failures can
// never surface here; only a registry lookup or enqueue failure is an error.
type Publisher struct {
	webhooks store.WebhookStore
	redis    *redis.Client
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewPublisher(webhooks store.WebhookStore, rdb *redis.Client, m *metrics.Metrics, logger *slog.Logger) *Publisher {
	return &Publisher{
		webhooks: webhooks,
		redis:    rdb,
		metrics:  m,
		logger:   logger,
	}
}

// Publish schedules one delivery per registration matching eventType.
// Returns the number of deliveries queued; zero matches is a valid no-op.
func (p *Publisher) Publish(ctx context.Context, eventType string, payload json.RawMessage) (int, error) {
	// The event lives only for the duration of this call; the jobs carry
	// everything a delivery needs.
	event := domain.Event{
		ID:        uuid.NewString(),
		EventType: eventType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}

	subscribers, err := p.webhooks.ListWebhooksByEvent(ctx, eventType)
	if err != nil {
		return 0, fmt.Errorf("looking up webhooks: %w", err)
	}

	if p.metrics != nil {
		p.metrics.EventsPublished.Inc()
	}

	if len(subscribers) == 0 {
		p.logger.Info("no matching webhooks", "event_id", event.ID, "event_type", eventType)
		return 0, nil
	}

	pipe := p.redis.Pipeline()

	for _, wh := range subscribers {
		job := DeliveryJob{
			EventID:   event.ID,
			WebhookID: wh.ID,
			TargetURL: wh.TargetURL,
			EventType: event.EventType,
			Payload:   payload,
		}

		jobBytes, err := json.Marshal(job)
		if err != nil {
			p.logger.Error("failed to marshal job", "error", err, "webhook_id", wh.ID)
			continue
		}

		pipe.ZAdd(ctx, DeliveryQueueKey, redis.Z{
			Score:  float64(time.Now().UnixMicro()),
			Member: string(jobBytes),
		})
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("queuing deliveries to redis: %w", err)
	}

	p.logger.Info("fan-out complete",
		"event_id", event.ID,
		"event_type", eventType,
		"deliveries_queued", len(subscribers),
	)

	return len(subscribers), nil
}

// QueueDepth returns the number of jobs waiting in the delivery queue.
func (p *Publisher) QueueDepth(ctx context.Context) (int64, error) {
	return p.redis.ZCard(ctx, DeliveryQueueKey).Result()
}
