package engine

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ndquoc/library-notify/internal/metrics"
	"github.com/ndquoc/library-notify/internal/store"
	"github.com/redis/go-redis/v9"
)

func setupPublisher(t *testing.T) (*Publisher, *store.MemoryStore, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mem := store.NewMemory()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	return NewPublisher(mem, client, metrics.New(), logger), mem, client
}

func TestPublish_NoSubscribers(t *testing.T) {
	pub, _, client := setupPublisher(t)
	ctx := context.Background()

	queued, err := pub.Publish(ctx, "book_created", json.RawMessage(`{"id":1}`))
	if err != nil {
		t.Fatalf("publish with no subscribers should not fail: %v", err)
	}
	if queued != 0 {
		t.Errorf("expected 0 deliveries queued, got %d", queued)
	}

	depth, _ := client.ZCard(ctx, DeliveryQueueKey).Result()
	if depth != 0 {
		t.Errorf("queue should be empty, got depth %d", depth)
	}
}

func TestPublish_OneJobPerRegistration(t *testing.T) {
	pub, mem, _ := setupPublisher(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := mem.CreateWebhook(ctx, 1, "book_created", "http://localhost:6000/callback"); err != nil {
			t.Fatalf("failed to register webhook: %v", err)
		}
	}
	// A registration for a different event must not be notified
	if _, err := mem.CreateWebhook(ctx, 1, "book_deleted", "http://localhost:6000/other"); err != nil {
		t.Fatalf("failed to register webhook: %v", err)
	}

	queued, err := pub.Publish(ctx, "book_created", json.RawMessage(`{"id":1}`))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if queued != 3 {
		t.Errorf("expected 3 deliveries queued, got %d", queued)
	}

	depth, err := pub.QueueDepth(ctx)
	if err != nil {
		t.Fatalf("queue depth failed: %v", err)
	}
	if depth != 3 {
		t.Errorf("expected queue depth 3, got %d", depth)
	}
}

func TestPublish_DuplicateRegistrationsBothQueued(t *testing.T) {
	pub, mem, _ := setupPublisher(t)
	ctx := context.Background()

	// Same event and URL registered twice — both must be notified
	for i := 0; i < 2; i++ {
		if _, err := mem.CreateWebhook(ctx, 1, "book_created", "http://localhost:6000/callback"); err != nil {
			t.Fatalf("failed to register webhook: %v", err)
		}
	}

	queued, err := pub.Publish(ctx, "book_created", json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if queued != 2 {
		t.Errorf("expected 2 deliveries for duplicate registrations, got %d", queued)
	}
}

func TestPublish_JobCarriesPayloadUnmodified(t *testing.T) {
	pub, mem, client := setupPublisher(t)
	ctx := context.Background()

	wh, err := mem.CreateWebhook(ctx, 1, "book_created", "http://localhost:6000/callback")
	if err != nil {
		t.Fatalf("failed to register webhook: %v", err)
	}

	payload := json.RawMessage(`{"id":42,"title":"1984","author":"Orwell"}`)
	if _, err := pub.Publish(ctx, "book_created", payload); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	members, err := client.ZRange(ctx, DeliveryQueueKey, 0, -1).Result()
	if err != nil {
		t.Fatalf("failed to read queue: %v", err)
	}
	if len(members) != 1 {
		t.Fatalf("expected 1 queued job, got %d", len(members))
	}

	var job DeliveryJob
	if err := json.Unmarshal([]byte(members[0]), &job); err != nil {
		t.Fatalf("failed to unmarshal job: %v", err)
	}

	if job.WebhookID != wh.ID {
		t.Errorf("WebhookID: got %q, want %q", job.WebhookID, wh.ID)
	}
	if job.TargetURL != wh.TargetURL {
		t.Errorf("TargetURL: got %q, want %q", job.TargetURL, wh.TargetURL)
	}
	if job.EventType != "book_created" {
		t.Errorf("EventType: got %q, want %q", job.EventType, "book_created")
	}
	if string(job.Payload) != string(payload) {
		t.Errorf("Payload: got %s, want %s", job.Payload, payload)
	}
	if job.EventID == "" {
		t.Error("EventID should be assigned")
	}
}
