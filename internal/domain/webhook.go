package domain

import "time"

// Webhook is a registered interest in one event type. Registrations are
// immutable once created; the same event/url pair may be registered more
// than once and each registration is notified separately.
type Webhook struct {
	ID        string    `json:"id"`
	OwnerID   int64     `json:"owner_id"`
	EventType string    `json:"event"`
	TargetURL string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type RegisterWebhookRequest struct {
	URL   string `json:"url"`
	Event string `json:"event"`
}
