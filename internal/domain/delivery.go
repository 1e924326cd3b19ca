package domain

import "time"

const (
	DeliverySuccess = "success"
	DeliveryFailed  = "failed"
)

// DeliveryAttempt is the durable record of one outbound webhook call.
// There is at most one attempt per registration per event: failures are
// recorded and dropped, never retried.
type DeliveryAttempt struct {
	ID             string    `json:"id"`
	WebhookID      string    `json:"webhook_id"`
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	TargetURL      string    `json:"target_url"`
	Status         string    `json:"status"`
	HTTPStatusCode *int      `json:"http_status_code,omitempty"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
