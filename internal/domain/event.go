package domain

import (
	"encoding/json"
	"time"
)

// Event is ephemeral: constructed when business logic completes a mutation,
// consumed by the publisher, never stored.
type Event struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// EventBookCreated is published after a book is persisted. The payload is
// the book representation.
const EventBookCreated = "book_created"
