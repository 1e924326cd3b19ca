package store

import (
	"context"
	"errors"

	"github.com/ndquoc/library-notify/internal/domain"
)

// Point reads return (nil, nil) when the record does not exist so callers
// can distinguish not-found from backend failure.

// ErrDuplicate is returned by creates that violate a uniqueness rule
// (username). The store enforces it, not the caller: a pre-read check
// would race with a concurrent create.
var ErrDuplicate = errors.New("duplicate record")

type BookStore interface {
	CreateBook(ctx context.Context, title, author string) (*domain.Book, error)
	GetBook(ctx context.Context, id int64) (*domain.Book, error)
	ListBooks(ctx context.Context, offset, limit int) ([]domain.Book, error)
	CountBooks(ctx context.Context) (int, error)
	DeleteBook(ctx context.Context, id int64) (bool, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
}

type WebhookStore interface {
	CreateWebhook(ctx context.Context, ownerID int64, eventType, targetURL string) (*domain.Webhook, error)
	// ListWebhooksByEvent returns every registration whose event type
	// exactly matches, in insertion order. Duplicates are all returned.
	ListWebhooksByEvent(ctx context.Context, eventType string) ([]domain.Webhook, error)
	ListWebhooksByOwner(ctx context.Context, ownerID int64) ([]domain.Webhook, error)
}

type DeliveryLog interface {
	RecordDeliveryAttempt(ctx context.Context, attempt domain.DeliveryAttempt) error
	ListDeliveryAttempts(ctx context.Context, eventType, status string, limit int) ([]domain.DeliveryAttempt, error)
}

// Store bundles the persistence interfaces a fully wired server needs.
type Store interface {
	BookStore
	UserStore
	WebhookStore
	DeliveryLog
}
