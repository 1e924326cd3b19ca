package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ndquoc/library-notify/internal/domain"
)

// MemoryStore is the in-memory reference implementation of the persistence
// interfaces. Records are kept in insertion order and integer ids come from
// monotonic counters. All methods are safe for concurrent use: webhook
// lookups during fan-out may race with registrations, and a registration
// that lands after a lookup snapshot simply misses that event.
type MemoryStore struct {
	mu sync.RWMutex

	books      []domain.Book
	nextBookID int64

	users      []domain.User
	nextUserID int64

	webhooks []domain.Webhook
	attempts []domain.DeliveryAttempt
}

func NewMemory() *MemoryStore {
	return &MemoryStore{nextBookID: 1, nextUserID: 1}
}

func (s *MemoryStore) CreateBook(ctx context.Context, title, author string) (*domain.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := domain.Book{
		ID:        s.nextBookID,
		Title:     title,
		Author:    author,
		CreatedAt: time.Now().UTC(),
	}
	s.nextBookID++
	s.books = append(s.books, book)
	return &book, nil
}

func (s *MemoryStore) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.books {
		if b.ID == id {
			book := b
			return &book, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) ListBooks(ctx context.Context, offset, limit int) ([]domain.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.books) {
		return []domain.Book{}, nil
	}

	end := len(s.books)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]domain.Book, end-offset)
	copy(out, s.books[offset:end])
	return out, nil
}

func (s *MemoryStore) CountBooks(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.books), nil
}

func (s *MemoryStore) DeleteBook(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, b := range s.books {
		if b.ID == id {
			s.books = append(s.books[:i], s.books[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			return nil, fmt.Errorf("username %q: %w", username, ErrDuplicate)
		}
	}

	user := domain.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.nextUserID++
	s.users = append(s.users, user)
	return &user, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Username == username {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreateWebhook(ctx context.Context, ownerID int64, eventType, targetURL string) (*domain.Webhook, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wh := domain.Webhook{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		EventType: eventType,
		TargetURL: targetURL,
		CreatedAt: time.Now().UTC(),
	}
	s.webhooks = append(s.webhooks, wh)
	return &wh, nil
}

func (s *MemoryStore) ListWebhooksByEvent(ctx context.Context, eventType string) ([]domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Webhook{}
	for _, wh := range s.webhooks {
		if wh.EventType == eventType {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListWebhooksByOwner(ctx context.Context, ownerID int64) ([]domain.Webhook, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Webhook{}
	for _, wh := range s.webhooks {
		if wh.OwnerID == ownerID {
			out = append(out, wh)
		}
	}
	return out, nil
}

func (s *MemoryStore) RecordDeliveryAttempt(ctx context.Context, attempt domain.DeliveryAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *MemoryStore) ListDeliveryAttempts(ctx context.Context, eventType, status string, limit int) ([]domain.DeliveryAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.DeliveryAttempt{}
	// Newest first, matching the Postgres implementation.
	for i := len(s.attempts) - 1; i >= 0; i-- {
		a := s.attempts[i]
		if eventType != "" && a.EventType != eventType {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}
