package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ndquoc/library-notify/internal/domain"
)

func TestMemory_BookLifecycle(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	b1, err := s.CreateBook(ctx, "1984", "Orwell")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	b2, _ := s.CreateBook(ctx, "Brave New World", "Huxley")

	if b1.ID != 1 || b2.ID != 2 {
		t.Errorf("ids should be monotonic from 1: got %d, %d", b1.ID, b2.ID)
	}

	books, err := s.ListBooks(ctx, 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(books) != 2 || books[0].ID != 1 || books[1].ID != 2 {
		t.Errorf("list should return insertion order, got %+v", books)
	}

	got, _ := s.GetBook(ctx, b1.ID)
	if got == nil || got.Title != "1984" {
		t.Errorf("get returned %+v", got)
	}

	deleted, err := s.DeleteBook(ctx, b1.ID)
	if err != nil || !deleted {
		t.Fatalf("delete should succeed, got deleted=%v err=%v", deleted, err)
	}

	deleted, err = s.DeleteBook(ctx, b1.ID)
	if err != nil || deleted {
		t.Errorf("deleting a missing book should report false, got %v", deleted)
	}

	// Ids never reused after deletion
	b3, _ := s.CreateBook(ctx, "Fahrenheit 451", "Bradbury")
	if b3.ID != 3 {
		t.Errorf("id counter must not reuse deleted ids, got %d", b3.ID)
	}
}

func TestMemory_GetBook_Missing(t *testing.T) {
	s := NewMemory()

	got, err := s.GetBook(context.Background(), 99)
	if err != nil {
		t.Fatalf("missing book should not error: %v", err)
	}
	if got != nil {
		t.Errorf("missing book should be nil, got %+v", got)
	}
}

func TestMemory_ListBooks_OffsetLimit(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		s.CreateBook(ctx, "title", "author")
	}

	books, _ := s.ListBooks(ctx, 1, 2)
	if len(books) != 2 || books[0].ID != 2 || books[1].ID != 3 {
		t.Errorf("offset=1 limit=2 should return ids 2,3: %+v", books)
	}

	books, _ = s.ListBooks(ctx, 10, 2)
	if len(books) != 0 {
		t.Errorf("offset past the end should return empty, got %+v", books)
	}

	total, _ := s.CountBooks(ctx)
	if total != 5 {
		t.Errorf("count should be 5, got %d", total)
	}
}

func TestMemory_WebhooksByEvent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.CreateWebhook(ctx, 1, "book_created", "http://a.test/hook")
	s.CreateWebhook(ctx, 2, "book_created", "http://b.test/hook")
	s.CreateWebhook(ctx, 1, "book_deleted", "http://a.test/hook")

	// Duplicates retained
	s.CreateWebhook(ctx, 1, "book_created", "http://a.test/hook")

	matched, err := s.ListWebhooksByEvent(ctx, "book_created")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(matched) != 3 {
		t.Errorf("expected 3 matches including the duplicate, got %d", len(matched))
	}

	none, _ := s.ListWebhooksByEvent(ctx, "unknown_event")
	if len(none) != 0 {
		t.Errorf("unknown event should match nothing, got %d", len(none))
	}

	mine, _ := s.ListWebhooksByOwner(ctx, 1)
	if len(mine) != 3 {
		t.Errorf("owner 1 should have 3 registrations, got %d", len(mine))
	}
}

func TestMemory_DeliveryLogFiltering(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	s.RecordDeliveryAttempt(ctx, domain.DeliveryAttempt{EventType: "book_created", Status: domain.DeliverySuccess})
	s.RecordDeliveryAttempt(ctx, domain.DeliveryAttempt{EventType: "book_created", Status: domain.DeliveryFailed})
	s.RecordDeliveryAttempt(ctx, domain.DeliveryAttempt{EventType: "book_deleted", Status: domain.DeliverySuccess})

	failed, err := s.ListDeliveryAttempts(ctx, "", domain.DeliveryFailed, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(failed) != 1 {
		t.Errorf("expected 1 failed attempt, got %d", len(failed))
	}

	created, _ := s.ListDeliveryAttempts(ctx, "book_created", "", 0)
	if len(created) != 2 {
		t.Errorf("expected 2 book_created attempts, got %d", len(created))
	}

	limited, _ := s.ListDeliveryAttempts(ctx, "", "", 2)
	if len(limited) != 2 {
		t.Errorf("limit=2 should cap results, got %d", len(limited))
	}
}

func TestMemory_ConcurrentRegistrationAndLookup(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.CreateWebhook(ctx, 1, "book_created", "http://a.test/hook")
		}()
		go func() {
			defer wg.Done()
			s.ListWebhooksByEvent(ctx, "book_created")
		}()
	}
	wg.Wait()

	matched, _ := s.ListWebhooksByEvent(ctx, "book_created")
	if len(matched) != 20 {
		t.Errorf("expected 20 registrations after concurrent writes, got %d", len(matched))
	}
}

func TestMemory_UserByUsername(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, "alice", "hash")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if u.ID != 1 {
		t.Errorf("first user id should be 1, got %d", u.ID)
	}

	got, _ := s.GetUserByUsername(ctx, "alice")
	if got == nil || got.PasswordHash != "hash" {
		t.Errorf("lookup returned %+v", got)
	}

	missing, err := s.GetUserByUsername(ctx, "bob")
	if err != nil || missing != nil {
		t.Errorf("missing user should be nil, nil: got %+v, %v", missing, err)
	}
}

func TestMemory_DuplicateUsernameRejected(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, "alice", "h1"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := s.CreateUser(ctx, "alice", "h2"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}
}

func TestMemory_ConcurrentRegistrationsOneWinner(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	var created atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateUser(ctx, "alice", "hash"); err == nil {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("exactly one concurrent registration should win, got %d", created.Load())
	}
}
