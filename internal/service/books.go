package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/ndquoc/library-notify/internal/store"
)

// BookService owns the book lifecycle and is the event source for
// book_created notifications. The flow is persist → publish: the publish
// step schedules deliveries and returns before any of them run, so the
// creation result never depends on a delivery outcome.
type BookService struct {
	books     store.BookStore
	publisher *engine.Publisher
	logger    *slog.Logger
}

func NewBookService(books store.BookStore, publisher *engine.Publisher, logger *slog.Logger) *BookService {
	return &BookService{books: books, publisher: publisher, logger: logger}
}

// Create validates, persists and announces a new book. A failure to look
// up or enqueue notifications fails this request; the book stays persisted
// (there is no compensation across the persist → notify boundary).
func (s *BookService) Create(ctx context.Context, title, author string) (*domain.Book, error) {
	if title == "" {
		return nil, invalidf("title is required")
	}
	if author == "" {
		return nil, invalidf("author is required")
	}

	book, err := s.books.CreateBook(ctx, title, author)
	if err != nil {
		return nil, fmt.Errorf("creating book: %w", err)
	}

	payload, err := json.Marshal(book)
	if err != nil {
		return nil, fmt.Errorf("marshaling book payload: %w", err)
	}

	queued, err := s.publisher.Publish(ctx, domain.EventBookCreated, payload)
	if err != nil {
		return nil, fmt.Errorf("publishing %s: %w", domain.EventBookCreated, err)
	}

	s.logger.Info("book created",
		"book_id", book.ID,
		"title", book.Title,
		"deliveries_queued", queued,
	)

	return book, nil
}

func (s *BookService) List(ctx context.Context, offset, limit int) ([]domain.Book, int, error) {
	books, err := s.books.ListBooks(ctx, offset, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("listing books: %w", err)
	}

	total, err := s.books.CountBooks(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("counting books: %w", err)
	}

	return books, total, nil
}

// Delete removes a book. ErrNotFound when the id does not exist; no side
// effects in that case.
func (s *BookService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.books.DeleteBook(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	s.logger.Info("book deleted", "book_id", id)
	return nil
}
