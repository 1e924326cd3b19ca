package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/ndquoc/library-notify/internal/domain"
)

func (s *PostgresStore) CreateBook(ctx context.Context, title, author string) (*domain.Book, error) {
	var book domain.Book
	err := s.pool.QueryRow(ctx, `
		INSERT INTO books (title, author)
		VALUES ($1, $2)
		RETURNING id, title, author, created_at
	`, title, author).Scan(&book.ID, &book.Title, &book.Author, &book.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("inserting book: %w", err)
	}
	return &book, nil
}

func (s *PostgresStore) GetBook(ctx context.Context, id int64) (*domain.Book, error) {
	var book domain.Book
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, author, created_at FROM books WHERE id = $1
	`, id).Scan(&book.ID, &book.Title, &book.Author, &book.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying book: %w", err)
	}
	return &book, nil
}

func (s *PostgresStore) ListBooks(ctx context.Context, offset, limit int) ([]domain.Book, error) {
	query := `SELECT id, title, author, created_at FROM books ORDER BY id`
	args := []interface{}{}
	argIdx := 1

	if offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, offset)
		argIdx++
	}
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying books: %w", err)
	}
	defer rows.Close()

	var books []domain.Book
	for rows.Next() {
		var b domain.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning book: %w", err)
		}
		books = append(books, b)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

func (s *PostgresStore) CountBooks(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting books: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) DeleteBook(ctx context.Context, id int64) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("deleting book: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
