package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/engine"
	"github.com/ndquoc/library-notify/internal/service"
)

type BookHandler struct {
	books       *service.BookService
	idempotency *engine.IdempotencyCache
	logger      *slog.Logger
}

func NewBookHandler(books *service.BookService, idempotency *engine.IdempotencyCache, logger *slog.Logger) *BookHandler {
	return &BookHandler{books: books, idempotency: idempotency, logger: logger}
}

// List is public and cacheable. Offset/limit are optional; without a limit
// every book is returned.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	offset, limit := parseOffsetLimit(r)

	books, total, err := h.books.List(r.Context(), offset, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list books")
		return
	}

	w.Header().Set("X-Total-Count", strconv.Itoa(total))
	respondCacheable(w, r, books, 60)
}

// Create persists a book and schedules book_created notifications. The
// response never waits on deliveries. An optional Idempotency-Key header
// makes retried requests return the original 201 body without creating a
// second book.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" {
		stored, found, err := h.idempotency.Lookup(r.Context(), idemKey)
		if err != nil {
			h.logger.Error("idempotency lookup failed", "error", err)
		} else if found {
			w.Header().Set("Idempotency-Replay", "true")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			w.Write(stored)
			return
		}
	}

	var req domain.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	book, err := h.books.Create(r.Context(), req.Title, req.Author)
	if err != nil {
		if errors.Is(err, service.ErrInvalid) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create book")
		return
	}

	if idemKey != "" {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(book); err == nil {
			if err := h.idempotency.Store(r.Context(), idemKey, buf.Bytes()); err != nil {
				h.logger.Error("idempotency store failed", "error", err)
			}
		}
	}

	respondJSON(w, http.StatusCreated, book)
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := h.books.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(w, http.StatusNotFound, "book not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete book")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Book deleted"})
}

// parseOffsetLimit clamps negative offsets to zero and missing/invalid
// limits to "no limit".
func parseOffsetLimit(r *http.Request) (int, int) {
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if offset < 0 {
		offset = 0
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 0 {
		limit = 0
	}

	return offset, limit
}
