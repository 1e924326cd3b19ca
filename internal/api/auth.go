package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ndquoc/library-notify/internal/auth"
	"github.com/ndquoc/library-notify/internal/domain"
	"github.com/ndquoc/library-notify/internal/store"
)

type AuthHandler struct {
	users  store.UserStore
	tokens *auth.Tokens
	logger *slog.Logger
}

func NewAuthHandler(users store.UserStore, tokens *auth.Tokens, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, logger: logger}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	// No pre-read: the store enforces uniqueness, so concurrent
	// registrations of the same name resolve to one 201 and one 409.
	user, err := h.users.CreateUser(r.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			respondError(w, http.StatusConflict, "username already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "username", user.Username)
	respondJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		h.logger.Warn("failed login attempt", "username", req.Username)
		respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	respondJSON(w, http.StatusOK, map[string]string{"access_token": token})
}
