package handler

import (
	"context"
	"net/http"
	"strings"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
)

type accountService interface {
	SignUp(ctx context.Context, candidate model.SignUpRequest) (*model.User, error)
	SignIn(ctx context.Context, username string, password string) (model.TokenPair, error)
}

type tokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (model.TokenPair, error)
}

type AuthHandler struct {
	accounts accountService
	tokens   tokenRefresher
}

func NewAuthHandler(accounts accountService, tokens tokenRefresher) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var payload model.SignUpRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	payload.Email = strings.TrimSpace(payload.Email)
	if err := payload.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.accounts.SignUp(r.Context(), payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user.Public())
}

func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var payload model.SignInRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	payload.Username = strings.TrimSpace(payload.Username)
	if err := payload.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	tokens, err := h.accounts.SignIn(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var payload model.RefreshRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	payload.RefreshToken = strings.TrimSpace(payload.RefreshToken)
	if payload.RefreshToken == "" {
		writeError(w, r, model.ErrInvalidInput.WithDetails("refresh_token is required"))
		return
	}

	tokens, err := h.tokens.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

// Me returns the identity the auth gate attached. A token for a deleted user
// passes the gate with no identity and is rejected here.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	writeSuccess(w, http.StatusOK, user.Public())
}
