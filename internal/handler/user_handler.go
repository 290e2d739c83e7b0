package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
)

type userAdministrator interface {
	ListUsers(ctx context.Context) ([]model.PublicUser, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
	UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error)
	DeleteUser(ctx context.Context, id int64, actorID int64) error
}

type UserHandler struct {
	users userAdministrator
}

func NewUserHandler(users userAdministrator) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserList{Users: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, r, err)
		return
	}

	if payload.Email != nil {
		trimmed := strings.TrimSpace(*payload.Email)
		payload.Email = &trimmed
	}
	if err := payload.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), userID, payload)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, user.Public())
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	actor, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthenticated)
		return
	}

	if err := h.users.DeleteUser(r.Context(), userID, actor.ID); err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"deleted": true})
}

func userIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, model.ErrInvalidInput.WithDetails("id")
	}

	return id, nil
}
