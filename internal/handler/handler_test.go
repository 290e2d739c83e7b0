package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-auth-service/internal/middleware"
	"go-auth-service/internal/model"
)

type stubAccounts struct {
	signUpUser *model.User
	signUpErr  error
	pair       model.TokenPair
	signInErr  error
	gotSignUp  model.SignUpRequest
}

func (s *stubAccounts) SignUp(_ context.Context, candidate model.SignUpRequest) (*model.User, error) {
	s.gotSignUp = candidate
	return s.signUpUser, s.signUpErr
}

func (s *stubAccounts) SignIn(_ context.Context, _ string, _ string) (model.TokenPair, error) {
	return s.pair, s.signInErr
}

type stubRefresher struct {
	pair model.TokenPair
	err  error
}

func (s stubRefresher) Refresh(_ context.Context, token string) (model.TokenPair, error) {
	if s.err != nil {
		return model.TokenPair{}, s.err
	}
	return model.TokenPair{AccessToken: s.pair.AccessToken, RefreshToken: token}, nil
}

type stubAdmin struct {
	users     map[int64]*model.User
	deletedBy int64
}

func (s *stubAdmin) ListUsers(_ context.Context) ([]model.PublicUser, error) {
	out := make([]model.PublicUser, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *stubAdmin) GetUser(_ context.Context, id int64) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return user, nil
}

func (s *stubAdmin) UpdateUser(_ context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	return user, nil
}

func (s *stubAdmin) DeleteUser(_ context.Context, id int64, actorID int64) error {
	if id == actorID {
		return model.ErrForbidden
	}
	s.deletedBy = actorID
	delete(s.users, id)
	return nil
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, data any) model.APIResponse {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *model.APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	if data != nil && len(raw.Data) > 0 {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return model.APIResponse{Success: raw.Success, Error: raw.Error}
}

func TestAuthHandler_SignUp(t *testing.T) {
	accounts := &stubAccounts{signUpUser: &model.User{ID: 7, Username: "alice", Email: "alice@x.com", PasswordHash: "$2a$secret"}}
	h := NewAuthHandler(accounts, stubRefresher{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup",
		strings.NewReader(`{"username":" alice ","email":"alice@x.com","password":"pw123"}`))
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Equal(t, "alice", accounts.gotSignUp.Username)

	var user model.PublicUser
	env := decodeEnvelope(t, rec, &user)
	assert.True(t, env.Success)
	assert.Equal(t, int64(7), user.ID)
}

func TestAuthHandler_SignUpErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
		code   string
	}{
		{name: "bad json", body: `{`, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "missing password", body: `{"username":"a","email":"e"}`, status: http.StatusBadRequest, code: "BAD_REQUEST"},
		{name: "taken", body: `{"username":"a","email":"e","password":"p"}`, err: model.ErrUsernameTaken, status: http.StatusBadRequest, code: "USERNAME_TAKEN"},
		{name: "store down", body: `{"username":"a","email":"e","password":"p"}`, err: errors.New("dial tcp"), status: http.StatusInternalServerError, code: "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(&stubAccounts{signUpErr: tt.err}, stubRefresher{})
			rec := httptest.NewRecorder()
			h.SignUp(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signup", strings.NewReader(tt.body)))

			assert.Equal(t, tt.status, rec.Code)
			env := decodeEnvelope(t, rec, nil)
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.code, env.Error.Code)
			assert.NotContains(t, rec.Body.String(), "dial tcp")
		})
	}
}

func TestAuthHandler_SignIn(t *testing.T) {
	pair := model.TokenPair{AccessToken: "a", RefreshToken: "r"}
	h := NewAuthHandler(&stubAccounts{pair: pair}, stubRefresher{})

	rec := httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(`{"username":"alice","password":"pw123"}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	var got model.TokenPair
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, pair, got)

	h = NewAuthHandler(&stubAccounts{signInErr: model.ErrPasswordMismatch}, stubRefresher{})
	rec = httptest.NewRecorder()
	h.SignIn(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/signin", strings.NewReader(`{"username":"alice","password":"nope"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "PASSWORD_MISMATCH")
}

func TestAuthHandler_Refresh(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{}, stubRefresher{pair: model.TokenPair{AccessToken: "fresh"}})

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"r1"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got model.TokenPair
	decodeEnvelope(t, rec, &got)
	assert.Equal(t, "fresh", got.AccessToken)
	assert.Equal(t, "r1", got.RefreshToken)

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	h = NewAuthHandler(&stubAccounts{}, stubRefresher{err: model.ErrWrongTokenType})
	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"access"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "WRONG_TOKEN_TYPE")
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAccounts{}, stubRefresher{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), &model.User{ID: 3, Username: "alice"}))
	rec := httptest.NewRecorder()
	h.Me(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var user model.PublicUser
	decodeEnvelope(t, rec, &user)
	assert.Equal(t, "alice", user.Username)

	// The gate attaches a nil identity for tokens of deleted users.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), nil))
	rec = httptest.NewRecorder()
	h.Me(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func newUserRouter(admin *stubAdmin, actor *model.User) http.Handler {
	h := NewUserHandler(admin)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithUser(r.Context(), actor)))
		})
	})
	r.Get("/users", h.List)
	r.Get("/users/{id}", h.Get)
	r.Patch("/users/{id}", h.Update)
	r.Delete("/users/{id}", h.Delete)
	return r
}

func TestUserHandler(t *testing.T) {
	admin := &stubAdmin{users: map[int64]*model.User{
		1: {ID: 1, Username: "root", IsAdmin: true},
		2: {ID: 2, Username: "bob", Email: "bob@x.com"},
	}}
	router := newUserRouter(admin, admin.users[1])

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var list model.UserList
		decodeEnvelope(t, rec, &list)
		assert.Len(t, list.Users, 2)
	})

	t.Run("get bad id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/abc", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get missing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/99", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update email", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/users/2", strings.NewReader(`{"email":" new@x.com "}`)))
		require.Equal(t, http.StatusOK, rec.Code)

		var user model.PublicUser
		decodeEnvelope(t, rec, &user)
		assert.Equal(t, "new@x.com", user.Email)
	})

	t.Run("update nothing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/users/2", strings.NewReader(`{}`)))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete self", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/1", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("delete other", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/2", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, int64(1), admin.deletedBy)
		assert.NotContains(t, admin.users, int64(2))
	})
}

func TestSystemHandler(t *testing.T) {
	h := NewSystemHandler("Auth Service", func(context.Context) error { return nil })

	rec := httptest.NewRecorder()
	h.Info(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	var info model.AppInfo
	decodeEnvelope(t, rec, &info)
	assert.Equal(t, "Auth Service", info.Title)

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	down := NewSystemHandler("x", func(context.Context) error { return errors.New("db gone") })
	rec = httptest.NewRecorder()
	down.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
