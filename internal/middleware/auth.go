package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-auth-service/internal/model"
	"go-auth-service/pkg/apierror"
)

const bearerScheme = "Bearer"

type tokenDecoder interface {
	Decode(tokenString string) (*model.TokenClaims, error)
}

type userFinder interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
}

type contextKey string

const authUserContextKey contextKey = "auth_user"

type AuthMiddleware struct {
	tokens  tokenDecoder
	users   userFinder
	metrics *Metrics
}

func NewAuthMiddleware(tokens tokenDecoder, users userFinder, metrics *Metrics) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, metrics: metrics}
}

// Authenticate resolves the bearer token to a user on every request and
// stores it in the request context. A valid token whose user no longer
// exists leaves the identity nil; handlers that need a user must check.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r.Header.Get("Authorization"))
		if err != nil {
			m.reject(w, r, err)
			return
		}

		claims, err := m.tokens.Decode(token)
		if err != nil {
			m.reject(w, r, err)
			return
		}

		user, err := m.users.FindByUsername(r.Context(), claims.Username)
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			user = nil
		case err != nil:
			m.reject(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), authUserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			m.reject(w, r, model.ErrUnauthenticated)
			return
		}

		if !user.IsAdmin {
			m.reject(w, r, model.ErrForbidden.WithDetails("admin privileges required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user; ok is false when the gate
// did not run or resolved no user.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, _ := ctx.Value(authUserContextKey).(*model.User)
	return user, user != nil
}

// WithUser attaches user to ctx the same way Authenticate does.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, authUserContextKey, user)
}

// bearerToken splits "<scheme> <credentials>". A missing header or missing
// credentials is reported before a wrong scheme.
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", model.ErrMissingCredentials
	}

	scheme, credentials, _ := strings.Cut(header, " ")
	credentials = strings.TrimSpace(credentials)
	if scheme == "" || credentials == "" {
		return "", model.ErrMissingCredentials
	}

	if scheme != bearerScheme {
		return "", model.ErrInvalidScheme
	}

	return credentials, nil
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		slog.ErrorContext(r.Context(), "authentication failed", "error", err)
		writeAPIError(w, http.StatusInternalServerError, &model.APIError{Code: "INTERNAL_ERROR", Message: "Unexpected server error"})
		return
	}

	m.metrics.AuthFailure(apiErr.Code)
	writeAPIError(w, apiErr.HTTPStatus, &model.APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details})
}
