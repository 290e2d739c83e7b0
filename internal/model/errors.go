package model

import (
	"net/http"

	"go-auth-service/pkg/apierror"
)

var (
	// Sign-up
	ErrUsernameTaken = apierror.New("USERNAME_TAKEN", "Username must be unique", "", http.StatusBadRequest)
	ErrEmailTaken    = apierror.New("EMAIL_TAKEN", "Email must be unique", "", http.StatusBadRequest)

	// Sign-in
	ErrUserNotFound     = apierror.New("USER_NOT_FOUND", "Invalid user", "", http.StatusBadRequest)
	ErrPasswordMismatch = apierror.New("PASSWORD_MISMATCH", "Invalid password", "", http.StatusBadRequest)

	// Tokens
	ErrTokenExpired        = apierror.New("TOKEN_EXPIRED", "Token has been expired", "", http.StatusBadRequest)
	ErrTokenInvalid        = apierror.New("TOKEN_INVALID", "Invalid token", "", http.StatusBadRequest)
	ErrWrongTokenType      = apierror.New("WRONG_TOKEN_TYPE", "Wrong token type", "", http.StatusBadRequest)
	ErrInvalidRefreshToken = apierror.New("INVALID_REFRESH_TOKEN", "Invalid refresh token", "", http.StatusBadRequest)

	// Bearer header
	ErrMissingCredentials = apierror.New("MISSING_CREDENTIALS", "Invalid authorization code", "", http.StatusForbidden)
	ErrInvalidScheme      = apierror.New("INVALID_SCHEME", "Invalid authentication scheme", "", http.StatusForbidden)

	// Access
	ErrUnauthenticated = apierror.New("UNAUTHENTICATED", "Authentication required", "", http.StatusUnauthorized)
	ErrForbidden       = apierror.New("FORBIDDEN", "Access denied", "", http.StatusForbidden)

	// Generic
	ErrInvalidInput = apierror.New("BAD_REQUEST", "Invalid input", "", http.StatusBadRequest)
	ErrNotFound     = apierror.New("NOT_FOUND", "Resource not found", "", http.StatusNotFound)
)
