package apierror

import (
	"errors"
	"fmt"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
	kind       *APIError
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is reports whether target is the error kind e was derived from, so a
// detailed copy produced by WithDetails still matches its sentinel.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok || e == nil {
		return false
	}

	return e == t || (e.kind != nil && e.kind == t)
}

// WithDetails returns a copy of e carrying details. The copy matches e with errors.Is.
func (e *APIError) WithDetails(details string) *APIError {
	kind := e
	if e.kind != nil {
		kind = e.kind
	}

	return &APIError{Code: e.Code, Message: e.Message, Details: details, HTTPStatus: e.HTTPStatus, kind: kind}
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func As(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}
