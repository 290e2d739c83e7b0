package model

import "unicode/utf8"

type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
	IsActive *bool   `json:"is_active"`
}

type AppInfo struct {
	Title string `json:"title"`
}

func (r SignUpRequest) Validate() error {
	switch {
	case r.Username == "":
		return ErrInvalidInput.WithDetails("username is required")
	case utf8.RuneCountInString(r.Username) > MaxUsernameLength:
		return ErrInvalidInput.WithDetails("username is too long")
	case r.Email == "":
		return ErrInvalidInput.WithDetails("email is required")
	case utf8.RuneCountInString(r.Email) > MaxEmailLength:
		return ErrInvalidInput.WithDetails("email is too long")
	case r.Password == "":
		return ErrInvalidInput.WithDetails("password is required")
	case len(r.Password) > MaxPasswordLength:
		return ErrInvalidInput.WithDetails("password is too long")
	}

	return nil
}

func (r SignInRequest) Validate() error {
	if r.Username == "" || r.Password == "" {
		return ErrInvalidInput.WithDetails("username and password are required")
	}

	return nil
}

func (r UpdateUserRequest) Validate() error {
	if r.Email == nil && r.Password == nil && r.IsAdmin == nil && r.IsActive == nil {
		return ErrInvalidInput.WithDetails("no fields to update")
	}
	if r.Email != nil && (*r.Email == "" || utf8.RuneCountInString(*r.Email) > MaxEmailLength) {
		return ErrInvalidInput.WithDetails("email")
	}
	if r.Password != nil && (*r.Password == "" || len(*r.Password) > MaxPasswordLength) {
		return ErrInvalidInput.WithDetails("password")
	}

	return nil
}
