package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	MaxUsernameLength = 30
	MaxEmailLength    = 60
	MaxPasswordLength = 72
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"is_admin"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser holds the fields a credential store needs to insert a user.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Email        *string
	PasswordHash *string
	IsAdmin      *bool
	IsActive     *bool
}

func (u UserUpdate) Empty() bool {
	return u.Email == nil && u.PasswordHash == nil && u.IsAdmin == nil && u.IsActive == nil
}

type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsAdmin  bool   `json:"is_admin"`
	IsActive bool   `json:"is_active"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		IsAdmin:  u.IsAdmin,
		IsActive: u.IsActive,
	}
}

type UserList struct {
	Users []PublicUser `json:"users"`
}

type TokenKind string

const (
	TokenKindAccess  TokenKind = "access_token"
	TokenKindRefresh TokenKind = "refresh_token"
)

type TokenClaims struct {
	Username string    `json:"username"`
	Type     TokenKind `json:"type"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
