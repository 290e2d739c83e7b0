package service

import (
	"context"
	"errors"
	"fmt"

	"go-auth-service/internal/model"
)

// CredentialStore is the persistence contract for user records. Lookups
// return model.ErrUserNotFound when no row matches; Insert and Update return
// model.ErrUsernameTaken or model.ErrEmailTaken on unique violations.
type CredentialStore interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Insert(ctx context.Context, fields model.NewUser) (*model.User, error)
	Update(ctx context.Context, id int64, fields model.UserUpdate) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context) ([]model.User, error)
	// WithinTx runs fn against a store bound to a single transaction.
	WithinTx(ctx context.Context, fn func(tx CredentialStore) error) error
}

type passwordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext string, hashed string) (bool, error)
}

type pairIssuer interface {
	IssuePair(username string) (model.TokenPair, error)
}

type UserService struct {
	store  CredentialStore
	hasher passwordHasher
	tokens pairIssuer
}

func NewUserService(store CredentialStore, hasher passwordHasher, tokens pairIssuer) *UserService {
	return &UserService{store: store, hasher: hasher, tokens: tokens}
}

// EnsureUnique checks the username before the email; the first conflict wins.
func (s *UserService) EnsureUnique(ctx context.Context, store CredentialStore, candidate model.SignUpRequest) error {
	if err := absent(store.FindByUsername(ctx, candidate.Username)); err != nil {
		if errors.Is(err, errTaken) {
			return model.ErrUsernameTaken
		}
		return fmt.Errorf("check username: %w", err)
	}

	if err := absent(store.FindByEmail(ctx, candidate.Email)); err != nil {
		if errors.Is(err, errTaken) {
			return model.ErrEmailTaken
		}
		return fmt.Errorf("check email: %w", err)
	}

	return nil
}

// CreateUser hashes the password and inserts the record. It does not repeat
// the uniqueness checks; the store's constraints catch concurrent duplicates.
func (s *UserService) CreateUser(ctx context.Context, store CredentialStore, candidate model.SignUpRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(ctx, candidate.Password)
	if err != nil {
		return nil, err
	}

	return insertUser(ctx, store, candidate, hash)
}

// SignUp hashes outside the unit of work so the store is not held for the
// duration of a bcrypt round.
func (s *UserService) SignUp(ctx context.Context, candidate model.SignUpRequest) (*model.User, error) {
	hash, err := s.hasher.Hash(ctx, candidate.Password)
	if err != nil {
		return nil, err
	}

	var created *model.User
	err = s.store.WithinTx(ctx, func(tx CredentialStore) error {
		if err := s.EnsureUnique(ctx, tx, candidate); err != nil {
			return err
		}

		user, err := insertUser(ctx, tx, candidate, hash)
		if err != nil {
			return err
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func insertUser(ctx context.Context, store CredentialStore, candidate model.SignUpRequest, hash string) (*model.User, error) {
	return store.Insert(ctx, model.NewUser{
		Username:     candidate.Username,
		Email:        candidate.Email,
		PasswordHash: hash,
	})
}

// CheckCredentials reports unknown users and wrong passwords as distinct
// errors, in that order.
func (s *UserService) CheckCredentials(ctx context.Context, username string, password string) (*model.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrPasswordMismatch
	}

	return user, nil
}

func (s *UserService) SignIn(ctx context.Context, username string, password string) (model.TokenPair, error) {
	user, err := s.CheckCredentials(ctx, username, password)
	if err != nil {
		return model.TokenPair{}, err
	}

	return s.tokens.IssuePair(user.Username)
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, model.ErrNotFound.WithDetails(fmt.Sprintf("user %d", id))
	}

	return user, err
}

func (s *UserService) ListUsers(ctx context.Context) ([]model.PublicUser, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}

	return out, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id int64, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var passwordHash *string
	if req.Password != nil {
		hash, err := s.hasher.Hash(ctx, *req.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	var updated *model.User
	err := s.store.WithinTx(ctx, func(tx CredentialStore) error {
		current, err := tx.FindByID(ctx, id)
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrNotFound.WithDetails(fmt.Sprintf("user %d", id))
		}
		if err != nil {
			return err
		}

		fields := model.UserUpdate{PasswordHash: passwordHash, IsAdmin: req.IsAdmin, IsActive: req.IsActive}

		if req.Email != nil && *req.Email != current.Email {
			if err := absent(tx.FindByEmail(ctx, *req.Email)); err != nil {
				if errors.Is(err, errTaken) {
					return model.ErrEmailTaken
				}
				return fmt.Errorf("check email: %w", err)
			}
			fields.Email = req.Email
		}

		if !fields.Empty() {
			if err := tx.Update(ctx, id, fields); err != nil {
				return err
			}
		}

		updated, err = tx.FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *UserService) DeleteUser(ctx context.Context, id int64, actorID int64) error {
	if id == actorID {
		return model.ErrForbidden.WithDetails("cannot delete your own account")
	}

	err := s.store.Delete(ctx, id)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ErrNotFound.WithDetails(fmt.Sprintf("user %d", id))
	}

	return err
}

// Promote grants the admin flag to an existing user.
func (s *UserService) Promote(ctx context.Context, username string) (*model.User, error) {
	user, err := s.store.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	admin := true
	if err := s.store.Update(ctx, user.ID, model.UserUpdate{IsAdmin: &admin}); err != nil {
		return nil, err
	}
	user.IsAdmin = true

	return user, nil
}

var errTaken = errors.New("taken")

// absent turns a lookup result into nil when nothing matched, errTaken when
// a row exists, or the store's own error.
func absent(_ *model.User, err error) error {
	switch {
	case err == nil:
		return errTaken
	case errors.Is(err, model.ErrUserNotFound):
		return nil
	default:
		return err
	}
}
