package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go-auth-service/internal/model"
)

// memoryStore is a CredentialStore backed by a map. WithinTx runs fn against
// the same store; the tests here never need rollback.
type memoryStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
	// lookupErr, when set, is returned by every lookup.
	lookupErr error
	inTx      atomic.Bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: map[int64]model.User{}}
}

func (s *memoryStore) FindByID(_ context.Context, id int64) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.ID == id })
}

func (s *memoryStore) FindByUsername(_ context.Context, username string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Username == username })
}

func (s *memoryStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	return s.find(func(u model.User) bool { return u.Email == email })
}

func (s *memoryStore) find(match func(model.User) bool) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookupErr != nil {
		return nil, s.lookupErr
	}

	for _, u := range s.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}

	return nil, model.ErrUserNotFound
}

func (s *memoryStore) Insert(_ context.Context, fields model.NewUser) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == fields.Username {
			return nil, model.ErrUsernameTaken
		}
		if u.Email == fields.Email {
			return nil, model.ErrEmailTaken
		}
	}

	s.nextID++
	now := time.Now().UTC()
	user := model.User{
		ID:           s.nextID,
		Username:     fields.Username,
		Email:        fields.Email,
		PasswordHash: fields.PasswordHash,
		IsAdmin:      fields.IsAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.users[user.ID] = user

	return &user, nil
}

func (s *memoryStore) Update(_ context.Context, id int64, fields model.UserUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	if fields.Email != nil {
		user.Email = *fields.Email
	}
	if fields.PasswordHash != nil {
		user.PasswordHash = *fields.PasswordHash
	}
	if fields.IsAdmin != nil {
		user.IsAdmin = *fields.IsAdmin
	}
	if fields.IsActive != nil {
		user.IsActive = *fields.IsActive
	}
	s.users[id] = user

	return nil
}

func (s *memoryStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)

	return nil
}

func (s *memoryStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })

	return out, nil
}

func (s *memoryStore) WithinTx(_ context.Context, fn func(tx CredentialStore) error) error {
	s.inTx.Store(true)
	defer s.inTx.Store(false)

	return fn(s)
}

// txWatchingHasher counts hashes computed while the store has a unit of work open.
type txWatchingHasher struct {
	*Hasher
	store    *memoryStore
	hashesTx atomic.Int32
}

func (h *txWatchingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if h.store.inTx.Load() {
		h.hashesTx.Add(1)
	}
	return h.Hasher.Hash(ctx, plaintext)
}
