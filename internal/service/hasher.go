package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"go-auth-service/internal/model"
)

// Hasher hashes and verifies passwords with bcrypt. Hashing is CPU bound, so
// the number of concurrent hash/verify calls is capped.
type Hasher struct {
	cost  int
	slots *semaphore.Weighted
}

func NewHasher(cost int, concurrency int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	return &Hasher{cost: cost, slots: semaphore.NewWeighted(int64(concurrency))}
}

func (h *Hasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > model.MaxPasswordLength {
		return "", model.ErrInvalidInput.WithDetails("password is too long")
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.slots.Release(1)

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", model.ErrInvalidInput.WithDetails("password is too long")
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	return string(hash), nil
}

// Verify reports whether plaintext matches hashed. A malformed hash is a
// mismatch, not an error; the error result is only set when ctx ends first.
// Passwords Hash would refuse never match, since bcrypt ignores bytes past 72.
func (h *Hasher) Verify(ctx context.Context, plaintext string, hashed string) (bool, error) {
	if len(plaintext) > model.MaxPasswordLength {
		return false, nil
	}

	if err := h.slots.Acquire(ctx, 1); err != nil {
		return false, fmt.Errorf("wait for hash slot: %w", err)
	}
	defer h.slots.Release(1)

	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil, nil
}
