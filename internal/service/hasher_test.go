package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-auth-service/internal/model"
)

func TestHasher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	hasher := NewHasher(bcrypt.MinCost, 2)

	t.Run("verifies its own hash", func(t *testing.T) {
		for _, password := range []string{"pw123", "correct horse battery staple", "ünïcødé"} {
			hash, err := hasher.Hash(ctx, password)
			require.NoError(t, err)
			require.NotEqual(t, password, hash)

			ok, err := hasher.Verify(ctx, password, hash)
			require.NoError(t, err)
			require.True(t, ok)
		}
	})

	t.Run("salts every hash", func(t *testing.T) {
		first, err := hasher.Hash(ctx, "pw123")
		require.NoError(t, err)
		second, err := hasher.Hash(ctx, "pw123")
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("rejects a different password", func(t *testing.T) {
		hash, err := hasher.Hash(ctx, "pw123")
		require.NoError(t, err)

		ok, err := hasher.Verify(ctx, "pw124", hash)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("treats malformed hashes as mismatch", func(t *testing.T) {
		for _, hash := range []string{"", "plaintext", "$2a$10$short"} {
			ok, err := hasher.Verify(ctx, "pw123", hash)
			require.NoError(t, err)
			require.False(t, ok)
		}
	})

	t.Run("rejects passwords bcrypt would truncate", func(t *testing.T) {
		_, err := hasher.Hash(ctx, strings.Repeat("x", model.MaxPasswordLength+1))
		require.ErrorIs(t, err, model.ErrInvalidInput)
	})

	t.Run("does not match beyond the bcrypt limit", func(t *testing.T) {
		stored := strings.Repeat("a", model.MaxPasswordLength)
		hash, err := hasher.Hash(ctx, stored)
		require.NoError(t, err)

		ok, err := hasher.Verify(ctx, stored, hash)
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = hasher.Verify(ctx, stored+"different-suffix", hash)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("gives up when the context ends while waiting", func(t *testing.T) {
		busy := NewHasher(bcrypt.MinCost, 1)
		require.NoError(t, busy.slots.Acquire(ctx, 1))
		defer busy.slots.Release(1)

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := busy.Hash(cancelled, "pw123")
		require.ErrorIs(t, err, context.Canceled)
	})
}
