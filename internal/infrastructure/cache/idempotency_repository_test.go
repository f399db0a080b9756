package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeyFormat(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	assert.Equal(t, "idempotency:11111111-2222-3333-4444-555555555555:abc", idempotencyKey(id, "abc"))
}

func TestIdempotencyRepository_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb, err := NewRedisClient(addr, "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	repo := NewIdempotencyRepository(rdb)
	ctx := context.Background()
	userID := uuid.New()
	key := uuid.NewString()

	got, err := repo.GetByKey(ctx, key, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	lock := &entity.IdempotencyKey{
		Key: key, UserID: userID, Endpoint: "POST /api/v1/checkout",
		ExpiresAt: time.Now().Add(time.Minute),
	}
	ok, err := repo.Reserve(ctx, lock)
	require.NoError(t, err)
	assert.True(t, ok)

	again := *lock
	ok, err = repo.Reserve(ctx, &again)
	require.NoError(t, err)
	assert.False(t, ok, "a held key cannot be reserved twice")

	got, err = repo.GetByKey(ctx, key, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.InProgress())

	done := *lock
	done.ResponseCode = 201
	done.ResponseBody = `{"billNumber":"INV-2026-0001"}`
	require.NoError(t, repo.Complete(ctx, &done))

	got, err = repo.GetByKey(ctx, key, userID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.InProgress())
	assert.Equal(t, done.ResponseBody, got.ResponseBody)

	other := uuid.NewString()
	released := &entity.IdempotencyKey{Key: other, UserID: userID, ExpiresAt: time.Now().Add(time.Minute)}
	ok, err = repo.Reserve(ctx, released)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Release(ctx, other, userID))
	ok, err = repo.Reserve(ctx, released)
	require.NoError(t, err)
	assert.True(t, ok, "a released key can be reserved again")
}
