package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
)

type idempotencyRepository struct {
	rdb *redis.Client
}

// NewIdempotencyRepository stores idempotency records in Redis with a TTL
// matching each record's expiry.
func NewIdempotencyRepository(rdb *redis.Client) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{rdb: rdb}
}

func idempotencyKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf("idempotency:%s:%s", userID, key)
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error) {
	raw, err := r.rdb.Get(ctx, idempotencyKey(userID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var ikey entity.IdempotencyKey
	if err := json.Unmarshal(raw, &ikey); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return &ikey, nil
}

// Reserve is a SETNX lock that expires on its own if the holder dies.
func (r *idempotencyRepository) Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error) {
	raw, ttl, err := encodeRecord(ikey)
	if err != nil || ttl <= 0 {
		return false, err
	}
	return r.rdb.SetNX(ctx, idempotencyKey(ikey.UserID, ikey.Key), raw, ttl).Result()
}

// Complete overwrites the reservation with the stored response.
func (r *idempotencyRepository) Complete(ctx context.Context, ikey *entity.IdempotencyKey) error {
	raw, ttl, err := encodeRecord(ikey)
	if err != nil || ttl <= 0 {
		return err
	}
	return r.rdb.Set(ctx, idempotencyKey(ikey.UserID, ikey.Key), raw, ttl).Err()
}

// Release deletes the key. Only the request holding the reservation calls it,
// and it does so before any response was stored.
func (r *idempotencyRepository) Release(ctx context.Context, key string, userID uuid.UUID) error {
	return r.rdb.Del(ctx, idempotencyKey(userID, key)).Err()
}

func encodeRecord(ikey *entity.IdempotencyKey) ([]byte, time.Duration, error) {
	ttl := time.Until(ikey.ExpiresAt)
	if ikey.CreatedAt.IsZero() {
		ikey.CreatedAt = time.Now()
	}
	raw, err := json.Marshal(ikey)
	return raw, ttl, err
}

// DeleteExpired is a no-op; Redis expires keys on its own.
func (r *idempotencyRepository) DeleteExpired(ctx context.Context) error {
	return nil
}
