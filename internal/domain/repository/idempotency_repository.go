package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
)

// IdempotencyRepository holds per-user Idempotency-Key records so a retried
// POST /checkout replays the first response instead of issuing a second invoice.
type IdempotencyRepository interface {
	// GetByKey returns the live record for the user's key, or nil.
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)
	// Reserve claims the key for an in-flight request. It reports false when
	// another request already holds or has completed the key.
	Reserve(ctx context.Context, ikey *entity.IdempotencyKey) (bool, error)
	// Complete stores the final response in place of the reservation.
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a reservation whose request did not succeed, so the
	// client can retry with the same key.
	Release(ctx context.Context, key string, userID uuid.UUID) error
	// DeleteExpired removes expired records.
	DeleteExpired(ctx context.Context) error
}
