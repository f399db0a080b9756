package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
)

// AuditRepository appends and reads audit entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	List(ctx context.Context, action string, limit int) ([]entity.AuditLog, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.AuditLog, error)
	// CountByActionForUser returns how many entries the user has per action.
	CountByActionForUser(ctx context.Context, userID uuid.UUID) (map[string]int64, error)
}

// AuditJournal is a local spool for audit entries whose primary write failed.
type AuditJournal interface {
	Append(ctx context.Context, entry *entity.AuditLog) error
	FetchPending(ctx context.Context, limit int) ([]JournalRecord, error)
	MarkSent(ctx context.Context, id int64) error
}

// JournalRecord is a spooled audit entry with its journal row id.
type JournalRecord struct {
	ID    int64
	Entry entity.AuditLog
}
