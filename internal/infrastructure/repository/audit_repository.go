package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type auditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit log repository
func NewAuditRepository(db *gorm.DB) domainRepo.AuditRepository {
	return &auditRepository{db: db}
}

// Create inserts the entry. Replaying an id that is already stored is a no-op.
func (r *auditRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, action string, limit int) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := r.db.WithContext(ctx).Model(&entity.AuditLog{})
	if action != "" {
		query = query.Where("action = ?", action)
	}
	err := query.Order("timestamp DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

func (r *auditRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *auditRepository) CountByActionForUser(ctx context.Context, userID uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Action string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&entity.AuditLog{}).
		Select("action, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("action").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Action] = row.Count
	}
	return counts, nil
}
