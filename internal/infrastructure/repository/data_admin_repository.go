package repository

import (
	"context"

	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type dataAdminRepository struct {
	db *gorm.DB
}

// NewDataAdminRepository creates the repository behind the admin wipe
func NewDataAdminRepository(db *gorm.DB) domainRepo.DataAdminRepository {
	return &dataAdminRepository{db: db}
}

// ClearAll hard-deletes business data. Users holding the admin role survive.
func (r *dataAdminRepository) ClearAll(ctx context.Context) (map[string]int64, error) {
	deleted := make(map[string]int64)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			name  string
			model interface{}
		}{
			{"invoiceItems", &entity.InvoiceItem{}},
			{"invoices", &entity.Invoice{}},
			{"billSequences", &entity.BillSequence{}},
			{"products", &entity.Product{}},
			{"customers", &entity.Customer{}},
			{"auditLogs", &entity.AuditLog{}},
		}
		for _, step := range steps {
			res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(step.model)
			if res.Error != nil {
				return res.Error
			}
			deleted[step.name] = res.RowsAffected
		}

		nonAdmins := tx.Model(&entity.User{}).
			Select("users.id").
			Where(`NOT EXISTS (
				SELECT 1 FROM model_has_roles mr JOIN roles ro ON ro.id = mr.role_id
				WHERE mr.model_id = users.id AND ro.name = ?)`, entity.RoleAdmin)

		if err := tx.Exec("DELETE FROM model_has_roles WHERE model_id IN (?)", nonAdmins).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("id IN (?)", nonAdmins).Delete(&entity.User{})
		if res.Error != nil {
			return res.Error
		}
		deleted["users"] = res.RowsAffected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
