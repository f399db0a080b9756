package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditSaleCompleted       = "SALE_COMPLETED"
	AuditProductAdded        = "PRODUCT_ADDED"
	AuditProductStockUpdated = "PRODUCT_STOCK_UPDATED"
	AuditProductDeleted      = "PRODUCT_DELETED"
	AuditCustomerAdded       = "CUSTOMER_ADDED"
	AuditUserApproved        = "USER_APPROVED"
	AuditUserUnapproved      = "USER_UNAPPROVED"
	AuditUserRoleChanged     = "USER_ROLE_CHANGED"
	AuditUserDeleted         = "USER_DELETED"
	AuditDataCleared         = "DATA_CLEARED"
)

// AuditLog is an append-only record of who did what.
type AuditLog struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	Action    string            `gorm:"size:64;not null;index" json:"action"`
	UserID    *uuid.UUID        `gorm:"type:uuid;index" json:"userId,omitempty"`
	Username  string            `gorm:"size:255" json:"username"`
	Details   datatypes.JSONMap `gorm:"type:jsonb" json:"details"`
	Timestamp time.Time         `gorm:"not null;index" json:"timestamp"`
}

// BeforeCreate generates a UUID and timestamp before creating a new audit entry
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now()
	}
	return nil
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
