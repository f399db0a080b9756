package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"gorm.io/gorm"
)

// WalkInCustomerName is snapshotted onto invoices that have no customer record.
const WalkInCustomerName = "Walk-in Customer"

// Customer represents a buyer who can be attached to an invoice
type Customer struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name              string         `gorm:"size:255;not null;index" json:"name"`
	Phone             *string        `gorm:"size:50" json:"phone,omitempty"`
	Address           string         `gorm:"type:text" json:"address"`
	GSTIN             *string        `gorm:"size:15;column:gstin" json:"gstin,omitempty"`
	Email             *string        `gorm:"size:255" json:"email,omitempty"`
	TaxState          enum.TaxState  `gorm:"not null;default:0" json:"taxState"`
	CreatedBy         *uuid.UUID     `gorm:"type:uuid;index" json:"createdBy,omitempty"`
	CreatedByUsername string         `gorm:"size:255" json:"createdByUsername,omitempty"`
	CreatedAt         time.Time      `json:"createdAt"`
	UpdatedAt         time.Time      `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
