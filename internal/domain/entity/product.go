package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Money is stored as numeric(12,2) and rendered as a JSON number.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

const (
	DefaultHSNCode  = "9999"
	DefaultMinStock = 10
)

// Product represents a product in the inventory
type Product struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Name              string          `gorm:"size:255;not null;index" json:"name"`
	Quantity          int             `gorm:"not null;default:0;check:quantity >= 0" json:"quantity"`
	Price             decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"price"`
	CostPrice         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"costPrice"`
	HSNCode           string          `gorm:"size:20;not null;default:'9999'" json:"hsnCode"`
	MinStock          int             `gorm:"not null;default:10" json:"minStock"`
	Barcode           *string         `gorm:"size:64;uniqueIndex" json:"barcode,omitempty"`
	CreatedBy         *uuid.UUID      `gorm:"type:uuid;index" json:"createdBy,omitempty"`
	CreatedByUsername string          `gorm:"size:255" json:"createdByUsername,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// Profit is the per-unit margin at current prices.
func (p *Product) Profit() decimal.Decimal {
	return p.Price.Sub(p.CostPrice)
}

// ProfitPercent is the margin over cost, or zero when the cost is unknown.
func (p *Product) ProfitPercent() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.Profit().Div(p.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsLowStock reports whether the quantity is at or below the reorder threshold.
func (p *Product) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

// MarshalJSON adds the derived margin fields to API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		Profit        decimal.Decimal `json:"profit"`
		ProfitPercent decimal.Decimal `json:"profitPercent"`
	}{
		Alias:         Alias(p),
		Profit:        p.Profit(),
		ProfitPercent: p.ProfitPercent(),
	})
}
