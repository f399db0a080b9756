package request

import "github.com/shopspring/decimal"

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name      string           `json:"name" binding:"required,max=255"`
	Quantity  int              `json:"quantity" binding:"min=0"`
	Price     decimal.Decimal  `json:"price"`
	CostPrice *decimal.Decimal `json:"costPrice"`
	HSNCode   string           `json:"hsnCode" binding:"omitempty,max=20"`
	MinStock  *int             `json:"minStock" binding:"omitempty,min=0"`
}

// UpdateStockRequest sets a product's on-hand quantity
type UpdateStockRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search    string `form:"search"`
	LowStock  bool   `form:"low_stock"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
}
