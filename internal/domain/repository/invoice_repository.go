package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/sangkips/gstpos-api/pkg/pagination"
)

// ErrInsufficientStock is returned by CreateWithStock when at least one
// conditional decrement matched no row. Nothing is written in that case.
var ErrInsufficientStock = errors.New("insufficient stock")

// StockError lists the products whose stock could not cover the cart.
type StockError struct {
	ProductIDs []uuid.UUID
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %d product(s)", len(e.ProductIDs))
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}

// InvoiceRepository is the append-only ledger. There is no update or delete
// for individual invoices.
type InvoiceRepository interface {
	// CreateWithStock commits a sale in one transaction: it decrements every
	// product in decrements only if its quantity covers the amount, allocates
	// the next bill number for the invoice's year, and inserts the invoice and
	// its items. On a stock shortfall it returns a *StockError and rolls back.
	CreateWithStock(ctx context.Context, invoice *entity.Invoice, decrements map[uuid.UUID]int) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, params *InvoiceFilterParams) ([]entity.Invoice, int64, error)
	ListAll(ctx context.Context) ([]entity.Invoice, error)
	Count(ctx context.Context) (int64, error)
}

// InvoiceFilterParams contains filtering parameters for invoice queries
type InvoiceFilterParams struct {
	Pagination  *pagination.PaginationParams
	From        *time.Time
	To          *time.Time
	PaymentMode enum.PaymentMode
	Search      string
}
