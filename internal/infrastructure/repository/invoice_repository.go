package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/gstpos-api/internal/domain/repository"
	"gorm.io/gorm"
)

const nextBillSequenceSQL = `
INSERT INTO bill_sequences (year, value, updated_at) VALUES (?, 1, NOW())
ON CONFLICT (year) DO UPDATE SET value = bill_sequences.value + 1, updated_at = NOW()
RETURNING value`

type invoiceRepository struct {
	db *gorm.DB
}

// NewInvoiceRepository creates a new invoice repository
func NewInvoiceRepository(db *gorm.DB) domainRepo.InvoiceRepository {
	return &invoiceRepository{db: db}
}

// decrementOrder validates every amount and returns the product ids in a
// fixed order, which keeps concurrent checkouts from deadlocking on row locks.
func decrementOrder(decrements map[uuid.UUID]int) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(decrements))
	for id, amount := range decrements {
		if amount <= 0 {
			return nil, fmt.Errorf("decrement product %s: amount %d must be positive", id, amount)
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids, nil
}

// CreateWithStock decrements stock, numbers the bill and inserts the invoice
// in a single transaction. A rolled-back transaction also rolls back its
// sequence increment, so bill numbers stay gap-free.
func (r *invoiceRepository) CreateWithStock(ctx context.Context, invoice *entity.Invoice, decrements map[uuid.UUID]int) error {
	ids, err := decrementOrder(decrements)
	if err != nil {
		return err
	}

	var failedIDs []uuid.UUID
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, id := range ids {
			amount := decrements[id]
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND quantity >= ?", id, amount).
				Update("quantity", gorm.Expr("quantity - ?", amount))
			if result.Error != nil {
				return fmt.Errorf("decrement product %s: %w", id, result.Error)
			}
			if result.RowsAffected == 0 {
				failedIDs = append(failedIDs, id)
			}
		}
		if len(failedIDs) > 0 {
			return &domainRepo.StockError{ProductIDs: failedIDs}
		}

		var seq int64
		if err := tx.Raw(nextBillSequenceSQL, invoice.BillYear).Scan(&seq).Error; err != nil {
			return fmt.Errorf("allocate bill number: %w", err)
		}
		invoice.BillNumber = entity.FormatBillNumber(invoice.BillYear, seq)

		if err := tx.Create(invoice).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		invoice.BillNumber = ""
	}
	return err
}

func (r *invoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	var invoice entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &invoice, err
}

func (r *invoiceRepository) List(ctx context.Context, params *domainRepo.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	var invoices []entity.Invoice
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Invoice{})

	if params.From != nil {
		query = query.Where("bill_date >= ?", *params.From)
	}
	if params.To != nil {
		query = query.Where("bill_date < ?", *params.To)
	}
	if params.PaymentMode != "" {
		query = query.Where("payment_mode = ?", params.PaymentMode)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("bill_number ILIKE ? OR customer_name ILIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Find(&invoices).Error

	return invoices, total, err
}

func (r *invoiceRepository) ListAll(ctx context.Context) ([]entity.Invoice, error) {
	var invoices []entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&entity.Invoice{}).Count(&total).Error
	return total, err
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}
