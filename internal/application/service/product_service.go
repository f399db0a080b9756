package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/pagination"
	"github.com/sangkips/gstpos-api/pkg/utils"
	"github.com/shopspring/decimal"
)

// ProductService handles product-related operations
type ProductService struct {
	productRepo repository.ProductRepository
	audit       AuditRecorder
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, audit AuditRecorder) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		audit:       audit,
	}
}

// CreateProductInput represents the create product input
type CreateProductInput struct {
	Name      string
	Quantity  int
	Price     decimal.Decimal
	CostPrice *decimal.Decimal
	HSNCode   string
	MinStock  *int
	Actor     Actor
}

// CreateProduct creates a new product and assigns its barcode
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*entity.Product, error) {
	var fieldErrors []apperror.FieldError
	name := strings.TrimSpace(input.Name)
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}
	if input.Quantity < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "quantity", Message: "Quantity cannot be negative"})
	}
	if input.Price.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "price", Message: "Price cannot be negative"})
	}
	if input.CostPrice != nil && input.CostPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "costPrice", Message: "Cost price cannot be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	product := &entity.Product{
		ID:                uuid.New(),
		Name:              name,
		Quantity:          input.Quantity,
		Price:             input.Price.Round(2),
		CostPrice:         decimal.Zero,
		HSNCode:           strings.TrimSpace(input.HSNCode),
		MinStock:          entity.DefaultMinStock,
		CreatedBy:         input.Actor.userIDPtr(),
		CreatedByUsername: input.Actor.Username,
	}
	if input.CostPrice != nil {
		product.CostPrice = input.CostPrice.Round(2)
	}
	if product.HSNCode == "" {
		product.HSNCode = entity.DefaultHSNCode
	}
	if input.MinStock != nil && *input.MinStock >= 0 {
		product.MinStock = *input.MinStock
	}
	barcode := utils.GenerateBarcode(product.Name, product.ID)
	product.Barcode = &barcode

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.AuditProductAdded, input.Actor, map[string]interface{}{
		"productId":   product.ID.String(),
		"productName": product.Name,
		"quantity":    product.Quantity,
		"price":       product.Price.InexactFloat64(),
		"barcode":     barcode,
	})
	return product, nil
}

// GetProductByID retrieves a product by ID
func (s *ProductService) GetProductByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// GetProductByBarcode is the scanner lookup used at the till
func (s *ProductService) GetProductByBarcode(ctx context.Context, barcode string) (*entity.Product, error) {
	product, err := s.productRepo.GetByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateStock sets a product's on-hand quantity
func (s *ProductService) UpdateStock(ctx context.Context, id uuid.UUID, quantity int, actor Actor) (*entity.Product, error) {
	if quantity < 0 {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: "quantity", Message: "Quantity cannot be negative"},
		})
	}

	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldQuantity := product.Quantity

	if err := s.productRepo.UpdateQuantity(ctx, id, quantity); err != nil {
		return nil, err
	}
	product.Quantity = quantity

	s.audit.Record(ctx, entity.AuditProductStockUpdated, actor, map[string]interface{}{
		"productId":   product.ID.String(),
		"productName": product.Name,
		"oldQuantity": oldQuantity,
		"newQuantity": quantity,
		"change":      quantity - oldQuantity,
	})
	return product, nil
}

// DeleteProduct soft-deletes a product. Past invoices keep their line snapshots.
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID, actor Actor) error {
	product, err := s.GetProductByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, entity.AuditProductDeleted, actor, map[string]interface{}{
		"productId":   product.ID.String(),
		"productName": product.Name,
	})
	return nil
}

// GetLowStockProducts returns products at or below their minimum stock
func (s *ProductService) GetLowStockProducts(ctx context.Context) ([]entity.Product, error) {
	return s.productRepo.GetLowStock(ctx)
}
