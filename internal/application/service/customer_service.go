package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/sangkips/gstpos-api/pkg/pagination"
	"github.com/sangkips/gstpos-api/pkg/utils"
)

// CustomerService handles customer-related operations
type CustomerService struct {
	customerRepo repository.CustomerRepository
	audit        AuditRecorder
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository, audit AuditRecorder) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, audit: audit}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name     string
	Phone    *string
	Address  string
	GSTIN    *string
	Email    *string
	TaxState string
	Actor    Actor
}

// CreateCustomer creates a new customer
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	var fieldErrors []apperror.FieldError

	name := strings.TrimSpace(input.Name)
	if name == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "Name is required"})
	}

	gstin := trimmedOrNil(input.GSTIN)
	if gstin != nil {
		upper := strings.ToUpper(*gstin)
		gstin = &upper
		if !utils.ValidGSTIN(upper) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "gstin", Message: "GSTIN must be a valid 15-character GST number"})
		}
	}

	state, err := enum.ParseTaxState(input.TaxState)
	if err != nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "taxState", Message: err.Error()})
	}

	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError(fieldErrors)
	}

	customer := &entity.Customer{
		ID:                uuid.New(),
		Name:              name,
		Phone:             trimmedOrNil(input.Phone),
		Address:           strings.TrimSpace(input.Address),
		GSTIN:             gstin,
		Email:             trimmedOrNil(input.Email),
		TaxState:          state,
		CreatedBy:         input.Actor.userIDPtr(),
		CreatedByUsername: input.Actor.Username,
	}

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, entity.AuditCustomerAdded, input.Actor, map[string]interface{}{
		"customerId":   customer.ID.String(),
		"customerName": customer.Name,
		"taxState":     customer.TaxState.String(),
	})
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// ListCustomers lists customers matching search by name or phone
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(customers, pag), nil
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
