package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/billing"
	"github.com/sangkips/gstpos-api/internal/domain/entity"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/sangkips/gstpos-api/internal/domain/repository"
	"github.com/sangkips/gstpos-api/internal/infrastructure/observability"
	"github.com/sangkips/gstpos-api/pkg/apperror"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const unknownUsername = "Unknown"

// EventPublisher sends domain events to the message bus.
type EventPublisher interface {
	PublishEvent(ctx context.Context, key string, event interface{}) error
}

// InvoiceMailer delivers an invoice to the customer.
type InvoiceMailer interface {
	SendInvoiceEmail(to string, invoice *entity.Invoice) error
}

// SaleCompletedEvent is published after every committed checkout.
type SaleCompletedEvent struct {
	EventID     string           `json:"eventId"`
	Type        string           `json:"type"`
	BillID      uuid.UUID        `json:"billId"`
	BillNumber  string           `json:"billNumber"`
	CustomerID  *uuid.UUID       `json:"customerId,omitempty"`
	GrandTotal  decimal.Decimal  `json:"grandTotal"`
	GSTAmount   decimal.Decimal  `json:"gstAmount"`
	TotalProfit decimal.Decimal  `json:"totalProfit"`
	PaymentMode enum.PaymentMode `json:"paymentMode"`
	ItemCount   int              `json:"itemCount"`
	UnitCount   int              `json:"unitCount"`
	Items       []SaleEventItem  `json:"items"`
	CreatedBy   string           `json:"createdBy"`
	OccurredAt  time.Time        `json:"occurredAt"`
}

type SaleEventItem struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

// CheckoutItemInput is one cart line as sent by the till.
type CheckoutItemInput struct {
	ProductID uuid.UUID
	Price     decimal.Decimal
	Quantity  int
}

// CheckoutInput is a validated-at-the-boundary checkout request.
type CheckoutInput struct {
	CustomerID      *uuid.UUID
	Items           []CheckoutItemInput
	DiscountPercent decimal.Decimal
	CustomerState   string
	PaymentMode     string
	CashAmount      decimal.Decimal
	UPIAmount       decimal.Decimal
	CardAmount      decimal.Decimal
	Actor           Actor
}

// CheckoutService turns a cart into a committed invoice.
type CheckoutService struct {
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	invoiceRepo  repository.InvoiceRepository
	audit        AuditRecorder
	events       EventPublisher
	mailer       InvoiceMailer
	logger       *zap.Logger

	now     func() time.Time
	async   func(func()) // post-commit work kept off the request path
	pending sync.WaitGroup
}

// NewCheckoutService creates a new checkout service. events and mailer may be nil.
func NewCheckoutService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	audit AuditRecorder,
	events EventPublisher,
	mailer InvoiceMailer,
	logger *zap.Logger,
) *CheckoutService {
	s := &CheckoutService{
		productRepo:  productRepo,
		customerRepo: customerRepo,
		invoiceRepo:  invoiceRepo,
		audit:        audit,
		events:       events,
		mailer:       mailer,
		logger:       logger,
		now:          time.Now,
	}
	s.async = s.runTracked
	return s
}

// Checkout validates the request, prices the cart, and commits the stock
// decrement, bill number and invoice together. Nothing is written unless
// all three succeed. Audit, event and e-mail follow the commit and cannot
// fail the sale.
func (s *CheckoutService) Checkout(ctx context.Context, in *CheckoutInput) (*entity.Invoice, error) {
	start := s.now()
	ctx, span := observability.StartSpan(ctx, "checkout")
	defer span.End()

	invoice, err := s.checkout(ctx, in)

	result := checkoutResult(err)
	observability.CheckoutsTotal.WithLabelValues(result).Inc()
	observability.CheckoutDuration.Observe(time.Since(start).Seconds())
	span.SetAttributes(attribute.String("checkout.result", result))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.String("checkout.bill_number", invoice.BillNumber))
	observability.CheckoutGrandTotal.Observe(invoice.GrandTotal.InexactFloat64())

	s.afterCommit(ctx, invoice, in.Actor)
	return invoice, nil
}

// runTracked runs f in the background and counts it until it returns.
func (s *CheckoutService) runTracked(f func()) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		f()
	}()
}

// Drain waits for queued invoice e-mails to finish, or for ctx to end.
func (s *CheckoutService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *CheckoutService) checkout(ctx context.Context, in *CheckoutInput) (*entity.Invoice, error) {
	state, err := enum.ParseTaxState(in.CustomerState)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	mode, err := enum.ParsePaymentMode(in.PaymentMode)
	if err != nil {
		return nil, invalidRequest(err.Error())
	}
	if err := billing.ValidateDiscount(in.DiscountPercent); err != nil {
		return nil, invalidRequest(err.Error())
	}

	lines := make([]billing.Line, len(in.Items))
	for i, item := range in.Items {
		lines[i] = billing.Line{ProductID: item.ProductID, Quantity: item.Quantity, UnitPrice: item.Price}
	}
	if err := billing.ValidateLines(lines); err != nil {
		return nil, invalidRequest(err.Error())
	}

	var customer *entity.Customer
	if in.CustomerID != nil {
		customer, err = s.customerRepo.GetByID(ctx, *in.CustomerID)
		if err != nil {
			return nil, s.storageError(ctx, "load customer", err)
		}
		if customer == nil {
			return nil, apperror.Wrap(http.StatusNotFound, apperror.ReasonCustomerNotFound,
				fmt.Sprintf("Customer %s not found", *in.CustomerID), nil)
		}
		if strings.TrimSpace(in.CustomerState) == "" {
			state = customer.TaxState
		}
	}

	products, err := s.loadProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	// Stock is checked again atomically at commit; this read only gives
	// the common case a readable error without touching the database.
	decrements := make(map[uuid.UUID]int)
	for i := range lines {
		p := products[lines[i].ProductID]
		lines[i].ProductName = p.Name
		lines[i].HSNCode = p.HSNCode
		lines[i].CostPrice = p.CostPrice
		decrements[p.ID] += lines[i].Quantity
	}
	var short []uuid.UUID
	for id, qty := range decrements {
		if products[id].Quantity < qty {
			short = append(short, id)
		}
	}
	if len(short) > 0 {
		return nil, insufficientStock(short, products)
	}

	_, computeSpan := observability.StartSpan(ctx, "checkout.compute")
	raw := billing.Compute(billing.Input{Lines: lines, DiscountPercent: in.DiscountPercent, State: state})
	totals := raw.Round()
	computeSpan.End()

	var splitJSON datatypes.JSON
	if mode.IsSplit() {
		split := billing.Split{Cash: in.CashAmount, UPI: in.UPIAmount, Card: in.CardAmount}
		if err := billing.ValidateSplit(raw.GrandTotal, split); err != nil {
			return nil, apperror.Wrap(http.StatusBadRequest, apperror.ReasonInvalidPaymentSplit, err.Error(), err)
		}
		splitJSON, err = json.Marshal(entity.SplitPayment{
			CashAmount:  split.Cash.Round(2),
			UPIAmount:   split.UPI.Round(2),
			CardAmount:  split.Card.Round(2),
			TotalAmount: totals.GrandTotal,
		})
		if err != nil {
			return nil, s.storageError(ctx, "encode split payment", err)
		}
	}

	invoice := s.buildInvoice(in, customer, state, mode, totals)
	invoice.SplitPayment = splitJSON

	persistCtx, persistSpan := observability.StartSpan(ctx, "checkout.persist")
	err = s.invoiceRepo.CreateWithStock(persistCtx, invoice, decrements)
	persistSpan.End()
	if err != nil {
		var stockErr *repository.StockError
		if errors.As(err, &stockErr) {
			return nil, insufficientStock(stockErr.ProductIDs, products)
		}
		s.logger.Error("checkout commit failed; transaction rolled back",
			zap.Int("lines", len(lines)),
			zap.Any("decrements", decrements),
			zap.String("grand_total", totals.GrandTotal.StringFixed(2)),
			zap.Error(err))
		return nil, apperror.NewStorageError(err)
	}

	return invoice, nil
}

// loadProducts fetches every distinct product in one query. Any id that does
// not resolve rejects the whole checkout.
func (s *CheckoutService) loadProducts(ctx context.Context, lines []billing.Line) (map[uuid.UUID]*entity.Product, error) {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		if !seen[l.ProductID] {
			seen[l.ProductID] = true
			ids = append(ids, l.ProductID)
		}
	}

	found, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, s.storageError(ctx, "load products", err)
	}

	products := make(map[uuid.UUID]*entity.Product, len(found))
	for i := range found {
		products[found[i].ID] = &found[i]
	}

	var missing []string
	for _, id := range ids {
		if _, ok := products[id]; !ok {
			missing = append(missing, id.String())
		}
	}
	if len(missing) > 0 {
		return nil, apperror.Wrap(http.StatusNotFound, apperror.ReasonProductNotFound,
			"Product not found: "+strings.Join(missing, ", "), nil)
	}
	return products, nil
}

func (s *CheckoutService) buildInvoice(
	in *CheckoutInput,
	customer *entity.Customer,
	state enum.TaxState,
	mode enum.PaymentMode,
	totals billing.Totals,
) *entity.Invoice {
	now := s.now()
	username := strings.TrimSpace(in.Actor.Username)
	if username == "" {
		username = unknownUsername
	}

	invoice := &entity.Invoice{
		ID:                uuid.New(),
		BillYear:          now.Year(),
		BillDate:          now,
		CustomerName:      entity.WalkInCustomerName,
		CustomerState:     state,
		IsSameState:       state.IsSameState(),
		Subtotal:          totals.Subtotal,
		DiscountPercent:   in.DiscountPercent,
		DiscountAmount:    totals.DiscountAmount,
		AfterDiscount:     totals.AfterDiscount,
		CGST:              totals.CGST,
		SGST:              totals.SGST,
		IGST:              totals.IGST,
		GSTAmount:         totals.GSTAmount,
		GrandTotal:        totals.GrandTotal,
		TotalCost:         totals.TotalCost,
		TotalProfit:       totals.TotalProfit,
		PaymentMode:       mode,
		PaymentStatus:     entity.PaymentStatusPaid,
		CreatedBy:         in.Actor.userIDPtr(),
		CreatedByUsername: username,
		Items:             make([]entity.InvoiceItem, len(totals.Lines)),
	}

	if customer != nil {
		invoice.CustomerID = &customer.ID
		invoice.CustomerName = customer.Name
		invoice.CustomerPhone = copyString(customer.Phone)
		invoice.CustomerAddress = customer.Address
		invoice.CustomerGSTIN = copyString(customer.GSTIN)
		invoice.CustomerEmail = copyString(customer.Email)
	}

	for i, l := range totals.Lines {
		invoice.Items[i] = entity.InvoiceItem{
			ID:           uuid.New(),
			InvoiceID:    invoice.ID,
			Position:     i,
			ProductID:    l.ProductID,
			ProductName:  l.ProductName,
			HSNCode:      l.HSNCode,
			Quantity:     l.Quantity,
			CostPrice:    l.CostPrice,
			UnitPrice:    l.UnitPrice,
			LineSubtotal: l.LineSubtotal,
			LineCost:     l.LineCost,
			LineProfit:   l.LineProfit,
		}
	}
	return invoice
}

func (s *CheckoutService) afterCommit(ctx context.Context, invoice *entity.Invoice, actor Actor) {
	if actor.Username == "" {
		actor.Username = invoice.CreatedByUsername
	}

	s.audit.Record(ctx, entity.AuditSaleCompleted, actor, map[string]interface{}{
		"billId":       invoice.ID.String(),
		"billNumber":   invoice.BillNumber,
		"customerName": invoice.CustomerName,
		"grandTotal":   invoice.GrandTotal.InexactFloat64(),
		"profit":       invoice.TotalProfit.InexactFloat64(),
		"itemCount":    len(invoice.Items),
		"paymentMode":  invoice.PaymentMode.String(),
	})

	if s.events != nil {
		s.publishSaleCompleted(ctx, invoice)
	}

	if s.mailer != nil && invoice.CustomerEmail != nil && *invoice.CustomerEmail != "" {
		to := *invoice.CustomerEmail
		s.async(func() {
			if err := s.mailer.SendInvoiceEmail(to, invoice); err != nil {
				s.logger.Warn("invoice email failed",
					zap.String("bill_number", invoice.BillNumber),
					zap.Error(err))
			}
		})
	}
}

func (s *CheckoutService) publishSaleCompleted(ctx context.Context, invoice *entity.Invoice) {
	items := make([]SaleEventItem, len(invoice.Items))
	for i, it := range invoice.Items {
		items[i] = SaleEventItem{ProductID: it.ProductID, Quantity: it.Quantity}
	}
	event := SaleCompletedEvent{
		EventID:     uuid.NewString(),
		Type:        "SaleCompleted",
		BillID:      invoice.ID,
		BillNumber:  invoice.BillNumber,
		CustomerID:  invoice.CustomerID,
		GrandTotal:  invoice.GrandTotal,
		GSTAmount:   invoice.GSTAmount,
		TotalProfit: invoice.TotalProfit,
		PaymentMode: invoice.PaymentMode,
		ItemCount:   len(invoice.Items),
		UnitCount:   invoice.UnitCount(),
		Items:       items,
		CreatedBy:   invoice.CreatedByUsername,
		OccurredAt:  invoice.BillDate,
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.events.PublishEvent(pubCtx, invoice.BillNumber, event); err != nil {
		observability.SaleEventsPublished.WithLabelValues("failure").Inc()
		s.logger.Warn("sale event publish failed",
			zap.String("bill_number", invoice.BillNumber),
			zap.Error(err))
		return
	}
	observability.SaleEventsPublished.WithLabelValues("success").Inc()
}

func (s *CheckoutService) storageError(ctx context.Context, op string, err error) error {
	s.logger.Error("checkout storage read failed", zap.String("op", op), zap.Error(err))
	return apperror.NewStorageError(err)
}

func invalidRequest(msg string) error {
	return apperror.Wrap(http.StatusBadRequest, apperror.ReasonInvalidCheckoutRequest, msg, nil)
}

func insufficientStock(ids []uuid.UUID, products map[uuid.UUID]*entity.Product) error {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if p, ok := products[id]; ok {
			names = append(names, fmt.Sprintf("%s (available %d)", p.Name, p.Quantity))
		} else {
			names = append(names, id.String())
		}
	}
	return apperror.Wrap(http.StatusConflict, apperror.ReasonInsufficientStock,
		"Insufficient stock for: "+strings.Join(names, ", "), repository.ErrInsufficientStock)
}

func checkoutResult(err error) string {
	if err == nil {
		return observability.ResultSuccess
	}
	switch apperror.GetAppError(err).Reason {
	case apperror.ReasonInvalidCheckoutRequest:
		return observability.ResultInvalid
	case apperror.ReasonInvalidPaymentSplit:
		return observability.ResultInvalidSplit
	case apperror.ReasonProductNotFound, apperror.ReasonCustomerNotFound:
		return observability.ResultNotFound
	case apperror.ReasonInsufficientStock:
		return observability.ResultInsufficientStock
	}
	return observability.ResultError
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
