package entity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const PaymentStatusPaid = "Paid"

// Invoice is a completed sale. Rows are written once at checkout and never
// updated; every customer and product field is a snapshot.
type Invoice struct {
	ID                uuid.UUID        `gorm:"type:uuid;primary_key" json:"billId"`
	BillNumber        string           `gorm:"size:32;uniqueIndex;not null" json:"billNumber"`
	BillYear          int              `gorm:"not null;index" json:"-"`
	BillDate          time.Time        `gorm:"not null;index" json:"billDate"`
	CustomerID        *uuid.UUID       `gorm:"type:uuid;index" json:"customerId,omitempty"`
	CustomerName      string           `gorm:"size:255;not null" json:"customerName"`
	CustomerPhone     *string          `gorm:"size:50" json:"customerPhone"`
	CustomerAddress   string           `gorm:"type:text" json:"customerAddress"`
	CustomerGSTIN     *string          `gorm:"size:15;column:customer_gstin" json:"customerGstin,omitempty"`
	CustomerEmail     *string          `gorm:"size:255" json:"-"`
	CustomerState     enum.TaxState    `gorm:"not null;default:0" json:"customerState"`
	IsSameState       bool             `gorm:"not null" json:"isSameState"`
	Subtotal          decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountPercent   decimal.Decimal  `gorm:"type:numeric(5,2);not null" json:"discountPercent"`
	DiscountAmount    decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"discountAmount"`
	AfterDiscount     decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"afterDiscount"`
	CGST              decimal.Decimal  `gorm:"type:numeric(12,2);not null;column:cgst" json:"cgst"`
	SGST              decimal.Decimal  `gorm:"type:numeric(12,2);not null;column:sgst" json:"sgst"`
	IGST              decimal.Decimal  `gorm:"type:numeric(12,2);not null;column:igst" json:"igst"`
	GSTAmount         decimal.Decimal  `gorm:"type:numeric(12,2);not null;column:gst_amount" json:"gstAmount"`
	GrandTotal        decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"grandTotal"`
	TotalCost         decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"totalCost"`
	TotalProfit       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"totalProfit"`
	PaymentMode       enum.PaymentMode `gorm:"size:10;not null;index" json:"paymentMode"`
	PaymentStatus     string           `gorm:"size:20;not null;default:'Paid'" json:"paymentStatus"`
	SplitPayment      datatypes.JSON   `gorm:"type:jsonb" json:"splitPaymentDetails,omitempty"`
	CreatedBy         *uuid.UUID       `gorm:"type:uuid;index" json:"createdBy,omitempty"`
	CreatedByUsername string           `gorm:"size:255" json:"createdByUsername"`
	CreatedAt         time.Time        `json:"createdAt"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`
}

// BeforeCreate generates a UUID before creating a new invoice
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// UnitCount is the total number of units sold on the invoice.
func (i *Invoice) UnitCount() int {
	n := 0
	for _, item := range i.Items {
		n += item.Quantity
	}
	return n
}

// SplitDetails decodes the split-payment block; nil when the invoice was not split.
func (i *Invoice) SplitDetails() (*SplitPayment, error) {
	if len(i.SplitPayment) == 0 {
		return nil, nil
	}
	var split SplitPayment
	if err := json.Unmarshal(i.SplitPayment, &split); err != nil {
		return nil, fmt.Errorf("decode split payment: %w", err)
	}
	return &split, nil
}

// InvoiceItem is the per-line snapshot captured at checkout.
type InvoiceItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	InvoiceID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"-"`
	Position     int             `gorm:"not null" json:"-"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"productId"`
	ProductName  string          `gorm:"size:255;not null" json:"productName"`
	HSNCode      string          `gorm:"size:20" json:"hsnCode"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	CostPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"costPrice"`
	UnitPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unitPrice"`
	LineSubtotal decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lineSubtotal"`
	LineCost     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lineCost"`
	LineProfit   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"lineProfit"`
}

// BeforeCreate generates a UUID before creating a new invoice item
func (it *InvoiceItem) BeforeCreate(tx *gorm.DB) error {
	if it.ID == uuid.Nil {
		it.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the InvoiceItem model
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// SplitPayment records how a split-mode invoice was paid.
type SplitPayment struct {
	CashAmount  decimal.Decimal `json:"cashAmount"`
	UPIAmount   decimal.Decimal `json:"upiAmount"`
	CardAmount  decimal.Decimal `json:"cardAmount"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

// BillSequence is the per-year counter behind INV-<year>-NNNN numbers.
type BillSequence struct {
	Year      int       `gorm:"primaryKey;autoIncrement:false" json:"year"`
	Value     int64     `gorm:"not null" json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the BillSequence model
func (BillSequence) TableName() string {
	return "bill_sequences"
}

// FormatBillNumber renders the human-readable bill number for a sequence value.
func FormatBillNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%04d", year, seq)
}
