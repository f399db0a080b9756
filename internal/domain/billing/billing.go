// Package billing computes GST invoice totals for a cart.
//
// All arithmetic is exact decimal. Nothing is rounded until Round is called,
// which rounds every currency field half away from zero to two places.
package billing

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

var (
	// CGSTRate and SGSTRate apply to same-state sales, IGSTRate to inter-state sales.
	CGSTRate = decimal.RequireFromString("0.09")
	SGSTRate = decimal.RequireFromString("0.09")
	IGSTRate = decimal.RequireFromString("0.18")

	// SplitTolerance is the largest allowed gap between the split tenders and the grand total.
	SplitTolerance = decimal.RequireFromString("0.01")

	hundred = decimal.NewFromInt(100)
)

// MaxQuantity caps a line, and the total of all lines for one product, so
// stock arithmetic can never wrap around.
const MaxQuantity = math.MaxInt32

var (
	ErrInvalidRequest = errors.New("invalid checkout request")
	ErrInvalidSplit   = errors.New("invalid payment split")
)

// Line is one priced cart line. CostPrice comes from the product record,
// UnitPrice is whatever the cashier charged.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	HSNCode     string
	Quantity    int
	UnitPrice   decimal.Decimal
	CostPrice   decimal.Decimal
}

type Input struct {
	Lines           []Line
	DiscountPercent decimal.Decimal
	State           enum.TaxState
}

type LineResult struct {
	Line
	LineSubtotal decimal.Decimal
	LineCost     decimal.Decimal
	LineProfit   decimal.Decimal
}

type Totals struct {
	Lines          []LineResult
	Subtotal       decimal.Decimal
	TotalCost      decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	CGST           decimal.Decimal
	SGST           decimal.Decimal
	IGST           decimal.Decimal
	GSTAmount      decimal.Decimal
	GrandTotal     decimal.Decimal
	TotalProfit    decimal.Decimal
}

// Split is the tender breakdown of a split-mode payment.
type Split struct {
	Cash decimal.Decimal
	UPI  decimal.Decimal
	Card decimal.Decimal
}

func (s Split) Sum() decimal.Decimal {
	return s.Cash.Add(s.UPI).Add(s.Card)
}

// ValidateDiscount checks that the percentage lies in [0, 100].
func ValidateDiscount(pct decimal.Decimal) error {
	if pct.IsNegative() || pct.GreaterThan(hundred) {
		return fmt.Errorf("%w: discountPercent must be between 0 and 100", ErrInvalidRequest)
	}
	return nil
}

// ValidateLines checks the shape of the cart before any product is read.
func ValidateLines(lines []Line) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidRequest)
	}
	perProduct := make(map[uuid.UUID]int, len(lines))
	for i, l := range lines {
		if l.ProductID == uuid.Nil {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidRequest, i)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be greater than 0", ErrInvalidRequest, i)
		}
		if l.Quantity > MaxQuantity-perProduct[l.ProductID] {
			return fmt.Errorf("%w: items[%d].quantity exceeds %d for one product", ErrInvalidRequest, i, MaxQuantity)
		}
		perProduct[l.ProductID] += l.Quantity
		if l.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: items[%d].price must not be negative", ErrInvalidRequest, i)
		}
	}
	return nil
}

// Compute runs the invoice arithmetic without rounding.
func Compute(in Input) Totals {
	t := Totals{Lines: make([]LineResult, 0, len(in.Lines))}

	for _, l := range in.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		r := LineResult{
			Line:         l,
			LineSubtotal: l.UnitPrice.Mul(qty),
			LineCost:     l.CostPrice.Mul(qty),
		}
		r.LineProfit = r.LineSubtotal.Sub(r.LineCost)

		t.Lines = append(t.Lines, r)
		t.Subtotal = t.Subtotal.Add(r.LineSubtotal)
		t.TotalCost = t.TotalCost.Add(r.LineCost)
	}

	t.DiscountAmount = t.Subtotal.Mul(in.DiscountPercent).Div(hundred)
	t.AfterDiscount = t.Subtotal.Sub(t.DiscountAmount)

	if in.State.IsSameState() {
		t.CGST = t.AfterDiscount.Mul(CGSTRate)
		t.SGST = t.AfterDiscount.Mul(SGSTRate)
		t.IGST = decimal.Zero
		t.GSTAmount = t.CGST.Add(t.SGST)
	} else {
		t.CGST = decimal.Zero
		t.SGST = decimal.Zero
		t.IGST = t.AfterDiscount.Mul(IGSTRate)
		t.GSTAmount = t.IGST
	}

	t.GrandTotal = t.AfterDiscount.Add(t.GSTAmount)
	t.TotalProfit = t.Subtotal.Sub(t.TotalCost).Sub(t.DiscountAmount)
	return t
}

// Round returns a copy with every currency field rounded to two places.
// Each field is rounded on its own, so CGST+SGST can differ from GSTAmount by 0.01.
func (t Totals) Round() Totals {
	r := Totals{
		Lines:          make([]LineResult, len(t.Lines)),
		Subtotal:       t.Subtotal.Round(2),
		TotalCost:      t.TotalCost.Round(2),
		DiscountAmount: t.DiscountAmount.Round(2),
		AfterDiscount:  t.AfterDiscount.Round(2),
		CGST:           t.CGST.Round(2),
		SGST:           t.SGST.Round(2),
		IGST:           t.IGST.Round(2),
		GSTAmount:      t.GSTAmount.Round(2),
		GrandTotal:     t.GrandTotal.Round(2),
		TotalProfit:    t.TotalProfit.Round(2),
	}
	for i, l := range t.Lines {
		l.UnitPrice = l.UnitPrice.Round(2)
		l.CostPrice = l.CostPrice.Round(2)
		l.LineSubtotal = l.LineSubtotal.Round(2)
		l.LineCost = l.LineCost.Round(2)
		l.LineProfit = l.LineProfit.Round(2)
		r.Lines[i] = l
	}
	return r
}

// ValidateSplit checks a split payment against the rounded grand total.
func ValidateSplit(grandTotal decimal.Decimal, s Split) error {
	if s.Cash.IsNegative() || s.UPI.IsNegative() || s.Card.IsNegative() {
		return fmt.Errorf("%w: split amounts must not be negative", ErrInvalidSplit)
	}
	total := grandTotal.Round(2)
	if s.Sum().Sub(total).Abs().GreaterThan(SplitTolerance) {
		return fmt.Errorf("%w: split amounts total %s but grand total is %s",
			ErrInvalidSplit, s.Sum().StringFixed(2), total.StringFixed(2))
	}
	return nil
}
