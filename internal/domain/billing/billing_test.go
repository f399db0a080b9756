package billing

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sangkips/gstpos-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func sampleCart() []Line {
	return []Line{
		{ProductID: uuid.New(), ProductName: "Widget", Quantity: 2, UnitPrice: d("100")},
		{ProductID: uuid.New(), ProductName: "Gadget", Quantity: 1, UnitPrice: d("50")},
	}
}

func TestCompute_SameStateSplitsGSTEvenly(t *testing.T) {
	totals := Compute(Input{Lines: sampleCart(), DiscountPercent: d("10"), State: enum.TaxStateSame}).Round()

	assertMoney(t, "250", totals.Subtotal, "subtotal")
	assertMoney(t, "25", totals.DiscountAmount, "discountAmount")
	assertMoney(t, "225", totals.AfterDiscount, "afterDiscount")
	assertMoney(t, "20.25", totals.CGST, "cgst")
	assertMoney(t, "20.25", totals.SGST, "sgst")
	assertMoney(t, "0", totals.IGST, "igst")
	assertMoney(t, "40.50", totals.GSTAmount, "gstAmount")
	assertMoney(t, "265.50", totals.GrandTotal, "grandTotal")
}

func TestCompute_OtherStateChargesIGST(t *testing.T) {
	totals := Compute(Input{Lines: sampleCart(), DiscountPercent: d("10"), State: enum.TaxStateOther}).Round()

	assertMoney(t, "0", totals.CGST, "cgst")
	assertMoney(t, "0", totals.SGST, "sgst")
	assertMoney(t, "40.50", totals.IGST, "igst")
	assertMoney(t, "40.50", totals.GSTAmount, "gstAmount")
	assertMoney(t, "265.50", totals.GrandTotal, "grandTotal")
}

func TestCompute_Profit(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 2, UnitPrice: d("100"), CostPrice: d("60")}}

	totals := Compute(Input{Lines: lines, DiscountPercent: decimal.Zero}).Round()

	require.Len(t, totals.Lines, 1)
	assertMoney(t, "200", totals.Lines[0].LineSubtotal, "lineSubtotal")
	assertMoney(t, "120", totals.Lines[0].LineCost, "lineCost")
	assertMoney(t, "80", totals.Lines[0].LineProfit, "lineProfit")
	assertMoney(t, "80", totals.TotalProfit, "totalProfit")
}

func TestCompute_ProfitIsReducedByDiscount(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 2, UnitPrice: d("100"), CostPrice: d("60")}}

	totals := Compute(Input{Lines: lines, DiscountPercent: d("10")}).Round()

	// 200 - 120 - 20; tax is not profit
	assertMoney(t, "60", totals.TotalProfit, "totalProfit")
}

func TestCompute_RoundsOnlyAtTheEnd(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 3, UnitPrice: d("33.335")}}

	raw := Compute(Input{Lines: lines, DiscountPercent: d("0"), State: enum.TaxStateSame})
	totals := raw.Round()

	assertMoney(t, "100.005", raw.Subtotal, "raw subtotal")
	assertMoney(t, "118.0059", raw.GrandTotal, "raw grandTotal")
	assertMoney(t, "100.01", totals.Subtotal, "subtotal")
	assertMoney(t, "118.01", totals.GrandTotal, "grandTotal")
}

func TestCompute_HalfCentRoundsAwayFromZero(t *testing.T) {
	lines := []Line{{ProductID: uuid.New(), Quantity: 1, UnitPrice: d("0.25")}}

	totals := Compute(Input{Lines: lines, State: enum.TaxStateOther}).Round()

	// 0.25 * 0.18 = 0.045
	assertMoney(t, "0.05", totals.IGST, "igst")
}

func TestValidateSplit(t *testing.T) {
	grand := d("265.50")

	assert.NoError(t, ValidateSplit(grand, Split{Cash: d("200"), UPI: d("65.50"), Card: decimal.Zero}))
	assert.NoError(t, ValidateSplit(grand, Split{Cash: d("200"), UPI: d("65.49")}))

	err := ValidateSplit(grand, Split{Cash: d("200"), UPI: d("60"), Card: decimal.Zero})
	assert.ErrorIs(t, err, ErrInvalidSplit)

	err = ValidateSplit(grand, Split{Cash: d("300"), UPI: d("-34.50")})
	assert.ErrorIs(t, err, ErrInvalidSplit)
}

func TestValidateSplit_ComparesAgainstRoundedTotal(t *testing.T) {
	assert.NoError(t, ValidateSplit(d("118.0059"), Split{Cash: d("118.01")}))
	assert.ErrorIs(t, ValidateSplit(d("118.0059"), Split{Cash: d("117.99")}), ErrInvalidSplit)
}

func TestValidateLines(t *testing.T) {
	assert.ErrorIs(t, ValidateLines(nil), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateLines([]Line{{ProductID: uuid.New(), Quantity: 0, UnitPrice: d("1")}}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateLines([]Line{{ProductID: uuid.New(), Quantity: 1, UnitPrice: d("-1")}}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateLines([]Line{{Quantity: 1, UnitPrice: d("1")}}), ErrInvalidRequest)
	assert.NoError(t, ValidateLines(sampleCart()))
}

func TestValidateLines_CapsQuantityPerProduct(t *testing.T) {
	id := uuid.New()

	assert.ErrorIs(t, ValidateLines([]Line{{ProductID: id, Quantity: math.MaxInt, UnitPrice: d("0")}}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateLines([]Line{
		{ProductID: id, Quantity: math.MaxInt, UnitPrice: d("0")},
		{ProductID: id, Quantity: math.MaxInt, UnitPrice: d("0")},
	}), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateLines([]Line{
		{ProductID: id, Quantity: MaxQuantity, UnitPrice: d("1")},
		{ProductID: id, Quantity: 1, UnitPrice: d("1")},
	}), ErrInvalidRequest)

	assert.NoError(t, ValidateLines([]Line{{ProductID: id, Quantity: MaxQuantity, UnitPrice: d("1")}}))
	assert.NoError(t, ValidateLines([]Line{
		{ProductID: id, Quantity: MaxQuantity, UnitPrice: d("1")},
		{ProductID: uuid.New(), Quantity: MaxQuantity, UnitPrice: d("1")},
	}))
}

func TestValidateDiscount(t *testing.T) {
	assert.NoError(t, ValidateDiscount(d("0")))
	assert.NoError(t, ValidateDiscount(d("100")))
	assert.ErrorIs(t, ValidateDiscount(d("100.01")), ErrInvalidRequest)
	assert.ErrorIs(t, ValidateDiscount(d("-5")), ErrInvalidRequest)
}
