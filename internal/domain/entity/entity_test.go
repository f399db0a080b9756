package entity

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestProduct_MarshalJSONIncludesMargin(t *testing.T) {
	p := Product{Name: "Rice 5kg", Price: decimal.NewFromInt(100), CostPrice: decimal.NewFromInt(80)}

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "Rice 5kg", got["name"])
	assert.EqualValues(t, 100, got["price"])
	assert.EqualValues(t, 20, got["profit"])
	assert.EqualValues(t, 25, got["profitPercent"])
}

func TestProduct_ProfitPercentWithoutCost(t *testing.T) {
	p := Product{Price: decimal.NewFromInt(50)}

	assert.True(t, p.ProfitPercent().IsZero())
	assert.True(t, p.Profit().Equal(decimal.NewFromInt(50)))
}

func TestProduct_IsLowStock(t *testing.T) {
	assert.True(t, (&Product{Quantity: 10, MinStock: 10}).IsLowStock())
	assert.False(t, (&Product{Quantity: 11, MinStock: 10}).IsLowStock())
}

func TestFormatBillNumber(t *testing.T) {
	assert.Equal(t, "INV-2026-0001", FormatBillNumber(2026, 1))
	assert.Equal(t, "INV-2026-12345", FormatBillNumber(2026, 12345))
}

func TestInvoice_SplitDetails(t *testing.T) {
	inv := Invoice{}
	split, err := inv.SplitDetails()
	require.NoError(t, err)
	assert.Nil(t, split)

	inv.SplitPayment = datatypes.JSON(`{"cashAmount":200,"upiAmount":65.5,"cardAmount":0,"totalAmount":265.5}`)
	split, err = inv.SplitDetails()
	require.NoError(t, err)
	assert.True(t, split.UPIAmount.Equal(decimal.RequireFromString("65.5")))
	assert.True(t, split.TotalAmount.Equal(decimal.RequireFromString("265.5")))
}

func TestInvoice_UnitCount(t *testing.T) {
	inv := Invoice{Items: []InvoiceItem{{Quantity: 2}, {Quantity: 1}}}
	assert.Equal(t, 3, inv.UnitCount())
}

func TestUser_PrimaryRoleDefaultsToUser(t *testing.T) {
	u := User{}
	assert.Equal(t, RoleUser, u.PrimaryRole())

	u.Roles = []Role{{Name: RoleCashier, Permissions: []Permission{{Name: PermCheckout}}}}
	assert.Equal(t, RoleCashier, u.PrimaryRole())
	assert.True(t, u.HasPermission(PermCheckout))
	assert.False(t, u.HasPermission(PermManageUsers))
}
