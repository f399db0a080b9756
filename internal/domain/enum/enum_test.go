package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTaxState(t *testing.T) {
	state, err := ParseTaxState("")
	require.NoError(t, err)
	assert.Equal(t, TaxStateSame, state)

	state, err = ParseTaxState("other")
	require.NoError(t, err)
	assert.Equal(t, TaxStateOther, state)
	assert.False(t, state.IsSameState())

	_, err = ParseTaxState("Elsewhere")
	assert.Error(t, err)
}

func TestTaxState_JSONUsesNames(t *testing.T) {
	data, err := json.Marshal(TaxStateOther)
	require.NoError(t, err)
	assert.JSONEq(t, `"Other"`, string(data))

	var state TaxState
	require.NoError(t, json.Unmarshal([]byte(`"Same"`), &state))
	assert.Equal(t, TaxStateSame, state)
	assert.Error(t, json.Unmarshal([]byte(`"Mars"`), &state))
}

func TestParsePaymentMode_Lowercases(t *testing.T) {
	mode, err := ParsePaymentMode("UPI")
	require.NoError(t, err)
	assert.Equal(t, PaymentModeUPI, mode)

	mode, err = ParsePaymentMode("")
	require.NoError(t, err)
	assert.Equal(t, PaymentModeCash, mode)

	mode, err = ParsePaymentMode(" Split ")
	require.NoError(t, err)
	assert.True(t, mode.IsSplit())

	_, err = ParsePaymentMode("cheque")
	assert.Error(t, err)
}
