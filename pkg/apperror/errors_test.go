package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAppError_PlainErrorBecomes500(t *testing.T) {
	cause := errors.New("boom")
	appErr := GetAppError(cause)

	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Equal(t, "Internal server error", appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestGetAppError_FindsWrappedAppError(t *testing.T) {
	inner := NewNotFoundError("Product")
	err := fmt.Errorf("loading cart: %w", inner)

	appErr := GetAppError(err)

	require.True(t, IsAppError(err))
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "Product not found", appErr.Message)
}

func TestWrap_KeepsCauseForErrorsIs(t *testing.T) {
	cause := errors.New("split does not add up")
	err := Wrap(http.StatusBadRequest, ReasonInvalidPaymentSplit, "Invalid payment split", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ReasonInvalidPaymentSplit, err.Reason)
}

func TestNewStorageError_HidesDriverMessage(t *testing.T) {
	driverErr := errors.New("pq: connection refused")
	err := NewStorageError(driverErr)

	assert.Equal(t, "Storage failure", err.Error())
	assert.Equal(t, ReasonStorageFailure, err.Reason)
	assert.ErrorIs(t, err, driverErr)
}
