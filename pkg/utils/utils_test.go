package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateBarcode(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0001-0000-000000000000")

	assert.Equal(t, "RIC00000001", GenerateBarcode("Rice 5kg", id))
	assert.Equal(t, "TVX00000001", GenerateBarcode("tv", id))
	assert.Len(t, GenerateBarcode("Organic Honey", uuid.New()), 11)
}

func TestValidGSTIN(t *testing.T) {
	assert.True(t, ValidGSTIN("27AAPFU0939F1ZV"))
	assert.True(t, ValidGSTIN("29aabcu9603r1zm"))
	assert.False(t, ValidGSTIN("27AAPFU0939F1Z"))
	assert.False(t, ValidGSTIN("ABCDEFGHIJKLMNO"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Minute, time.Hour)
	userID := uuid.New()

	access, err := m.GenerateAccessToken(userID, "cashier1", []string{"cashier"}, []string{"create-invoices"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "cashier1", claims.Username)
	assert.Equal(t, []string{"cashier"}, claims.Roles)

	refresh, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)
	got, err := m.ValidateRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestJWTManager_RejectsOtherSecret(t *testing.T) {
	token, err := NewJWTManager("a", time.Minute, time.Hour).GenerateAccessToken(uuid.New(), "u", nil, nil)
	require.NoError(t, err)

	_, err = NewJWTManager("b", time.Minute, time.Hour).ValidateAccessToken(token)
	assert.Error(t, err)
}
