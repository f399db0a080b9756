package repository

import (
	"bytes"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecrementOrder_SortsIDs(t *testing.T) {
	decrements := map[uuid.UUID]int{uuid.New(): 1, uuid.New(): 2, uuid.New(): 3, uuid.New(): 4}

	ids, err := decrementOrder(decrements)
	require.NoError(t, err)
	require.Len(t, ids, len(decrements))
	for i := 1; i < len(ids); i++ {
		assert.Negative(t, bytes.Compare(ids[i-1][:], ids[i][:]))
	}
}

func TestDecrementOrder_RejectsNonPositiveAmounts(t *testing.T) {
	huge := math.MaxInt
	for name, amount := range map[string]int{"zero": 0, "negative": -2, "wrapped": huge + huge} {
		t.Run(name, func(t *testing.T) {
			_, err := decrementOrder(map[uuid.UUID]int{uuid.New(): 1, uuid.New(): amount})
			assert.Error(t, err)
		})
	}
}
