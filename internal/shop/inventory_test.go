package shop

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Shop-Telegram-bot/internal/db"
)

func TestReserveAllOrNothing(t *testing.T) {
	gdb := newTestDB(t)
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(1))
	seedStock(t, gdb, item.ID, 2)

	// Частичного резерва не бывает
	_, err := Reserve(gdb, &item, 3)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, soldCount(t, gdb, item.ID))

	products, err := Reserve(gdb, &item, 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	for _, p := range products {
		assert.True(t, p.IsSold)
		require.NotNil(t, p.SoldAt)
	}
	assert.Equal(t, 2, soldCount(t, gdb, item.ID))

	_, err = Reserve(gdb, &item, 1)
	require.ErrorIs(t, err, ErrOutOfStock)
}

func TestReserveInvalidQuantity(t *testing.T) {
	gdb := newTestDB(t)
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(1))

	_, err := Reserve(gdb, &item, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestAvailableCount(t *testing.T) {
	gdb := newTestDB(t)
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(1))
	assert.Equal(t, 0, AvailableCount(gdb, item.ID))

	seedStock(t, gdb, item.ID, 3)
	assert.Equal(t, 3, AvailableCount(gdb, item.ID))

	_, err := Reserve(gdb, &item, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, AvailableCount(gdb, item.ID))
}
