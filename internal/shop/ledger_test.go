package shop

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Shop-Telegram-bot/internal/db"
)

func TestDebitCredit(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(30))

	require.NoError(t, Debit(gdb, user.ID, decimal.NewFromInt(20)))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(10)))

	// Списание больше остатка не проходит и ничего не меняет
	err := Debit(gdb, user.ID, decimal.NewFromInt(11))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(10)))

	// Списание ровно в ноль допустимо
	require.NoError(t, Debit(gdb, user.ID, decimal.NewFromInt(10)))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.Zero))

	require.NoError(t, Credit(gdb, user.ID, decimal.NewFromInt(5), false))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(5)))
}

func TestDebitRejectsNonPositive(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(30))

	require.ErrorIs(t, Debit(gdb, user.ID, decimal.Zero), ErrInvalidAmount)
	require.ErrorIs(t, Debit(gdb, user.ID, decimal.NewFromInt(-5)), ErrInvalidAmount)
	require.ErrorIs(t, Credit(gdb, user.ID, decimal.Zero, true), ErrInvalidAmount)
}

func TestDebitUnknownUser(t *testing.T) {
	gdb := newTestDB(t)
	require.ErrorIs(t, Debit(gdb, 9999, decimal.NewFromInt(1)), ErrUserNotFound)
	require.ErrorIs(t, Credit(gdb, 9999, decimal.NewFromInt(1), false), ErrUserNotFound)
}

// total_deposits растёт только на зачислениях, считающихся депозитом
func TestCreditTotalDeposits(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.Zero)

	require.NoError(t, Credit(gdb, user.ID, decimal.NewFromInt(20), true))
	require.NoError(t, Credit(gdb, user.ID, decimal.NewFromInt(7), false))

	var fresh db.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(27)))
	assert.True(t, fresh.TotalDeposits.Equal(decimal.NewFromInt(20)))
}

func TestOverrideBalance(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(42))
	require.NoError(t, Credit(gdb, user.ID, decimal.NewFromInt(10), true))

	require.NoError(t, OverrideBalance(gdb, user.ID, decimal.NewFromInt(5), 777))

	var fresh db.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(5)))
	// Перезапись не задним числом правит статистику пополнений
	assert.True(t, fresh.TotalDeposits.Equal(decimal.NewFromInt(10)))

	// Действие фиксируется в журнале
	var logs []db.ActionLog
	require.NoError(t, gdb.Where("log_type = ?", "admin_action").Find(&logs).Error)
	require.Len(t, logs, 1)
	require.NotNil(t, logs[0].AdminID)
	assert.EqualValues(t, 777, *logs[0].AdminID)
}

func TestOverrideBalanceRejectsNegative(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(42))

	err := OverrideBalance(gdb, user.ID, decimal.NewFromInt(-1), 777)
	require.ErrorIs(t, err, ErrInvalidAmount)
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(42)))
}

func TestOverrideBalanceUnknownUser(t *testing.T) {
	gdb := newTestDB(t)
	require.ErrorIs(t, OverrideBalance(gdb, 9999, decimal.NewFromInt(1), 777), ErrUserNotFound)
}
