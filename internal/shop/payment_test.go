package shop

import (
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Shop-Telegram-bot/internal/db"
)

func TestConfirmPayment(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.Zero)
	payment, err := CreatePayment(gdb, user.ID, decimal.NewFromInt(20), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPending, payment.Status)

	confirmed, err := ConfirmPayment(gdb, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, db.PaymentPaid, confirmed.Status)
	require.NotNil(t, confirmed.PaidAt)

	var fresh db.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(20)))
	assert.True(t, fresh.TotalDeposits.Equal(decimal.NewFromInt(20)))
}

// Фоновая сверка и кнопка "Проверить" могут сойтись на одном платеже:
// начисление проходит ровно один раз.
func TestConfirmPaymentConcurrentDoubleCredit(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.Zero)
	payment, err := CreatePayment(gdb, user.ID, decimal.NewFromInt(20), "inv-1")
	require.NoError(t, err)

	const callers = 2
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ConfirmPayment(gdb, payment.ID)
		}(i)
	}
	wg.Wait()

	ok, already := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrPaymentAlreadyDone):
			already++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)

	var fresh db.User
	require.NoError(t, gdb.First(&fresh, user.ID).Error)
	assert.True(t, fresh.Balance.Equal(decimal.NewFromInt(20)))
	assert.True(t, fresh.TotalDeposits.Equal(decimal.NewFromInt(20)))
}

func TestConfirmPaymentNotFound(t *testing.T) {
	gdb := newTestDB(t)
	_, err := ConfirmPayment(gdb, 9999)
	require.ErrorIs(t, err, ErrPaymentNotFound)
}

// failed — терминальное состояние, повторная проверка его не оживляет
func TestFailPaymentTerminal(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.Zero)
	payment, err := CreatePayment(gdb, user.ID, decimal.NewFromInt(20), "inv-1")
	require.NoError(t, err)

	require.NoError(t, FailPayment(gdb, payment.ID))

	_, err = ConfirmPayment(gdb, payment.ID)
	require.ErrorIs(t, err, ErrPaymentAlreadyDone)
	require.ErrorIs(t, FailPayment(gdb, payment.ID), ErrPaymentAlreadyDone)

	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.Zero))
}

func TestCreatePaymentRejectsNonPositive(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.Zero)

	_, err := CreatePayment(gdb, user.ID, decimal.Zero, "inv-1")
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = CreatePayment(gdb, user.ID, decimal.NewFromInt(-3), "inv-2")
	require.ErrorIs(t, err, ErrInvalidAmount)
}
