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

func TestBuySingleUnit(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(50))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 3)

	result, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "unit-1", result.Products[0].Content)
	assert.True(t, result.Purchase.TotalPrice.Equal(decimal.NewFromInt(10)))

	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(40)))
	assert.Equal(t, 1, soldCount(t, gdb, item.ID))

	// Состав покупки восстанавливается по purchase_id
	delivered, err := PurchasedProducts(gdb, result.Purchase.ID)
	require.NoError(t, err)
	require.Len(t, delivered, 1)
	assert.Equal(t, result.Products[0].ID, delivered[0].ID)
}

func TestBuyFIFOOrder(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(1))
	seedStock(t, gdb, item.ID, 5)

	result, err := Buy(gdb, user.TelegramID, item.ID, 2)
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "unit-1", result.Products[0].Content)
	assert.Equal(t, "unit-2", result.Products[1].Content)

	// Следующая покупка продолжает с третьей единицы
	result2, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "unit-3", result2.Products[0].Content)
}

// Конкурирующие покупки трёх последних единиц: ровно три успеха,
// остальные получают отказ по остаткам, ни одна единица не продана дважды.
func TestBuyConcurrentContention(t *testing.T) {
	gdb := newTestDB(t)
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 3)

	const buyers = 5
	users := make([]db.User, buyers)
	for i := range users {
		users[i] = seedUser(t, gdb, int64(200+i), decimal.NewFromInt(100))
	}

	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = Buy(gdb, users[i].TelegramID, item.ID, 1)
		}(i)
	}
	wg.Wait()

	ok, outOfStock := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, 2, outOfStock)
	assert.Equal(t, 3, soldCount(t, gdb, item.ID))

	// Списано только у победителей
	var purchases []db.Purchase
	require.NoError(t, gdb.Find(&purchases).Error)
	require.Len(t, purchases, 3)
	for _, p := range purchases {
		assert.True(t, userBalance(t, gdb, p.UserID).Equal(decimal.NewFromInt(90)))
	}
}

// Недостаточный баланс откатывает резерв целиком
func TestBuyInsufficientFundsRollsBack(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(5))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 1)

	_, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.ErrorIs(t, err, ErrInsufficientFunds)

	assert.Equal(t, 0, soldCount(t, gdb, item.ID))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(5)))
	var n int64
	gdb.Model(&db.Purchase{}).Count(&n)
	assert.EqualValues(t, 0, n)
}

func TestBuyOutOfStock(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 2)

	_, err := Buy(gdb, user.TelegramID, item.ID, 3)
	require.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, soldCount(t, gdb, item.ID))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(100)))
}

// Файловый товар продаётся только по одному, сколько бы ни запросили
func TestBuyFileKindCoercesQuantity(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindFile, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 3)

	result, err := Buy(gdb, user.TelegramID, item.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Purchase.Quantity)
	assert.True(t, result.Purchase.TotalPrice.Equal(decimal.NewFromInt(10)))
	assert.Equal(t, 1, soldCount(t, gdb, item.ID))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(90)))
}

func TestBuyInvalidQuantity(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))

	_, err := Buy(gdb, user.TelegramID, item.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = Buy(gdb, user.TelegramID, item.ID, -2)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestBuyHiddenItem(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 1)
	require.NoError(t, gdb.Model(&item).Update("is_visible", false).Error)

	_, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.ErrorIs(t, err, ErrItemNotFound)
}

func TestBuyBlockedUser(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	require.NoError(t, gdb.Model(&user).Updates(map[string]interface{}{
		"is_blocked": true, "block_type": db.BlockNormal,
	}).Error)
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 1)

	_, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.ErrorIs(t, err, ErrUserBlocked)
	assert.Equal(t, 0, soldCount(t, gdb, item.ID))
	assert.True(t, userBalance(t, gdb, user.ID).Equal(decimal.NewFromInt(100)))
}

// Снимок покупки не зависит от последующего изменения цены позиции
func TestPurchasePriceSnapshot(t *testing.T) {
	gdb := newTestDB(t)
	user := seedUser(t, gdb, 100, decimal.NewFromInt(100))
	item := seedItem(t, gdb, db.KindString, decimal.NewFromInt(10))
	seedStock(t, gdb, item.ID, 1)

	result, err := Buy(gdb, user.TelegramID, item.ID, 1)
	require.NoError(t, err)

	require.NoError(t, gdb.Model(&db.Item{}).Where("id = ?", item.ID).
		Update("price", decimal.NewFromInt(99)).Error)

	var purchase db.Purchase
	require.NoError(t, gdb.First(&purchase, result.Purchase.ID).Error)
	assert.True(t, purchase.TotalPrice.Equal(decimal.NewFromInt(10)))
}
