package shop

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"Shop-Telegram-bot/internal/db"
)

// newTestDB поднимает чистую in-memory базу. Одно соединение: база живёт
// до конца теста, а конкурирующие горутины сериализуются на уровне пула.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedUser(t *testing.T, gdb *gorm.DB, telegramID int64, balance decimal.Decimal) db.User {
	t.Helper()
	user := db.User{
		TelegramID: telegramID,
		Username:   fmt.Sprintf("user%d", telegramID),
		Balance:    balance,
	}
	require.NoError(t, gdb.Create(&user).Error)
	return user
}

func seedItem(t *testing.T, gdb *gorm.DB, kind db.ItemKind, price decimal.Decimal) db.Item {
	t.Helper()
	item := db.Item{
		Name:      "test item",
		Price:     price,
		Kind:      kind,
		IsVisible: true,
	}
	require.NoError(t, gdb.Create(&item).Error)
	return item
}

// seedStock создаёт n единиц с возрастающим created_at
func seedStock(t *testing.T, gdb *gorm.DB, itemID uint, n int) []db.Product {
	t.Helper()
	base := time.Now().Add(-time.Hour)
	products := make([]db.Product, n)
	for i := 0; i < n; i++ {
		products[i] = db.Product{
			ItemID:    itemID,
			Content:   fmt.Sprintf("unit-%d", i+1),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, gdb.Create(&products[i]).Error)
	}
	return products
}

func soldCount(t *testing.T, gdb *gorm.DB, itemID uint) int {
	t.Helper()
	var n int64
	require.NoError(t, gdb.Model(&db.Product{}).
		Where("item_id = ? AND is_sold = ?", itemID, true).Count(&n).Error)
	return int(n)
}

func userBalance(t *testing.T, gdb *gorm.DB, userID uint) decimal.Decimal {
	t.Helper()
	var user db.User
	require.NoError(t, gdb.First(&user, userID).Error)
	return user.Balance
}
