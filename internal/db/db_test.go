package db

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, Migrate(gdb))
	return gdb
}

func TestGetOrCreateUser(t *testing.T) {
	gdb := newTestDB(t)

	user, err := GetOrCreateUser(gdb, 100, "alice", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Balance.Equal(decimal.Zero))

	// Повторный вызов возвращает ту же запись и подхватывает смену username
	again, err := GetOrCreateUser(gdb, 100, "alice_new", "Alice", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)
	assert.Equal(t, "alice_new", again.Username)

	var n int64
	gdb.Model(&User{}).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestFindUserByRef(t *testing.T) {
	gdb := newTestDB(t)
	created, err := GetOrCreateUser(gdb, 555, "bob", "Bob", "")
	require.NoError(t, err)

	byID, err := FindUserByRef(gdb, "555")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byID.ID)

	byName, err := FindUserByRef(gdb, "@bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byBareName, err := FindUserByRef(gdb, "bob")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byBareName.ID)

	_, err = FindUserByRef(gdb, "@nobody")
	require.Error(t, err)
}

func TestLogAction(t *testing.T) {
	gdb := newTestDB(t)
	user, err := GetOrCreateUser(gdb, 42, "carol", "Carol", "")
	require.NoError(t, err)

	LogAction(gdb, "purchase", &user.ID, nil, map[string]interface{}{"item_id": 7})

	var logs []ActionLog
	require.NoError(t, gdb.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "purchase", logs[0].LogType)
	assert.Contains(t, logs[0].Data, "item_id")
}

func TestStats(t *testing.T) {
	gdb := newTestDB(t)
	user, err := GetOrCreateUser(gdb, 1, "u1", "", "")
	require.NoError(t, err)
	_, err = GetOrCreateUser(gdb, 2, "u2", "", "")
	require.NoError(t, err)

	require.NoError(t, gdb.Create(&Payment{UserID: user.ID, Amount: decimal.NewFromInt(10), Status: PaymentPaid}).Error)
	require.NoError(t, gdb.Create(&Payment{UserID: user.ID, Amount: decimal.NewFromInt(5), Status: PaymentPending}).Error)

	assert.Equal(t, 2, CountUsers(gdb))
	assert.True(t, SumPaidPayments(gdb).Equal(decimal.NewFromInt(10)))

	payments := GetPayments(gdb, time.Time{}, time.Now().Add(time.Minute), 10)
	assert.Len(t, payments, 2)
}
