// Package settings — типизированный доступ к настройкам бота.
// Каждая опция имеет свой аксессор с дефолтом на этапе компиляции;
// generic-доступ по строковому ключу наружу не выдаётся.
package settings

import (
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Shop-Telegram-bot/internal/db"
)

const (
	keyMaintenanceMode     = "maintenance_mode"
	keyNotifyNewPurchase   = "notify_new_purchase"
	keyNotifyNewPayment    = "notify_new_payment"
	keyChannelSubEnabled   = "channel_subscription_enabled"
	keyRequiredChannelID   = "required_channel_id"
	keyCryptoBotToken      = "cryptobot_token"
)

func getBool(gdb *gorm.DB, key string, def bool) bool {
	var s db.Setting
	if err := gdb.Where("key = ?", key).First(&s).Error; err != nil {
		return def
	}
	v, err := strconv.ParseBool(s.Value)
	if err != nil {
		return def
	}
	return v
}

func getString(gdb *gorm.DB, key, def string) string {
	var s db.Setting
	if err := gdb.Where("key = ?", key).First(&s).Error; err != nil {
		return def
	}
	return s.Value
}

func set(gdb *gorm.DB, key, value string) error {
	return gdb.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&db.Setting{Key: key, Value: value}).Error
}

// MaintenanceMode — режим тех. работ: пользовательские хэндлеры отвечают заглушкой
func MaintenanceMode(gdb *gorm.DB) bool { return getBool(gdb, keyMaintenanceMode, false) }

func SetMaintenanceMode(gdb *gorm.DB, v bool) error {
	return set(gdb, keyMaintenanceMode, strconv.FormatBool(v))
}

// NotifyNewPurchase — слать ли админам уведомления о покупках
func NotifyNewPurchase(gdb *gorm.DB) bool { return getBool(gdb, keyNotifyNewPurchase, true) }

func SetNotifyNewPurchase(gdb *gorm.DB, v bool) error {
	return set(gdb, keyNotifyNewPurchase, strconv.FormatBool(v))
}

// NotifyNewPayment — слать ли админам уведомления о пополнениях
func NotifyNewPayment(gdb *gorm.DB) bool { return getBool(gdb, keyNotifyNewPayment, true) }

func SetNotifyNewPayment(gdb *gorm.DB, v bool) error {
	return set(gdb, keyNotifyNewPayment, strconv.FormatBool(v))
}

// ChannelSubscriptionEnabled — включена ли обязательная подписка на канал
func ChannelSubscriptionEnabled(gdb *gorm.DB) bool {
	return getBool(gdb, keyChannelSubEnabled, false)
}

func SetChannelSubscriptionEnabled(gdb *gorm.DB, v bool) error {
	return set(gdb, keyChannelSubEnabled, strconv.FormatBool(v))
}

// RequiredChannelID — @username или числовой ID обязательного канала
func RequiredChannelID(gdb *gorm.DB) string { return getString(gdb, keyRequiredChannelID, "") }

func SetRequiredChannelID(gdb *gorm.DB, id string) error {
	return set(gdb, keyRequiredChannelID, id)
}

// CryptoBotToken — токен оракула платежей; пустая строка означает
// "использовать значение из окружения"
func CryptoBotToken(gdb *gorm.DB) string { return getString(gdb, keyCryptoBotToken, "") }

func SetCryptoBotToken(gdb *gorm.DB, token string) error {
	return set(gdb, keyCryptoBotToken, token)
}
