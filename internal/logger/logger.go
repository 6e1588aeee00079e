package logger

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log, _ = zap.NewProduction()

func Info(msg string, fields ...zap.Field) {
	log.Info(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	log.Error(msg, fields...)
}

func LogAdminAction(adminID int64, action, params string) {
	log.Info("admin_action", zap.Int64("admin_id", adminID), zap.String("action", action), zap.String("params", params))
}

// LogPurchase пишет структурированную запись об успешной покупке
func LogPurchase(userID int64, itemID uint, quantity int, total decimal.Decimal) {
	log.Info("purchase",
		zap.Int64("user_id", userID),
		zap.Uint("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.String("total_price", total.StringFixed(2)))
}

// LogPayment пишет запись о зачисленном платеже
func LogPayment(userID int64, paymentID uint, amount decimal.Decimal) {
	log.Info("payment_credited",
		zap.Int64("user_id", userID),
		zap.Uint("payment_id", paymentID),
		zap.String("amount", amount.StringFixed(2)))
}
