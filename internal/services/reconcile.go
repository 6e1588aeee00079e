package services

import (
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/settings"
	"Shop-Telegram-bot/internal/shop"
)

// CheckPendingPayments — один проход фоновой сверки платежей.
// Оракул опрашивается до открытия транзакции; начисление делает
// shop.ConfirmPayment, чей CAS-переход гарантирует ровно одно зачисление,
// даже если пользователь в ту же миллисекунду нажал "Проверить платёж".
// Ошибки оракула не требуют вмешательства: платёж останется pending
// и будет проверен на следующем тике.
func CheckPendingPayments(bot *tgbotapi.BotAPI, gdb *gorm.DB, client *CryptoPayClient) {
	defer logger.NotifyOnPanic("CheckPendingPayments")

	var pending []db.Payment
	if err := gdb.Where("status = ?", db.PaymentPending).Find(&pending).Error; err != nil {
		logger.Error("payment scan failed", zap.Error(err))
		return
	}

	for _, payment := range pending {
		invoiceID, err := strconv.ParseInt(payment.InvoiceID, 10, 64)
		if err != nil {
			logger.Error("bad invoice id", zap.Uint("payment_id", payment.ID), zap.Error(err))
			continue
		}
		status, err := client.GetInvoiceStatus(invoiceID)
		if err != nil {
			// транзиентная ошибка оракула, повторим на следующем тике
			logger.Error("invoice status check failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
			continue
		}

		switch status {
		case InvoicePaid:
			confirmed, err := shop.ConfirmPayment(gdb, payment.ID)
			if errors.Is(err, shop.ErrPaymentAlreadyDone) {
				continue // интерактивная проверка успела раньше
			}
			if err != nil {
				logger.Error("payment confirm failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
				continue
			}
			notifyPaymentCredited(bot, gdb, confirmed)
		case InvoiceExpired:
			if err := shop.FailPayment(gdb, payment.ID); err != nil && !errors.Is(err, shop.ErrPaymentAlreadyDone) {
				logger.Error("payment fail mark failed", zap.Uint("payment_id", payment.ID), zap.Error(err))
			}
		}
	}
}

// notifyPaymentCredited шлёт best-effort уведомления после коммита:
// их неудача не откатывает зачисление
func notifyPaymentCredited(bot *tgbotapi.BotAPI, gdb *gorm.DB, payment *db.Payment) {
	var user db.User
	if err := gdb.First(&user, payment.UserID).Error; err != nil {
		return
	}
	logger.LogPayment(user.TelegramID, payment.ID, payment.Amount)

	msg := tgbotapi.NewMessage(user.TelegramID,
		fmt.Sprintf("✅ Платёж зачислен!\nЗачислено: %s USDT", payment.Amount.StringFixed(2)))
	if _, err := bot.Send(msg); err != nil {
		logger.Error("user payment notify failed", zap.Error(err))
	}

	if settings.NotifyNewPayment(gdb) {
		NotifyAdminsAbout(bot, fmt.Sprintf("Новое пополнение!\nСумма: %s USDT", payment.Amount.StringFixed(2)), &user)
	}
}
