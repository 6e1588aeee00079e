package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/services"
	"Shop-Telegram-bot/internal/shop"
)

var minTopup = decimal.NewFromInt(1)

// handleTopupAmount создаёт счёт в CryptoBot и платёж в статусе pending.
// Срок жизни счёта задаётся на стороне шлюза, локальные часы не участвуют.
func handleTopupAmount(bot *tgbotapi.BotAPI, chatID int64, user *db.User, text string) {
	amount, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, textInvalidNumber))
		return
	}
	if amount.LessThan(minTopup) {
		bot.Send(tgbotapi.NewMessage(chatID, textMinTopup))
		return
	}

	invoice, err := cryptoClient.CreateInvoice(amount, fmt.Sprintf("Пополнение баланса, user %d", user.TelegramID))
	if err != nil {
		logger.Error("создание счёта", zap.Error(err))
		bot.Send(tgbotapi.NewMessage(chatID, textInvoiceFailed))
		return
	}

	payment, err := shop.CreatePayment(db.DB, user.ID, amount, strconv.FormatInt(invoice.InvoiceID, 10))
	if err != nil {
		logger.Error("создание платежа", zap.Error(err))
		bot.Send(tgbotapi.NewMessage(chatID, textInvoiceFailed))
		return
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"💳 Счёт на %s USDT создан.\nОплатите в течение 15 минут:\n%s",
		amount.StringFixed(2), invoice.PayURL))
	msg.ReplyMarkup = paymentKeyboard(payment.ID)
	bot.Send(msg)
}

// handleCheckPayment — интерактивная проверка по кнопке. Статус счёта
// спрашивается у шлюза; фоновая сверка делает то же самое каждые 30 секунд.
func handleCheckPayment(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, user *db.User, paymentID uint) {
	chatID := query.Message.Chat.ID
	answer := func(text string) {
		bot.Request(tgbotapi.NewCallback(query.ID, text))
	}

	var payment db.Payment
	if err := db.DB.Where("id = ? AND user_id = ?", paymentID, user.ID).First(&payment).Error; err != nil {
		answer("Платёж не найден")
		return
	}
	if payment.Status == db.PaymentPaid {
		answer("Платёж уже зачислен")
		return
	}
	if payment.Status == db.PaymentFailed {
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textPaymentExpired))
		return
	}

	invoiceID, err := strconv.ParseInt(payment.InvoiceID, 10, 64)
	if err != nil {
		answer("Платёж повреждён, обратитесь в поддержку")
		return
	}
	status, err := cryptoClient.GetInvoiceStatus(invoiceID)
	if err != nil {
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textPaymentOracle))
		return
	}

	switch status {
	case services.InvoicePaid:
		if _, err := shop.ConfirmPayment(db.DB, payment.ID); err != nil {
			if errors.Is(err, shop.ErrPaymentAlreadyDone) {
				answer("Платёж уже обработан")
				return
			}
			logger.Error("зачисление платежа", zap.Error(err))
			answer("Ошибка зачисления, обратитесь в поддержку")
			return
		}
		answer("")
		logger.LogPayment(user.TelegramID, payment.ID, payment.Amount)
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"✅ Платёж зачислен! Баланс пополнен на %s USDT", payment.Amount.StringFixed(2))))
	case services.InvoiceExpired:
		shop.FailPayment(db.DB, payment.ID)
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textPaymentExpired))
	default:
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textPaymentPending))
	}
}

// Решение по отменяемому счёту после сверки с оракулом
type cancelOutcome int

const (
	cancelKeptPending cancelOutcome = iota
	cancelCredited
	cancelExpired
)

// resolveCancelledPayment сверяет отменяемый счёт с оракулом. Отмена сама
// статус не меняет: оплаченный счёт зачисляется, истёкший закрывается,
// активный остаётся pending — если пользователь всё же оплатит до истечения,
// фоновая сверка зачислит платёж.
func resolveCancelledPayment(gdb *gorm.DB, client *services.CryptoPayClient, payment *db.Payment) (cancelOutcome, error) {
	invoiceID, err := strconv.ParseInt(payment.InvoiceID, 10, 64)
	if err != nil {
		return cancelKeptPending, err
	}
	status, err := client.GetInvoiceStatus(invoiceID)
	if err != nil {
		// оракул недоступен: статус не трогаем, сверка повторит на своём тике
		return cancelKeptPending, nil
	}
	switch status {
	case services.InvoicePaid:
		if _, err := shop.ConfirmPayment(gdb, payment.ID); err != nil && !errors.Is(err, shop.ErrPaymentAlreadyDone) {
			return cancelKeptPending, err
		}
		return cancelCredited, nil
	case services.InvoiceExpired:
		if err := shop.FailPayment(gdb, payment.ID); err != nil && !errors.Is(err, shop.ErrPaymentAlreadyDone) {
			return cancelKeptPending, err
		}
		return cancelExpired, nil
	}
	return cancelKeptPending, nil
}

// handleCancelPayment закрывает кнопки счёта. Статус pending сохраняется,
// пока оракул не сообщит paid или expired.
func handleCancelPayment(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, user *db.User, paymentID uint) {
	chatID := query.Message.Chat.ID
	answer := func(text string) {
		bot.Request(tgbotapi.NewCallback(query.ID, text))
	}
	var payment db.Payment
	if err := db.DB.Where("id = ? AND user_id = ?", paymentID, user.ID).First(&payment).Error; err != nil {
		answer("Платёж не найден")
		return
	}
	if payment.Status != db.PaymentPending {
		answer("Платёж уже обработан")
		return
	}
	outcome, err := resolveCancelledPayment(db.DB, cryptoClient, &payment)
	if err != nil {
		logger.Error("отмена платежа", zap.Error(err))
		answer("Ошибка, попробуйте позже")
		return
	}
	switch outcome {
	case cancelCredited:
		answer("Счёт уже оплачен")
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
			"✅ Платёж зачислен! Баланс пополнен на %s USDT", payment.Amount.StringFixed(2))))
	default:
		answer("Платёж отменён")
	}
	bot.Request(tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID))
}
