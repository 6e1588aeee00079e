package shop

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
)

// ConfirmPayment переводит платёж pending -> paid и начисляет баланс,
// ровно один раз. Переход защищён условным UPDATE по статусу: из двух
// конкурирующих вызовов (фоновая сверка и интерактивная проверка)
// начисление выполнит только тот, чей UPDATE затронул строку. Второй
// получает ErrPaymentAlreadyDone.
//
// Вызывается только после того, как внешний оракул сообщил "paid".
// Сетевых вызовов внутри транзакции нет.
func ConfirmPayment(gdb *gorm.DB, paymentID uint) (*db.Payment, error) {
	var payment db.Payment
	err := gdb.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&db.Payment{}).
			Where("id = ? AND status = ?", paymentID, db.PaymentPending).
			Updates(map[string]interface{}{"status": db.PaymentPaid, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.First(&db.Payment{}, paymentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrPaymentNotFound
				}
				return err
			}
			return ErrPaymentAlreadyDone
		}
		if err := tx.First(&payment, paymentID).Error; err != nil {
			return err
		}
		return Credit(tx, payment.UserID, payment.Amount, true)
	})
	if err != nil {
		return nil, err
	}
	db.LogAction(gdb, "payment", &payment.UserID, nil, map[string]interface{}{
		"payment_id": payment.ID,
		"amount":     payment.Amount.StringFixed(2),
	})
	return &payment, nil
}

// FailPayment помечает платёж failed по сообщению оракула об истечении.
// Терминальное состояние: повторные проверки его не оживят.
func FailPayment(gdb *gorm.DB, paymentID uint) error {
	res := gdb.Model(&db.Payment{}).
		Where("id = ? AND status = ?", paymentID, db.PaymentPending).
		Update("status", db.PaymentFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPaymentAlreadyDone
	}
	return nil
}

// CreatePayment заводит pending-платёж под выставленный инвойс
func CreatePayment(gdb *gorm.DB, userID uint, amount decimal.Decimal, invoiceID string) (db.Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return db.Payment{}, ErrInvalidAmount
	}
	payment := db.Payment{
		UserID:    userID,
		Amount:    amount,
		InvoiceID: invoiceID,
		Status:    db.PaymentPending,
	}
	err := gdb.Create(&payment).Error
	return payment, err
}
