package shop

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
)

// Debit атомарно списывает amount с баланса пользователя.
// Проверка баланса и декремент — одно условное UPDATE-выражение:
// баланс не может уйти в минус ни при каком чередовании транзакций.
func Debit(tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	res := tx.Model(&db.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var user db.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		return ErrInsufficientFunds
	}
	return nil
}

// Credit атомарно начисляет amount на баланс. При countsAsDeposit
// инкрементируется и total_deposits (подтверждённые платежи и промокоды).
func Credit(tx *gorm.DB, userID uint, amount decimal.Decimal, countsAsDeposit bool) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}
	updates := map[string]interface{}{
		"balance": gorm.Expr("balance + ?", amount),
	}
	if countsAsDeposit {
		updates["total_deposits"] = gorm.Expr("total_deposits + ?", amount)
	}
	res := tx.Model(&db.User{}).Where("id = ?", userID).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// OverrideBalance — административная перезапись баланса. Это отдельная
// операция, не Debit и не Credit: total_deposits не трогает, отрицательные
// значения не принимает.
func OverrideBalance(gdb *gorm.DB, userID uint, balance decimal.Decimal, adminID int64) error {
	if balance.IsNegative() {
		return ErrInvalidAmount
	}
	return gdb.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&db.User{}).Where("id = ?", userID).Update("balance", balance)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		db.LogAction(tx, "admin_action", &userID, &adminID, map[string]interface{}{
			"action":      "override_balance",
			"new_balance": balance.StringFixed(2),
		})
		return nil
	})
}
