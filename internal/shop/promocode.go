package shop

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
)

// Redeem активирует промокод для пользователя. Все проверки и инкремент
// счётчика активаций выполняются в одной транзакции; сам инкремент —
// условный UPDATE с ограничением current_activations < max_activations,
// поэтому число успешных активаций не превышает лимит ни при какой гонке.
func Redeem(gdb *gorm.DB, code string, telegramID int64) (*db.Promocode, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrPromoNotFound
	}

	var promo db.Promocode
	err := gdb.Transaction(func(tx *gorm.DB) error {
		var user db.User
		if err := tx.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if err := gateCheck(&user); err != nil {
			return err
		}

		if err := tx.Where("code = ?", code).First(&promo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPromoNotFound
			}
			return err
		}
		if !promo.IsActive {
			return ErrPromoInactive
		}
		if promo.ExpiresAt != nil && promo.ExpiresAt.Before(time.Now()) {
			return ErrPromoExpired
		}
		if promo.UserIDBound != nil && *promo.UserIDBound != telegramID {
			return ErrPromoNotBound
		}

		// check-and-increment одним выражением
		res := tx.Model(&db.Promocode{}).
			Where("id = ? AND current_activations < max_activations", promo.ID).
			Update("current_activations", gorm.Expr("current_activations + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPromoExhausted
		}
		promo.CurrentActivations++

		activation := db.PromocodeActivation{PromocodeID: promo.ID, UserID: user.ID}
		if err := tx.Create(&activation).Error; err != nil {
			return err
		}
		if err := Credit(tx, user.ID, promo.Amount, true); err != nil {
			return err
		}

		db.LogAction(tx, "promocode_activation", &user.ID, nil, map[string]interface{}{
			"promocode_id": promo.ID,
			"code":         promo.Code,
			"amount":       promo.Amount.StringFixed(2),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &promo, nil
}
