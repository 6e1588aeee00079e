package shop

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
)

// PurchaseResult — итог успешной покупки: запись и выделенные единицы
// для выдачи после коммита.
type PurchaseResult struct {
	Purchase db.Purchase
	Item     db.Item
	Products []db.Product
}

// Buy проводит покупку целиком в одной транзакции: проверка блокировки,
// позиция, резерв склада, списание баланса, запись покупки. Любая ошибка
// откатывает всё — ни одна единица не остаётся проданной и баланс не
// меняется. Выдача товара и уведомления — забота вызывающего кода, после
// коммита.
func Buy(gdb *gorm.DB, telegramID int64, itemID uint, quantity int) (*PurchaseResult, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var result PurchaseResult
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

		var item db.Item
		if err := tx.Where("id = ? AND is_visible = ?", itemID, true).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrItemNotFound
			}
			return err
		}

		products, err := Reserve(tx, &item, quantity)
		if err != nil {
			return err
		}
		// Файловый товар мог скорректировать количество
		quantity = len(products)

		totalPrice := item.Price.Mul(decimal.NewFromInt(int64(quantity)))
		if err := Debit(tx, user.ID, totalPrice); err != nil {
			return err
		}

		purchase := db.Purchase{
			UserID:     user.ID,
			ItemID:     item.ID,
			ProductID:  &products[0].ID,
			Quantity:   quantity,
			TotalPrice: totalPrice,
		}
		if err := tx.Create(&purchase).Error; err != nil {
			return err
		}

		// Полный набор выделенных единиц фиксируется сразу: выдача и
		// история читают по purchase_id, а не восстанавливают состав
		// по близости sold_at
		ids := make([]uint, 0, len(products))
		for _, p := range products {
			ids = append(ids, p.ID)
		}
		if err := tx.Model(&db.Product{}).Where("id IN ?", ids).
			Update("purchase_id", purchase.ID).Error; err != nil {
			return err
		}
		for i := range products {
			products[i].PurchaseID = &purchase.ID
		}

		db.LogAction(tx, "purchase", &user.ID, nil, map[string]interface{}{
			"item_id":     item.ID,
			"quantity":    quantity,
			"total_price": totalPrice.StringFixed(2),
		})

		result = PurchaseResult{Purchase: purchase, Item: item, Products: products}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// PurchasedProducts возвращает единицы, выданные конкретной покупкой
func PurchasedProducts(gdb *gorm.DB, purchaseID uint) ([]db.Product, error) {
	var products []db.Product
	err := gdb.Where("purchase_id = ?", purchaseID).Order("id").Find(&products).Error
	return products, err
}
