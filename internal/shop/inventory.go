package shop

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"Shop-Telegram-bot/internal/db"
)

// Reserve выделяет quantity свободных единиц позиции и помечает их
// проданными в рамках переданной транзакции. Порядок выдачи — FIFO:
// старейшие по created_at, затем по id. Частичных резервов не бывает:
// либо все quantity единиц, либо ErrOutOfStock.
//
// Для файловых товаров количество принудительно равно 1.
func Reserve(tx *gorm.DB, item *db.Item, quantity int) ([]db.Product, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	switch item.Kind {
	case db.KindFile:
		quantity = 1
	case db.KindString:
	default:
		return nil, ErrItemNotFound
	}

	var products []db.Product
	q := tx.Where("item_id = ? AND is_sold = ?", item.ID, false).
		Order("created_at, id").
		Limit(quantity)
	// На Postgres конкурирующие резервы не видят строк друг друга.
	// На диалектах без FOR UPDATE корректность обеспечивает условный
	// UPDATE ниже.
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"})
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, err
	}
	if len(products) < quantity {
		return nil, ErrOutOfStock
	}

	ids := make([]uint, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	now := time.Now()
	// Переход is_sold false -> true защищён compare-and-set: если другая
	// транзакция успела продать хотя бы одну из выбранных единиц,
	// RowsAffected не совпадёт и вся резервация откатится.
	res := tx.Model(&db.Product{}).
		Where("id IN ? AND is_sold = ?", ids, false).
		Updates(map[string]interface{}{"is_sold": true, "sold_at": now})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected != int64(len(ids)) {
		return nil, ErrOutOfStock
	}

	for i := range products {
		products[i].IsSold = true
		products[i].SoldAt = &now
	}
	return products, nil
}

// AvailableCount возвращает число свободных единиц позиции
func AvailableCount(gdb *gorm.DB, itemID uint) int {
	var count int64
	gdb.Model(&db.Product{}).Where("item_id = ? AND is_sold = ?", itemID, false).Count(&count)
	return int(count)
}
