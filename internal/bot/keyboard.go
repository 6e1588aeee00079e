package bot

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/admin"
	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/shop"
)

func GetReplyKeyboard(userID int64) tgbotapi.ReplyKeyboardMarkup {
	rows := [][]tgbotapi.KeyboardButton{
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBuy),
			tgbotapi.NewKeyboardButton(btnProfile),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnBalance),
			tgbotapi.NewKeyboardButton(btnFAQ),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSupport),
			tgbotapi.NewKeyboardButton(btnAgreement),
		),
	}
	if admin.IsAdmin(userID) {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/admin_help"),
		))
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

func categoriesKeyboard(gdb *gorm.DB) tgbotapi.InlineKeyboardMarkup {
	var categories []db.Category
	gdb.Where("is_visible = ?", true).Order("position, id").Find(&categories)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, c := range categories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c.Name, "category_"+strconv.FormatUint(uint64(c.ID), 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_main"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func subcategoriesKeyboard(gdb *gorm.DB, categoryID uint) tgbotapi.InlineKeyboardMarkup {
	var subcategories []db.Subcategory
	gdb.Where("category_id = ? AND is_visible = ?", categoryID, true).
		Order("position, id").Find(&subcategories)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, s := range subcategories {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(s.Name, "subcategory_"+strconv.FormatUint(uint64(s.ID), 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_categories"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// itemsKeyboard собирает список позиций подкатегории с учётом политики
// отображения позиций без остатков
func itemsKeyboard(gdb *gorm.DB, subcategoryID uint) tgbotapi.InlineKeyboardMarkup {
	var items []db.Item
	gdb.Where("subcategory_id = ? AND is_visible = ?", subcategoryID, true).
		Order("position, id").Find(&items)

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		available := shop.AvailableCount(gdb, item.ID)
		idStr := strconv.FormatUint(uint64(item.ID), 10)
		label := fmt.Sprintf("%s — %s$", item.Name, item.Price.StringFixed(2))
		if available > 0 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, "item_"+idStr),
			))
			continue
		}
		switch item.OutOfStock {
		case db.StockHide:
			// позиция не показывается вовсе
		case db.StockShowNoButton:
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label+" (нет в наличии)", "item_info_"+idStr),
			))
		default: // StockShowMessage
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, "item_"+idStr),
			))
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_categories"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// itemKeyboard — карточка товара: кнопки покупки, если есть остатки
func itemKeyboard(item *db.Item, available int) tgbotapi.InlineKeyboardMarkup {
	idStr := strconv.FormatUint(uint64(item.ID), 10)
	var rows [][]tgbotapi.InlineKeyboardButton
	if available > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💰 Купить 1 шт.", "buy_"+idStr+"_1"),
		))
		if item.Kind == db.KindString && available > 1 {
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🔢 Купить несколько", "buy_custom_"+idStr),
			))
		}
	}
	back := "back_to_categories"
	if item.SubcategoryID != nil {
		back = "subcategory_" + strconv.FormatUint(uint64(*item.SubcategoryID), 10)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", back),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func profileKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📜 История покупок", "purchase_history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🎟 Активировать промокод", "activate_promocode"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💳 Пополнить баланс", "profile_balance"),
		),
	)
}

func purchaseHistoryKeyboard(purchases []db.Purchase, items map[uint]db.Item) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range purchases {
		name := "Заказ"
		if item, ok := items[p.ItemID]; ok {
			name = item.Name
		}
		label := fmt.Sprintf("#%d %s × %d — %s USDT", p.ID, name, p.Quantity, p.TotalPrice.StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "purchase_"+strconv.FormatUint(uint64(p.ID), 10)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", "back_to_profile"),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func paymentKeyboard(paymentID uint) tgbotapi.InlineKeyboardMarkup {
	idStr := strconv.FormatUint(uint64(paymentID), 10)
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Проверить платёж", "check_payment_"+idStr),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("❌ Отменить", "cancel_payment_"+idStr),
		),
	)
}
