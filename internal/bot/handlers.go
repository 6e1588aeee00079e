package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/services"
	"Shop-Telegram-bot/internal/settings"
	"Shop-Telegram-bot/internal/shop"
)

func handleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message, user *db.User) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	if rateLimiter.IsLimited(user.TelegramID, text) {
		bot.Send(tgbotapi.NewMessage(chatID, "Пожалуйста, не так быстро! Подождите пару секунд..."))
		return
	}

	// /start сбрасывает незавершённый диалог (количество, промокод, сумма)
	if text == "/start" {
		pending.clear(user.TelegramID)
	}

	// Ожидаемый ввод (количество, промокод, сумма пополнения)
	if p := pending.take(user.TelegramID); p.Kind != pendingNone {
		switch p.Kind {
		case pendingQuantity:
			handleQuantityInput(bot, chatID, user, p.ItemID, text)
		case pendingPromocode:
			handlePromocodeInput(bot, chatID, user, text)
		case pendingTopupAmount:
			handleTopupAmount(bot, chatID, user, text)
		}
		return
	}

	switch text {
	case "/start":
		msg := tgbotapi.NewMessage(chatID, textStart)
		msg.ReplyMarkup = GetReplyKeyboard(user.TelegramID)
		bot.Send(msg)
	case btnBuy:
		msg := tgbotapi.NewMessage(chatID, "🛍 Выберите категорию:")
		msg.ReplyMarkup = categoriesKeyboard(db.DB)
		bot.Send(msg)
	case btnProfile:
		sendProfile(bot, chatID, user)
	case btnFAQ:
		bot.Send(tgbotapi.NewMessage(chatID, textFAQ))
	case btnSupport:
		bot.Send(tgbotapi.NewMessage(chatID, textSupport))
	case btnAgreement:
		bot.Send(tgbotapi.NewMessage(chatID, textAgreement))
	case btnBalance:
		pending.set(user.TelegramID, pendingInput{Kind: pendingTopupAmount})
		bot.Send(tgbotapi.NewMessage(chatID, textEnterAmount))
	default:
		msg := tgbotapi.NewMessage(chatID, textUnknownCommand)
		msg.ReplyMarkup = GetReplyKeyboard(user.TelegramID)
		bot.Send(msg)
	}
}

func handleCallback(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, user *db.User) {
	chatID := query.Message.Chat.ID
	data := query.Data
	answer := func(text string) {
		bot.Request(tgbotapi.NewCallback(query.ID, text))
	}

	switch {
	case data == "back_to_main":
		answer("")
		bot.Request(tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID))
	case data == "back_to_categories":
		answer("")
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
			"🛍 Выберите категорию:", categoriesKeyboard(db.DB))
		bot.Send(edit)
	case data == "back_to_profile":
		answer("")
		bot.Request(tgbotapi.NewDeleteMessage(chatID, query.Message.MessageID))
		sendProfile(bot, chatID, user)
	case data == "check_subscription":
		if services.CheckChannelSubscription(bot, db.DB, user.TelegramID) {
			answer("✅ Подписка подтверждена")
			msg := tgbotapi.NewMessage(chatID, textStart)
			msg.ReplyMarkup = GetReplyKeyboard(user.TelegramID)
			bot.Send(msg)
		} else {
			answer("Подписка не найдена")
		}
	case strings.HasPrefix(data, "category_"):
		answer("")
		id := parseID(strings.TrimPrefix(data, "category_"))
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
			"Выберите подкатегорию:", subcategoriesKeyboard(db.DB, id))
		bot.Send(edit)
	case strings.HasPrefix(data, "subcategory_"):
		answer("")
		id := parseID(strings.TrimPrefix(data, "subcategory_"))
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
			"Выберите товар:", itemsKeyboard(db.DB, id))
		bot.Send(edit)
	case strings.HasPrefix(data, "item_info_"):
		answer(textOutOfStock)
	case strings.HasPrefix(data, "item_"):
		answer("")
		showItem(bot, query, parseID(strings.TrimPrefix(data, "item_")))
	case strings.HasPrefix(data, "buy_custom_"):
		itemID := parseID(strings.TrimPrefix(data, "buy_custom_"))
		pending.set(user.TelegramID, pendingInput{Kind: pendingQuantity, ItemID: itemID})
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textEnterQuantity))
	case strings.HasPrefix(data, "buy_"):
		parts := strings.Split(strings.TrimPrefix(data, "buy_"), "_")
		if len(parts) != 2 {
			answer("Ошибка")
			return
		}
		quantity, _ := strconv.Atoi(parts[1])
		answer("")
		doPurchase(bot, chatID, user, parseID(parts[0]), quantity)
	case data == "purchase_history":
		answer("")
		showPurchaseHistory(bot, query, user)
	case strings.HasPrefix(data, "purchase_"):
		answer("")
		redeliverPurchase(bot, chatID, user, parseID(strings.TrimPrefix(data, "purchase_")))
	case data == "activate_promocode":
		pending.set(user.TelegramID, pendingInput{Kind: pendingPromocode})
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textEnterPromocode))
	case data == "profile_balance":
		pending.set(user.TelegramID, pendingInput{Kind: pendingTopupAmount})
		answer("")
		bot.Send(tgbotapi.NewMessage(chatID, textEnterAmount))
	case strings.HasPrefix(data, "check_payment_"):
		handleCheckPayment(bot, query, user, parseID(strings.TrimPrefix(data, "check_payment_")))
	case strings.HasPrefix(data, "cancel_payment_"):
		handleCancelPayment(bot, query, user, parseID(strings.TrimPrefix(data, "cancel_payment_")))
	default:
		answer("")
	}
}

func parseID(s string) uint {
	id, _ := strconv.ParseUint(s, 10, 32)
	return uint(id)
}

func sendProfile(bot *tgbotapi.BotAPI, chatID int64, user *db.User) {
	// Перечитываем — баланс мог измениться после зачисления
	var fresh db.User
	if err := db.DB.First(&fresh, user.ID).Error; err == nil {
		*user = fresh
	}
	var purchases int64
	db.DB.Model(&db.Purchase{}).Where("user_id = ?", user.ID).Count(&purchases)
	text := fmt.Sprintf(
		"👤 Профиль\n\n🆔 ID: %d\n💰 Баланс: %s USDT\n💳 Всего пополнено: %s USDT\n🛒 Покупок: %d",
		user.TelegramID, user.Balance.StringFixed(2), user.TotalDeposits.StringFixed(2), purchases)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = profileKeyboard()
	bot.Send(msg)
}

func showItem(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, itemID uint) {
	chatID := query.Message.Chat.ID
	var item db.Item
	if err := db.DB.Where("id = ? AND is_visible = ?", itemID, true).First(&item).Error; err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, "Товар не найден"))
		return
	}
	available := shop.AvailableCount(db.DB, item.ID)
	var sb strings.Builder
	sb.WriteString("📦 " + item.Name + "\n")
	if item.Description != "" {
		sb.WriteString(item.Description + "\n")
	}
	sb.WriteString(fmt.Sprintf("\n💵 Цена: %s USDT\n📊 В наличии: %d", item.Price.StringFixed(2), available))
	if available == 0 {
		sb.WriteString("\n\n" + textOutOfStock)
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
		sb.String(), itemKeyboard(&item, available))
	bot.Send(edit)
}

func handleQuantityInput(bot *tgbotapi.BotAPI, chatID int64, user *db.User, itemID uint, text string) {
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || quantity < 1 {
		bot.Send(tgbotapi.NewMessage(chatID, textInvalidNumber))
		return
	}
	doPurchase(bot, chatID, user, itemID, quantity)
}

func doPurchase(bot *tgbotapi.BotAPI, chatID int64, user *db.User, itemID uint, quantity int) {
	if rateLimiter.IsLimited(user.TelegramID, "buy") {
		bot.Send(tgbotapi.NewMessage(chatID, "Пожалуйста, не так быстро! Подождите пару секунд..."))
		return
	}
	result, err := shop.Buy(db.DB, user.TelegramID, itemID, quantity)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrOutOfStock):
			bot.Send(tgbotapi.NewMessage(chatID, textOutOfStock))
		case errors.Is(err, shop.ErrInsufficientFunds):
			bot.Send(tgbotapi.NewMessage(chatID, textInsufficientBalance))
		case errors.Is(err, shop.ErrInvalidQuantity):
			bot.Send(tgbotapi.NewMessage(chatID, textInvalidNumber))
		case errors.Is(err, shop.ErrItemNotFound):
			bot.Send(tgbotapi.NewMessage(chatID, "Товар не найден"))
		case errors.Is(err, shop.ErrUserBlocked):
			// гейт уже отработал выше, сюда попадает гонка с блокировкой
		default:
			logger.Error("покупка", zap.Error(err))
			bot.Send(tgbotapi.NewMessage(chatID, "Ошибка покупки. Попробуйте позже."))
		}
		return
	}

	bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("%s\nЗаказ #%d, сумма %s USDT",
		textPurchaseSuccess, result.Purchase.ID, result.Purchase.TotalPrice.StringFixed(2))))
	deliverProducts(bot, chatID, &result.Item, result.Products)

	logger.LogPurchase(user.TelegramID, result.Item.ID, result.Purchase.Quantity, result.Purchase.TotalPrice)
	if settings.NotifyNewPurchase(db.DB) {
		services.NotifyAdminsAbout(bot, fmt.Sprintf("Новая покупка: %s × %d на %s USDT",
			result.Item.Name, result.Purchase.Quantity, result.Purchase.TotalPrice.StringFixed(2)), user)
	}
}

// deliverProducts выдаёт выделенные единицы товара в чат
func deliverProducts(bot *tgbotapi.BotAPI, chatID int64, item *db.Item, products []db.Product) {
	switch item.Kind {
	case db.KindFile:
		for _, p := range products {
			if p.FileID == "" {
				bot.Send(tgbotapi.NewMessage(chatID, "Файл недоступен, обратитесь в поддержку"))
				continue
			}
			doc := tgbotapi.NewDocument(chatID, tgbotapi.FileID(p.FileID))
			doc.Caption = item.Name
			if _, err := bot.Send(doc); err != nil {
				logger.Error("выдача файла", zap.Error(err), zap.Uint("product_id", p.ID))
				bot.Send(tgbotapi.NewMessage(chatID, "Не удалось отправить файл, обратитесь в поддержку"))
			}
		}
	default:
		var sb strings.Builder
		sb.WriteString("🎁 Ваш товар:\n\n")
		for _, p := range products {
			sb.WriteString(p.Content + "\n")
		}
		bot.Send(tgbotapi.NewMessage(chatID, sb.String()))
	}
}

func showPurchaseHistory(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery, user *db.User) {
	chatID := query.Message.Chat.ID
	var purchases []db.Purchase
	db.DB.Where("user_id = ?", user.ID).Order("created_at desc").Limit(20).Find(&purchases)
	if len(purchases) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, "У вас пока нет покупок"))
		return
	}
	items := make(map[uint]db.Item)
	for _, p := range purchases {
		if _, ok := items[p.ItemID]; ok {
			continue
		}
		var item db.Item
		if err := db.DB.First(&item, p.ItemID).Error; err == nil {
			items[p.ItemID] = item
		}
	}
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, query.Message.MessageID,
		"📜 История покупок (выберите для повторной выдачи):",
		purchaseHistoryKeyboard(purchases, items))
	bot.Send(edit)
}

// redeliverPurchase повторно выдаёт товар из истории. Единицы привязаны
// к покупке через purchase_id, так что выдаётся ровно купленный набор.
func redeliverPurchase(bot *tgbotapi.BotAPI, chatID int64, user *db.User, purchaseID uint) {
	var purchase db.Purchase
	if err := db.DB.Where("id = ? AND user_id = ?", purchaseID, user.ID).First(&purchase).Error; err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, "Заказ не найден"))
		return
	}
	var item db.Item
	if err := db.DB.First(&item, purchase.ItemID).Error; err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, "Товар не найден"))
		return
	}
	products, err := shop.PurchasedProducts(db.DB, purchase.ID)
	if err != nil || len(products) == 0 {
		bot.Send(tgbotapi.NewMessage(chatID, "Содержимое заказа недоступно, обратитесь в поддержку"))
		return
	}
	bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Заказ #%d от %s:",
		purchase.ID, purchase.CreatedAt.Format("02.01.2006 15:04"))))
	deliverProducts(bot, chatID, &item, products)
}

func handlePromocodeInput(bot *tgbotapi.BotAPI, chatID int64, user *db.User, code string) {
	if rateLimiter.IsLimited(user.TelegramID, "promo") {
		bot.Send(tgbotapi.NewMessage(chatID, "Пожалуйста, не так быстро! Подождите пару секунд..."))
		return
	}
	promo, err := shop.Redeem(db.DB, code, user.TelegramID)
	if err != nil {
		switch {
		case errors.Is(err, shop.ErrPromoNotFound), errors.Is(err, shop.ErrPromoInactive):
			bot.Send(tgbotapi.NewMessage(chatID, textPromoInvalid))
		case errors.Is(err, shop.ErrPromoExpired):
			bot.Send(tgbotapi.NewMessage(chatID, textPromoExpired))
		case errors.Is(err, shop.ErrPromoExhausted):
			bot.Send(tgbotapi.NewMessage(chatID, textPromoUsed))
		case errors.Is(err, shop.ErrPromoNotBound):
			bot.Send(tgbotapi.NewMessage(chatID, textPromoNotYours))
		default:
			logger.Error("активация промокода", zap.Error(err))
			bot.Send(tgbotapi.NewMessage(chatID, "Ошибка активации. Попробуйте позже."))
		}
		return
	}
	bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("%s\n💰 Начислено: %s USDT",
		textPromoActivated, promo.Amount.StringFixed(2))))
}
