package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/services"
	"Shop-Telegram-bot/internal/settings"
	"Shop-Telegram-bot/internal/shop"
)

const adminHelp = `Админ-команды:
/admin_stats — статистика магазина
/admin_user <id|@username> — карточка пользователя
/admin_setbalance <id|@username> <сумма> — перезаписать баланс
/admin_block <id|@username> <normal|silent> [причина] — заблокировать
/admin_unblock <id|@username> — разблокировать
/admin_addpromo <КОД> <сумма> <активаций> [дней] [user_id] — промокод
/admin_promostats — статистика промокодов
/admin_addcategory <название>
/admin_addsubcategory <id категории> <название>
/admin_additem <id подкатегории> <string|file> <цена> <название>
/admin_delitem <id позиции> — удалить позицию вместе с остатками
/admin_upload <id позиции> — затем отправьте файл с товаром
/admin_payments [N] — последние платежи
/admin_broadcast <all|buyers|non_buyers> <текст>
/admin_maintenance <on|off> — тех. работы
/admin_notify <purchases|payments> <on|off> — уведомления админам
/admin_channel <@канал|id|off> — обязательная подписка
/admin_backup — дамп БД
/admin_restore <файл> — восстановление из дампа`

func HandleAdminCommand(bot *tgbotapi.BotAPI, update *tgbotapi.Update) {
	if update.Message == nil || !IsAdmin(update.Message.From.ID) {
		return
	}
	adminID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	cmd := update.Message.Command()
	args := strings.Fields(update.Message.CommandArguments())

	reply := func(text string) {
		bot.Send(tgbotapi.NewMessage(chatID, text))
	}

	switch cmd {
	case "admin_help":
		reply(adminHelp)
	case "admin_stats":
		handleStats(bot, chatID)
	case "admin_user":
		handleUser(reply, args)
	case "admin_setbalance":
		handleSetBalance(reply, args, adminID)
	case "admin_block":
		handleBlock(reply, args, adminID)
	case "admin_unblock":
		handleUnblock(reply, args, adminID)
	case "admin_addpromo":
		handleAddPromo(reply, args, adminID)
	case "admin_promostats":
		handlePromoStats(reply)
	case "admin_addcategory":
		handleAddCategory(reply, args)
	case "admin_addsubcategory":
		handleAddSubcategory(reply, args)
	case "admin_additem":
		handleAddItem(reply, args)
	case "admin_delitem":
		handleDelItem(reply, args, adminID)
	case "admin_upload":
		handleUploadStart(reply, args, adminID)
	case "admin_payments":
		handlePayments(reply, args)
	case "admin_broadcast":
		handleBroadcast(bot, reply, args)
	case "admin_maintenance":
		handleMaintenance(reply, args)
	case "admin_notify":
		handleNotify(reply, args)
	case "admin_channel":
		handleChannel(reply, args)
	case "admin_backup":
		handleBackup(bot, chatID)
	case "admin_restore":
		handleRestore(reply, args)
	default:
		reply("Неизвестная админ-команда, /admin_help для справки")
	}
	logger.LogAdminAction(adminID, cmd, update.Message.Text)
}

func handleStats(bot *tgbotapi.BotAPI, chatID int64) {
	gdb := db.DB
	msg := fmt.Sprintf(
		"📊 Статистика\n\n👥 Пользователей: %d\n🛒 Покупок: %d\n💰 Выручка пополнений: %s USDT\n📦 Товаров в наличии: %d\n✅ Продано товаров: %d",
		db.CountUsers(gdb),
		db.CountPurchases(gdb),
		db.SumPaidPayments(gdb).StringFixed(2),
		db.CountProducts(gdb, false),
		db.CountProducts(gdb, true),
	)
	bot.Send(tgbotapi.NewMessage(chatID, msg))
}

func handleUser(reply func(string), args []string) {
	if len(args) < 1 {
		reply("Использование: /admin_user <id|@username>")
		return
	}
	user, err := db.FindUserByRef(db.DB, args[0])
	if err != nil {
		reply("Пользователь не найден")
		return
	}
	state := "✅ Активен"
	if user.IsBlocked {
		state = "🚫 Заблокирован (" + user.BlockType + ")"
		if user.BlockReason != "" {
			state += ": " + user.BlockReason
		}
	}
	reply(fmt.Sprintf(
		"👤 ID: %d\nUsername: @%s\n💰 Баланс: %s USDT\n💳 Всего пополнено: %s USDT\n📅 Регистрация: %s\n%s",
		user.TelegramID, user.Username,
		user.Balance.StringFixed(2), user.TotalDeposits.StringFixed(2),
		user.CreatedAt.Format("02.01.2006 15:04"), state))
}

func handleSetBalance(reply func(string), args []string, adminID int64) {
	if len(args) < 2 {
		reply("Использование: /admin_setbalance <id|@username> <сумма>")
		return
	}
	user, err := db.FindUserByRef(db.DB, args[0])
	if err != nil {
		reply("Пользователь не найден")
		return
	}
	balance, err := decimal.NewFromString(strings.ReplaceAll(args[1], ",", "."))
	if err != nil {
		reply("Некорректная сумма")
		return
	}
	// Прямая перезапись — отдельная операция, отрицательные значения не принимает
	if err := shop.OverrideBalance(db.DB, user.ID, balance, adminID); err != nil {
		if errors.Is(err, shop.ErrInvalidAmount) {
			reply("❌ Баланс не может быть отрицательным")
			return
		}
		reply("Ошибка: " + err.Error())
		return
	}
	reply(fmt.Sprintf("✅ Баланс пользователя %d изменён на %s USDT", user.TelegramID, balance.StringFixed(2)))
}

func handleBlock(reply func(string), args []string, adminID int64) {
	if len(args) < 2 || (args[1] != db.BlockNormal && args[1] != db.BlockSilent) {
		reply("Использование: /admin_block <id|@username> <normal|silent> [причина]")
		return
	}
	user, err := db.FindUserByRef(db.DB, args[0])
	if err != nil {
		reply("Пользователь не найден")
		return
	}
	reason := strings.Join(args[2:], " ")
	err = db.DB.Model(&user).Updates(map[string]interface{}{
		"is_blocked":   true,
		"block_type":   args[1],
		"block_reason": reason,
	}).Error
	if err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	db.LogAction(db.DB, "admin_action", &user.ID, &adminID, map[string]interface{}{
		"action": "block", "type": args[1], "reason": reason,
	})
	reply(fmt.Sprintf("🚫 Пользователь %d заблокирован (%s)", user.TelegramID, args[1]))
}

func handleUnblock(reply func(string), args []string, adminID int64) {
	if len(args) < 1 {
		reply("Использование: /admin_unblock <id|@username>")
		return
	}
	user, err := db.FindUserByRef(db.DB, args[0])
	if err != nil {
		reply("Пользователь не найден")
		return
	}
	err = db.DB.Model(&user).Updates(map[string]interface{}{
		"is_blocked":   false,
		"block_reason": "",
	}).Error
	if err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	db.LogAction(db.DB, "admin_action", &user.ID, &adminID, map[string]interface{}{"action": "unblock"})
	reply(fmt.Sprintf("✅ Пользователь %d разблокирован", user.TelegramID))
}

func handleAddPromo(reply func(string), args []string, adminID int64) {
	if len(args) < 3 {
		reply("Использование: /admin_addpromo <КОД> <сумма> <активаций> [дней] [user_id]")
		return
	}
	code := strings.ToUpper(args[0])
	amount, err := decimal.NewFromString(strings.ReplaceAll(args[1], ",", "."))
	if err != nil || amount.LessThanOrEqual(decimal.Zero) {
		reply("Некорректная сумма")
		return
	}
	maxActivations, err := strconv.Atoi(args[2])
	if err != nil || maxActivations < 1 {
		reply("Некорректное число активаций")
		return
	}
	var expiresAt *time.Time
	if len(args) > 3 {
		days, err := strconv.Atoi(args[3])
		if err != nil || days < 1 {
			reply("Некорректный срок действия в днях")
			return
		}
		t := time.Now().AddDate(0, 0, days)
		expiresAt = &t
	}
	var bound *int64
	if len(args) > 4 {
		id, err := strconv.ParseInt(args[4], 10, 64)
		if err != nil {
			reply("Некорректный user_id привязки")
			return
		}
		bound = &id
	}
	promo := db.Promocode{
		Code:           code,
		Amount:         amount,
		MaxActivations: maxActivations,
		ExpiresAt:      expiresAt,
		UserIDBound:    bound,
		IsActive:       true,
	}
	if err := db.DB.Create(&promo).Error; err != nil {
		reply("Ошибка создания промокода (код уже существует?)")
		return
	}
	db.LogAction(db.DB, "admin_action", nil, &adminID, map[string]interface{}{
		"action": "create_promocode", "code": code,
	})
	reply(fmt.Sprintf("✅ Промокод %s создан: %s USDT, %d активаций", code, amount.StringFixed(2), maxActivations))
}

func handlePromoStats(reply func(string)) {
	var promos []db.Promocode
	db.DB.Order("created_at desc").Limit(20).Find(&promos)
	if len(promos) == 0 {
		reply("Промокодов нет")
		return
	}
	var sb strings.Builder
	sb.WriteString("🎟 Промокоды:\n")
	for _, p := range promos {
		state := "вкл"
		if !p.IsActive {
			state = "выкл"
		}
		sb.WriteString(fmt.Sprintf("%s — %s USDT, %d/%d, %s\n",
			p.Code, p.Amount.StringFixed(2), p.CurrentActivations, p.MaxActivations, state))
	}
	reply(sb.String())
}

func handleAddCategory(reply func(string), args []string) {
	if len(args) < 1 {
		reply("Использование: /admin_addcategory <название>")
		return
	}
	category := db.Category{Name: strings.Join(args, " "), IsVisible: true}
	if err := db.DB.Create(&category).Error; err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	reply(fmt.Sprintf("✅ Категория #%d создана: %s", category.ID, category.Name))
}

func handleAddSubcategory(reply func(string), args []string) {
	if len(args) < 2 {
		reply("Использование: /admin_addsubcategory <id категории> <название>")
		return
	}
	categoryID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		reply("Некорректный id категории")
		return
	}
	var category db.Category
	if err := db.DB.First(&category, categoryID).Error; err != nil {
		reply("Категория не найдена")
		return
	}
	sub := db.Subcategory{CategoryID: category.ID, Name: strings.Join(args[1:], " "), IsVisible: true}
	if err := db.DB.Create(&sub).Error; err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	reply(fmt.Sprintf("✅ Подкатегория #%d создана: %s", sub.ID, sub.Name))
}

func handleAddItem(reply func(string), args []string) {
	if len(args) < 4 {
		reply("Использование: /admin_additem <id подкатегории> <string|file> <цена> <название>")
		return
	}
	subID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		reply("Некорректный id подкатегории")
		return
	}
	var sub db.Subcategory
	if err := db.DB.First(&sub, subID).Error; err != nil {
		reply("Подкатегория не найдена")
		return
	}
	kind := db.ItemKind(args[1])
	if kind != db.KindString && kind != db.KindFile {
		reply("Тип товара: string или file")
		return
	}
	price, err := decimal.NewFromString(strings.ReplaceAll(args[2], ",", "."))
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		reply("Некорректная цена")
		return
	}
	item := db.Item{
		CategoryID:    &sub.CategoryID,
		SubcategoryID: &sub.ID,
		Name:          strings.Join(args[3:], " "),
		Price:         price,
		Kind:          kind,
		IsVisible:     true,
		OutOfStock:    db.StockShowMessage,
	}
	if err := db.DB.Create(&item).Error; err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	reply(fmt.Sprintf("✅ Позиция #%d создана: %s (%s, %s$)", item.ID, item.Name, kind, price.StringFixed(2)))
}

// handleDelItem удаляет позицию вместе с непроданными остатками.
// Проданные единицы остаются: история покупок должна продолжать выдавать их.
func handleDelItem(reply func(string), args []string, adminID int64) {
	if len(args) < 1 {
		reply("Использование: /admin_delitem <id позиции>")
		return
	}
	itemID, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		reply("Некорректный id позиции")
		return
	}
	var item db.Item
	if err := db.DB.First(&item, itemID).Error; err != nil {
		reply("Позиция не найдена")
		return
	}
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("item_id = ? AND is_sold = ?", item.ID, false).
			Delete(&db.Product{}).Error; err != nil {
			return err
		}
		return tx.Delete(&item).Error
	})
	if err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	db.LogAction(db.DB, "admin_action", nil, &adminID, map[string]interface{}{
		"action": "delete_item", "item_id": item.ID,
	})
	reply(fmt.Sprintf("🗑 Позиция #%d удалена вместе с остатками", item.ID))
}

func handlePayments(reply func(string), args []string) {
	limit := 20
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n > 0 {
			limit = n
		}
	}
	payments := db.GetPayments(db.DB, time.Time{}, time.Now(), limit)
	if len(payments) == 0 {
		reply("Платежей нет")
		return
	}
	var sb strings.Builder
	sb.WriteString("💳 Последние платежи:\n")
	for _, p := range payments {
		sb.WriteString(fmt.Sprintf("#%d user=%d %s USDT [%s]\n",
			p.ID, p.UserID, p.Amount.StringFixed(2), p.Status))
	}
	reply(sb.String())
}

func handleBroadcast(bot *tgbotapi.BotAPI, reply func(string), args []string) {
	if len(args) < 2 {
		reply("Использование: /admin_broadcast <all|buyers|non_buyers> <текст>")
		return
	}
	audience := args[0]
	switch audience {
	case services.BroadcastAll, services.BroadcastBuyers, services.BroadcastNonBuyers:
	default:
		reply("Аудитория: all, buyers или non_buyers")
		return
	}
	text := strings.Join(args[1:], " ")
	reply("Начинаю рассылку...")
	// Рассылка долгая (фиксированная пауза между отправками) — в фоне
	go func() {
		success, failed := services.Broadcast(bot, db.DB, audience, text, "")
		reply(fmt.Sprintf("✅ Рассылка завершена!\nУспешно: %d\nОшибок: %d", success, failed))
	}()
}

func handleMaintenance(reply func(string), args []string) {
	if len(args) < 1 || (args[0] != "on" && args[0] != "off") {
		reply("Использование: /admin_maintenance <on|off>")
		return
	}
	if err := settings.SetMaintenanceMode(db.DB, args[0] == "on"); err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	reply("⚙️ Режим тех. работ: " + args[0])
}

func handleNotify(reply func(string), args []string) {
	if len(args) < 2 || (args[1] != "on" && args[1] != "off") {
		reply("Использование: /admin_notify <purchases|payments> <on|off>")
		return
	}
	enabled := args[1] == "on"
	switch args[0] {
	case "purchases":
		settings.SetNotifyNewPurchase(db.DB, enabled)
	case "payments":
		settings.SetNotifyNewPayment(db.DB, enabled)
	default:
		reply("Тип уведомлений: purchases или payments")
		return
	}
	reply("🔔 Уведомления " + args[0] + ": " + args[1])
}

func handleChannel(reply func(string), args []string) {
	if len(args) < 1 {
		reply("Использование: /admin_channel <@канал|id|off>")
		return
	}
	if args[0] == "off" {
		settings.SetChannelSubscriptionEnabled(db.DB, false)
		reply("Проверка подписки выключена")
		return
	}
	if err := settings.SetRequiredChannelID(db.DB, args[0]); err != nil {
		reply("Ошибка: " + err.Error())
		return
	}
	settings.SetChannelSubscriptionEnabled(db.DB, true)
	reply("Обязательная подписка: " + args[0])
}
