package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Shop-Telegram-bot/internal/admin"
	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/services"
	"Shop-Telegram-bot/internal/settings"
	"Shop-Telegram-bot/internal/shop"
)

var (
	rateLimiter = NewRateLimiter()
	pending     = newConversations()

	// клиент платёжного шлюза, общий для обработчиков пополнения
	cryptoClient *services.CryptoPayClient
)

// StartBot запускает long polling; каждый апдейт обрабатывается в своей горутине
func StartBot(bot *tgbotapi.BotAPI, client *services.CryptoPayClient) {
	cryptoClient = client
	logger.Info("бот запущен", zap.String("account", bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for update := range updates {
		go func(update tgbotapi.Update) {
			defer logger.NotifyOnPanic("handle_update")
			HandleUpdate(bot, update)
		}(update)
	}
}

func HandleUpdate(bot *tgbotapi.BotAPI, update tgbotapi.Update) {
	var from *tgbotapi.User
	var chatID int64
	switch {
	case update.Message != nil && update.Message.From != nil:
		from = update.Message.From
		chatID = update.Message.Chat.ID
	// Callback без сообщения (inline-режим, протухшее сообщение) некуда
	// отвечать — такой апдейт просто пропускается
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil:
		from = update.CallbackQuery.From
		chatID = update.CallbackQuery.Message.Chat.ID
	default:
		return
	}

	// Документ от админа может быть поставкой товара
	if update.Message != nil && update.Message.Document != nil {
		if admin.HandleAdminDocument(bot, update.Message) {
			return
		}
	}

	isAdmin := admin.IsAdmin(from.ID)

	// Гейт доступа — первым, до любой реакции. Silent-блок не отвечает вовсе.
	if !isAdmin {
		access, err := shop.CheckAccess(db.DB, from.ID)
		if err != nil {
			logger.Error("проверка доступа", zap.Error(err))
			return
		}
		if access.Blocked {
			if access.Silent {
				return
			}
			text := textBlocked
			if access.Reason != "" {
				text += "\nПричина: " + access.Reason
			}
			text += "\n" + textBlockAppeal
			bot.Send(tgbotapi.NewMessage(chatID, text))
			return
		}

		if settings.MaintenanceMode(db.DB) {
			bot.Send(tgbotapi.NewMessage(chatID, textMaintenance))
			return
		}

		if !services.CheckChannelSubscription(bot, db.DB, from.ID) {
			channel := settings.RequiredChannelID(db.DB)
			msg := tgbotapi.NewMessage(chatID, textNoSubscription+"\n"+channel)
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
				tgbotapi.NewInlineKeyboardRow(
					tgbotapi.NewInlineKeyboardButtonData("✅ Я подписался", "check_subscription"),
				),
			)
			bot.Send(msg)
			return
		}
	}

	user, err := db.GetOrCreateUser(db.DB, from.ID, from.UserName, from.FirstName, from.LastName)
	if err != nil {
		logger.Error("регистрация пользователя", zap.Error(err))
		return
	}

	if update.Message != nil && isAdmin && strings.HasPrefix(update.Message.Text, "/admin_") {
		admin.HandleAdminCommand(bot, &update)
		return
	}

	if update.CallbackQuery != nil {
		handleCallback(bot, update.CallbackQuery, &user)
		return
	}
	if update.Message != nil {
		handleMessage(bot, update.Message, &user)
	}
}
