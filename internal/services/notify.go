package services

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"Shop-Telegram-bot/config"
	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
)

// NotifyAdminsAbout шлёт событие всем админам, при наличии — с данными
// пользователя. Ошибки отправки не всплывают наружу.
func NotifyAdminsAbout(bot *tgbotapi.BotAPI, message string, user *db.User) {
	text := "🔔 " + message
	if user != nil {
		text += fmt.Sprintf("\n👤 ID: %d", user.TelegramID)
		if user.Username != "" {
			text += "\n📱 Username: @" + user.Username
		} else {
			text += "\n📱 Username: не указан"
		}
	}
	for _, adminID := range config.AppCfg.AdminIDs {
		if _, err := bot.Send(tgbotapi.NewMessage(adminID, text)); err != nil {
			logger.Error("admin notify failed")
		}
	}
}
