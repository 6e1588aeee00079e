package services

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/settings"
)

// CheckChannelSubscription проверяет подписку пользователя на обязательный
// канал. При выключенной проверке, пустом канале, таймауте или любой
// ошибке API — доступ разрешён (fail open: сбой проверки не должен
// запирать пользователей).
func CheckChannelSubscription(bot *tgbotapi.BotAPI, gdb *gorm.DB, telegramID int64) bool {
	if !settings.ChannelSubscriptionEnabled(gdb) {
		return true
	}
	channel := settings.RequiredChannelID(gdb)
	if channel == "" {
		return true
	}

	cfg := tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{UserID: telegramID},
	}
	if strings.HasPrefix(channel, "@") {
		cfg.SuperGroupUsername = channel
	} else {
		chatID, err := strconv.ParseInt(channel, 10, 64)
		if err != nil {
			return true
		}
		cfg.ChatID = chatID
	}

	member, err := bot.GetChatMember(cfg)
	if err != nil {
		logger.Error("subscription check failed", zap.Error(err))
		return true
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}
