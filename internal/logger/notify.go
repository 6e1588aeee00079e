package logger

import (
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var (
	botInstance *tgbotapi.BotAPI
	adminIDs    []int64
	once        sync.Once
)

// InitNotifier инициализирует Telegram-уведомления об ошибках
func InitNotifier(bot *tgbotapi.BotAPI, admins []int64) {
	once.Do(func() {
		botInstance = bot
		adminIDs = admins
	})
}

// NotifyAdmins отправляет критическое уведомление всем админам.
// Ошибки отправки глотаются: алерт не должен ронять вызывающий код.
func NotifyAdmins(msg string) {
	if botInstance == nil || len(adminIDs) == 0 {
		return
	}
	for _, id := range adminIDs {
		if _, err := botInstance.Send(tgbotapi.NewMessage(id, "[ALERT] "+msg)); err != nil {
			Error("admin alert failed")
		}
	}
}

// NotifyOnPanic ловит панику, логирует и уведомляет
func NotifyOnPanic(context string) {
	if r := recover(); r != nil {
		NotifyAdmins(fmt.Sprintf("Panic in %s: %v", context, r))
	}
}
