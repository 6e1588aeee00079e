package services

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
)

// Аудитории рассылки
const (
	BroadcastAll       = "all"
	BroadcastBuyers    = "buyers"
	BroadcastNonBuyers = "non_buyers"
)

// Фиксированная пауза между отправками, чтобы не упереться в лимиты Telegram
const broadcastDelay = 50 * time.Millisecond

// Broadcast рассылает текст (опционально с фото) выбранной аудитории.
// Ошибки по отдельным получателям считаются и не прерывают остаток
// рассылки. Возвращает (успешно, с ошибкой).
func Broadcast(bot *tgbotapi.BotAPI, gdb *gorm.DB, audience, text, photoID string) (int, int) {
	var users []db.User
	q := gdb.Model(&db.User{}).Where("is_blocked = ?", false)
	switch audience {
	case BroadcastBuyers:
		q = q.Where("id IN (?)", gdb.Model(&db.Purchase{}).Distinct("user_id"))
	case BroadcastNonBuyers:
		q = q.Where("id NOT IN (?)", gdb.Model(&db.Purchase{}).Distinct("user_id"))
	}
	if err := q.Find(&users).Error; err != nil {
		logger.Error("broadcast user query failed", zap.Error(err))
		return 0, 0
	}

	success, failed := 0, 0
	for _, user := range users {
		var err error
		if photoID != "" {
			photo := tgbotapi.NewPhoto(user.TelegramID, tgbotapi.FileID(photoID))
			photo.Caption = text
			_, err = bot.Send(photo)
		} else {
			_, err = bot.Send(tgbotapi.NewMessage(user.TelegramID, text))
		}
		if err != nil {
			failed++
		} else {
			success++
		}
		time.Sleep(broadcastDelay)
	}
	logger.Info("broadcast done",
		zap.String("audience", audience),
		zap.Int("success", success),
		zap.Int("failed", failed))
	return success, failed
}
