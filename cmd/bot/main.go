package main

import (
	"log"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/robfig/cron/v3"

	"Shop-Telegram-bot/config"
	"Shop-Telegram-bot/internal/admin"
	"Shop-Telegram-bot/internal/bot"
	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
	"Shop-Telegram-bot/internal/services"
	"Shop-Telegram-bot/internal/settings"
)

func main() {
	config.LoadConfig()
	db.InitDB(config.AppCfg.DatabaseURL)

	botapi, err := tgbotapi.NewBotAPI(config.AppCfg.BotToken)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	logger.InitNotifier(botapi, config.AppCfg.AdminIDs)

	// Токен платёжного шлюза: настройка в БД перекрывает переменную окружения
	cryptoToken := config.AppCfg.CryptoBotToken
	if t := settings.CryptoBotToken(db.DB); t != "" {
		cryptoToken = t
	}
	cryptoClient := services.NewCryptoPayClient(config.AppCfg.CryptoBotAPIURL, cryptoToken)

	// Фоновая сверка платежей со шлюзом и ежедневный бэкап
	c := cron.New()
	c.AddFunc("@every 30s", func() {
		services.CheckPendingPayments(botapi, db.DB, cryptoClient)
	})
	c.AddFunc("0 3 * * *", func() {
		admin.AutoBackupDatabase(config.AppCfg.DatabaseURL)
	})
	c.Start()

	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		if err := http.ListenAndServe(":8080", nil); err != nil {
			log.Fatalf("Health server error: %v", err)
		}
	}()

	// Запуск Telegram-бота (polling)
	bot.StartBot(botapi, cryptoClient)
}
