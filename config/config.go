package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	BotToken        string
	AdminIDs        []int64
	CryptoBotToken  string
	CryptoBotAPIURL string
	DatabaseURL     string
}

var AppCfg AppConfig

func LoadConfig() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found, relying on environment variables")
	}

	AppCfg.BotToken = os.Getenv("BOT_TOKEN")
	AppCfg.AdminIDs = ParseAdminIDs(os.Getenv("ADMIN_TELEGRAM_IDS"))
	AppCfg.CryptoBotToken = os.Getenv("CRYPTOBOT_TOKEN")
	AppCfg.CryptoBotAPIURL = os.Getenv("CRYPTOBOT_API_URL")
	AppCfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if AppCfg.CryptoBotAPIURL == "" {
		AppCfg.CryptoBotAPIURL = "https://pay.crypt.bot/api"
	}

	if AppCfg.BotToken == "" || len(AppCfg.AdminIDs) == 0 || AppCfg.DatabaseURL == "" {
		log.Fatal("Critical environment variables are missing. Bot will exit.")
	}
}

// ParseAdminIDs разбирает список Telegram ID админов через запятую
func ParseAdminIDs(raw string) []int64 {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Некорректный admin ID %q, пропускаем", part)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
