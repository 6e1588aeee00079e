package admin

import "Shop-Telegram-bot/config"

func IsAdmin(userID int64) bool {
	for _, id := range config.AppCfg.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}
