package admin

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"Shop-Telegram-bot/config"
	"Shop-Telegram-bot/internal/logger"
)

// BackupDatabase создает дамп БД Postgres в указанный файл
func BackupDatabase(filename string, dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "pg_dump", dsn, "-Fc", "-f", filename)
	return cmd.Run()
}

// RestoreDatabase восстанавливает БД из дампа
func RestoreDatabase(filename string, dsn string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	cmd := exec.CommandContext(ctx, "pg_restore", "--clean", "-d", dsn, filename)
	return cmd.Run()
}

// CleanOldBackups удаляет дампы старше maxAge в директории dir
func CleanOldBackups(dir string, maxAge time.Duration) error {
	files, err := filepath.Glob(filepath.Join(dir, "*backup_*.dump"))
	if err != nil {
		return err
	}
	cutoff := time.Now().Add(-maxAge)
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(f)
		}
	}
	return nil
}

// AutoBackupDatabase запускает бэкап и чистку по расписанию
func AutoBackupDatabase(dsn string) {
	backupDir := "backups"
	os.MkdirAll(backupDir, 0o755)
	filename := filepath.Join(backupDir, "autobackup_"+time.Now().Format("20060102_150405")+".dump")
	if err := BackupDatabase(filename, dsn); err != nil {
		logger.Error("автобэкап не удался", zap.Error(err))
		logger.NotifyAdmins("Автобэкап БД не удался: " + err.Error())
		return
	}
	CleanOldBackups(backupDir, 31*24*time.Hour)
	logger.Info("автобэкап создан: " + filename)
}

func handleBackup(bot *tgbotapi.BotAPI, chatID int64) {
	backupDir := "backups"
	os.MkdirAll(backupDir, 0o755)
	filename := filepath.Join(backupDir, "backup_"+time.Now().Format("20060102_150405")+".dump")
	if err := BackupDatabase(filename, config.AppCfg.DatabaseURL); err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, "❌ Ошибка бэкапа: "+err.Error()))
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(filename))
	doc.Caption = "Дамп БД от " + time.Now().Format("02.01.2006 15:04")
	if _, err := bot.Send(doc); err != nil {
		bot.Send(tgbotapi.NewMessage(chatID, fmt.Sprintf("Дамп сохранён на диске: %s (отправить не удалось)", filename)))
	}
}

func handleRestore(reply func(string), args []string) {
	if len(args) < 1 {
		reply("Использование: /admin_restore <файл>")
		return
	}
	filename := filepath.Join("backups", filepath.Base(args[0]))
	if _, err := os.Stat(filename); err != nil {
		reply("Файл дампа не найден: " + filename)
		return
	}
	if err := RestoreDatabase(filename, config.AppCfg.DatabaseURL); err != nil {
		reply("❌ Ошибка восстановления: " + err.Error())
		return
	}
	reply("✅ БД восстановлена из " + filename)
}
