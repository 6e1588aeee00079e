package admin

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"Shop-Telegram-bot/internal/db"
	"Shop-Telegram-bot/internal/logger"
)

// pendingUploads связывает админа с позицией, ожидающей загрузки товара
var pendingUploads = struct {
	sync.Mutex
	m map[int64]uint
}{m: make(map[int64]uint)}

func handleUploadStart(reply func(string), args []string, adminID int64) {
	if len(args) < 1 {
		reply("Использование: /admin_upload <id позиции>")
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
	pendingUploads.Lock()
	pendingUploads.m[adminID] = item.ID
	pendingUploads.Unlock()
	switch item.Kind {
	case db.KindString:
		reply(fmt.Sprintf("Отправьте .txt файл с товаром для «%s» (одна строка — одна единица)", item.Name))
	default:
		reply(fmt.Sprintf("Отправьте файл-товар для «%s»", item.Name))
	}
}

// HandleAdminDocument принимает документ от админа, если для него ожидается загрузка.
// Возвращает true, если документ был обработан как поставка товара.
func HandleAdminDocument(bot *tgbotapi.BotAPI, message *tgbotapi.Message) bool {
	if message.Document == nil || !IsAdmin(message.From.ID) {
		return false
	}
	pendingUploads.Lock()
	itemID, ok := pendingUploads.m[message.From.ID]
	if ok {
		delete(pendingUploads.m, message.From.ID)
	}
	pendingUploads.Unlock()
	if !ok {
		return false
	}

	reply := func(text string) {
		bot.Send(tgbotapi.NewMessage(message.Chat.ID, text))
	}
	var item db.Item
	if err := db.DB.First(&item, itemID).Error; err != nil {
		reply("Позиция не найдена")
		return true
	}

	switch item.Kind {
	case db.KindString:
		uploadStringStock(bot, reply, &item, message)
	case db.KindFile:
		uploadFileStock(reply, &item, message)
	}
	return true
}

func uploadStringStock(bot *tgbotapi.BotAPI, reply func(string), item *db.Item, message *tgbotapi.Message) {
	if !strings.HasSuffix(message.Document.FileName, ".txt") {
		reply("Для строковых товаров нужен .txt файл")
		return
	}
	url, err := bot.GetFileDirectURL(message.Document.FileID)
	if err != nil {
		reply("Не удалось получить файл: " + err.Error())
		return
	}
	resp, err := http.Get(url)
	if err != nil {
		reply("Не удалось скачать файл: " + err.Error())
		return
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		reply("Ошибка чтения файла: " + err.Error())
		return
	}

	var products []db.Product
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		products = append(products, db.Product{ItemID: item.ID, Content: line})
	}
	if len(products) == 0 {
		reply("Файл пуст, товар не добавлен")
		return
	}
	if err := db.DB.Create(&products).Error; err != nil {
		reply("Ошибка записи товара: " + err.Error())
		return
	}
	logger.Info(fmt.Sprintf("поставка: позиция %d, добавлено %d ед.", item.ID, len(products)))
	reply(fmt.Sprintf("✅ Добавлено %d ед. товара для «%s»", len(products), item.Name))
}

func uploadFileStock(reply func(string), item *db.Item, message *tgbotapi.Message) {
	// FileID достаточно для повторной отправки; путь храним на случай потери файла у Telegram
	dir := filepath.Join("uploads", strconv.FormatUint(uint64(item.ID), 10))
	os.MkdirAll(dir, 0o755)
	path := filepath.Join(dir, uuid.NewString()+filepath.Ext(message.Document.FileName))
	product := db.Product{
		ItemID:   item.ID,
		FileID:   message.Document.FileID,
		FilePath: path,
	}
	if err := db.DB.Create(&product).Error; err != nil {
		reply("Ошибка записи товара: " + err.Error())
		return
	}
	logger.Info(fmt.Sprintf("поставка: позиция %d, файл %s", item.ID, message.Document.FileName))
	reply(fmt.Sprintf("✅ Файл «%s» добавлен как товар для «%s»", message.Document.FileName, item.Name))
}
