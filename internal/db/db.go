package db

import (
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func InitDB(dsn string) {
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = gdb
	if err := Migrate(gdb); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
}

// Migrate выполняет автомиграцию всех таблиц. Вынесено отдельно,
// чтобы тесты могли поднимать свою БД.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{}, &Category{}, &Subcategory{}, &Item{}, &Product{},
		&Purchase{}, &Payment{}, &Promocode{}, &PromocodeActivation{},
		&ActionLog{}, &Setting{},
	)
}

// GetOrCreateUser находит пользователя по Telegram ID или создаёт нового.
// Пользователь заводится при первом обращении и никогда не удаляется.
func GetOrCreateUser(gdb *gorm.DB, telegramID int64, username, firstName, lastName string) (User, error) {
	var user User
	err := gdb.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = User{
			TelegramID: telegramID,
			Username:   username,
			FirstName:  firstName,
			LastName:   lastName,
			Balance:    decimal.Zero,
		}
		// При гонке двух первых апдейтов уникальный индекс по telegram_id
		// отбросит дубль — перечитываем
		if err := gdb.Create(&user).Error; err != nil {
			if err2 := gdb.Where("telegram_id = ?", telegramID).First(&user).Error; err2 != nil {
				return user, err
			}
		}
		return user, nil
	}
	if err != nil {
		return user, err
	}
	// Обновляем профиль, если что-то поменялось
	if username != "" && user.Username != username {
		gdb.Model(&user).Update("username", username)
	}
	return user, nil
}

// LogAction пишет запись в журнал действий
func LogAction(gdb *gorm.DB, logType string, userID *uint, adminID *int64, data map[string]interface{}) {
	var payload string
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			payload = string(b)
		}
	}
	gdb.Create(&ActionLog{LogType: logType, UserID: userID, AdminID: adminID, Data: payload})
}

// --- Админские методы для статистики и истории ---

func CountUsers(gdb *gorm.DB) int {
	var count int64
	gdb.Model(&User{}).Count(&count)
	return int(count)
}

func CountPurchases(gdb *gorm.DB) int {
	var count int64
	gdb.Model(&Purchase{}).Count(&count)
	return int(count)
}

func CountProducts(gdb *gorm.DB, sold bool) int {
	var count int64
	gdb.Model(&Product{}).Where("is_sold = ?", sold).Count(&count)
	return int(count)
}

func SumPaidPayments(gdb *gorm.DB) decimal.Decimal {
	var sum decimal.Decimal
	gdb.Model(&Payment{}).Where("status = ?", PaymentPaid).
		Select("coalesce(sum(amount), 0)").Scan(&sum)
	return sum
}

func GetPayments(gdb *gorm.DB, from, to time.Time, limit int) []Payment {
	var pays []Payment
	gdb.Model(&Payment{}).Where("created_at >= ? AND created_at <= ?", from, to).
		Order("created_at desc").Limit(limit).Find(&pays)
	return pays
}

// FindUserByRef ищет пользователя по Telegram ID или username
func FindUserByRef(gdb *gorm.DB, ref string) (User, error) {
	var user User
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if err := gdb.Where("telegram_id = ?", id).First(&user).Error; err != nil {
			return user, err
		}
		return user, nil
	}
	ref = strings.TrimPrefix(ref, "@")
	if err := gdb.Where("username = ?", ref).First(&user).Error; err != nil {
		return user, err
	}
	return user, nil
}
