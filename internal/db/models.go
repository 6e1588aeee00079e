package db

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemKind — тип товара: строка или файл
type ItemKind string

const (
	KindString ItemKind = "string"
	KindFile   ItemKind = "file"
)

// StockBehavior — поведение позиции без остатков
type StockBehavior string

const (
	StockShowMessage  StockBehavior = "show_no_stock"  // показать сообщение "нет в наличии"
	StockHide         StockBehavior = "hide"           // скрыть позицию из списка
	StockShowNoButton StockBehavior = "show_no_button" // показать без кнопки покупки
)

// Статусы платежа. Единственный живой переход — pending -> paid.
const (
	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// Типы блокировки пользователя
const (
	BlockNormal = "normal"
	BlockSilent = "silent"
)

type User struct {
	ID            uint  `gorm:"primaryKey"`
	TelegramID    int64 `gorm:"uniqueIndex"`
	Username      string
	FirstName     string
	LastName      string
	Balance       decimal.Decimal `gorm:"type:numeric;default:0"`
	TotalDeposits decimal.Decimal `gorm:"type:numeric;default:0"`
	IsBlocked     bool            `gorm:"default:false"`
	BlockType     string          `gorm:"default:normal"`
	BlockReason   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Category struct {
	ID        uint `gorm:"primaryKey"`
	Name      string
	Photo     string // Telegram file_id
	Position  int
	IsVisible bool `gorm:"default:true"`
	CreatedAt time.Time
}

type Subcategory struct {
	ID         uint `gorm:"primaryKey"`
	CategoryID uint `gorm:"index"`
	Name       string
	Photo      string
	Position   int
	IsVisible  bool `gorm:"default:true"`
	CreatedAt  time.Time
}

type Item struct {
	ID            uint  `gorm:"primaryKey"`
	CategoryID    *uint `gorm:"index"`
	SubcategoryID *uint `gorm:"index"`
	Name          string
	Description   string
	Price         decimal.Decimal `gorm:"type:numeric"`
	Photo         string
	Position      int
	IsVisible     bool          `gorm:"default:true"`
	Kind          ItemKind      `gorm:"type:varchar(20)"`
	OutOfStock    StockBehavior `gorm:"type:varchar(20);default:show_no_stock"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Product — единица товара (stock unit). Продаётся ровно один раз:
// is_sold переходит false -> true единственным writer'ом, purchase_id
// проставляется в той же транзакции, что и продажа.
type Product struct {
	ID         uint   `gorm:"primaryKey"`
	ItemID     uint   `gorm:"index"`
	Content    string // для строковых товаров
	FilePath   string // для файловых товаров
	FileID     string // Telegram file_id
	IsSold     bool   `gorm:"default:false;index"`
	SoldAt     *time.Time
	PurchaseID *uint `gorm:"index"`
	CreatedAt  time.Time
}

// Purchase — неизменяемый снимок покупки
type Purchase struct {
	ID         uint  `gorm:"primaryKey"`
	UserID     uint  `gorm:"index"`
	ItemID     uint  `gorm:"index"`
	ProductID  *uint // первая выделенная единица
	Quantity   int
	TotalPrice decimal.Decimal `gorm:"type:numeric"`
	CreatedAt  time.Time
}

type Payment struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"index"`
	Amount    decimal.Decimal `gorm:"type:numeric"`
	InvoiceID string          `gorm:"index"`
	Status    string          `gorm:"default:pending;index"`
	CreatedAt time.Time
	PaidAt    *time.Time
}

type Promocode struct {
	ID                 uint            `gorm:"primaryKey"`
	Code               string          `gorm:"uniqueIndex"`
	Amount             decimal.Decimal `gorm:"type:numeric"`
	MaxActivations     int             `gorm:"default:1"`
	CurrentActivations int             `gorm:"default:0"`
	ExpiresAt          *time.Time
	UserIDBound        *int64 // привязка к Telegram ID (опционально)
	IsActive           bool   `gorm:"default:true"`
	CreatedAt          time.Time
}

// PromocodeActivation — append-only журнал активаций
type PromocodeActivation struct {
	ID          uint `gorm:"primaryKey"`
	PromocodeID uint `gorm:"index"`
	UserID      uint `gorm:"index"`
	CreatedAt   time.Time
}

// ActionLog — журнал действий (purchase, payment, promocode_activation, admin_action)
type ActionLog struct {
	ID        uint   `gorm:"primaryKey"`
	LogType   string `gorm:"index"`
	UserID    *uint
	AdminID   *int64
	Data      string // JSON
	CreatedAt time.Time
}

type Setting struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex"`
	Value     string
	UpdatedAt time.Time
}
