package shop

import (
	"errors"

	"gorm.io/gorm"

	"Shop-Telegram-bot/internal/db"
)

// Access — результат проверки доступа перед мутирующей операцией.
// Для silent-блокировки вызывающий код обязан не отправлять вообще ничего.
type Access struct {
	Blocked bool
	Silent  bool
	Reason  string
}

// CheckAccess возвращает состояние блокировки пользователя.
// Незарегистрированный пользователь не заблокирован: он будет создан
// при первом обращении. Обход для админов делается на уровне диспетчера.
func CheckAccess(gdb *gorm.DB, telegramID int64) (Access, error) {
	var user db.User
	err := gdb.Where("telegram_id = ?", telegramID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Access{}, nil
	}
	if err != nil {
		return Access{}, err
	}
	if !user.IsBlocked {
		return Access{}, nil
	}
	return Access{
		Blocked: true,
		Silent:  user.BlockType == db.BlockSilent,
		Reason:  user.BlockReason,
	}, nil
}

// gateCheck — внутренняя проверка внутри транзакции покупки/активации:
// блокированный пользователь не проходит дальше независимо от того,
// что увидел диспетчер до открытия транзакции.
func gateCheck(user *db.User) error {
	if user.IsBlocked {
		return ErrUserBlocked
	}
	return nil
}
