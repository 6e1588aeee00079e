package shop

import "errors"

// Ошибки ядра. Все проверки выполняются до записи: отказ по любой из них
// оставляет хранилище нетронутым.
var (
	// ErrInvalidQuantity возвращается при количестве меньше 1.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidAmount возвращается при неположительной сумме.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrItemNotFound возвращается, если позиция не найдена или скрыта.
	ErrItemNotFound = errors.New("item not found")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrPaymentNotFound возвращается, если платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrOutOfStock возвращается, если свободных единиц меньше, чем запрошено.
	ErrOutOfStock = errors.New("out of stock")
	// ErrInsufficientFunds возвращается при списании сверх баланса.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrUserBlocked возвращается для заблокированного пользователя.
	ErrUserBlocked = errors.New("user blocked")
	// ErrPromoNotFound возвращается по неизвестному коду.
	ErrPromoNotFound = errors.New("promocode not found")
	// ErrPromoInactive возвращается по выключенному коду.
	ErrPromoInactive = errors.New("promocode inactive")
	// ErrPromoExpired возвращается по истёкшему коду.
	ErrPromoExpired = errors.New("promocode expired")
	// ErrPromoExhausted возвращается, когда активации исчерпаны.
	ErrPromoExhausted = errors.New("promocode exhausted")
	// ErrPromoNotBound возвращается, если код привязан к другому пользователю.
	ErrPromoNotBound = errors.New("promocode bound to another user")
	// ErrPaymentAlreadyDone возвращается при повторном подтверждении платежа.
	ErrPaymentAlreadyDone = errors.New("payment already processed")
)
