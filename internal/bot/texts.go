package bot

// Тексты ответов бота. Редактирование текстов из админки не поддерживается.
const (
	textStart = "Добро пожаловать в магазин! Выберите действие на клавиатуре ниже."

	textMaintenance = "⚙️ Ведутся технические работы. Попробуйте позже."

	textNoSubscription = "Для использования бота подпишитесь на наш канал."

	textFAQ = `❓ FAQ
1. Пополните баланс через CryptoBot.
2. Выберите товар в каталоге и оплатите с баланса.
3. Товар выдаётся сразу после покупки и остаётся доступен в истории.`

	textSupport = "Поддержка: напишите вашему администратору."

	textAgreement = "Пользовательское соглашение: возвраты за выданный цифровой товар не производятся."

	textBlocked = "Вам был ограничен доступ к данному боту"

	textBlockAppeal = "Для апелляции обратитесь в поддержку"

	textPurchaseSuccess = "✅ Покупка успешна! Спасибо за заказ."

	textOutOfStock = "❌ Товар временно отсутствует в наличии"

	textInsufficientBalance = "❌ Недостаточно средств на балансе. Пополните баланс."

	textPromoInvalid   = "❌ Промокод не найден или неактивен"
	textPromoExpired   = "❌ Срок действия промокода истёк"
	textPromoUsed      = "❌ Промокод уже использован максимальное число раз"
	textPromoNotYours  = "❌ Этот промокод привязан к другому пользователю"
	textPromoActivated = "✅ Промокод активирован!"

	textPaymentPending  = "⏳ Платёж ещё не получен. Попробуйте позже."
	textPaymentExpired  = "⏰ Счёт истёк. Создайте новый платёж."
	textPaymentOracle   = "❌ Не удалось проверить платёж, сервис недоступен. Попробуйте позже."
	textUnknownCommand  = "Неизвестная команда. Используйте клавиатуру ниже."
	textEnterQuantity   = "Введите количество товара:"
	textEnterPromocode  = "Введите промокод:"
	textEnterAmount     = "Введите сумму пополнения (минимум 1 USDT):"
	textInvalidNumber   = "❌ Введите корректное число"
	textMinTopup        = "Минимальная сумма пополнения: 1 USDT"
	textInvoiceFailed   = "Ошибка создания платежа. Попробуйте позже."
)

// Подписи кнопок главного меню
const (
	btnBuy       = "🛒 Купить"
	btnProfile   = "👤 Профиль"
	btnFAQ       = "❓ FAQ"
	btnSupport   = "💬 Поддержка"
	btnBalance   = "💳 Пополнить баланс"
	btnAgreement = "📋 Соглашение"
)
