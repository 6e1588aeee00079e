package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter()

	// Первый вызов проходит, немедленный повтор — нет
	assert.False(t, rl.IsLimited(1, "buy"))
	assert.True(t, rl.IsLimited(1, "buy"))

	// Лимиты раздельны по действиям и пользователям
	assert.False(t, rl.IsLimited(1, "promo"))
	assert.False(t, rl.IsLimited(2, "buy"))
}

func TestRateLimiterDefaultAction(t *testing.T) {
	rl := NewRateLimiter()
	assert.False(t, rl.IsLimited(1, "/start"))
	assert.True(t, rl.IsLimited(1, "/start"))
}
