package bot

import (
	"sync"
	"time"

	"Shop-Telegram-bot/internal/admin"
)

// RateLimiter implements per-user per-action in-memory rate limiting
// For production, can be swapped to Redis or similar store

type RateLimiter struct {
	mu       sync.Mutex
	lastCall map[int64]map[string]time.Time
	limits   map[string]time.Duration
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		lastCall: make(map[int64]map[string]time.Time),
		limits: map[string]time.Duration{
			btnBuy:     3 * time.Second,
			btnBalance: 5 * time.Second,
			"buy":      2 * time.Second,
			"promo":    5 * time.Second,
			// Add more actions as needed
		},
	}
}

// IsLimited returns true if user is rate-limited for this action
func (r *RateLimiter) IsLimited(userID int64, action string) bool {
	// Админ не лимитируется
	if admin.IsAdmin(userID) {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if r.lastCall[userID] == nil {
		r.lastCall[userID] = make(map[string]time.Time)
	}
	limit, ok := r.limits[action]
	if !ok {
		limit = time.Second // default limit
	}
	last := r.lastCall[userID][action]
	if now.Sub(last) < limit {
		return true
	}
	r.lastCall[userID][action] = now
	return false
}
