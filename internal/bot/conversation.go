package bot

import "sync"

// Ожидаемый следующий ввод пользователя. Замена FSM: бот помнит,
// какой текст ждёт от конкретного чата.
type pendingKind int

const (
	pendingNone pendingKind = iota
	pendingQuantity
	pendingPromocode
	pendingTopupAmount
)

type pendingInput struct {
	Kind   pendingKind
	ItemID uint
}

type conversations struct {
	mu    sync.Mutex
	state map[int64]pendingInput
}

func newConversations() *conversations {
	return &conversations{state: make(map[int64]pendingInput)}
}

func (c *conversations) set(userID int64, p pendingInput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[userID] = p
}

func (c *conversations) take(userID int64) pendingInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.state[userID]
	if !ok {
		return pendingInput{}
	}
	delete(c.state, userID)
	return p
}

func (c *conversations) clear(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state, userID)
}
