package memory

import (
	"context"
	"sync"

	"quiz-companion/internal/domain"
)

// BoardCache is the in-process implementation of app.ScoreboardCache.
// Entries are ephemeral and replaced wholesale on every successful pull.
type BoardCache struct {
	mu     sync.RWMutex
	boards map[string]domain.Scoreboard
}

func NewBoardCache() *BoardCache {
	return &BoardCache{boards: make(map[string]domain.Scoreboard)}
}

func (c *BoardCache) Get(_ context.Context, quizUUID string) (domain.Scoreboard, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	board, ok := c.boards[quizUUID]
	return board, ok
}

func (c *BoardCache) Put(_ context.Context, board domain.Scoreboard) {
	c.mu.Lock()
	c.boards[board.QuizUUID] = board
	c.mu.Unlock()
}
