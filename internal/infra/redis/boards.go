package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"quiz-companion/internal/domain"
)

// BoardCache keeps pulled scoreboards in Redis so cached aggregates survive
// process restarts and can be shared between sessions on the same host.
// Writes are best effort: a cache failure never fails a pull.
type BoardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewBoardCache(client *redis.Client, ttl time.Duration) *BoardCache {
	return &BoardCache{client: client, ttl: ttl}
}

func (c *BoardCache) Get(ctx context.Context, quizUUID string) (domain.Scoreboard, bool) {
	data, err := c.client.Get(ctx, c.key(quizUUID)).Bytes()
	if err != nil {
		return domain.Scoreboard{}, false
	}
	var board domain.Scoreboard
	if err := json.Unmarshal(data, &board); err != nil {
		log.Printf("discarding corrupt cached scoreboard for %s: %v", quizUUID, err)
		_ = c.client.Del(ctx, c.key(quizUUID)).Err()
		return domain.Scoreboard{}, false
	}
	return board, true
}

func (c *BoardCache) Put(ctx context.Context, board domain.Scoreboard) {
	data, err := json.Marshal(board)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.key(board.QuizUUID), data, c.ttl).Err(); err != nil {
		log.Printf("cache scoreboard for %s: %v", board.QuizUUID, err)
	}
}

func (c *BoardCache) key(quizUUID string) string {
	return "quiz:board:" + quizUUID
}
