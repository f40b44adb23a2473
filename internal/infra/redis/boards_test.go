package redis

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"quiz-companion/internal/domain"
)

func newTestCache(t *testing.T) (*BoardCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewBoardCache(client, time.Minute), mr
}

func TestBoardCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	board := domain.Scoreboard{
		QuizUUID:    "q-1",
		Respondents: 4,
		Counts:      map[string]int{"0": 3, "1": 1},
		UpdatedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	cache.Put(ctx, board)

	got, ok := cache.Get(ctx, "q-1")
	if !ok {
		t.Fatal("expected cached scoreboard")
	}
	if got.QuizUUID != board.QuizUUID || got.Respondents != board.Respondents {
		t.Fatalf("got %+v, want %+v", got, board)
	}
	if !reflect.DeepEqual(got.Counts, board.Counts) {
		t.Fatalf("counts: got %v, want %v", got.Counts, board.Counts)
	}
	if !got.UpdatedAt.Equal(board.UpdatedAt) {
		t.Fatalf("updated at: got %v, want %v", got.UpdatedAt, board.UpdatedAt)
	}
}

func TestBoardCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)
	if _, ok := cache.Get(context.Background(), "missing"); ok {
		t.Fatal("expected miss for unknown quiz")
	}
}

func TestBoardCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	cache.Put(ctx, domain.Scoreboard{QuizUUID: "q-1", Respondents: 1})
	mr.FastForward(2 * time.Minute)

	if _, ok := cache.Get(ctx, "q-1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestBoardCacheDropsCorruptEntry(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	mr.Set("quiz:board:q-1", "not json")
	if _, ok := cache.Get(ctx, "q-1"); ok {
		t.Fatal("expected corrupt entry to be treated as a miss")
	}
	if mr.Exists("quiz:board:q-1") {
		t.Fatal("expected corrupt entry to be deleted")
	}
}
