package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-companion/internal/app"
	"quiz-companion/internal/config"
	"quiz-companion/internal/infra/catalog"
	"quiz-companion/internal/infra/memory"
	"quiz-companion/internal/infra/postgres"
	redisboards "quiz-companion/internal/infra/redis"
	"quiz-companion/internal/infra/sqlite"
	"quiz-companion/internal/remote"
)

const ledgerFile = "sys.db"

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if profileDir != "" {
		cfg.Profile.Dir = profileDir
	}
	return cfg, nil
}

func openLedger(ctx context.Context, cfg config.Config) (*sqlite.Ledger, error) {
	dir := cfg.ProfileDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}
	return sqlite.Open(ctx, filepath.Join(dir, ledgerFile))
}

// buildCatalog picks the quiz document source: a Postgres catalog when
// configured, the profile/document directory otherwise. The returned cleanup
// is never nil.
func buildCatalog(ctx context.Context, cfg config.Config) (app.SetCatalog, func(), error) {
	if cfg.Catalog.PostgresURL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Catalog.PostgresURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect catalog: %w", err)
		}
		return postgres.NewSetSource(pool), pool.Close, nil
	}
	fetchTimeout := config.Duration(cfg.Catalog.FetchTimeout, 5*time.Second)
	return catalog.New(cfg.CatalogDir(), fetchTimeout), func() {}, nil
}

// buildSyncEngine wires the sync engine, or returns nil when no remote
// endpoint is configured. The scoreboard cache lives in Redis when
// available, in process memory otherwise.
func buildSyncEngine(cfg config.Config, ledger app.AnswerLedger) *app.SyncEngine {
	if cfg.Remote.URL == "" {
		return nil
	}
	client := remote.NewClient(cfg.Remote.URL, config.Duration(cfg.Remote.Timeout, 10*time.Second))

	var boards app.ScoreboardCache = memory.NewBoardCache()
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		boards = redisboards.NewBoardCache(redisClient, config.Duration(cfg.Redis.TTL, 10*time.Minute))
	}
	return app.NewSyncEngine(ledger, client, boards)
}
