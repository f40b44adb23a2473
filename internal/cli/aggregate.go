package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"quiz-companion/internal/aggregator"
	aggmigrations "quiz-companion/internal/aggregator/migrations"
	"quiz-companion/internal/config"
)

// newAggregateCmd runs the reference aggregation service.
func newAggregateCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Run the reference aggregation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAggregator(cmd.Context(), port)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8090", "port to listen on")
	return cmd
}

// newMigrateCmd applies the aggregation service schema.
func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run aggregation service migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := openAggregatorDB(cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			return runAggregatorMigrations(cmd.Context(), db)
		},
	}
}

func openAggregatorDB(cfg config.Config) (*bun.DB, error) {
	if cfg.Aggregator.PostgresURL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Aggregator.PostgresURL)))
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
	path := cfg.Aggregator.SQLitePath
	if path == "" {
		path = "aggregator.db"
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+path+"?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open aggregator db: %w", err)
	}
	sqldb.SetMaxOpenConns(1)
	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func runAggregatorMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, aggmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return err
	}
	log.Printf("migrations applied")
	return nil
}

func runAggregator(ctx context.Context, port string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Aggregator.Port != "" {
		port = cfg.Aggregator.Port
	}

	db, err := openAggregatorDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := runAggregatorMigrations(ctx, db); err != nil {
		return err
	}

	handler := aggregator.NewHandler(aggregator.NewStore(db))
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting aggregation service on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start aggregation service: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down aggregation service...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down aggregation service...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
