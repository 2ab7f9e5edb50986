package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/moveops/internal/config"
	"github.com/Simplici0/moveops/internal/db"
	"github.com/Simplici0/moveops/internal/migrations"
	"github.com/Simplici0/moveops/internal/observability"
	"github.com/Simplici0/moveops/internal/quotes"
	"github.com/Simplici0/moveops/internal/seed"
	"github.com/Simplici0/moveops/internal/store"
	"github.com/Simplici0/moveops/internal/store/postgres"
	"github.com/Simplici0/moveops/internal/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "moveops: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if cfg.IsDev() {
		migrations.SetLogger(logger)
		if err := migrations.Up(database, cfg.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}

	persister, closePersister, err := openPersister(ctx, cfg, database)
	if err != nil {
		return err
	}
	defer closePersister()

	stats, err := seed.Run(ctx, persister)
	if err != nil {
		return fmt.Errorf("failed to seed pricing configuration: %w", err)
	}
	if stats.Inserts > 0 {
		logger.Info("seeded default pricing configuration", zap.Int("rows", stats.Inserts))
	}

	manager, err := store.NewManager(ctx, persister, logger.Named("store"))
	if err != nil {
		return err
	}

	srv := &server{
		store:  manager,
		quotes: quotes.NewRepository(database),
		logger: logger,
		schemaVersion: func() (int64, error) {
			return migrations.Version(database)
		},
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", httpServer.Addr), zap.String("db_driver", cfg.DBDriver))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// openPersister picks where the pricing configuration lives. Quotes always stay in SQLite.
func openPersister(ctx context.Context, cfg config.Config, database *sql.DB) (store.Persister, func(), error) {
	if cfg.DBDriver == config.DriverPostgres {
		p, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	}
	return sqlite.New(database), func() {}, nil
}
