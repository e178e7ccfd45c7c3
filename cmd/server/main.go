// Package main is the entry point for the fintrack API server.
//
// Startup order: configuration, logging, report cache backend, cache cleanup
// schedule, HTTP server. SIGINT and SIGTERM trigger a graceful shutdown.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/fintrack/internal/clientdata"
	"github.com/aristath/fintrack/internal/config"
	"github.com/aristath/fintrack/internal/database"
	"github.com/aristath/fintrack/internal/modules/reports"
	"github.com/aristath/fintrack/internal/scheduler"
	"github.com/aristath/fintrack/internal/server"
	"github.com/aristath/fintrack/pkg/logger"
)

// cacheBackend is the opened report cache storage
type cacheBackend struct {
	caches  reports.Caches
	expirer clientdata.Expirer
	db      *database.DB // nil for the memory backend
}

func (b *cacheBackend) Close() error {
	if b.db == nil {
		return nil
	}
	if err := b.db.WALCheckpoint("TRUNCATE"); err != nil {
		return err
	}
	return b.db.Close()
}

// openCacheBackend opens the configured report cache
func openCacheBackend(cfg *config.Config) (*cacheBackend, error) {
	if cfg.CacheBackend == config.CacheBackendMemory {
		// Keys carry the report kind as a prefix, so one map serves both.
		mem := clientdata.NewMemoryCache()
		return &cacheBackend{
			caches:  reports.Caches{Allocation: mem, Performance: mem},
			expirer: mem,
		}, nil
	}

	db, err := database.New(database.Config{
		Path:    cfg.CachePath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := db.Migrate(clientdata.Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate cache database: %w", err)
	}

	repo := clientdata.NewRepository(db.Conn())
	return &cacheBackend{
		caches: reports.Caches{
			Allocation:  repo.Table(clientdata.TableAllocationReports),
			Performance: repo.Table(clientdata.TablePerformanceReports),
		},
		expirer: repo,
		db:      db,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("data_dir", cfg.DataDir).
		Str("cache_backend", cfg.CacheBackend).
		Msg("Starting fintrack")

	backend, err := openCacheBackend(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize report cache")
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close cache database")
		}
	}()

	sched := scheduler.New(log)
	cleanup := clientdata.NewCleanupJob(backend.expirer, log)
	if err := sched.AddJob(cfg.CacheCleanupCron, cleanup); err != nil {
		log.Fatal().Err(err).Msg("Failed to schedule cache cleanup")
	}
	// Clear entries left over from the previous run
	if err := sched.RunNow(cleanup); err != nil {
		log.Warn().Err(err).Msg("Initial cache cleanup failed")
	}
	sched.Start()

	srv := server.New(server.Config{
		Log:     log,
		Config:  cfg,
		CacheDB: backend.db,
		Caches:  backend.caches,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("fintrack started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down")

	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

