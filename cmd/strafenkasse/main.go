package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"strafenkasse/internal/cli"
	apphttp "strafenkasse/internal/http"
	"strafenkasse/internal/metrics"
	"strafenkasse/internal/seed"
	"strafenkasse/internal/store"
	"strafenkasse/internal/store/memory"
)

func main() {
	logger := cli.SetupLogger()
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(logger)

	var (
		recorder store.Recorder
		catalog  store.Catalog
		entries  store.EntryLister
		seeder   store.Seeder
	)

	switch cfg.DataBackend {
	case "sqlite":
		repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
		defer repo.Close()
		recorder, catalog, entries, seeder = repo, repo, repo, repo
		logger.Info("Initialized SQLite backend", "backend", cfg.DataBackend, "path", cfg.SQLiteDBPath)
	default:
		st := memory.New()
		recorder, catalog, entries, seeder = st, st, st, st
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	seedStore(logger, seeder, cfg.SeedDir)

	srv := apphttp.NewServer(":"+cfg.Port, recorder, catalog, entries, metrics.New(), apphttp.Options{
		PageSize:      cfg.PageSize,
		RecentLimit:   cfg.RecentLimit,
		TopLimit:      cfg.TopLimit,
		DashboardDays: cfg.DashboardDays,
		StatsDays:     cfg.StatsDays,
		CacheTTL:      cfg.CacheTTL,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting strafenkasse server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// seedStore loads roster and catalog into an empty store. Missing seed
// files are no error, the dashboard just starts empty.
func seedStore(logger *slog.Logger, seeder store.Seeder, dir string) {
	players, err := seed.Players(filepath.Join(dir, seed.PlayersFile))
	if err != nil {
		logger.Warn("Roster seed not loaded", "error", err, "dir", dir)
	}
	types, err := seed.Catalog(filepath.Join(dir, seed.CatalogFile))
	if err != nil {
		logger.Warn("Catalog seed not loaded", "error", err, "dir", dir)
	}
	if len(players) == 0 && len(types) == 0 {
		return
	}
	if err := seeder.Seed(context.Background(), players, types); err != nil {
		logger.Error("Seeding failed", "error", err)
	}
}
