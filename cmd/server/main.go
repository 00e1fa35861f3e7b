// Package main is the entry point for the stock advisor service: it loads
// market data on demand, clusters the universe by risk profile, and serves
// capital-aware portfolio recommendations over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantlab/advisor/internal/clients/yahoo"
	"github.com/quantlab/advisor/internal/config"
	"github.com/quantlab/advisor/internal/database"
	"github.com/quantlab/advisor/internal/modules/advisor"
	"github.com/quantlab/advisor/internal/modules/analysis"
	"github.com/quantlab/advisor/internal/modules/backtest"
	"github.com/quantlab/advisor/internal/modules/optimization"
	"github.com/quantlab/advisor/internal/modules/universe"
	"github.com/quantlab/advisor/internal/scheduler"
	"github.com/quantlab/advisor/internal/server"
	"github.com/quantlab/advisor/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Int("port", cfg.Port).
		Str("data_dir", cfg.DataDir).
		Str("history_period", cfg.HistoryPeriod).
		Msg("Starting stock advisor")

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "prices.db"),
		Profile: database.ProfileCache,
		Name:    "prices",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open price cache database")
	}
	defer cacheDB.Close()

	priceCache, err := universe.NewPriceCache(cacheDB.Conn())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize price cache")
	}

	client := yahoo.NewClient(cfg.FetchTimeout, log)
	store := universe.NewStore(client, priceCache, cfg.CacheTTL, log)
	customSymbols := universe.NewCustomSymbols()

	service := advisor.NewService(
		store,
		customSymbols,
		analysis.NewEngine(store, log),
		optimization.NewOptimizer(log),
		backtest.NewBacktester(log),
		client,
		cfg.HistoryPeriod,
		log,
	)

	sched := scheduler.New(log)
	if cfg.RefreshSchedule != "" {
		job := scheduler.NewMarketDataRefreshJob(service, priceCache, log)
		if err := sched.AddJob(cfg.RefreshSchedule, job); err != nil {
			log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Invalid refresh schedule")
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,
		Handler: advisor.NewHandler(service, log),
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}
