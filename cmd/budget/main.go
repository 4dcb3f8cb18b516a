package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	appamqp "budget/internal/amqp"
	"budget/internal/config"
	apphttp "budget/internal/http"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
	"budget/internal/storage/memory"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	logger := applog.New(slog.LevelInfo, applog.ComponentApp)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	var store storage.Store
	switch cfg.DataBackend {
	case "sqlite":
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to initialize SQLite backend", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer repo.Close()
		store = repo
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		store = memory.New()
		logger.Info("Initialized memory backend")
	}

	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpLog := logger.WithComponent(applog.ComponentAMQP)
		client, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Events are best effort; run without them rather than failing startup
			amqpLog.Warn("AMQP unavailable, events disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			events = client
			amqpLog.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	policy := services.BehindPolicy{
		WindowDays: cfg.BehindWindowDays,
		TargetPct:  decimal.NewFromFloat(cfg.BehindTargetPct),
		DailyFloor: decimal.NewFromFloat(cfg.BehindDailyFloor),
	}

	allocations := services.NewAllocationService(store, events)
	expenses := services.NewExpenseService(store, events)
	goals := services.NewGoalService(store, policy)
	balances := services.NewBalanceService(store, events)
	reports := services.NewReportService(store, expenses, goals)

	srv := apphttp.NewServer(":"+cfg.Port, reports, allocations, expenses, goals, balances)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting budget server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
