package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"budget/internal/cli"
	"budget/internal/config"
	applog "budget/internal/log"
	"budget/internal/services"
	"budget/internal/storage"
)

func main() {
	_ = godotenv.Load()

	// The CLI keeps stdout for command output; warnings and errors only
	logger := applog.New(slog.LevelWarn, applog.ComponentCLI)
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database %q: %v\n", cfg.SQLiteDBPath, err)
		os.Exit(1)
	}
	defer repo.Close()

	policy := services.BehindPolicy{
		WindowDays: cfg.BehindWindowDays,
		TargetPct:  decimal.NewFromFloat(cfg.BehindTargetPct),
		DailyFloor: decimal.NewFromFloat(cfg.BehindDailyFloor),
	}

	expenses := services.NewExpenseService(repo, nil)
	goals := services.NewGoalService(repo, policy)
	app := &cli.App{
		Allocations: services.NewAllocationService(repo, nil),
		Expenses:    expenses,
		Goals:       goals,
		Balances:    services.NewBalanceService(repo, nil),
		Reports:     services.NewReportService(repo, expenses, goals),
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cli.Register(commander, app)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
