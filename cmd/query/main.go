package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/application"
	"github.com/hguiagoussou/brokeragesim/internal/brokerage/domain"
	redisstore "github.com/hguiagoussou/brokeragesim/internal/brokerage/infrastructure/persistence/redis"
	"github.com/hguiagoussou/brokeragesim/pkg/config"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
)

var (
	configPath = flag.String("config", "configs/brokerage/config.toml", "config file path")
	username   = flag.String("username", "", "username to resolve")
)

func main() {
	flag.Parse()
	if *username == "" {
		fmt.Fprintln(os.Stderr, "usage: query -username <username> [-config <path>]")
		os.Exit(2)
	}

	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logging: %v", err))
	}

	client, err := redisstore.NewClient(cfg.Redis)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect to redis: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	store := redisstore.NewStore(client, time.Duration(cfg.Redis.OpTimeout)*time.Millisecond, nil)
	queries := application.NewQueryService(
		redisstore.NewInvestorRepository(store),
		redisstore.NewAccountRepository(store),
		redisstore.NewOwnershipRepository(store),
		redisstore.NewIndexMaintainer(store),
		nil,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	view, err := queries.Portfolio(ctx, *username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			fmt.Printf("No investor found with username: %s\n", *username)
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Investor %s (%s), username %s\n", view.Investor.Name, view.Investor.ID, view.Investor.Username)
	for _, holding := range view.Holdings {
		acc := holding.Account
		fmt.Printf("  Account %s (%s), balance %s\n", acc.ID, acc.AccountNumber, acc.Balance.StringFixed(2))
		for _, lot := range holding.Lots {
			fmt.Printf("    Lot %s: %d x %s @ %s (acquired %d)\n",
				lot.ID, lot.Quantity, lot.Ticker, lot.Price.StringFixed(2), lot.AcquiredDate)
		}
	}
	for _, warning := range view.Warnings {
		fmt.Printf("  WARNING: %s\n", warning)
	}

	seconds := view.Elapsed.Seconds()
	fmt.Printf("\nQuery completed in %.4f seconds (%.4f minutes)\n", seconds, seconds/60)
}
