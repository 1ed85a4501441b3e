package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/application"
	redisstore "github.com/hguiagoussou/brokeragesim/internal/brokerage/infrastructure/persistence/redis"
	"github.com/hguiagoussou/brokeragesim/pkg/config"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
	"github.com/hguiagoussou/brokeragesim/pkg/metrics"
)

var (
	configPath = flag.String("config", "configs/brokerage/config.toml", "config file path")
	investors  = flag.Int("investors", 0, "override load.total_investors")
	accounts   = flag.Int("accounts", -1, "override load.accounts_per_investor")
	seed       = flag.Int64("seed", 0, "override load.seed")
)

func main() {
	flag.Parse()

	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	if *investors > 0 {
		cfg.Load.TotalInvestors = *investors
	}
	if *accounts >= 0 {
		cfg.Load.AccountsPerInvestor = *accounts
	}
	if *seed != 0 {
		cfg.Load.Seed = *seed
	}

	if err := logging.Init(logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logging: %v", err))
	}

	metricsImpl := metrics.New("loader")
	if cfg.Metrics.Enabled {
		go func() {
			if err := metricsImpl.ExposeHTTP(cfg.Metrics.Port); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	client, err := redisstore.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	store := redisstore.NewStore(client, time.Duration(cfg.Redis.OpTimeout)*time.Millisecond, metricsImpl)
	investorRepo := redisstore.NewInvestorRepository(store)
	accountRepo := redisstore.NewAccountRepository(store)
	ownershipRepo := redisstore.NewOwnershipRepository(store)
	index := redisstore.NewIndexMaintainer(store)

	loader := application.NewBulkLoader(
		store, investorRepo, accountRepo, ownershipRepo, index,
		application.NewGenerator(cfg.Load.Seed),
		application.LoaderConfig{
			TotalInvestors:      cfg.Load.TotalInvestors,
			AccountsPerInvestor: cfg.Load.AccountsPerInvestor,
			BatchSize:           cfg.Load.BatchSize,
			MaxIDRetries:        cfg.Load.MaxIDRetries,
		},
		metricsImpl,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := loader.Load(ctx)
	if err != nil {
		// Partial completion is a reported outcome, never silently swallowed.
		slog.Error("bulk load aborted",
			"run_id", report.RunID,
			"investors", report.Investors,
			"accounts", report.Accounts,
			"ownerships", report.Ownerships,
			"error", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}

	fmt.Printf("Total number of investors created: %d\n", report.Investors)
	fmt.Printf("Total number of accounts created: %d\n", report.Accounts)
	fmt.Printf("Total number of stock ownerships created: %d\n", report.Ownerships)
	fmt.Println("Data loading complete.")
}
