package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/hguiagoussou/brokeragesim/internal/brokerage/application"
	redisstore "github.com/hguiagoussou/brokeragesim/internal/brokerage/infrastructure/persistence/redis"
	httpserver "github.com/hguiagoussou/brokeragesim/internal/brokerage/interfaces/http"
	"github.com/hguiagoussou/brokeragesim/pkg/config"
	"github.com/hguiagoussou/brokeragesim/pkg/logging"
	"github.com/hguiagoussou/brokeragesim/pkg/metrics"
)

var configPath = flag.String("config", "configs/brokerage/config.toml", "config file path")

func main() {
	flag.Parse()

	var cfg config.Config
	if err := config.Load(*configPath, &cfg); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
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

	metricsImpl := metrics.New("server")
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
	queries := application.NewQueryService(
		redisstore.NewInvestorRepository(store),
		redisstore.NewAccountRepository(store),
		redisstore.NewOwnershipRepository(store),
		redisstore.NewIndexMaintainer(store),
		metricsImpl,
	)

	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	httpserver.NewPortfolioHandler(queries).RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		slog.Info("HTTP server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
			slog.Info("shutting down server...")
		case <-ctx.Done():
			slog.Info("context cancelled, shutting down...")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server exited with error", "error", err)
	}
}
