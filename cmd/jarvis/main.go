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

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/config"
	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/db/memory"
	dbRedis "github.com/kailas-cloud/jarvis/internal/db/redis"
	logpkg "github.com/kailas-cloud/jarvis/internal/logger"
	"github.com/kailas-cloud/jarvis/internal/metrics"
	budgetrepo "github.com/kailas-cloud/jarvis/internal/repository/budget"
	catalogrepo "github.com/kailas-cloud/jarvis/internal/repository/catalog"
	cartclient "github.com/kailas-cloud/jarvis/internal/transport/cart"
	chiTransport "github.com/kailas-cloud/jarvis/internal/transport/chi"
	openaiEngine "github.com/kailas-cloud/jarvis/internal/transport/openai"
	chatuc "github.com/kailas-cloud/jarvis/internal/usecase/chat"
	healthuc "github.com/kailas-cloud/jarvis/internal/usecase/health"
	"github.com/kailas-cloud/jarvis/internal/usecase/pipeline"
	reasoninguc "github.com/kailas-cloud/jarvis/internal/usecase/reasoning"
	searchuc "github.com/kailas-cloud/jarvis/internal/usecase/search"
	usageuc "github.com/kailas-cloud/jarvis/internal/usecase/usage"
	"github.com/kailas-cloud/jarvis/internal/version"
)

// engineProvider labels budget counters in the store.
const engineProvider = "reasoning"

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting jarvis API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("model", cfg.Reasoning.Model),
	)

	store, err := newStore(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterReasoningMetrics()
	metrics.RegisterPipelineMetrics()

	catalog := catalogrepo.New(store, cfg.Storage.KeyPrefix)
	if err := catalog.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create catalog indexes", zap.Error(err))
	}
	if cfg.Database.SeedFile != "" {
		if err := seedCatalog(ctx, catalog, cfg.Database.SeedFile, logger); err != nil {
			// search serves the sample catalog while the store is empty
			logger.Warn("Catalog seed skipped", zap.String("file", cfg.Database.SeedFile), zap.Error(err))
		}
	}

	// Single BudgetTracker shared by the engine chain and the usage service.
	var budget *reasoninguc.BudgetTracker
	budgetCfg := cfg.Reasoning.Budget
	if budgetCfg.DailyTokenLimit > 0 || budgetCfg.MonthlyTokenLimit > 0 {
		action := reasoninguc.BudgetActionWarn
		if budgetCfg.Action == "reject" {
			action = reasoninguc.BudgetActionReject
		}
		budget = reasoninguc.NewBudgetTracker(budgetCfg.DailyTokenLimit, budgetCfg.MonthlyTokenLimit, action, logger)
		budget.WithStore(ctx, budgetrepo.New(store, cfg.Storage.KeyPrefix, engineProvider))
	}

	// Pass nil interfaces, not typed nil pointers.
	var budgetChecker reasoninguc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	base := openaiEngine.NewEngine(&openaiEngine.Config{
		APIKey:      cfg.Reasoning.APIKey,
		BaseURL:     cfg.Reasoning.BaseURL,
		Model:       cfg.Reasoning.Model,
		Temperature: cfg.Reasoning.Temperature,
		MaxTokens:   cfg.Reasoning.MaxTokens,
		JSONMode:    cfg.Reasoning.JSONMode,
		Logger:      logger,
	})
	engine := reasoninguc.NewEngine(base, reasoninguc.Options{
		Model:         cfg.Reasoning.Model,
		Timeout:       cfg.Reasoning.Timeout(),
		RatePerMinute: cfg.Reasoning.RatePerMinute,
		RateAction:    reasoninguc.RateAction(cfg.Reasoning.RateAction),
		Budget:        budgetChecker,
	})
	if cfg.Reasoning.APIKey == "" {
		logger.Warn("Reasoning API key is empty; chat will answer from the fallback policy")
	}

	searchSvc := searchuc.New(catalog, searchuc.Limits{
		Food:        cfg.Search.MaxFoodResults,
		Restaurants: cfg.Search.MaxRestaurantResults,
		PageSize:    cfg.Search.PageSize,
	})
	orchestrator, err := pipeline.NewOrchestrator(engine, pipeline.DefaultStages(), pipeline.SearchTools(searchSvc))
	if err != nil {
		logger.Fatal("Invalid stage definitions", zap.Error(err))
	}
	logger.Info("Pipeline ready", zap.Int("stages", len(orchestrator.Stages())))

	cart := cartclient.New(cfg.Cart.BaseURL, time.Duration(cfg.Cart.TimeoutSec)*time.Second)

	chatSvc := chatuc.New(orchestrator, cart, searchSvc)
	usageSvc := usageuc.New(budgetReader)
	healthSvc := healthuc.New(store, base)

	server := chiTransport.NewServer(chatSvc, usageSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func newStore(cfg config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		return memory.New(), nil
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func seedCatalog(ctx context.Context, catalog *catalogrepo.Repo, path string, logger *zap.Logger) error {
	f, err := catalogrepo.LoadFile(path)
	if err != nil {
		return err
	}
	restaurants, items := f.Records()
	if err := catalog.Seed(ctx, restaurants, items); err != nil {
		return err
	}
	logger.Info("Catalog seeded",
		zap.String("file", path),
		zap.Int("restaurants", len(restaurants)),
		zap.Int("food_items", len(items)),
	)
	return nil
}
