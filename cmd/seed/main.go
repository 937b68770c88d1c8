// Command seed loads a YAML catalog into the store used by the API.
//
// Env vars:
//
//	ENV        config environment (default: local)
//	SEED_FILE  catalog path (default: the config's seed_file, then data/catalog.yaml)
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/jarvis/internal/config"
	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/db/memory"
	dbRedis "github.com/kailas-cloud/jarvis/internal/db/redis"
	logpkg "github.com/kailas-cloud/jarvis/internal/logger"
	catalogrepo "github.com/kailas-cloud/jarvis/internal/repository/catalog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}

func run() error {
	env := config.GetEnv()
	cfg, err := config.Load(env)
	if err != nil {
		return err
	}

	file := flag.String("file", seedPath(cfg), "catalog YAML to load")
	dryRun := flag.Bool("dry-run", false, "validate the file without writing")
	reset := flag.Bool("reset", false, "drop the catalog indexes and hashes before loading")
	flag.Parse()

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	f, err := catalogrepo.LoadFile(*file)
	if err != nil {
		return err
	}
	restaurants, items := f.Records()
	logger.Info("Catalog parsed",
		zap.String("file", *file),
		zap.Int("restaurants", len(restaurants)),
		zap.Int("food_items", len(items)),
	)
	if *dryRun {
		return nil
	}
	if cfg.Database.Driver == config.DriverMemory {
		logger.Warn("Memory driver selected; the catalog is discarded on exit")
	}

	store, err := openStore(cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	repo := catalogrepo.New(store, cfg.Storage.KeyPrefix)
	if *reset {
		removed, err := repo.Reset(ctx)
		if err != nil {
			return err
		}
		logger.Info("Catalog reset", zap.Int("keys_removed", removed))
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}
	start := time.Now()
	if err := repo.Seed(ctx, restaurants, items); err != nil {
		return err
	}
	foodTotal, restTotal, err := repo.Stats(ctx)
	if err != nil {
		return err
	}
	logger.Info("Catalog loaded",
		zap.Duration("took", time.Since(start)),
		zap.Int("restaurants_total", restTotal),
		zap.Int("food_items_total", foodTotal),
	)
	return nil
}

func seedPath(cfg config.Config) string {
	if p := os.Getenv("SEED_FILE"); p != "" {
		return p
	}
	if cfg.Database.SeedFile != "" {
		return cfg.Database.SeedFile
	}
	return "data/catalog.yaml"
}

func openStore(cfg config.DatabaseConfig) (db.Store, error) {
	if cfg.Driver == config.DriverMemory {
		return memory.New(), nil
	}
	return dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
