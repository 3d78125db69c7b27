package main

import (
	"time"

	"go.uber.org/zap"

	"roadwatch/internal/config"
	"roadwatch/internal/detector"
	"roadwatch/internal/history"
	"roadwatch/internal/localcache"
	"roadwatch/internal/pipeline"
	"roadwatch/internal/recordstore"
	"roadwatch/internal/server"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Local fallback cache; the service can run without the remote store
	// but not without its own cache directory.
	cache, err := localcache.Open(cfg.LocalCache.Path, logger)
	if err != nil {
		logger.Fatal("Failed to open local cache", zap.Error(err))
	}
	defer cache.Close()

	// Store and detector clients, constructed once and injected
	storeClient := recordstore.NewClient(cfg.RecordStore.URL, logger)
	oracle := detector.NewOracleClient(cfg.Oracle.URL)
	simulator := detector.NewSimulator(time.Now().UnixNano())

	pipe := pipeline.NewPipeline(oracle, simulator, storeClient, cache, logger)
	reconciler := history.NewReconciler(storeClient, cache, logger)

	srv := server.NewServer([]byte(cfg.Auth.JWTSecret), pipe, reconciler, oracle, logger)
	srv.Run(cfg.Server.Port)
}
