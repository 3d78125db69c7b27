package main

import (
	"go.uber.org/zap"

	"roadwatch/internal/config"
	"roadwatch/internal/kvserver"
	"roadwatch/internal/repository"
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
	cfgPath := "configs/recordstored.yml"
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Database connection
	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	repository.MigrateDB(db, logger)

	repo := repository.NewRecordRepository(db, logger)

	srv := kvserver.NewServer([]byte(cfg.Auth.JWTSecret), repo, logger)
	srv.Run(cfg.Server.Port)
}
