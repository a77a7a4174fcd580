package main

import (
	"context"
	"os"
	"time"

	"github.com/mbalthasar/stationpix/internal/config"
	"github.com/mbalthasar/stationpix/internal/database"
	"github.com/mbalthasar/stationpix/internal/logging"
)

func main() {
	cfg := config.Load()

	level := logging.LevelInfo
	switch cfg.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}
	logger := logging.New(level)
	defer logger.Sync()

	dbConfig := database.DefaultConfig()
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password
	dbConfig.Database = cfg.Database.Database
	dbConfig.SSLMode = cfg.Database.SSLMode

	db, err := database.New(dbConfig)
	if err != nil {
		logger.Error("Failed to connect to database", logging.WithField("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	logger.Info("Running migrations", logging.WithField("database", cfg.Database.Database))
	if err := db.Migrate(ctx); err != nil {
		logger.Error("Migration failed", logging.WithField("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Migrations complete")
}
