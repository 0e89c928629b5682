package main

import (
	"github.com/pollstream/pollstream-api/internal/config"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/storage/migrations"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	db, err := postgres.Connect(cfg)
	if err != nil {
		log.Fatal("failed to connect to database", "error", err)
	}

	if err := migrations.Migrate(db); err != nil {
		log.Fatal("migration failed", "error", err)
	}

	log.Info("Migrations applied")
}
