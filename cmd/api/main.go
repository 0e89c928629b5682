package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pollstream/pollstream-api/internal/config"
	"github.com/pollstream/pollstream-api/internal/events"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/metrics"
	"github.com/pollstream/pollstream-api/internal/server"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.LogLevel)
	log := logger.Get()

	metrics.Register()

	container, err := postgres.NewContainer(cfg)
	if err != nil {
		log.Fatal("failed to initialize storage", "error", err)
	}
	defer container.Close()

	bus := events.NewBus(cfg.Stream.QueueSize)

	srv := server.New(cfg, container, bus)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Stop(ctx); err != nil {
		log.Error("forced shutdown", "error", err)
	}

	log.Info("Server stopped")
}
