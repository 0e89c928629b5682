package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/pollstream/pollstream-api/internal/config"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/storage/migrations"
)

// ConnectionConfig holds database connection pool configuration
type ConnectionConfig struct {
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConnectionConfig returns default connection configuration
func DefaultConnectionConfig() *ConnectionConfig {
	return &ConnectionConfig{
		MaxIdleConns:    10,
		MaxOpenConns:    100,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 30,
	}
}

// Connect establishes a connection to the PostgreSQL database
func Connect(cfg *config.Config) (*gorm.DB, error) {
	return ConnectWithConfig(cfg, DefaultConnectionConfig())
}

// ConnectWithConfig establishes a connection with custom pool configuration
func ConnectWithConfig(cfg *config.Config, connCfg *ConnectionConfig) (*gorm.DB, error) {
	log := logger.Database()

	if err := validateDatabaseConfig(cfg); err != nil {
		log.Error("Database configuration validation failed", "error", err)
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}

	dsn := cfg.GetDatabaseURL()
	log.Debug("Connecting to database", "host", cfg.DB.Host, "port", cfg.DB.Port, "database", cfg.DB.Name)

	var gormLoggerInstance gormLogger.Interface
	if cfg.Server.GinMode == "debug" {
		gormLoggerInstance = gormLogger.Default.LogMode(gormLogger.Info)
	} else {
		gormLoggerInstance = gormLogger.Default.LogMode(gormLogger.Silent)
	}

	gormConfig := &gorm.Config{
		Logger: gormLoggerInstance,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt: true,
	}

	// Attempt connection with retry logic
	var db *gorm.DB
	var err error
	maxRetries := 3
	retryDelay := time.Second * 2

	for attempt := 1; attempt <= maxRetries; attempt++ {
		log.Debug("Database connection attempt", "attempt", attempt, "max_retries", maxRetries)

		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
		if err == nil {
			break
		}

		log.Warn("Database connection failed", "attempt", attempt, "error", err)
		if attempt < maxRetries {
			time.Sleep(retryDelay)
			retryDelay *= 2
		}
	}

	if err != nil {
		log.Error("Failed to connect to database after retries", "error", err, "attempts", maxRetries)
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
	}

	if err := configureConnectionPool(db, connCfg); err != nil {
		log.Error("Failed to configure connection pool", "error", err)
		return nil, fmt.Errorf("failed to configure connection pool: %w", err)
	}

	if err := testConnection(db); err != nil {
		log.Error("Database connection test failed", "error", err)
		return nil, fmt.Errorf("database connection test failed: %w", err)
	}

	log.Info("Successfully connected to PostgreSQL database",
		"host", cfg.DB.Host,
		"database", cfg.DB.Name,
		"max_open_conns", connCfg.MaxOpenConns,
		"max_idle_conns", connCfg.MaxIdleConns)

	return db, nil
}

// AutoMigrate runs the schema migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return migrations.Migrate(db)
}

// validateDatabaseConfig validates the database configuration
func validateDatabaseConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.DB.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}

	if cfg.DB.Port == "" {
		return fmt.Errorf("database port cannot be empty")
	}

	if cfg.DB.Name == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if cfg.DB.User == "" {
		return fmt.Errorf("database user cannot be empty")
	}

	return nil
}

// configureConnectionPool configures the database connection pool
func configureConnectionPool(db *gorm.DB, cfg *ConnectionConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return nil
}

// testConnection tests the database connection
func testConnection(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}
