package postgres

import (
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/pollstream/pollstream-api/internal/config"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// Container holds the repositories over one database connection. It is
// constructed once at process start and passed explicitly into the server
// wiring; there is no process-wide lookup.
type Container struct {
	db       *gorm.DB
	log      *log.Logger
	pollRepo PollRepository
	userRepo UserRepository
	voteRepo VoteRepository
}

// NewContainer connects to the database, runs migrations and initializes
// all repositories.
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)

	if err := container.Health(); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return &Container{
		db:       db,
		log:      logger.Repository("postgres_container"),
		pollRepo: NewPostgresPollRepository(db),
		userRepo: NewPostgresUserRepository(db),
		voteRepo: NewPostgresVoteRepository(db),
	}
}

// Polls returns the poll repository
func (c *Container) Polls() PollRepository { return c.pollRepo }

// Users returns the user repository
func (c *Container) Users() UserRepository { return c.userRepo }

// Votes returns the vote repository
func (c *Container) Votes() VoteRepository { return c.voteRepo }

// DB returns the underlying connection
func (c *Container) DB() *gorm.DB { return c.db }

// Health pings the database
func (c *Container) Health() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func (c *Container) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}
