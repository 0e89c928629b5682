// Package migrations owns the database schema for the poll backend.
package migrations

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/domain/user"
	"github.com/pollstream/pollstream-api/internal/domain/vote"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// Migrate brings the schema up to date: extensions, tables, join tables and
// the constraints the counter-sync protocol relies on.
func Migrate(db *gorm.DB) error {
	log := logger.Migration()
	log.Info("Running database migrations...")

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		return fmt.Errorf("failed to create uuid-ossp extension: %w", err)
	}

	// Order matters: users first (polls reference them), then polls with
	// their join tables, then vote fact rows.
	if err := db.AutoMigrate(
		&user.User{},
		&poll.Poll{},
		&poll.PollOption{},
		&vote.Vote{},
	); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// The like/dislike join tables get composite primary keys from the
	// many2many mapping; the explicit indexes below serve the recount
	// queries that filter on poll_id alone.
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_poll_likes_poll_id ON poll_likes (poll_id)`,
		`CREATE INDEX IF NOT EXISTS idx_poll_dislikes_poll_id ON poll_dislikes (poll_id)`,
		`CREATE INDEX IF NOT EXISTS idx_poll_votes_poll_option ON poll_votes (poll_id, option_id)`,
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	log.Info("Database migrations completed")
	return nil
}
