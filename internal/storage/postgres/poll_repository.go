package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// Like/dislike relation tables. The names are fixed here so the counter
// sync can address either relation as target or opposing side.
const (
	likesTable    = "poll_likes"
	dislikesTable = "poll_dislikes"
)

// PostgresPollRepository implements PollRepository using GORM
type PostgresPollRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresPollRepository creates a new PostgreSQL poll repository
func NewPostgresPollRepository(db *gorm.DB) *PostgresPollRepository {
	return &PostgresPollRepository{
		db:  db,
		log: logger.Repository("poll"),
	}
}

func (r *PostgresPollRepository) Create(p *poll.Poll) (*poll.Poll, error) {
	r.log.Debug("creating new poll", "poll_id", p.ID, "created_by", p.CreatedBy)

	// Omit relation fields so GORM only inserts the poll row and its
	// options, not like/dislike join rows.
	if err := r.db.Omit("LikedBy", "DislikedBy", "Creator").Create(p).Error; err != nil {
		r.log.Error("failed to create poll", "error", err, "poll_id", p.ID)
		return nil, fmt.Errorf("failed to create poll: %w", err)
	}

	r.log.Info("poll created", "poll_id", p.ID, "options", len(p.Options))
	return r.GetDetailed(p.ID)
}

func (r *PostgresPollRepository) GetByID(id uuid.UUID) (*poll.Poll, error) {
	var p poll.Poll
	if err := r.db.First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("poll %s", id)
		}
		r.log.Error("failed to retrieve poll", "poll_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve poll: %w", err)
	}
	return &p, nil
}

// GetDetailed loads a poll with its options, creator and like/dislike
// relations eagerly, matching the snapshot shape published on the stream.
func (r *PostgresPollRepository) GetDetailed(id uuid.UUID) (*poll.Poll, error) {
	var p poll.Poll
	err := r.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("poll_options.id") }).
		Preload("Creator").
		Preload("LikedBy").
		Preload("DislikedBy").
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("poll %s", id)
		}
		r.log.Error("failed to retrieve detailed poll", "poll_id", id, "error", err)
		return nil, fmt.Errorf("failed to retrieve detailed poll: %w", err)
	}
	return &p, nil
}

func (r *PostgresPollRepository) ListDetailed(sortBy string, limit, offset int) ([]*poll.Poll, error) {
	return r.listDetailed(nil, sortBy, limit, offset)
}

func (r *PostgresPollRepository) ListByUserDetailed(userID uuid.UUID, sortBy string, limit, offset int) ([]*poll.Poll, error) {
	return r.listDetailed(&userID, sortBy, limit, offset)
}

func (r *PostgresPollRepository) listDetailed(createdBy *uuid.UUID, sortBy string, limit, offset int) ([]*poll.Poll, error) {
	order := "created_at DESC"
	if sortBy == "likes" {
		order = "likes DESC"
	}

	query := r.db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("poll_options.id") }).
		Preload("Creator").
		Preload("LikedBy").
		Preload("DislikedBy").
		Order(order).
		Limit(limit).
		Offset(offset)

	if createdBy != nil {
		query = query.Where("created_by = ?", *createdBy)
	}

	var polls []*poll.Poll
	if err := query.Find(&polls).Error; err != nil {
		r.log.Error("failed to list polls", "error", err)
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	return polls, nil
}

func (r *PostgresPollRepository) Like(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return r.syncLikeState(pollID, userID, likesTable, dislikesTable)
}

func (r *PostgresPollRepository) Dislike(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return r.syncLikeState(pollID, userID, dislikesTable, likesTable)
}

// syncLikeState moves the user's reaction into the target relation and
// recomputes both counters from the relation tables. The poll row lock
// serializes concurrent counter syncs for the same poll only; it is held
// until the transaction commits or rolls back.
func (r *PostgresPollRepository) syncLikeState(pollID, userID uuid.UUID, target, opposing string) (*poll.Poll, error) {
	r.log.Debug("syncing like state", "poll_id", pollID, "user_id", userID, "target", target)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p poll.Poll
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", pollID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("poll %s", pollID)
			}
			return apperrors.Transient(err)
		}

		// A user holds at most one of {liked, disliked}: clear the opposing
		// relation before inserting. Both statements are idempotent, so a
		// repeated like is absorbed rather than surfaced as a conflict.
		if err := tx.Exec(
			fmt.Sprintf("DELETE FROM %s WHERE user_id = ? AND poll_id = ?", opposing),
			userID, pollID,
		).Error; err != nil {
			return fmt.Errorf("failed to clear opposing relation: %w", err)
		}

		if err := tx.Exec(
			fmt.Sprintf("INSERT INTO %s (user_id, poll_id) VALUES (?, ?) ON CONFLICT DO NOTHING", target),
			userID, pollID,
		).Error; err != nil {
			return fmt.Errorf("failed to insert into target relation: %w", err)
		}

		// Counters are derived: recompute from the relation tables rather
		// than incrementing, so concurrent writers can never drift them.
		var likes, dislikes int64
		if err := tx.Table(likesTable).Where("poll_id = ?", pollID).Count(&likes).Error; err != nil {
			return fmt.Errorf("failed to count likes: %w", err)
		}
		if err := tx.Table(dislikesTable).Where("poll_id = ?", pollID).Count(&dislikes).Error; err != nil {
			return fmt.Errorf("failed to count dislikes: %w", err)
		}

		if err := tx.Model(&poll.Poll{}).Where("id = ?", pollID).
			Updates(map[string]any{"likes": likes, "dislikes": dislikes}).Error; err != nil {
			return fmt.Errorf("failed to write counters: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("like state synced", "poll_id", pollID, "user_id", userID, "target", target)
	return r.GetDetailed(pollID)
}

func (r *PostgresPollRepository) Delete(id uuid.UUID) error {
	r.log.Debug("deleting poll", "poll_id", id)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var p poll.Poll
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("poll %s", id)
			}
			return apperrors.Transient(err)
		}

		for _, stmt := range []string{
			"DELETE FROM poll_votes WHERE poll_id = ?",
			"DELETE FROM poll_likes WHERE poll_id = ?",
			"DELETE FROM poll_dislikes WHERE poll_id = ?",
			"DELETE FROM poll_options WHERE poll_id = ?",
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return fmt.Errorf("failed to delete poll children: %w", err)
			}
		}

		if err := tx.Delete(&poll.Poll{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete poll: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Info("poll deleted", "poll_id", id)
	return nil
}
