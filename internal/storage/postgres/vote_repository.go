package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/domain/vote"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// PostgresVoteRepository implements VoteRepository using GORM
type PostgresVoteRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresVoteRepository creates a new PostgreSQL vote repository
func NewPostgresVoteRepository(db *gorm.DB) *PostgresVoteRepository {
	return &PostgresVoteRepository{
		db:  db,
		log: logger.Repository("vote"),
	}
}

// CastVote records or moves the user's vote for a poll. The (user_id,
// poll_id) unique constraint keeps the fact row singular: when two casts
// race, the losing insert is remapped into the revote branch instead of
// surfacing a conflict.
func (r *PostgresVoteRepository) CastVote(userID, pollID, optionID uuid.UUID) (*vote.Vote, error) {
	r.log.Debug("casting vote", "user_id", userID, "poll_id", pollID, "option_id", optionID)

	var opt poll.PollOption
	if err := r.db.First(&opt, "id = ?", optionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("option %s", optionID)
		}
		return nil, fmt.Errorf("failed to look up option: %w", err)
	}
	if opt.PollID != pollID {
		return nil, apperrors.Validation("option %s does not belong to poll %s", optionID, pollID)
	}

	var result *vote.Vote
	err := r.db.Transaction(func(tx *gorm.DB) error {
		existing, err := getUserVote(tx, userID, pollID)
		if err != nil {
			return err
		}

		if existing == nil {
			v := vote.NewVote(userID, pollID, optionID)
			if err := tx.Create(v).Error; err != nil {
				if !isUniqueViolation(err) {
					return fmt.Errorf("failed to create vote: %w", err)
				}
				// Lost the first-cast race: the winner's row exists now,
				// fall through to the revote branch against it.
				existing, err = getUserVote(tx, userID, pollID)
				if err != nil {
					return err
				}
				if existing == nil {
					return apperrors.Transient(fmt.Errorf("vote row vanished after unique violation"))
				}
			} else {
				if err := syncOptionVoteCounts(tx, []uuid.UUID{optionID}); err != nil {
					return err
				}
				result = v
				return nil
			}
		}

		if existing.OptionID == optionID {
			// Same option again: idempotent no-op.
			result = existing
			return nil
		}

		oldOptionID := existing.OptionID
		existing.OptionID = optionID
		if err := tx.Model(&vote.Vote{}).Where("id = ?", existing.ID).
			Update("option_id", optionID).Error; err != nil {
			return fmt.Errorf("failed to reassign vote: %w", err)
		}

		// A revote changes two options' cardinalities.
		if err := syncOptionVoteCounts(tx, []uuid.UUID{oldOptionID, optionID}); err != nil {
			return err
		}
		result = existing
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("vote cast", "user_id", userID, "poll_id", pollID, "option_id", optionID)
	return result, nil
}

func (r *PostgresVoteRepository) GetUserVoteForPoll(userID, pollID uuid.UUID) (*vote.Vote, error) {
	return getUserVote(r.db, userID, pollID)
}

// ListUserVotesForPolls returns a poll_id -> option_id map of the user's
// current votes for the given polls, used to enrich poll listings.
func (r *PostgresVoteRepository) ListUserVotesForPolls(userID uuid.UUID, pollIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	result := make(map[uuid.UUID]uuid.UUID, len(pollIDs))
	if len(pollIDs) == 0 {
		return result, nil
	}

	var votes []vote.Vote
	if err := r.db.Where("user_id = ? AND poll_id IN ?", userID, pollIDs).Find(&votes).Error; err != nil {
		r.log.Error("failed to list user votes", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list user votes: %w", err)
	}

	for _, v := range votes {
		result[v.PollID] = v.OptionID
	}
	return result, nil
}

func getUserVote(db *gorm.DB, userID, pollID uuid.UUID) (*vote.Vote, error) {
	var v vote.Vote
	if err := db.Where("user_id = ? AND poll_id = ?", userID, pollID).First(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up vote: %w", err)
	}
	return &v, nil
}

// syncOptionVoteCounts writes the exact fact-row cardinality for each given
// option, including zero when the last vote moved away.
func syncOptionVoteCounts(tx *gorm.DB, optionIDs []uuid.UUID) error {
	if len(optionIDs) == 0 {
		return nil
	}

	type optionCount struct {
		OptionID uuid.UUID
		Count    int64
	}
	var rows []optionCount
	if err := tx.Model(&vote.Vote{}).
		Select("option_id, COUNT(*) as count").
		Where("option_id IN ?", optionIDs).
		Group("option_id").
		Scan(&rows).Error; err != nil {
		return fmt.Errorf("failed to count votes per option: %w", err)
	}

	counts := make(map[uuid.UUID]int64, len(optionIDs))
	for _, id := range optionIDs {
		counts[id] = 0
	}
	for _, row := range rows {
		counts[row.OptionID] = row.Count
	}

	for id, count := range counts {
		if err := tx.Model(&poll.PollOption{}).Where("id = ?", id).
			Update("votes", count).Error; err != nil {
			return fmt.Errorf("failed to write option vote count: %w", err)
		}
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
