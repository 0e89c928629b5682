package services

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/events"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
	"github.com/pollstream/pollstream-api/internal/validation"
)

// PollService sequences poll mutations: repository call (mutation + counter
// sync + commit) first, then exactly one event on the bus reflecting the
// committed snapshot. A bus publish can never fail a mutation.
type PollService struct {
	pollRepo postgres.PollRepository
	voteRepo postgres.VoteRepository
	bus      *events.Bus
	log      *log.Logger
}

// NewPollService creates a new poll service
func NewPollService(pollRepo postgres.PollRepository, voteRepo postgres.VoteRepository, bus *events.Bus) *PollService {
	return &PollService{
		pollRepo: pollRepo,
		voteRepo: voteRepo,
		bus:      bus,
		log:      logger.Service("poll"),
	}
}

// CreatePollRequest represents a request to create a poll
type CreatePollRequest struct {
	Title         string              `json:"title" binding:"required"`
	Description   string              `json:"description"`
	PollExpiresAt *time.Time          `json:"poll_expires_at"`
	Options       []PollOptionRequest `json:"options" binding:"required,min=2,dive"`
}

// PollOptionRequest is one option in a create request
type PollOptionRequest struct {
	Text string `json:"text" binding:"required"`
}

// ListPollsRequest controls listing order and pagination
type ListPollsRequest struct {
	SortBy string `json:"sort_by"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

func (r *ListPollsRequest) normalize() {
	if r.SortBy != "likes" {
		r.SortBy = "created_at"
	}
	if r.Limit <= 0 || r.Limit > 100 {
		r.Limit = 50
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
}

// Create persists a new poll and publishes poll_created.
func (s *PollService) Create(userID uuid.UUID, req CreatePollRequest) (*poll.Poll, error) {
	return logged(s.log, "create_poll", func() (*poll.Poll, error) {
		if err := validation.ValidatePollTitle(req.Title); err != nil {
			return nil, apperrors.Validation("%s", err)
		}
		if len(req.Options) < 2 {
			return nil, apperrors.Validation("poll must have at least 2 options")
		}

		texts := make([]string, 0, len(req.Options))
		for _, opt := range req.Options {
			if err := validation.ValidateOptionText(opt.Text); err != nil {
				return nil, apperrors.Validation("%s", err)
			}
			texts = append(texts, opt.Text)
		}

		created, err := s.pollRepo.Create(poll.NewPoll(req.Title, req.Description, userID, req.PollExpiresAt, texts))
		if err != nil {
			return nil, err
		}

		s.bus.Publish(events.NewPollEvent(events.TypePollCreated, created))
		return created, nil
	})
}

// Get returns a poll with relations loaded.
func (s *PollService) Get(pollID uuid.UUID) (*poll.Poll, error) {
	return logged(s.log, "get_poll", func() (*poll.Poll, error) {
		return s.pollRepo.GetDetailed(pollID)
	})
}

// List returns polls ordered by created_at or likes. When userID is set,
// each poll carries the caller's current vote option.
func (s *PollService) List(req ListPollsRequest, userID *uuid.UUID) ([]*poll.Poll, error) {
	return logged(s.log, "list_polls", func() ([]*poll.Poll, error) {
		req.normalize()
		polls, err := s.pollRepo.ListDetailed(req.SortBy, req.Limit, req.Offset)
		if err != nil {
			return nil, err
		}
		return s.enrichWithMyVotes(polls, userID)
	})
}

// ListByUser returns the polls created by userID, enriched with that user's
// own votes.
func (s *PollService) ListByUser(userID uuid.UUID, req ListPollsRequest) ([]*poll.Poll, error) {
	return logged(s.log, "list_polls_by_user", func() ([]*poll.Poll, error) {
		req.normalize()
		polls, err := s.pollRepo.ListByUserDetailed(userID, req.SortBy, req.Limit, req.Offset)
		if err != nil {
			return nil, err
		}
		return s.enrichWithMyVotes(polls, &userID)
	})
}

// Like moves the user's reaction to the like relation, recomputes counters
// and publishes poll_updated with the committed snapshot.
func (s *PollService) Like(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return logged(s.log, "like_poll", func() (*poll.Poll, error) {
		updated, err := s.pollRepo.Like(pollID, userID)
		if err != nil {
			return nil, err
		}
		s.bus.Publish(events.NewPollEvent(events.TypePollUpdated, updated))
		return updated, nil
	})
}

// Dislike is the mirror of Like for the dislike relation.
func (s *PollService) Dislike(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return logged(s.log, "dislike_poll", func() (*poll.Poll, error) {
		updated, err := s.pollRepo.Dislike(pollID, userID)
		if err != nil {
			return nil, err
		}
		s.bus.Publish(events.NewPollEvent(events.TypePollUpdated, updated))
		return updated, nil
	})
}

// Delete removes a poll and publishes poll_deleted carrying only the id.
func (s *PollService) Delete(pollID uuid.UUID) error {
	_, err := logged(s.log, "delete_poll", func() (struct{}, error) {
		if err := s.pollRepo.Delete(pollID); err != nil {
			return struct{}{}, err
		}
		s.bus.Publish(events.NewPollDeletedEvent(pollID.String()))
		return struct{}{}, nil
	})
	return err
}

func (s *PollService) enrichWithMyVotes(polls []*poll.Poll, userID *uuid.UUID) ([]*poll.Poll, error) {
	if userID == nil || len(polls) == 0 {
		return polls, nil
	}

	pollIDs := make([]uuid.UUID, 0, len(polls))
	for _, p := range polls {
		pollIDs = append(pollIDs, p.ID)
	}

	votes, err := s.voteRepo.ListUserVotesForPolls(*userID, pollIDs)
	if err != nil {
		return nil, err
	}

	for _, p := range polls {
		if optionID, ok := votes[p.ID]; ok {
			id := optionID
			p.MyVoteOptionID = &id
		}
	}
	return polls, nil
}
