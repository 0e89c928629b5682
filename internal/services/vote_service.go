package services

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/domain/vote"
	"github.com/pollstream/pollstream-api/internal/events"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
)

// VoteService casts votes and republishes the updated poll snapshot.
type VoteService struct {
	voteRepo postgres.VoteRepository
	pollRepo postgres.PollRepository
	bus      *events.Bus
	log      *log.Logger
}

// NewVoteService creates a new vote service
func NewVoteService(voteRepo postgres.VoteRepository, pollRepo postgres.PollRepository, bus *events.Bus) *VoteService {
	return &VoteService{
		voteRepo: voteRepo,
		pollRepo: pollRepo,
		bus:      bus,
		log:      logger.Service("vote"),
	}
}

// CastVoteRequest represents a vote cast or revote
type CastVoteRequest struct {
	PollID   string `json:"poll_id" binding:"required"`
	OptionID string `json:"option_id" binding:"required"`
}

// CastVote records the user's vote and returns the updated poll snapshot
// with the caller's vote marked. The snapshot published on the bus is the
// same committed state returned to the caller.
func (s *VoteService) CastVote(userID, pollID, optionID uuid.UUID) (*poll.Poll, error) {
	return logged(s.log, "cast_vote", func() (*poll.Poll, error) {
		v, err := s.voteRepo.CastVote(userID, pollID, optionID)
		if err != nil {
			return nil, err
		}

		updated, err := s.pollRepo.GetDetailed(pollID)
		if err != nil {
			return nil, err
		}

		// The snapshot on the bus is shared with every subscriber; the
		// caller-specific vote marker goes on a copy.
		s.bus.Publish(events.NewPollEvent(events.TypePollUpdated, updated))

		response := *updated
		myVote := v.OptionID
		response.MyVoteOptionID = &myVote
		return &response, nil
	})
}

// GetUserVoteForPoll returns the user's current fact row for a poll, or nil.
func (s *VoteService) GetUserVoteForPoll(userID, pollID uuid.UUID) (*vote.Vote, error) {
	return logged(s.log, "get_user_vote_for_poll", func() (*vote.Vote, error) {
		return s.voteRepo.GetUserVoteForPoll(userID, pollID)
	})
}

// ListUserVotesForPolls maps poll ids to the user's chosen option ids.
func (s *VoteService) ListUserVotesForPolls(userID uuid.UUID, pollIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	return logged(s.log, "list_user_votes_for_polls", func() (map[uuid.UUID]uuid.UUID, error) {
		return s.voteRepo.ListUserVotesForPolls(userID, pollIDs)
	})
}
