package postgres

import (
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/domain/user"
	"github.com/pollstream/pollstream-api/internal/domain/vote"
)

// PollRepository defines poll persistence including the counter-sync
// protocol for the like/dislike relations.
type PollRepository interface {
	Create(p *poll.Poll) (*poll.Poll, error)
	GetByID(id uuid.UUID) (*poll.Poll, error)
	GetDetailed(id uuid.UUID) (*poll.Poll, error)
	ListDetailed(sortBy string, limit, offset int) ([]*poll.Poll, error)
	ListByUserDetailed(userID uuid.UUID, sortBy string, limit, offset int) ([]*poll.Poll, error)
	Like(pollID, userID uuid.UUID) (*poll.Poll, error)
	Dislike(pollID, userID uuid.UUID) (*poll.Poll, error)
	Delete(id uuid.UUID) error
}

// UserRepository defines user persistence.
type UserRepository interface {
	Create(u *user.User) (*user.User, error)
	GetByID(id uuid.UUID) (*user.User, error)
	GetByEmail(email string) (*user.User, error)
	Count() (int64, error)
}

// VoteRepository defines vote fact-row persistence including the cast/revote
// upsert and per-option counter recomputation.
type VoteRepository interface {
	CastVote(userID, pollID, optionID uuid.UUID) (*vote.Vote, error)
	GetUserVoteForPoll(userID, pollID uuid.UUID) (*vote.Vote, error)
	ListUserVotesForPolls(userID uuid.UUID, pollIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error)
}
