package services

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/domain/user"
	"github.com/pollstream/pollstream-api/internal/domain/vote"
)

// fakeStore is an in-memory stand-in for the postgres repositories that
// preserves the counter contract: likes, dislikes and option votes are
// always recomputed from the relation maps, never incremented.
type fakeStore struct {
	mu       sync.Mutex
	polls    map[uuid.UUID]*poll.Poll
	likes    map[uuid.UUID]map[uuid.UUID]bool
	dislikes map[uuid.UUID]map[uuid.UUID]bool
	votes    map[uuid.UUID]map[uuid.UUID]uuid.UUID
	users    map[uuid.UUID]*user.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		polls:    make(map[uuid.UUID]*poll.Poll),
		likes:    make(map[uuid.UUID]map[uuid.UUID]bool),
		dislikes: make(map[uuid.UUID]map[uuid.UUID]bool),
		votes:    make(map[uuid.UUID]map[uuid.UUID]uuid.UUID),
		users:    make(map[uuid.UUID]*user.User),
	}
}

func (s *fakeStore) snapshot(p *poll.Poll) *poll.Poll {
	cp := *p
	cp.Options = make([]poll.PollOption, len(p.Options))
	copy(cp.Options, p.Options)
	cp.MyVoteOptionID = nil
	return &cp
}

func (s *fakeStore) recount(pollID uuid.UUID) {
	p := s.polls[pollID]
	p.Likes = len(s.likes[pollID])
	p.Dislikes = len(s.dislikes[pollID])

	counts := make(map[uuid.UUID]int)
	for _, optionID := range s.votes[pollID] {
		counts[optionID]++
	}
	for i := range p.Options {
		p.Options[i].Votes = counts[p.Options[i].ID]
	}
}

// PollRepository

func (s *fakeStore) Create(p *poll.Poll) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.polls[p.ID] = p
	s.likes[p.ID] = make(map[uuid.UUID]bool)
	s.dislikes[p.ID] = make(map[uuid.UUID]bool)
	s.votes[p.ID] = make(map[uuid.UUID]uuid.UUID)
	return s.snapshot(p), nil
}

func (s *fakeStore) GetByID(id uuid.UUID) (*poll.Poll, error) {
	return s.GetDetailed(id)
}

func (s *fakeStore) GetDetailed(id uuid.UUID) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[id]
	if !ok {
		return nil, apperrors.NotFound("poll not found")
	}
	return s.snapshot(p), nil
}

func (s *fakeStore) ListDetailed(sortBy string, limit, offset int) ([]*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*poll.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		out = append(out, s.snapshot(p))
	}
	if sortBy == "likes" {
		sort.Slice(out, func(i, j int) bool { return out[i].Likes > out[j].Likes })
	} else {
		sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ListByUserDetailed(userID uuid.UUID, sortBy string, limit, offset int) ([]*poll.Poll, error) {
	all, err := s.ListDetailed(sortBy, 1<<30, 0)
	if err != nil {
		return nil, err
	}
	mine := make([]*poll.Poll, 0, len(all))
	for _, p := range all {
		if p.CreatedBy == userID {
			mine = append(mine, p)
		}
	}
	return mine, nil
}

func (s *fakeStore) Like(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return s.react(pollID, userID, s.likes, s.dislikes)
}

func (s *fakeStore) Dislike(pollID, userID uuid.UUID) (*poll.Poll, error) {
	return s.react(pollID, userID, s.dislikes, s.likes)
}

func (s *fakeStore) react(pollID, userID uuid.UUID, target, opposing map[uuid.UUID]map[uuid.UUID]bool) (*poll.Poll, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[pollID]
	if !ok {
		return nil, apperrors.NotFound("poll not found")
	}
	delete(opposing[pollID], userID)
	target[pollID][userID] = true
	s.recount(pollID)
	return s.snapshot(p), nil
}

func (s *fakeStore) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[id]; !ok {
		return apperrors.NotFound("poll not found")
	}
	delete(s.polls, id)
	delete(s.likes, id)
	delete(s.dislikes, id)
	delete(s.votes, id)
	return nil
}

// VoteRepository

func (s *fakeStore) CastVote(userID, pollID, optionID uuid.UUID) (*vote.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.polls[pollID]
	if !ok {
		return nil, apperrors.NotFound("poll not found")
	}
	if p.OptionByID(optionID) == nil {
		return nil, apperrors.Validation("option does not belong to poll")
	}

	s.votes[pollID][userID] = optionID
	s.recount(pollID)
	return vote.NewVote(userID, pollID, optionID), nil
}

func (s *fakeStore) GetUserVoteForPoll(userID, pollID uuid.UUID) (*vote.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	optionID, ok := s.votes[pollID][userID]
	if !ok {
		return nil, nil
	}
	return vote.NewVote(userID, pollID, optionID), nil
}

func (s *fakeStore) ListUserVotesForPolls(userID uuid.UUID, pollIDs []uuid.UUID) (map[uuid.UUID]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[uuid.UUID]uuid.UUID)
	for _, pollID := range pollIDs {
		if optionID, ok := s.votes[pollID][userID]; ok {
			out[pollID] = optionID
		}
	}
	return out, nil
}

// UserRepository

func (s *fakeStore) CreateUser(u *user.User) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == u.Email {
			return nil, apperrors.Conflict("email already registered")
		}
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *fakeStore) GetUserByID(id uuid.UUID) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, apperrors.NotFound("user not found")
	}
	return u, nil
}

func (s *fakeStore) GetUserByEmail(email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperrors.NotFound("user not found")
}

func (s *fakeStore) CountUsers() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.users)), nil
}

// fakeUserRepo adapts fakeStore's user methods to the repository interface,
// keeping method names from colliding with the poll repository's Create.
type fakeUserRepo struct {
	store *fakeStore
}

func (r *fakeUserRepo) Create(u *user.User) (*user.User, error)  { return r.store.CreateUser(u) }
func (r *fakeUserRepo) GetByID(id uuid.UUID) (*user.User, error) { return r.store.GetUserByID(id) }
func (r *fakeUserRepo) GetByEmail(email string) (*user.User, error) {
	return r.store.GetUserByEmail(email)
}
func (r *fakeUserRepo) Count() (int64, error) { return r.store.CountUsers() }
