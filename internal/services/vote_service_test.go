package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/poll"
	"github.com/pollstream/pollstream-api/internal/events"
)

func newVoteService(t *testing.T) (*VoteService, *PollService, *events.Bus) {
	t.Helper()
	store := newFakeStore()
	bus := events.NewBus(16)
	return NewVoteService(store, store, bus), NewPollService(store, store, bus), bus
}

func TestCastVoteCountsEveryVoter(t *testing.T) {
	voteSvc, pollSvc, _ := newVoteService(t)
	u1, u2 := uuid.New(), uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	optionA := created.Options[0].ID

	_, err = voteSvc.CastVote(u1, created.ID, optionA)
	require.NoError(t, err)

	updated, err := voteSvc.CastVote(u2, created.ID, optionA)
	require.NoError(t, err)

	assert.Equal(t, 2, updated.OptionByID(optionA).Votes)
}

func TestRevoteMovesCountBetweenOptions(t *testing.T) {
	voteSvc, pollSvc, _ := newVoteService(t)
	u1, u2 := uuid.New(), uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	optionA := created.Options[0].ID
	optionB := created.Options[1].ID

	_, err = voteSvc.CastVote(u1, created.ID, optionA)
	require.NoError(t, err)
	_, err = voteSvc.CastVote(u2, created.ID, optionA)
	require.NoError(t, err)

	updated, err := voteSvc.CastVote(u1, created.ID, optionB)
	require.NoError(t, err)

	assert.Equal(t, 1, updated.OptionByID(optionA).Votes)
	assert.Equal(t, 1, updated.OptionByID(optionB).Votes)
}

func TestRecastSameOptionIsIdempotent(t *testing.T) {
	voteSvc, pollSvc, _ := newVoteService(t)
	u1 := uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	optionA := created.Options[0].ID

	for i := 0; i < 3; i++ {
		updated, err := voteSvc.CastVote(u1, created.ID, optionA)
		require.NoError(t, err)
		assert.Equal(t, 1, updated.OptionByID(optionA).Votes)
	}
}

func TestCastVoteMarksCallerChoice(t *testing.T) {
	voteSvc, pollSvc, bus := newVoteService(t)
	u1 := uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	optionA := created.Options[0].ID

	sub := bus.Subscribe()
	defer sub.Close()

	updated, err := voteSvc.CastVote(u1, created.ID, optionA)
	require.NoError(t, err)
	require.NotNil(t, updated.MyVoteOptionID)
	assert.Equal(t, optionA, *updated.MyVoteOptionID)

	// The published snapshot is shared; it must not carry the caller's
	// private vote marker.
	select {
	case ev := <-sub.Events():
		assert.Equal(t, events.TypePollUpdated, ev.Type)
		payload := ev.Payload.(map[string]any)
		published, ok := payload["poll"].(*poll.Poll)
		require.True(t, ok)
		assert.Nil(t, published.MyVoteOptionID)
		assert.Equal(t, 1, published.OptionByID(optionA).Votes)
	case <-time.After(time.Second):
		t.Fatal("poll_updated not published after vote")
	}
}

func TestCastVoteRejectsForeignOption(t *testing.T) {
	voteSvc, pollSvc, _ := newVoteService(t)
	u1 := uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	other, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)

	_, err = voteSvc.CastVote(u1, created.ID, other.Options[0].ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCastVoteUnknownPoll(t *testing.T) {
	voteSvc, _, _ := newVoteService(t)

	_, err := voteSvc.CastVote(uuid.New(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestGetUserVoteForPoll(t *testing.T) {
	voteSvc, pollSvc, _ := newVoteService(t)
	u1 := uuid.New()

	created, err := pollSvc.Create(u1, createPollRequest())
	require.NoError(t, err)
	optionA := created.Options[0].ID

	v, err := voteSvc.GetUserVoteForPoll(u1, created.ID)
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = voteSvc.CastVote(u1, created.ID, optionA)
	require.NoError(t, err)

	v, err = voteSvc.GetUserVoteForPoll(u1, created.ID)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, optionA, v.OptionID)
}
