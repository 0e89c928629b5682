package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/events"
)

func newPollService(t *testing.T) (*PollService, *fakeStore, *events.Bus) {
	t.Helper()
	store := newFakeStore()
	bus := events.NewBus(16)
	return NewPollService(store, store, bus), store, bus
}

func createPollRequest() CreatePollRequest {
	return CreatePollRequest{
		Title:       "Favorite season?",
		Description: "Pick one",
		Options: []PollOptionRequest{
			{Text: "Summer"},
			{Text: "Winter"},
		},
	}
}

func TestCreatePollPublishesEvent(t *testing.T) {
	svc, _, bus := newPollService(t)
	sub := bus.Subscribe()
	defer sub.Close()

	created, err := svc.Create(uuid.New(), createPollRequest())
	require.NoError(t, err)
	require.Len(t, created.Options, 2)
	assert.Equal(t, 0, created.Likes)
	assert.Equal(t, 0, created.Dislikes)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, events.TypePollCreated, ev.Type)
		payload, ok := ev.Payload.(map[string]any)
		require.True(t, ok)
		assert.Contains(t, payload, "poll")
	case <-time.After(time.Second):
		t.Fatal("poll_created not published")
	}
}

func TestCreatePollRejectsTooFewOptions(t *testing.T) {
	svc, _, _ := newPollService(t)

	req := createPollRequest()
	req.Options = req.Options[:1]

	_, err := svc.Create(uuid.New(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreatePollRejectsEmptyTitle(t *testing.T) {
	svc, _, _ := newPollService(t)

	req := createPollRequest()
	req.Title = "  "

	_, err := svc.Create(uuid.New(), req)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestLikeThenDislikeMovesReaction(t *testing.T) {
	svc, _, bus := newPollService(t)
	userID := uuid.New()

	created, err := svc.Create(userID, createPollRequest())
	require.NoError(t, err)

	sub := bus.Subscribe()
	defer sub.Close()

	liked, err := svc.Like(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)
	assert.Equal(t, 0, liked.Dislikes)

	// Liking again is idempotent.
	liked, err = svc.Like(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 1, liked.Likes)

	disliked, err := svc.Dislike(created.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, disliked.Likes)
	assert.Equal(t, 1, disliked.Dislikes)

	for i := 0; i < 3; i++ {
		select {
		case ev := <-sub.Events():
			assert.Equal(t, events.TypePollUpdated, ev.Type)
		case <-time.After(time.Second):
			t.Fatal("poll_updated not published for every reaction")
		}
	}
}

func TestLikeUnknownPoll(t *testing.T) {
	svc, _, _ := newPollService(t)

	_, err := svc.Like(uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestDeletePublishesIDOnlyEvent(t *testing.T) {
	svc, store, bus := newPollService(t)
	userID := uuid.New()

	created, err := svc.Create(userID, createPollRequest())
	require.NoError(t, err)

	sub := bus.Subscribe()
	defer sub.Close()

	require.NoError(t, svc.Delete(created.ID))
	assert.Empty(t, store.polls)

	select {
	case ev := <-sub.Events():
		assert.Equal(t, events.TypePollDeleted, ev.Type)
		payload, ok := ev.Payload.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, created.ID.String(), payload["poll_id"])
	case <-time.After(time.Second):
		t.Fatal("poll_deleted not published")
	}

	assert.ErrorIs(t, svc.Delete(created.ID), apperrors.ErrNotFound)
}

func TestListMarksCallerVotes(t *testing.T) {
	svc, store, _ := newPollService(t)
	userID := uuid.New()

	created, err := svc.Create(userID, createPollRequest())
	require.NoError(t, err)

	optionID := created.Options[0].ID
	_, err = store.CastVote(userID, created.ID, optionID)
	require.NoError(t, err)

	polls, err := svc.List(ListPollsRequest{}, &userID)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	require.NotNil(t, polls[0].MyVoteOptionID)
	assert.Equal(t, optionID, *polls[0].MyVoteOptionID)

	// Anonymous listing carries no vote marker.
	polls, err = svc.List(ListPollsRequest{}, nil)
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Nil(t, polls[0].MyVoteOptionID)
}

func TestListSortsByLikes(t *testing.T) {
	svc, _, _ := newPollService(t)
	userID := uuid.New()

	first, err := svc.Create(userID, createPollRequest())
	require.NoError(t, err)
	second, err := svc.Create(userID, createPollRequest())
	require.NoError(t, err)

	_, err = svc.Like(second.ID, userID)
	require.NoError(t, err)

	polls, err := svc.List(ListPollsRequest{SortBy: "likes"}, nil)
	require.NoError(t, err)
	require.Len(t, polls, 2)
	assert.Equal(t, second.ID, polls[0].ID)
	assert.Equal(t, first.ID, polls[1].ID)
}

func TestListByUserFiltersCreator(t *testing.T) {
	svc, _, _ := newPollService(t)
	alice := uuid.New()
	bob := uuid.New()

	mine, err := svc.Create(alice, createPollRequest())
	require.NoError(t, err)
	_, err = svc.Create(bob, createPollRequest())
	require.NoError(t, err)

	polls, err := svc.ListByUser(alice, ListPollsRequest{})
	require.NoError(t, err)
	require.Len(t, polls, 1)
	assert.Equal(t, mine.ID, polls[0].ID)
}
