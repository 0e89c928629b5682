package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/auth"
)

func newUserService(t *testing.T) *UserService {
	t.Helper()
	store := newFakeStore()
	tokens := auth.NewManager("test-secret", "pollstream-api", time.Hour)
	return NewUserService(&fakeUserRepo{store: store}, tokens)
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	svc := newUserService(t)

	first, err := svc.Register(RegisterRequest{Email: "first@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.True(t, first.IsAdmin)

	second, err := svc.Register(RegisterRequest{Email: "second@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.False(t, second.IsAdmin)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register(RegisterRequest{Email: "dup@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Register(RegisterRequest{Email: "dup@example.com", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestRegisterInvalidEmail(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.Register(RegisterRequest{Email: "not-an-email", Password: "password123"})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestRegisterDoesNotStorePlaintextPassword(t *testing.T) {
	svc := newUserService(t)

	u, err := svc.Register(RegisterRequest{Email: "hash@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.NotEqual(t, "password123", u.HashedPassword)
	assert.True(t, auth.CheckPassword("password123", u.HashedPassword))
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)

	registered, err := svc.Register(RegisterRequest{Email: "login@example.com", Password: "password123"})
	require.NoError(t, err)

	u, err := svc.Authenticate("login@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	_, err = svc.Authenticate("login@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Authenticate("unknown@example.com", "password123")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIssueTokenRoundTrip(t *testing.T) {
	svc := newUserService(t)

	u, err := svc.Register(RegisterRequest{Email: "token@example.com", Password: "password123"})
	require.NoError(t, err)

	token, err := svc.IssueToken(u)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}
