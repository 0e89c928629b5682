package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewManager("secret", "pollstream-api", time.Hour)
	userID := uuid.New()

	token, err := m.Generate(userID, "user@example.com", true)
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "pollstream-api", claims.Issuer)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	issuer := "pollstream-api"
	token, err := NewManager("secret-a", issuer, time.Hour).Generate(uuid.New(), "user@example.com", false)
	require.NoError(t, err)

	_, err = NewManager("secret-b", issuer, time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	token, err := NewManager("secret", "someone-else", time.Hour).Generate(uuid.New(), "user@example.com", false)
	require.NoError(t, err)

	_, err = NewManager("secret", "pollstream-api", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("secret", "pollstream-api", -time.Minute)

	token, err := m.Generate(uuid.New(), "user@example.com", false)
	require.NoError(t, err)

	_, err = m.Parse(token)
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	m := NewManager("secret", "pollstream-api", time.Hour)

	_, err := m.Parse("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashAndCheck(t *testing.T) {
	hashed, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hashed)

	assert.True(t, CheckPassword("correct horse battery staple", hashed))
	assert.False(t, CheckPassword("wrong", hashed))
}
