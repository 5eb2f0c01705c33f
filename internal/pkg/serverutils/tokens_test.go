package serverutils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	userId := uuid.New()

	token, err := NewAccessToken(testSecret, userId, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userId.String(), claims["user_id"])
	assert.Equal(t, TokenTypeAccess, claims["type"])
}

func TestRefreshTokenCarriesType(t *testing.T) {
	token, err := NewRefreshToken(testSecret, uuid.New(), 30*24*time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims["type"])
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := NewAccessToken(testSecret, uuid.New(), time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("another-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := NewAccessToken(testSecret, uuid.New(), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestHashToken(t *testing.T) {
	h1 := HashToken("some-refresh-token")
	h2 := HashToken("some-refresh-token")
	h3 := HashToken("different-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // sha256 hex
}
