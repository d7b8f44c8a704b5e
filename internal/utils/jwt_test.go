package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadqo/club-certificate-engine/internal/model"
)

const testSecret = "test-secret"

func TestTokenPair(t *testing.T) {
	claims := model.JWTClaims{UserID: "u-1", Email: "coach@club.local", Role: "coach", Name: "Coach"}
	pair, err := GenerateTokenPair(claims, testSecret, 1, 24)
	require.NoError(t, err)

	t.Run("access token validates", func(t *testing.T) {
		got, err := ValidateToken(pair.AccessToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, claims, *got)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := ValidateToken(pair.RefreshToken, testSecret)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := ValidateRefreshToken(pair.AccessToken, testSecret)
		assert.ErrorIs(t, err, ErrWrongTokenType)

		got, err := ValidateRefreshToken(pair.RefreshToken, testSecret)
		require.NoError(t, err)
		assert.Equal(t, "u-1", got.UserID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ValidateToken(pair.AccessToken, "other")
		assert.Error(t, err)
	})
}

func TestExpiredToken(t *testing.T) {
	pair, err := GenerateTokenPair(model.JWTClaims{UserID: "u-2"}, testSecret, -1, -1)
	require.NoError(t, err)

	_, err = ValidateToken(pair.AccessToken, testSecret)
	assert.Error(t, err)
}
