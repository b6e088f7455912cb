package security_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/security"
)

const testSecret = "unit-test-secret-at-least-32-chars-long"

func TestTokenManager_AccessTokenRoundTrip(t *testing.T) {
	tm := security.NewTokenManager(testSecret, 60, 7*24*60)

	tokenStr, err := tm.GenerateAccessToken(42, "reader@example.com", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	claims, err := tm.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int32(42), claims.UserID)
	assert.Equal(t, "reader@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, security.TokenTypeAccess, claims.Type)
	assert.Equal(t, "42", claims.Subject)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestTokenManager_RefreshTokenRoundTrip(t *testing.T) {
	tm := security.NewTokenManager(testSecret, 60, 7*24*60)

	tokenStr, err := tm.GenerateRefreshToken(7, "reader@example.com")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.Equal(t, int32(7), claims.UserID)
	assert.Equal(t, security.TokenTypeRefresh, claims.Type)
	assert.Empty(t, claims.Role)
}

func TestTokenManager_ValidateToken(t *testing.T) {
	tm := security.NewTokenManager(testSecret, 60, 7*24*60)

	t.Run("Rejects Garbage", func(t *testing.T) {
		_, err := tm.ValidateToken("not-a-jwt")
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Rejects Wrong Secret", func(t *testing.T) {
		other := security.NewTokenManager("a-completely-different-signing-secret!!", 60, 7*24*60)
		tokenStr, err := other.GenerateAccessToken(1, "x@example.com", "student")
		require.NoError(t, err)

		_, err = tm.ValidateToken(tokenStr)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Rejects Expired Token", func(t *testing.T) {
		claims := security.UserClaims{
			UserID: 1,
			Type:   security.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenStr, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = tm.ValidateToken(tokenStr)
		assert.ErrorIs(t, err, security.ErrExpiredToken)
	})

	t.Run("Rejects Unsigned Algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, security.UserClaims{
			UserID: 1,
			Type:   security.TokenTypeAccess,
		})
		tokenStr, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = tm.ValidateToken(tokenStr)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	})

	t.Run("Backfills User ID From Subject", func(t *testing.T) {
		claims := security.UserClaims{
			Type: security.TokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "99",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenStr, err := token.SignedString([]byte(testSecret))
		require.NoError(t, err)

		got, err := tm.ValidateToken(tokenStr)
		require.NoError(t, err)
		assert.Equal(t, int32(99), got.UserID)
	})
}

func TestNewTokenManager_DefaultsExpiry(t *testing.T) {
	tm := security.NewTokenManager(testSecret, 0, 0)

	tokenStr, err := tm.GenerateAccessToken(1, "x@example.com", "student")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(tokenStr)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(60*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
