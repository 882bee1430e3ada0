package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateAndParse(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		token, err := GenerateToken(42, testSecret, 24)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.True(t, claims.ExpiresAt.After(time.Now()))
		assert.True(t, claims.IssuedAt.Before(time.Now().Add(time.Second)))
	})

	t.Run("distinct users get distinct tokens", func(t *testing.T) {
		token1, err := GenerateToken(1, testSecret, 24)
		require.NoError(t, err)
		token2, err := GenerateToken(2, testSecret, 24)
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})

	t.Run("expiry respects expireHours", func(t *testing.T) {
		token, err := GenerateToken(7, testSecret, 1)
		require.NoError(t, err)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	})
}

func TestParseRejects(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateToken(42, testSecret, 24)
		require.NoError(t, err)

		claims, err := ParseToken(token, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("garbage input", func(t *testing.T) {
		for _, raw := range []string{"", "not-a-jwt-at-all", "a.b.c"} {
			claims, err := ParseToken(raw, testSecret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		claims := Claims{
			UserID: 42,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
				NotBefore: jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		result, err := ParseToken(signed, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Nil(t, result)
	})

	t.Run("alg none is not accepted", func(t *testing.T) {
		claims := Claims{
			UserID: 42,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		result, err := ParseToken(signed, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, result)
	})
}
