package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimoire-server/internal/auth"
	"grimoire-server/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims auth.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestVerifyAccessToken(t *testing.T) {
	verifier := auth.NewVerifier(testSecret)
	userID := uuid.New()

	t.Run("Valid token returns its claims", func(t *testing.T) {
		tokenString := signToken(t, testSecret, auth.Claims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		claims, err := verifier.VerifyAccessToken(tokenString)
		assert.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
	})

	t.Run("Expired token", func(t *testing.T) {
		tokenString := signToken(t, testSecret, auth.Claims{
			UserID: userID,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			},
		})

		_, err := verifier.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("Wrong signing secret", func(t *testing.T) {
		tokenString := signToken(t, "other-secret", auth.Claims{UserID: userID})

		_, err := verifier.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("Garbage token is malformed", func(t *testing.T) {
		_, err := verifier.VerifyAccessToken("not.a.token")
		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("Token without a user id is invalid", func(t *testing.T) {
		tokenString := signToken(t, testSecret, auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})

		_, err := verifier.VerifyAccessToken(tokenString)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})
}
