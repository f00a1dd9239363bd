package middleware

import (
	"context"
	"strconv"
	"testing"
	"time"

	"melodia/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestParseToken_Rejections(t *testing.T) {
	sign := func(claims jwt.Claims, method jwt.SigningMethod, key interface{}) string {
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	base := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   strconv.Itoa(7),
			Issuer:    TokenIssuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := base()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	wrongIssuer := base()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := base()
	wrongAudience.Audience = jwt.ClaimStrings{"other"}
	noExpiry := base()
	noExpiry.ExpiresAt = nil
	badSubject := base()
	badSubject.Subject = "abc"

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "malformed.token.here"},
		{"wrong secret", sign(base(), jwt.SigningMethodHS256, []byte("another-secret"))},
		{"expired", sign(expired, jwt.SigningMethodHS256, []byte(testSecret))},
		{"wrong issuer", sign(wrongIssuer, jwt.SigningMethodHS256, []byte(testSecret))},
		{"wrong audience", sign(wrongAudience, jwt.SigningMethodHS256, []byte(testSecret))},
		{"missing expiry", sign(noExpiry, jwt.SigningMethodHS256, []byte(testSecret))},
		{"non numeric subject", sign(badSubject, jwt.SigningMethodHS256, []byte(testSecret))},
		{"other hmac method", sign(base(), jwt.SigningMethodHS512, []byte(testSecret))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseToken(testSecret, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = BearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = BearerToken("Bearer")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestWithUser(t *testing.T) {
	_, ok := UserFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithUser(context.Background(), &models.User{ID: 9, Email: "a@b.c"})
	user, ok := UserFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, uint(9), user.ID)
	assert.Equal(t, uint(9), ctx.Value(UserIDKey))
}
