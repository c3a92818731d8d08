package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbrief/bookbrief/internal/entities"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	user := &entities.User{ID: 42, Role: entities.UserRoleAdmin}

	token, expiresAt, err := issuer.Issue(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	userID, claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, entities.UserRoleAdmin, claims.Role)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue(&entities.User{ID: 1})
	require.NoError(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, _, err = issuer.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	good, _, err := issuer.Issue(&entities.User{ID: 1})
	require.NoError(t, err)
	other, _, err := issuer.Issue(&entities.User{ID: 2})
	require.NoError(t, err)
	// user 1's signature over user 2's claims
	goodParts, otherParts := strings.Split(good, "."), strings.Split(other, ".")
	tampered := goodParts[0] + "." + otherParts[1] + "." + goodParts[2]

	sign := func(method jwt.SigningMethod, kid string, key any) string {
		claims := jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		tok := jwt.NewWithClaims(method, claims)
		if kid != "" {
			tok.Header["kid"] = kid
		}
		s, err := tok.SignedString(key)
		require.NoError(t, err)
		return s
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"other secret", func() string {
			tok, _, err := NewTokenIssuer("other", time.Hour).Issue(&entities.User{ID: 1})
			require.NoError(t, err)
			return tok
		}()},
		{"missing kid", sign(jwt.SigningMethodHS256, "", []byte("secret"))},
		{"wrong kid", sign(jwt.SigningMethodHS256, "v0", []byte("secret"))},
		{"wrong alg", sign(jwt.SigningMethodHS512, KeyID, []byte("secret"))},
		{"tampered", tampered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenIssuer_DefaultExpiry(t *testing.T) {
	issuer := NewTokenIssuer("secret", 0)
	_, expiresAt, err := issuer.Issue(&entities.User{ID: 1})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), expiresAt, 5*time.Second)
}
