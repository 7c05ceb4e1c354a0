package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"donationhub/internal/model"
)

const testSecret = "test_secret_key_1234567890"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNewSessionCodec_RequiresSecret(t *testing.T) {
	codec, err := NewSessionCodec("")
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.Nil(t, codec)
}

func TestSessionCodec_IssueAndVerify(t *testing.T) {
	codec, err := NewSessionCodec(testSecret)
	require.NoError(t, err)

	tests := []struct {
		name string
		id   Identity
	}{
		{name: "donor", id: Identity{Email: "a@x.com", Role: model.RoleDonor}},
		{name: "receiver", id: Identity{Email: "b@y.org", Role: model.RoleReceiver}},
		{name: "plus addressing", id: Identity{Email: "c+food@z.io", Role: model.RoleDonor}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(tt.id)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			got, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.id, got)
		})
	}
}

func TestSessionCodec_ClaimsCarryExpiryAndID(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	codec, err := NewSessionCodec(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := codec.Issue(Identity{Email: "a@x.com", Role: model.RoleDonor})
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)

	assert.Equal(t, issuedAt, claims.IssuedAt.Time.UTC())
	assert.Equal(t, issuedAt.Add(time.Hour), claims.ExpiresAt.Time.UTC())
	assert.NotEmpty(t, claims.ID)
}

func TestSessionCodec_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	issuer, err := NewSessionCodec(testSecret, WithClock(fixedClock(issuedAt)))
	require.NoError(t, err)

	token, err := issuer.Issue(Identity{Email: "a@x.com", Role: model.RoleDonor})
	require.NoError(t, err)

	before, err := NewSessionCodec(testSecret, WithClock(fixedClock(issuedAt.Add(59*time.Minute))))
	require.NoError(t, err)
	_, err = before.Verify(token)
	assert.NoError(t, err)

	after, err := NewSessionCodec(testSecret, WithClock(fixedClock(issuedAt.Add(61*time.Minute))))
	require.NoError(t, err)
	_, err = after.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionCodec_DifferentSecrets(t *testing.T) {
	first, err := NewSessionCodec("first_secret_key")
	require.NoError(t, err)
	second, err := NewSessionCodec("different_secret_key")
	require.NoError(t, err)

	token, err := first.Issue(Identity{Email: "a@x.com", Role: model.RoleReceiver})
	require.NoError(t, err)

	got, err := second.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, Identity{}, got)

	_, err = first.Verify(token)
	assert.NoError(t, err)
}

func TestSessionCodec_Verify_InvalidTokens(t *testing.T) {
	codec, err := NewSessionCodec(testSecret)
	require.NoError(t, err)

	valid, err := codec.Issue(Identity{Email: "a@x.com", Role: model.RoleDonor})
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "tampered token", token: valid + "tampered"},
		{name: "alg none", token: signedWith(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, validClaims("a@x.com", "donor"))},
		{name: "unknown role", token: signedWith(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("a@x.com", "admin"))},
		{name: "missing email", token: signedWith(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims("", "donor"))},
		{name: "missing expiry", token: signedWith(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{Email: "a@x.com", Role: model.RoleDonor})},
		{name: "expired token", token: expiredToken(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Equal(t, Identity{}, got)
		})
	}
}

func TestSessionCodec_TokensAreUnique(t *testing.T) {
	codec, err := NewSessionCodec(testSecret, WithClock(fixedClock(time.Now())))
	require.NoError(t, err)

	id := Identity{Email: "a@x.com", Role: model.RoleDonor}
	first, err := codec.Issue(id)
	require.NoError(t, err)
	second, err := codec.Issue(id)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 3, len(strings.Split(first, ".")))
}

func validClaims(email string, role model.Role) *Claims {
	now := time.Now()
	return &Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func signedWith(t *testing.T, method jwt.SigningMethod, key interface{}, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func expiredToken(t *testing.T) string {
	t.Helper()
	codec, err := NewSessionCodec(testSecret, WithClock(fixedClock(time.Now().Add(-2*time.Hour))))
	require.NoError(t, err)
	token, err := codec.Issue(Identity{Email: "a@x.com", Role: model.RoleDonor})
	require.NoError(t, err)
	return token
}
