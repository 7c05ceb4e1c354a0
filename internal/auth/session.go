package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"donationhub/internal/model"
)

// SessionTTL is the lifetime of every issued session token.
const SessionTTL = time.Hour

var (
	// ErrMissingSecret is returned when the codec is built without a signing secret.
	ErrMissingSecret = errors.New("session signing secret is not configured")
	// ErrInvalidToken covers every verification failure: malformed, bad signature,
	// wrong algorithm, expired or carrying unknown claims.
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is what a verified session asserts about its holder.
type Identity struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Claims represents JWT claims.
type Claims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// SessionCodec signs and verifies session tokens with a shared secret.
type SessionCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// CodecOption customizes a SessionCodec.
type CodecOption func(*SessionCodec)

// WithClock replaces time.Now for issuing and verifying.
func WithClock(now func() time.Time) CodecOption {
	return func(c *SessionCodec) {
		c.now = now
	}
}

// NewSessionCodec creates a codec for the given secret. There is no default secret.
func NewSessionCodec(secret string, opts ...CodecOption) (*SessionCodec, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	c := &SessionCodec{
		secret: []byte(secret),
		ttl:    SessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for id that expires SessionTTL from now.
func (c *SessionCodec) Issue(id Identity) (string, error) {
	now := c.now()
	claims := &Claims{
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the identity inside the token.
// Any failure yields ErrInvalidToken so callers cannot tell the cases apart.
func (c *SessionCodec) Verify(tokenString string) (Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Identity{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Email == "" || !claims.Role.Valid() {
		return Identity{}, ErrInvalidToken
	}

	return Identity{Email: claims.Email, Role: claims.Role}, nil
}
