package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"donationhub/internal/auth"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/metrics"
	"donationhub/internal/model"
	"donationhub/internal/repository"
)

// DefaultStoreTimeout bounds each credential store round trip.
const DefaultStoreTimeout = 5 * time.Second

// Client-facing validation messages.
const (
	MsgSignupFieldsRequired = "All fields are required"
	MsgInvalidRole          = `Role must be either "donor" or "receiver"`
	MsgLoginFieldsRequired  = "Email and password are required"
	MsgPasswordTooLong      = "Password must be at most 72 bytes"
)

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

// SignupInput carries the fields of a signup request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string
	User  *model.User
}

// AuthService handles signup and login.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users        repository.UserRepository
	hasher       auth.Hasher
	tokens       TokenIssuer
	storeTimeout time.Duration
	now          func() time.Time

	// decoy is verified against for unknown emails so both login failure
	// paths spend the same hashing time.
	decoy string
}

// NewAuthService creates a new authentication service. A non-positive
// storeTimeout falls back to DefaultStoreTimeout.
func NewAuthService(users repository.UserRepository, hasher auth.Hasher, tokens TokenIssuer, storeTimeout time.Duration) AuthService {
	if storeTimeout <= 0 {
		storeTimeout = DefaultStoreTimeout
	}
	s := &authService{
		users:        users,
		hasher:       hasher,
		tokens:       tokens,
		storeTimeout: storeTimeout,
		now:          time.Now,
	}
	// A failed decoy hash only disables the timing decoy.
	s.decoy, _ = hasher.Hash("decoy-password-never-matches")
	return s
}

// NormalizeEmail is the canonical form under which accounts are keyed.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup registers a new account and signs a session for it.
func (s *authService) Signup(ctx context.Context, in SignupInput) (res *AuthResult, err error) {
	defer func() { metrics.AuthAttempt("signup", outcome(err)) }()

	email := NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || name == "" || in.Password == "" || in.Role == "" {
		return nil, apperrors.Validation(MsgSignupFieldsRequired)
	}
	if !in.Role.Valid() {
		return nil, apperrors.Validation(MsgInvalidRole)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperrors.Validation(MsgPasswordTooLong)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	_, err = s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, apperrors.ErrUserAlreadyExists
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         in.Role,
		CreatedAt:    s.now().UTC(),
	}
	// The store rejects the write if another signup got there first.
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return nil, apperrors.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.Issue(auth.Identity{Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and signs a session. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *authService) Login(ctx context.Context, email, password string) (res *AuthResult, err error) {
	defer func() { metrics.AuthAttempt("login", outcome(err)) }()

	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperrors.Validation(MsgLoginFieldsRequired)
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	// No stored account can carry a password bcrypt refuses to hash.
	if len(password) > auth.MaxPasswordBytes {
		s.spendDecoy(password)
		return nil, apperrors.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		s.spendDecoy(password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(auth.Identity{Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) spendDecoy(password string) {
	if s.decoy != "" {
		_, _ = s.hasher.Verify(s.decoy, password)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrValidation):
		return "invalid"
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		return "conflict"
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		return "rejected"
	default:
		return "error"
	}
}
