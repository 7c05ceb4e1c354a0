package auth

import (
	"context"
	"errors"
	"fmt"
	"slices"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	apperrors "donationhub/internal/errors"
	"donationhub/internal/metrics"
	"donationhub/internal/model"
)

const (
	identityContextKey = "identity"
	tokenRejectedKey   = "identity.rejected"
)

type identityKey struct{}

// Verifier turns a raw bearer token into a verified identity.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by the guard.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}

// CurrentIdentity returns the identity the guard attached to c.
func CurrentIdentity(c echo.Context) (Identity, bool) {
	id, ok := c.Get(identityContextKey).(Identity)
	return id, ok
}

// Guard gates handlers behind a verified session and, optionally, a role.
type Guard struct {
	verifier Verifier
	log      logrus.FieldLogger
}

// NewGuard creates a guard that verifies tokens with v.
func NewGuard(v Verifier, log logrus.FieldLogger) *Guard {
	return &Guard{verifier: v, log: log}
}

// Require returns middleware admitting only requests with a valid bearer token
// whose role is one of roles. With no roles any verified identity is admitted.
func (g *Guard) Require(roles ...model.Role) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  identityContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			id, err := g.verifier.Verify(token)
			if err != nil {
				c.Set(tokenRejectedKey, true)
				return nil, err
			}
			return id, nil
		},
		ErrorHandler: g.reject,
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		h := verify(g.authorize(roles, next))
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					g.log.WithFields(logrus.Fields{
						"request_id": c.Response().Header().Get(echo.HeaderXRequestID),
						"path":       c.Path(),
					}).Errorf("guarded handler panicked: %v", r)
					err = apperrors.Internal(fmt.Errorf("panic: %v", r))
				}
			}()
			return h(c)
		}
	}
}

// reject runs when no token could be extracted or the extracted one failed to verify.
func (g *Guard) reject(c echo.Context, err error) error {
	if rejected, _ := c.Get(tokenRejectedKey).(bool); rejected {
		metrics.GuardRejected("invalid_token")
		return apperrors.MapErrorToHTTP(apperrors.ErrInvalidSession).WithInternal(err)
	}
	metrics.GuardRejected("missing_token")
	return apperrors.MapErrorToHTTP(apperrors.ErrUnauthenticated).WithInternal(err)
}

func (g *Guard) authorize(roles []model.Role, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := CurrentIdentity(c)
		if !ok {
			return apperrors.Internal(errors.New("verified identity missing from context"))
		}
		if len(roles) > 0 && !slices.Contains(roles, id.Role) {
			metrics.GuardRejected("forbidden_role")
			return apperrors.MapErrorToHTTP(apperrors.ErrForbidden)
		}

		c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
		return next(c)
	}
}
