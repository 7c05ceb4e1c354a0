package router

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"donationhub/docs"
	"donationhub/internal/auth"
	"donationhub/internal/config"
	apperrors "donationhub/internal/errors"
	"donationhub/internal/handler"
	"donationhub/internal/logger"
	"donationhub/internal/model"
)

// Register wires routes and middleware. Every route is served both at the
// root and under /api.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log logrus.FieldLogger,
	guard *auth.Guard,
	authHandler *handler.AuthHandler,
	donationHandler *handler.DonationHandler,
) {
	e.HTTPErrorHandler = apperrors.Handler(log)
	e.Validator = handler.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(logger.RequestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	limitAuth := authRateLimiter(cfg.Limits)
	donorOnly := guard.Require(model.RoleDonor)
	receiverOnly := guard.Require(model.RoleReceiver)
	anyRole := guard.Require()

	for _, g := range []*echo.Group{e.Group(""), e.Group("/api")} {
		// Public routes
		g.POST("/signup", authHandler.Signup, limitAuth...)
		g.POST("/login", authHandler.Login, limitAuth...)

		// Session routes
		g.GET("/me", authHandler.Me, anyRole)
		g.POST("/donations/create", donationHandler.Create, donorOnly)
		g.GET("/donations/list", donationHandler.List, receiverOnly)
		g.PUT("/donations/status", donationHandler.UpdateStatus, receiverOnly)
	}
}

// authRateLimiter limits signup and login per client IP. A non-positive rate disables it.
func authRateLimiter(cfg config.Limits) []echo.MiddlewareFunc {
	if cfg.AuthRate <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(cfg.AuthRate),
			Burst:     cfg.AuthBurst,
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperrors.NewHTTPError(http.StatusForbidden, "Unable to identify client", apperrors.CodeForbidden).WithInternal(err)
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperrors.NewHTTPError(http.StatusTooManyRequests, "Too many requests", apperrors.CodeRateLimited).WithInternal(err)
		},
	})}
}
