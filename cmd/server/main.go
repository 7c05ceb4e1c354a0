package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	_ "donationhub/docs" // swagger docs

	"donationhub/internal/auth"
	"donationhub/internal/config"
	"donationhub/internal/donationapi"
	"donationhub/internal/handler"
	"donationhub/internal/logger"
	"donationhub/internal/router"
	"donationhub/internal/service"
)

// @title Donation Hub API
// @version 1.0
// @description Signup, login and role-gated donation forwarding for donors and receivers.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		if usage, uerr := config.Usage(); uerr == nil {
			fmt.Fprintln(os.Stderr, usage)
		}
		os.Exit(1)
	}

	log := logger.New(cfg.Log, os.Stdout)
	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	codec, err := auth.NewSessionCodec(cfg.JWTSecret)
	if err != nil {
		return fmt.Errorf("session codec: %w", err)
	}

	users, closeStore, err := openUserStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.WithError(err).Warn("close user store")
		}
	}()

	authService := service.NewAuthService(users, auth.NewBcryptHasher(auth.BcryptCost), codec, cfg.StoreTimeout)
	donationService := service.NewDonationService(donationapi.New(cfg.Donation.BaseURL, cfg.Donation.Timeout, log))

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	router.Register(
		e,
		cfg,
		log,
		auth.NewGuard(codec, log),
		handler.NewAuthHandler(authService),
		handler.NewDonationHandler(donationService),
	)

	addr := ":" + cfg.ServerPort
	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":   addr,
			"env":    cfg.Env,
			"driver": cfg.StoreDriver,
		}).Info("HTTP server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server start: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
