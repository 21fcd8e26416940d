package main

import (
	"bigbrain/config"
	"bigbrain/internal/app"
	engineconfig "bigbrain/internal/config"
	"bigbrain/internal/transport/rest"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// @title			BigBrain API
// @version		1.0
// @description	Live quiz sessions: admins run games, players join and answer timed questions.
// @BasePath		/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg)
	engine := engineconfig.DefaultEngineConfig()
	ctx := context.Background()

	backend, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("failed to open store")
	}

	a, err := app.New(ctx, cfg, engine, backend, logger)
	if err != nil {
		backend.Store.Close()
		logger.Fatal().Err(err).Msg("failed to start")
	}

	resumed, err := a.Sessions.Resume(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("failed to resume sessions")
	} else if resumed > 0 {
		logger.Info().Int("sessions", resumed).Msg("resumed pending answer reveals")
	}

	router := rest.NewRouter(&rest.Container{
		AuthService:    a.Auth,
		GameService:    a.Games,
		SessionService: a.Sessions,
		PlayerService:  a.Players,
		WSHub:          a.Hub,
		Log:            logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.HTTPPort).
			Str("backend", cfg.StoreBackend).
			Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("ListenAndServe")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}
	a.Close()

	logger.Info().Msg("server exited")
}
