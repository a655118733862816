package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/osasdev/osas/internal/bootstrap"
)

// @title OSAS API
// @version 1.0
// @description API for the Office of Student Affairs and Services administration system

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	cfg, lgr, err := bootstrap.LoadConfigAndSetupLogger()
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to load configuration")
		os.Exit(1)
	}

	database, err := bootstrap.SetupDatabase(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to set up database")
		os.Exit(1)
	}
	defer database.Pool.Close()

	deps, err := bootstrap.BuildDependencies(cfg, database, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to build application dependencies")
		os.Exit(1)
	}
	router := bootstrap.SetupRouter(cfg, deps, lgr)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		lgr.Info().Str("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lgr.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	lgr.Info().Msg("Shutdown signal received, stopping server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lgr.Error().Err(err).Msg("Graceful shutdown failed")
		os.Exit(1)
	}

	lgr.Info().Msg("Server stopped")
}
