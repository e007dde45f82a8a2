package main

import (
	"context"
	"fmt"
	"net/http"

	"soloq-tracker/internal/config"
	"soloq-tracker/internal/constants"
	fxmodules "soloq-tracker/internal/fx"
	"soloq-tracker/internal/middleware"
	"soloq-tracker/internal/server"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func newHandler(playerServer *server.PlayerServer, logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	connectPath, connectHandler := playerServer.ConnectHandler()
	mux.Handle(connectPath, connectHandler)
	mux.HandleFunc(server.PlayerReportPath, playerServer.HandleGetPlayer)
	mux.HandleFunc(server.HealthPath, playerServer.HandleHealth)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	return middleware.RequestID(logger)(middleware.Recover(logger)(c.Handler(mux)))
}

func runServer(
	lc fx.Lifecycle,
	playerServer *server.PlayerServer,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: newHandler(playerServer, logger),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
