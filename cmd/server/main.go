package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/vancomm/minesweeper-autoplay/internal/app"
	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/database"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
	"github.com/vancomm/minesweeper-autoplay/internal/telemetry"
)

func main() {
	envErr := godotenv.Load()

	var handler slog.Handler = slog.NewJSONHandler(os.Stderr, nil)
	if config.Development() {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level: slog.LevelDebug,
		})
	}
	logger := slog.New(handler)
	mines.Log = logger
	if envErr != nil {
		logger.Debug(".env not loaded", slog.Any("error", envErr))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx, "minesweeper-server")
		if err != nil {
			logger.Warn("telemetry disabled", slog.Any("error", err))
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("failed to flush traces", slog.Any("error", err))
				}
			}()
		}
	}

	db, _, err := database.ConnectAndMigrate(ctx)
	if err != nil {
		logger.Error("failed to connect and migrate db", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	tokens, err := config.NewSessionTokens()
	if err != nil {
		logger.Error("failed to read session token config", slog.Any("error", err))
		os.Exit(1)
	}

	ws, err := config.NewWebSocket()
	if err != nil {
		logger.Error("failed to read ws config", slog.Any("error", err))
		os.Exit(1)
	}

	botOpts, err := config.AutoplayOptions()
	if err != nil {
		logger.Error("failed to read autoplay config", slog.Any("error", err))
		os.Exit(1)
	}

	var origins []string
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		origins = strings.Split(v, ",")
	}

	a := app.New(logger, repository.New(db), tokens, ws,
		app.WithBasePath(config.BasePath()),
		app.WithLevelsDir(config.LevelsDir()),
		app.WithAllowedOrigins(origins...),
		app.WithGameOptions(mines.WithRevealMinesOnEnd(config.RevealMinesOnEnd())),
		app.WithAutoplayOptions(botOpts...),
	)
	if err := a.Serve(ctx, config.Port()); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
