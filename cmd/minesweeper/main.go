package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"hash/maphash"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/session"
	"github.com/vancomm/minesweeper-autoplay/internal/telemetry"
	"github.com/vancomm/minesweeper-autoplay/internal/tui"
)

var (
	levelPath string
	logPath   string
	startAuto bool
)

func init() {
	flag.StringVar(&levelPath, "level", "", "level file to play, random level if empty")
	flag.StringVar(&logPath, "log", "", "write logs to this file")
	flag.BoolVar(&startAuto, "auto", false, "start with autoplay on")
}

// resultLogger records finished games in the log.
type resultLogger struct {
	logger *slog.Logger
}

func (r resultLogger) RecordResult(res session.Result) {
	r.logger.Info("game over",
		slog.String("level", res.Level),
		slog.String("params", res.Params.Seed()),
		slog.String("status", res.Status.String()),
		slog.Int("seconds", res.Seconds()),
	)
}

func newLogger() (*slog.Logger, func(), error) {
	if logPath == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	var handler slog.Handler = slog.NewJSONHandler(f, nil)
	if config.Development() {
		handler = tint.NewHandler(f, &tint.Options{Level: slog.LevelDebug, NoColor: true})
	}
	return slog.New(handler), func() { f.Close() }, nil
}

func run(ctx context.Context, logger *slog.Logger) error {
	botOpts, err := config.AutoplayOptions()
	if err != nil {
		return err
	}

	screen, err := tui.NewScreen()
	if err != nil {
		return fmt.Errorf("unable to open terminal: %w", err)
	}
	defer screen.Close()

	renderer := tui.NewRenderer(screen, session.Instructions(
		"enter/click", "f/right click", "a", "r", "q",
	))
	input := tui.NewInput(renderer.Layout())
	renderer.FollowCursor(input.Cursor())

	rnd := rand.New(rand.NewPCG(new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64()))
	sess := session.New(renderer, rnd,
		session.WithLogger(logger),
		session.WithRecorder(resultLogger{logger}),
		session.WithGameOptions(mines.WithRevealMinesOnEnd(config.RevealMinesOnEnd())),
		session.WithAutoplayOptions(botOpts...),
	)
	if levelPath != "" {
		err = sess.LoadLevel(levelPath)
	} else {
		err = sess.StartRandom()
	}
	if err != nil {
		return err
	}

	mode := autoplay.Manual
	if startAuto {
		mode = autoplay.Auto
	}
	a := &tui.App{
		Screen:   screen,
		Renderer: renderer,
		Input:    input,
		Session:  sess,
		Tick:     tui.DefaultTick,
		Mode:     mode,
	}
	return a.Run(ctx)
}

func main() {
	_ = godotenv.Load()
	flag.Parse()

	logger, closeLog, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "unable to open log file:", err)
		os.Exit(1)
	}
	defer closeLog()
	mines.Log = logger
	autoplay.Log.SetOutput(io.Discard)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if telemetry.Enabled() {
		if shutdown, err := telemetry.Setup(ctx, "minesweeper-tui"); err != nil {
			logger.Warn("telemetry disabled", slog.Any("error", err))
		} else {
			defer shutdown(context.Background())
		}
	}

	if err := run(ctx, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("game stopped", slog.Any("error", err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
