package main

import (
	"flag"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/config"
	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

var log = autoplay.Log

var (
	games     int
	maxSteps  int
	seed      uint64
	levelPath string
	params    string
	policy    string
)

func init() {
	flag.IntVar(&games, "games", 100, "number of games to play")
	flag.IntVar(&maxSteps, "steps", 100_000, "give up on a game after this many actions")
	flag.Uint64Var(&seed, "seed", 1, "random seed")
	flag.StringVar(&levelPath, "level", "", "level file, overrides -params")
	flag.StringVar(&params, "params", "", "width:height:mines, random level per game if empty")
	flag.StringVar(&policy, "exhausted", "", "what to do when no safe cell is left: reseed or tie")
}

// setupLogging configures the bot logger and routes the engine's slog output
// through it, so both end up in the rotating file. The returned closer
// flushes the engine's writer.
func setupLogging() io.Closer {
	log.SetFormatter(&logrus.TextFormatter{ForceColors: true})
	log.SetLevel(logrus.InfoLevel)
	if config.Development() {
		log.SetLevel(logrus.DebugLevel)
	}

	engineLog := log.WriterLevel(logrus.DebugLevel)
	mines.Log = slog.New(slog.NewTextHandler(engineLog, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	path := config.AutoplayLogFile()
	if path == "" {
		return engineLog
	}
	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Level:      log.GetLevel(),
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		log.Fatal("unable to open log file: ", err)
	}
	log.AddHook(hook)
	return engineLog
}

func gameParams(rnd mines.Rand) (mines.GameParams, error) {
	switch {
	case levelPath != "":
		spec, err := level.Load(levelPath)
		if err != nil {
			return mines.GameParams{}, err
		}
		return spec.Params(), nil
	case params != "":
		p, err := mines.ParseSeed(params)
		if err != nil {
			return mines.GameParams{}, err
		}
		return *p, nil
	default:
		return mines.RandomParams(rnd), nil
	}
}

type tally map[mines.Status]int

func main() {
	_ = godotenv.Load()
	flag.Parse()
	engineLog := setupLogging()

	opts, err := config.AutoplayOptions()
	if err != nil {
		log.Fatal(err)
	}
	if policy != "" {
		p, ok := autoplay.ParseExhaustedPolicy(policy)
		if !ok {
			log.Fatalf("invalid -exhausted %q, want reseed or tie", policy)
		}
		opts = append(opts, autoplay.WithExhaustedPolicy(p))
	}

	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	results := tally{}
	for i := range games {
		p, err := gameParams(rnd)
		if err != nil {
			log.Fatal("unable to pick level: ", err)
		}
		board, err := mines.Generate(p, rnd)
		if err != nil {
			log.Fatal("unable to generate board: ", err)
		}
		game := mines.NewGame(board)
		bot := autoplay.New(game, rnd, opts...)
		steps := bot.Run(maxSteps)

		results[game.Status()]++
		log.WithFields(logrus.Fields{
			"game":   i + 1,
			"params": p.Seed(),
			"status": game.Status(),
			"steps":  len(steps),
		}).Info("game finished")
	}

	log.WithFields(logrus.Fields{
		"games":   games,
		"won":     results[mines.Won],
		"lost":    results[mines.Lost],
		"tied":    results[mines.Tied],
		"running": results[mines.Started],
	}).Info("done")

	engineLog.Close()
	if results[mines.Started] > 0 {
		os.Exit(1)
	}
}
