package session

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

type Indicator int8

const (
	IndicatorDefault Indicator = iota
	IndicatorWin
	IndicatorLoss
	IndicatorTie
)

func (i Indicator) String() string {
	switch i {
	case IndicatorWin:
		return "win"
	case IndicatorLoss:
		return "loss"
	case IndicatorTie:
		return "tie"
	default:
		return "default"
	}
}

func indicatorOf(s mines.Status) Indicator {
	switch s {
	case mines.Won:
		return IndicatorWin
	case mines.Lost:
		return IndicatorLoss
	case mines.Tied:
		return IndicatorTie
	default:
		return IndicatorDefault
	}
}

// Frame is everything a renderer needs to redraw the game.
type Frame struct {
	Level          string
	Width, Height  int
	Cells          []mines.Cell
	Elapsed        string
	RemainingMines string
	Indicator      Indicator
	Mode           autoplay.Mode
}

func (f Frame) Cell(x, y int) mines.Cell {
	return f.Cells[y*f.Width+x]
}

type RenderSink interface {
	Render(Frame)
}

// InputSource reports edge-triggered presses for the current frame and maps
// the pointer to a cell.
type InputSource interface {
	RevealPressed() bool
	FlagPressed() bool
	CellUnderCursor() (mines.Position, bool)
}

type Result struct {
	Level   string
	Params  mines.GameParams
	Status  mines.Status
	Elapsed time.Duration
}

// Seconds is the elapsed time as shown on the counter.
func (r Result) Seconds() int {
	return seconds(r.Elapsed)
}

type ResultRecorder interface {
	RecordResult(Result)
}

type Option func(*Session)

func WithLogger(log *slog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

func WithRecorder(r ResultRecorder) Option {
	return func(s *Session) {
		s.recorder = r
	}
}

func WithGameOptions(opts ...mines.Option) Option {
	return func(s *Session) {
		s.gameOpts = append(s.gameOpts, opts...)
	}
}

func WithAutoplayOptions(opts ...autoplay.Option) Option {
	return func(s *Session) {
		s.botOpts = append(s.botOpts, opts...)
	}
}

type source int8

const (
	sourceRandom source = iota
	sourceFile
	sourceSpec
)

/*
 * Session hosts one game at a time for an interactive front end. It is the
 * single driver of the engine: in Manual mode it applies player input, in
 * Auto mode it ticks the autoplay controller, never both in one update.
 */
type Session struct {
	sink     RenderSink
	rnd      mines.Rand
	log      *slog.Logger
	recorder ResultRecorder
	gameOpts []mines.Option
	botOpts  []autoplay.Option

	source source
	path   string
	spec   level.Spec

	game     *mines.Game
	bot      *autoplay.Controller
	mode     autoplay.Mode
	elapsed  time.Duration
	recorded bool
}

func New(sink RenderSink, rnd mines.Rand, opts ...Option) *Session {
	s := &Session{
		sink: sink,
		rnd:  rnd,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Game() *mines.Game { return s.game }
func (s *Session) Autoplay() *autoplay.Controller { return s.bot }
func (s *Session) Level() level.Spec { return s.spec }
func (s *Session) Elapsed() time.Duration { return s.elapsed }

// LoadLevel starts a game from a level file. A missing, empty or malformed
// file is not fatal: a random level is played instead. A file that parses
// but describes an impossible board is reported.
func (s *Session) LoadLevel(path string) error {
	s.source, s.path = sourceFile, path
	spec, err := level.Load(path)
	if err != nil {
		s.log.Warn("unable to load level, generating a random one",
			"path", path, "err", err)
		return s.start(randomSpec(s.rnd))
	}
	return s.start(spec)
}

// Start plays the given level. Restart replays the same dimensions.
func (s *Session) Start(spec level.Spec) error {
	s.source, s.path = sourceSpec, ""
	return s.start(spec)
}

// StartRandom plays a random level. Restart picks a new one.
func (s *Session) StartRandom() error {
	s.source, s.path = sourceRandom, ""
	return s.start(randomSpec(s.rnd))
}

// Restart discards the current board and deals a new one from the same
// source. A level file is read again.
func (s *Session) Restart() error {
	switch s.source {
	case sourceFile:
		return s.LoadLevel(s.path)
	case sourceSpec:
		return s.start(s.spec)
	default:
		return s.StartRandom()
	}
}

func randomSpec(r mines.Rand) level.Spec {
	p := mines.RandomParams(r)
	return level.Spec{
		Name:      "random",
		Width:     p.Width,
		Height:    p.Height,
		MineCount: p.MineCount,
	}
}

func (s *Session) start(spec level.Spec) error {
	board, err := mines.Generate(spec.Params(), s.rnd)
	if err != nil {
		return fmt.Errorf("unable to start level %q: %w", spec.Name, err)
	}
	s.spec = spec
	s.game = mines.NewGame(board, s.gameOpts...)
	s.bot = autoplay.New(s.game, s.rnd, s.botOpts...)
	s.elapsed = 0
	s.recorded = false
	s.log.Info("level started", "level", spec.Name, "params", spec.Params().Seed())
	s.render()
	return nil
}

// Update advances the session by dt. The board is redrawn whenever it or the
// counters change.
func (s *Session) Update(dt time.Duration, input InputSource, mode autoplay.Mode) {
	if s.game == nil {
		return
	}

	changed := mode != s.mode
	s.mode = mode

	if s.game.Started() {
		before := seconds(s.elapsed)
		s.elapsed += dt
		changed = changed || seconds(s.elapsed) != before
	}

	switch mode {
	case autoplay.Manual:
		if input != nil && s.applyInput(input) {
			changed = true
		}
	case autoplay.Auto:
		if _, ok := s.bot.Tick(dt, mode); ok {
			changed = true
		}
	}

	if changed {
		s.checkOver()
		s.render()
	}
}

func (s *Session) applyInput(input InputSource) (changed bool) {
	reveal, flag := input.RevealPressed(), input.FlagPressed()
	if !reveal && !flag {
		return false
	}
	pos, ok := input.CellUnderCursor()
	if !ok {
		return false
	}

	if reveal {
		outcome, err := s.game.Reveal(pos.X, pos.Y)
		if err != nil {
			s.log.Debug("reveal ignored", "pos", pos, "err", err)
		}
		changed = changed || outcome != mines.NoOp
	}
	if flag {
		outcome, err := s.game.ToggleFlag(pos.X, pos.Y)
		if err != nil {
			s.log.Debug("flag ignored", "pos", pos, "err", err)
		}
		changed = changed || outcome.Changed
	}
	return changed
}

func (s *Session) checkOver() {
	if s.recorded || !s.game.Over() {
		return
	}
	s.recorded = true
	result := Result{
		Level:   s.spec.Name,
		Params:  s.game.Params(),
		Status:  s.game.Status(),
		Elapsed: s.elapsed,
	}
	s.log.Info("game over",
		"level", result.Level, "status", result.Status, "seconds", result.Seconds())
	if s.recorder != nil {
		s.recorder.RecordResult(result)
	}
}

func seconds(d time.Duration) int {
	return int(d.Round(time.Second) / time.Second)
}

// counter zero-pads n to three digits. More flags than mines give a negative
// count, shown as a minus sign and two digits ("-01").
func counter(n int) string {
	if n < 0 {
		return fmt.Sprintf("-%02d", -n)
	}
	return fmt.Sprintf("%03d", n)
}

func (s *Session) Frame() Frame {
	return Frame{
		Level:          s.spec.Name,
		Width:          s.game.Width(),
		Height:         s.game.Height(),
		Cells:          s.game.Snapshot(),
		Elapsed:        fmt.Sprintf("%03d", seconds(s.elapsed)),
		RemainingMines: counter(s.game.RemainingMines()),
		Indicator:      indicatorOf(s.game.Status()),
		Mode:           s.mode,
	}
}

func (s *Session) render() {
	if s.sink != nil {
		s.sink.Render(s.Frame())
	}
}

// Instructions is the help line shown next to the board.
func Instructions(reveal, flag, autoplay, restart, quit string) string {
	return fmt.Sprintf(
		"%s: reveal  %s: flag  %s: toggle autoplay  %s: restart  %s: quit",
		reveal, flag, autoplay, restart, quit,
	)
}
