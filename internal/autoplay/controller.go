package autoplay

import (
	"errors"
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

var Log = logrus.New()

const DefaultDelay = 500 * time.Millisecond

// Engine is everything the bot may touch. It never sees the board itself.
type Engine interface {
	Width() int
	Height() int
	Status() mines.Status
	Cell(x, y int) (mines.Cell, error)
	NeighborsOf(p mines.Position) []mines.Cell
	SafeCellsRemaining() int
	Reveal(x, y int) (mines.RevealOutcome, error)
	ToggleFlag(x, y int) (mines.FlagOutcome, error)
	DeclareTie() bool
}

// ExhaustedPolicy decides what happens once the game is over or no safe cell
// is left to open.
type ExhaustedPolicy int8

const (
	// Reseed queues a fresh Reveal so the bot keeps going on the next game.
	Reseed ExhaustedPolicy = iota
	// Tie ends a still running game as a tie and leaves the queue empty.
	Tie
)

func ParseExhaustedPolicy(s string) (ExhaustedPolicy, bool) {
	switch s {
	case "", "reseed":
		return Reseed, true
	case "tie":
		return Tie, true
	default:
		return Reseed, false
	}
}

type Option func(*Controller)

func WithDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.delay = d
	}
}

func WithExhaustedPolicy(p ExhaustedPolicy) Option {
	return func(c *Controller) {
		c.policy = p
	}
}

/*
 * Controller is a command queue with at most one action in flight. Tick first
 * takes an action off the queue (pre-execute), then accumulates elapsed time
 * until the delay has passed and executes it. Every executed action queues
 * the next one, so deciding a move and pacing its execution stay separate.
 */
type Controller struct {
	engine Engine
	rnd    mines.Rand
	delay  time.Duration
	policy ExhaustedPolicy

	current   *Action
	executing bool
	elapsed   time.Duration
	queue     deque.Deque[Action]
	history   []Step
}

func New(engine Engine, rnd mines.Rand, opts ...Option) *Controller {
	c := &Controller{
		engine: engine,
		rnd:    rnd,
		delay:  DefaultDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Reset()
	return c
}

// Reset drops any pending work and queues a single Reveal.
func (c *Controller) Reset() {
	c.current = nil
	c.executing = false
	c.elapsed = 0
	c.queue.Clear()
	c.queue.PushBack(Action{Kind: Reveal, Pos: mines.NoPosition})
}

func (c *Controller) Delay() time.Duration { return c.delay }

// Pending returns the action waiting for its delay to pass, if any.
func (c *Controller) Pending() (Action, bool) {
	if c.current == nil || !c.executing {
		return Action{}, false
	}
	return *c.current, true
}

func (c *Controller) Queued() int {
	return c.queue.Len()
}

func (c *Controller) History() []Step {
	steps := make([]Step, len(c.history))
	copy(steps, c.history)
	return steps
}

// Tick advances the bot by dt. It does nothing unless mode is Auto and the
// game is running. The returned bool reports whether an action executed.
func (c *Controller) Tick(dt time.Duration, mode Mode) (Step, bool) {
	if mode != Auto || c.engine.Status() != mines.Started {
		return Step{}, false
	}

	if c.current != nil && c.executing {
		c.elapsed += dt
		if c.elapsed < c.delay {
			return Step{}, false
		}
		step := c.execute()
		c.update()
		return step, true
	}

	c.dequeue()
	return Step{}, false
}

// Next executes the next queued action right away, ignoring the delay.
func (c *Controller) Next() (Step, bool) {
	if c.engine.Status() != mines.Started {
		return Step{}, false
	}
	if c.current == nil || !c.executing {
		if !c.dequeue() {
			return Step{}, false
		}
	}
	step := c.execute()
	c.update()
	return step, true
}

// Run executes up to n actions back to back and stops early once the game
// ends or the queue runs dry.
func (c *Controller) Run(n int) []Step {
	steps := make([]Step, 0, n)
	for range n {
		step, ok := c.Next()
		if !ok {
			break
		}
		steps = append(steps, step)
	}
	return steps
}

func (c *Controller) dequeue() bool {
	if c.queue.Len() == 0 {
		c.current = nil
		return false
	}
	next := c.queue.PopFront()
	c.current = &next
	c.executing = true
	c.elapsed = 0
	Log.WithField("action", next).Debug("pre-execute")
	return true
}

func (c *Controller) execute() Step {
	action := *c.current
	c.executing = false
	step := Step{Action: action}

	covered, ok := c.coveredCells()
	if !ok {
		step.Tied = c.engine.DeclareTie()
		Log.WithField("action", action).Info("no cell left to play, declaring a tie")
		c.history = append(c.history, step)
		return step
	}

	switch action.Kind {
	case Reveal:
		step.Action.Pos = covered[c.rnd.IntN(len(covered))]
		step.Reveal, step.Err = c.engine.Reveal(step.Action.Pos.X, step.Action.Pos.Y)
	case Flag:
		step.Flag, step.Err = c.engine.ToggleFlag(action.Pos.X, action.Pos.Y)
	}

	entry := Log.WithFields(logrus.Fields{
		"action": step.Action,
		"status": c.engine.Status(),
	})
	switch {
	case errors.Is(step.Err, mines.ErrOutOfBounds):
		entry.Debug("not a valid location for flagging")
	case step.Err != nil:
		entry.WithError(step.Err).Warn("action failed")
	default:
		entry.Debug("executed")
	}

	c.history = append(c.history, step)
	return step
}

func (c *Controller) update() {
	if c.engine.Status() != mines.Started || c.engine.SafeCellsRemaining() == 0 {
		c.current = nil
		c.elapsed = 0
		c.queue.Clear()
		if c.policy == Tie {
			if c.engine.DeclareTie() {
				Log.Info("no safe cell left, declaring a tie")
			}
			return
		}
		c.queue.PushBack(Action{Kind: Reveal, Pos: mines.NoPosition})
		return
	}

	if c.rnd.IntN(2) == 0 {
		c.queue.PushBack(Action{Kind: Reveal, Pos: mines.NoPosition})
	} else {
		c.queue.PushBack(Action{Kind: Flag, Pos: c.flagTarget()})
	}
}

// coveredCells lists the cells a Reveal may pick: not revealed and not
// flagged.
func (c *Controller) coveredCells() ([]mines.Position, bool) {
	var covered []mines.Position
	for y := range c.engine.Height() {
		for x := range c.engine.Width() {
			cell, err := c.engine.Cell(x, y)
			if err != nil {
				continue
			}
			if !cell.Revealed && !cell.Flagged {
				covered = append(covered, cell.Position)
			}
		}
	}
	return covered, len(covered) > 0
}

// flagTarget scans revealed numbers row by row and returns the first covered,
// unflagged neighbour of the first number that has one.
func (c *Controller) flagTarget() mines.Position {
	for y := range c.engine.Height() {
		for x := range c.engine.Width() {
			cell, err := c.engine.Cell(x, y)
			if err != nil || cell.Kind != mines.Number || !cell.Revealed {
				continue
			}
			for _, n := range c.engine.NeighborsOf(cell.Position) {
				if !n.Revealed && !n.Flagged {
					return n.Position
				}
			}
		}
	}
	return mines.NoPosition
}
