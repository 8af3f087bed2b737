package mines

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"log/slog"

	"github.com/gammazero/deque"
)

var Log *slog.Logger = slog.Default()

type Status int8

const (
	NotStarted Status = iota
	Started
	Won
	Lost
	Tied
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Started:
		return "started"
	case Won:
		return "won"
	case Lost:
		return "lost"
	case Tied:
		return "tied"
	default:
		return fmt.Sprintf("status(%d)", int8(s))
	}
}

type RevealOutcome int8

const (
	NoOp RevealOutcome = iota
	Continue
	Win
	Loss
)

func (o RevealOutcome) String() string {
	switch o {
	case NoOp:
		return "no-op"
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return fmt.Sprintf("outcome(%d)", int8(o))
	}
}

type FlagOutcome struct {
	Changed        bool
	Flagged        bool
	RemainingMines int
}

type Option func(*Game)

// WithRevealMinesOnEnd uncovers every mine once the game is won, lost or
// tied.
func WithRevealMinesOnEnd(reveal bool) Option {
	return func(g *Game) {
		g.revealMinesOnEnd = reveal
	}
}

// Game owns a board for one session and is the only thing that mutates it.
type Game struct {
	board            *Board
	status           Status
	revealMinesOnEnd bool
}

func NewGame(board *Board, opts ...Option) *Game {
	g := &Game{board: board, status: Started}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Status() Status { return g.status }
func (g *Game) Started() bool  { return g.status == Started }
func (g *Game) Width() int      { return g.board.Width }
func (g *Game) Height() int     { return g.board.Height }
func (g *Game) TotalMines() int { return g.board.TotalMines }

func (g *Game) Over() bool {
	return g.status == Won || g.status == Lost || g.status == Tied
}

func (g *Game) FlaggedCount() int {
	return g.board.FlaggedCount
}

func (g *Game) RemainingMines() int {
	return g.board.TotalMines - g.board.FlaggedCount
}

func (g *Game) Params() GameParams {
	return GameParams{g.board.Width, g.board.Height, g.board.TotalMines}
}

func (g *Game) Cell(x, y int) (Cell, error) {
	if !g.board.InBounds(x, y) {
		return Cell{}, ErrOutOfBounds
	}
	return *g.board.at(x, y), nil
}

// Snapshot returns a copy of the grid, row by row.
func (g *Game) Snapshot() []Cell {
	cells := make([]Cell, len(g.board.Cells))
	copy(cells, g.board.Cells)
	return cells
}

func (g *Game) NeighborsOf(p Position) []Cell {
	if !g.board.InBounds(p.X, p.Y) {
		return nil
	}
	indices := g.board.neighbors(p.X, p.Y)
	cells := make([]Cell, len(indices))
	for k, i := range indices {
		cells[k] = g.board.Cells[i]
	}
	return cells
}

// SafeCellsRemaining counts non-mine cells that are still covered.
func (g *Game) SafeCellsRemaining() (n int) {
	for _, c := range g.board.Cells {
		if c.Kind != Mine && !c.Revealed {
			n++
		}
	}
	return
}

func (g *Game) Reveal(x, y int) (RevealOutcome, error) {
	if !g.board.InBounds(x, y) {
		return NoOp, ErrOutOfBounds
	}
	if g.status != Started {
		return NoOp, nil
	}
	c := g.board.at(x, y)
	if c.Revealed || c.Flagged {
		return NoOp, nil
	}

	switch c.Kind {
	case Mine:
		g.explode(c)
		return Loss, nil
	case Empty:
		g.revealEmptyRegion(x, y)
	default:
		c.Revealed = true
	}

	if g.CheckWin() {
		return Win, nil
	}
	return Continue, nil
}

func (g *Game) ToggleFlag(x, y int) (FlagOutcome, error) {
	if !g.board.InBounds(x, y) {
		return FlagOutcome{RemainingMines: g.RemainingMines()}, ErrOutOfBounds
	}
	c := g.board.at(x, y)
	if g.status != Started || c.Revealed {
		return FlagOutcome{
			Flagged:        c.Flagged,
			RemainingMines: g.RemainingMines(),
		}, nil
	}

	c.Flagged = !c.Flagged
	if c.Flagged {
		g.board.FlaggedCount++
	} else {
		g.board.FlaggedCount--
	}
	return FlagOutcome{
		Changed:        true,
		Flagged:        c.Flagged,
		RemainingMines: g.RemainingMines(),
	}, nil
}

// CheckWin reports whether every non-mine cell is revealed. The first time it
// does so on a running game, the game is marked as won.
func (g *Game) CheckWin() bool {
	if g.SafeCellsRemaining() > 0 {
		return false
	}
	if g.status == Started {
		g.finish(Won)
	}
	return true
}

// DeclareTie ends a running game without a winner. It is used by the
// autoplay controller when it runs out of moves it can make.
func (g *Game) DeclareTie() bool {
	if g.status != Started {
		return false
	}
	g.finish(Tied)
	return true
}

func (g *Game) explode(c *Cell) {
	c.Revealed = true
	c.Exploded = true
	g.finish(Lost)
}

func (g *Game) finish(status Status) {
	g.status = status
	g.board.FlaggedCount = 0
	if g.revealMinesOnEnd {
		g.revealMines()
	}
	Log.Debug("game over", "status", status, "params", g.Params().Seed())
}

func (g *Game) revealMines() {
	for i := range g.board.Cells {
		if g.board.Cells[i].Kind == Mine {
			g.board.Cells[i].Revealed = true
		}
	}
}

/*
 * Open the contiguous zero region around (x, y). Every cell taken off the
 * work list is revealed; only Empty cells push their four orthogonal
 * neighbours, so Number cells form the border of the region. Revealed doubles
 * as the visited marker, and mines are never pushed.
 */
func (g *Game) revealEmptyRegion(x, y int) {
	var todo deque.Deque[int]

	start := g.board.at(x, y)
	start.Revealed = true
	todo.PushBack(g.board.index(x, y))

	for todo.Len() > 0 {
		i := todo.PopFront()
		c := &g.board.Cells[i]
		if c.Kind != Empty {
			continue
		}
		cx, cy := c.Position.X, c.Position.Y
		for _, d := range [4]Position{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
			nx, ny := cx+d.X, cy+d.Y
			if !g.board.InBounds(nx, ny) {
				continue
			}
			n := g.board.at(nx, ny)
			if n.Revealed || n.Flagged || n.Kind == Mine {
				continue
			}
			n.Revealed = true
			todo.PushBack(g.board.index(nx, ny))
		}
	}
}

type gameState struct {
	Board            Board
	Status           Status
	RevealMinesOnEnd bool
}

// [Game] implements [gob.GobEncoder]
func (g *Game) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gameState{
		Board:            *g.board,
		Status:           g.status,
		RevealMinesOnEnd: g.revealMinesOnEnd,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// [Game] implements [gob.GobDecoder]
func (g *Game) GobDecode(data []byte) error {
	var state gameState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}
	g.board = &state.Board
	g.status = state.Status
	g.revealMinesOnEnd = state.RevealMinesOnEnd
	return nil
}

func (g *Game) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeGame(buf []byte) (*Game, error) {
	var g Game
	if err := gob.NewDecoder(bytes.NewReader(buf)).Decode(&g); err != nil {
		return nil, fmt.Errorf("unable to decode game state: %w", err)
	}
	if g.board == nil || len(g.board.Cells) != g.board.Width*g.board.Height {
		return nil, fmt.Errorf("unable to decode game state: malformed board")
	}
	return &g, nil
}
