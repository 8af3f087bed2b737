package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, width, height int, mines []Position, opts ...Option) *Game {
	t.Helper()
	b, err := BoardFromMines(width, height, mines)
	require.NoError(t, err)
	return NewGame(b, opts...)
}

func wall(x, height int) (mines []Position) {
	for y := range height {
		mines = append(mines, Position{x, y})
	}
	return
}

func TestRevealEmptyBoardWinsImmediately(t *testing.T) {
	b, err := Generate(GameParams{Width: 4, Height: 4}, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	g := NewGame(b)

	outcome, err := g.Reveal(2, 1)
	require.NoError(t, err)

	assert.Equal(t, Win, outcome)
	assert.Equal(t, Won, g.Status())
	assert.True(t, g.Over())
	for _, c := range g.Snapshot() {
		assert.True(t, c.Revealed)
	}
}

func TestFloodFillStopsAtNumbers(t *testing.T) {
	g := newTestGame(t, 5, 5, wall(2, 5))

	outcome, err := g.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Continue, outcome)

	for _, c := range g.Snapshot() {
		switch c.Position.X {
		case 0:
			assert.Equal(t, Empty, c.Kind)
			assert.True(t, c.Revealed, c.Position.String())
		case 1:
			assert.Equal(t, Number, c.Kind)
			assert.True(t, c.Revealed, c.Position.String())
		default:
			assert.False(t, c.Revealed, c.Position.String())
		}
	}
	assert.Equal(t, Started, g.Status())
}

func TestFloodFillIsOrthogonal(t *testing.T) {
	/*
	 * . . 1 *
	 * . . 1 1
	 * 1 1 . .   <- unreachable: 2:2 is only diagonally adjacent to 1:1
	 * * 1 . .
	 */
	g := newTestGame(t, 4, 4, []Position{{3, 0}, {0, 3}})
	_, err := g.Reveal(0, 0)
	require.NoError(t, err)

	c, _ := g.Cell(2, 2)
	assert.Equal(t, Empty, c.Kind)
	assert.False(t, c.Revealed)

	for _, p := range []Position{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 0}, {2, 1}, {0, 2}, {1, 2}} {
		c, _ := g.Cell(p.X, p.Y)
		assert.True(t, c.Revealed, p.String())
	}
}

func TestFloodFillNeverRevealsMines(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	sweeps := 30
	if testing.Short() {
		sweeps = 3
	}

	for range sweeps {
		b, err := Generate(GameParams{Width: 16, Height: 16, MineCount: 30}, r)
		require.NoError(t, err)

		for start, sc := range b.Cells {
			if sc.Kind != Empty {
				continue
			}
			g, err := DecodeGame(mustBytes(t, NewGame(b)))
			require.NoError(t, err)

			_, err = g.Reveal(sc.Position.X, sc.Position.Y)
			require.NoError(t, err)

			cells := g.Snapshot()
			assert.True(t, cells[start].Revealed)
			for _, c := range cells {
				if c.Kind == Mine {
					require.False(t, c.Revealed, "mine revealed at %s", c.Position)
				}
				if c.Kind != Empty || !c.Revealed {
					continue
				}
				// The region is closed: every orthogonal neighbour of a
				// revealed empty cell is revealed too.
				for _, d := range []Position{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
					x, y := c.Position.X+d.X, c.Position.Y+d.Y
					if n, err := g.Cell(x, y); err == nil {
						assert.True(t, n.Revealed, "%s left covered next to %s", n.Position, c.Position)
					}
				}
			}
		}
	}
}

func TestFloodFillLargeBoard(t *testing.T) {
	g := newTestGame(t, 64, 64, []Position{{63, 63}})
	outcome, err := g.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Win, outcome)
	assert.Zero(t, g.SafeCellsRemaining())
}

func TestRevealNumber(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}, {2, 2}})

	outcome, err := g.Reveal(1, 1)
	require.NoError(t, err)
	assert.Equal(t, Continue, outcome)

	c, _ := g.Cell(1, 1)
	assert.True(t, c.Revealed)
	assert.Equal(t, 2, c.AdjacentMines)
	assert.Equal(t, 6, g.SafeCellsRemaining())
}

func TestRevealMineLoses(t *testing.T) {
	g := newTestGame(t, 3, 1, []Position{{2, 0}})
	_, err := g.ToggleFlag(0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, g.FlaggedCount())

	outcome, err := g.Reveal(2, 0)
	require.NoError(t, err)

	assert.Equal(t, Loss, outcome)
	assert.Equal(t, Lost, g.Status())
	assert.Zero(t, g.FlaggedCount())
	assert.False(t, g.CheckWin())
	assert.Equal(t, Lost, g.Status())

	c, _ := g.Cell(2, 0)
	assert.True(t, c.Revealed)
	assert.True(t, c.Exploded)
}

func TestRevealMineNeverWins(t *testing.T) {
	// Opening the last safe cell wins, opening a mine with safe cells left loses.
	g := newTestGame(t, 2, 1, []Position{{1, 0}})
	outcome, err := g.Reveal(0, 0)
	require.NoError(t, err)
	require.Equal(t, Win, outcome)

	g = newTestGame(t, 3, 1, []Position{{1, 0}})
	_, err = g.Reveal(0, 0)
	require.NoError(t, err)

	outcome, err = g.Reveal(1, 0)
	require.NoError(t, err)
	assert.Equal(t, Loss, outcome)
	assert.Equal(t, Lost, g.Status())
}

func TestRevealMinesOnEnd(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}, {2, 2}}, WithRevealMinesOnEnd(true))
	_, err := g.Reveal(0, 0)
	require.NoError(t, err)

	c, _ := g.Cell(2, 2)
	assert.True(t, c.Revealed)
	assert.False(t, c.Exploded)

	g = newTestGame(t, 3, 3, []Position{{0, 0}, {2, 2}})
	_, err = g.Reveal(0, 0)
	require.NoError(t, err)

	c, _ = g.Cell(2, 2)
	assert.False(t, c.Revealed)
}

func TestRevealFlaggedCellIsNoOp(t *testing.T) {
	g := newTestGame(t, 4, 4, []Position{{3, 3}})
	_, err := g.ToggleFlag(0, 0)
	require.NoError(t, err)
	before := g.Snapshot()

	outcome, err := g.Reveal(0, 0)
	require.NoError(t, err)

	assert.Equal(t, NoOp, outcome)
	assert.Equal(t, before, g.Snapshot())
	assert.Equal(t, 1, g.FlaggedCount())
	assert.Equal(t, Started, g.Status())
}

func TestRevealTwiceIsNoOp(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}})
	outcome, err := g.Reveal(1, 1)
	require.NoError(t, err)
	require.Equal(t, Continue, outcome)

	outcome, err = g.Reveal(1, 1)
	require.NoError(t, err)
	assert.Equal(t, NoOp, outcome)
}

func TestOutOfBounds(t *testing.T) {
	g := newTestGame(t, 4, 4, []Position{{1, 1}})

	for _, p := range []Position{NoPosition, {4, 0}, {0, 4}, {-1, 2}} {
		outcome, err := g.Reveal(p.X, p.Y)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, NoOp, outcome)

		flag, err := g.ToggleFlag(p.X, p.Y)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.False(t, flag.Changed)

		_, err = g.Cell(p.X, p.Y)
		assert.ErrorIs(t, err, ErrOutOfBounds)
		assert.Nil(t, g.NeighborsOf(p))
	}
	assert.Zero(t, g.FlaggedCount())
	assert.Equal(t, Started, g.Status())
}

func TestToggleFlag(t *testing.T) {
	g := newTestGame(t, 4, 4, []Position{{1, 1}, {2, 2}})

	outcome, err := g.ToggleFlag(3, 0)
	require.NoError(t, err)
	assert.Equal(t, FlagOutcome{Changed: true, Flagged: true, RemainingMines: 1}, outcome)
	assert.Equal(t, 1, g.FlaggedCount())

	outcome, err = g.ToggleFlag(3, 0)
	require.NoError(t, err)
	assert.Equal(t, FlagOutcome{Changed: true, Flagged: false, RemainingMines: 2}, outcome)
	assert.Zero(t, g.FlaggedCount())

	c, _ := g.Cell(3, 0)
	assert.False(t, c.Flagged)
}

func TestToggleFlagOnRevealedIsNoOp(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}})
	_, err := g.Reveal(1, 1)
	require.NoError(t, err)

	outcome, err := g.ToggleFlag(1, 1)
	require.NoError(t, err)
	assert.False(t, outcome.Changed)
	assert.False(t, outcome.Flagged)
	assert.Zero(t, g.FlaggedCount())

	c, _ := g.Cell(1, 1)
	assert.False(t, c.Flagged)
}

func TestRemainingMinesCanGoNegative(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}})
	for _, p := range []Position{{1, 0}, {2, 0}} {
		_, err := g.ToggleFlag(p.X, p.Y)
		require.NoError(t, err)
	}
	assert.Equal(t, -1, g.RemainingMines())
}

func TestCheckWin(t *testing.T) {
	g := newTestGame(t, 3, 1, []Position{{1, 0}})
	assert.False(t, g.CheckWin())

	_, err := g.ToggleFlag(1, 0)
	require.NoError(t, err)

	outcome, err := g.Reveal(0, 0)
	require.NoError(t, err)
	assert.Equal(t, Continue, outcome)
	assert.False(t, g.CheckWin())

	outcome, err = g.Reveal(2, 0)
	require.NoError(t, err)
	assert.Equal(t, Win, outcome)
	assert.True(t, g.CheckWin())
	assert.Equal(t, Won, g.Status())
	assert.Zero(t, g.FlaggedCount())
	assert.False(t, g.Started())
}

func TestFinishedGameIgnoresMoves(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}})
	_, err := g.Reveal(0, 0)
	require.NoError(t, err)
	require.Equal(t, Lost, g.Status())
	before := g.Snapshot()

	outcome, err := g.Reveal(2, 2)
	require.NoError(t, err)
	assert.Equal(t, NoOp, outcome)

	flag, err := g.ToggleFlag(2, 2)
	require.NoError(t, err)
	assert.False(t, flag.Changed)

	assert.False(t, g.DeclareTie())
	assert.Equal(t, before, g.Snapshot())
}

func TestDeclareTie(t *testing.T) {
	g := newTestGame(t, 3, 3, []Position{{0, 0}}, WithRevealMinesOnEnd(true))
	_, err := g.ToggleFlag(1, 1)
	require.NoError(t, err)

	assert.True(t, g.DeclareTie())
	assert.Equal(t, Tied, g.Status())
	assert.Zero(t, g.FlaggedCount())

	c, _ := g.Cell(0, 0)
	assert.True(t, c.Revealed)
	assert.False(t, c.Exploded)
}

func TestNeighborsOf(t *testing.T) {
	g := newTestGame(t, 3, 3, nil)

	corner := g.NeighborsOf(Position{0, 0})
	assert.Equal(t, []Position{{0, 1}, {1, 0}, {1, 1}}, positions(corner))

	centre := g.NeighborsOf(Position{1, 1})
	assert.Equal(t, []Position{
		{0, 0}, {0, 1}, {0, 2},
		{1, 0}, {1, 2},
		{2, 0}, {2, 1}, {2, 2},
	}, positions(centre))

	edge := g.NeighborsOf(Position{2, 1})
	assert.Len(t, edge, 5)
}

func TestGameBytes(t *testing.T) {
	g := newTestGame(t, 5, 5, wall(2, 5), WithRevealMinesOnEnd(true))
	_, err := g.Reveal(0, 0)
	require.NoError(t, err)
	_, err = g.ToggleFlag(4, 4)
	require.NoError(t, err)

	decoded, err := DecodeGame(mustBytes(t, g))
	require.NoError(t, err)

	assert.Equal(t, g.Snapshot(), decoded.Snapshot())
	assert.Equal(t, g.Status(), decoded.Status())
	assert.Equal(t, g.FlaggedCount(), decoded.FlaggedCount())
	assert.Equal(t, g.Params(), decoded.Params())

	_, err = DecodeGame([]byte("garbage"))
	assert.Error(t, err)
}

func mustBytes(t *testing.T, g *Game) []byte {
	t.Helper()
	b, err := g.Bytes()
	require.NoError(t, err)
	return b
}

func positions(cells []Cell) []Position {
	ps := make([]Position, len(cells))
	for i, c := range cells {
		ps[i] = c.Position
	}
	return ps
}
