package tui_test

import (
	"math/rand/v2"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/session"
	"github.com/vancomm/minesweeper-autoplay/internal/tui"
)

func TestLayoutCellAt(t *testing.T) {
	t.Parallel()

	layout := tui.Layout{Width: 4, Height: 3}
	tests := []struct {
		sx, sy int
		want   mines.Position
		ok     bool
	}{
		{1, 2, mines.Position{X: 0, Y: 0}, true},
		{2, 2, mines.Position{X: 0, Y: 0}, true},
		{3, 4, mines.Position{X: 1, Y: 2}, true},
		{8, 4, mines.Position{X: 3, Y: 2}, true},
		{0, 2, mines.NoPosition, false},
		{1, 1, mines.NoPosition, false},
		{9, 2, mines.NoPosition, false},
		{1, 5, mines.NoPosition, false},
	}
	for _, tt := range tests {
		got, ok := layout.CellAt(tt.sx, tt.sy)
		assert.Equal(t, tt.ok, ok, "%d,%d", tt.sx, tt.sy)
		assert.Equal(t, tt.want, got, "%d,%d", tt.sx, tt.sy)

		if ok {
			sx, sy := layout.ScreenPos(got)
			assert.Equal(t, tt.sy, sy)
			assert.LessOrEqual(t, sx, tt.sx)
		}
	}
}

func TestInputKeyboard(t *testing.T) {
	t.Parallel()

	in := tui.NewInput(&tui.Layout{Width: 3, Height: 3})
	in.Handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))

	assert.True(t, in.Moved())
	assert.True(t, in.FlagPressed())
	assert.False(t, in.RevealPressed())
	pos, ok := in.CellUnderCursor()
	require.True(t, ok)
	assert.Equal(t, mines.Position{X: 2, Y: 1}, pos, "the cursor stops at the edge")

	in.EndFrame()
	assert.False(t, in.FlagPressed())
	assert.False(t, in.Moved())

	in.Handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone))
	in.Handle(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
	assert.True(t, in.RevealPressed())
	assert.True(t, in.AutoplayToggled())
	assert.True(t, in.RestartPressed())
	assert.False(t, in.QuitPressed())

	in.Handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	assert.True(t, in.QuitPressed())
}

func TestInputMouse(t *testing.T) {
	t.Parallel()

	in := tui.NewInput(&tui.Layout{Width: 4, Height: 4})

	in.Handle(tcell.NewEventMouse(5, 3, tcell.Button1, tcell.ModNone))
	assert.True(t, in.RevealPressed())
	pos, ok := in.CellUnderCursor()
	require.True(t, ok)
	assert.Equal(t, mines.Position{X: 2, Y: 1}, pos)
	assert.Equal(t, pos, *in.Cursor())
	in.EndFrame()

	in.Handle(tcell.NewEventMouse(7, 3, tcell.Button1, tcell.ModNone))
	assert.False(t, in.RevealPressed(), "holding a button is not a new press")
	in.Handle(tcell.NewEventMouse(7, 3, tcell.ButtonNone, tcell.ModNone))

	in.Handle(tcell.NewEventMouse(40, 0, tcell.Button2, tcell.ModNone))
	assert.True(t, in.FlagPressed())
	_, ok = in.CellUnderCursor()
	assert.False(t, ok)
}

func TestRenderer(t *testing.T) {
	t.Parallel()

	screen, err := tui.NewSimulationScreen(40, 12)
	require.NoError(t, err)
	defer screen.Close()

	r := tui.NewRenderer(screen, session.Instructions("Enter", "f", "a", "r", "q"))
	s := session.New(r, rand.New(rand.NewPCG(1, 2)))

	// every cell is a mine
	require.NoError(t, s.Start(level.Spec{Name: "corner", Width: 4, Height: 4, MineCount: 16}))
	assert.Equal(t, tui.Layout{Width: 4, Height: 4}, *r.Layout())
	assert.Equal(t, '#', screen.Content(1, 2))
	assert.Equal(t, ':', screen.Content(0, 0))

	in := tui.NewInput(r.Layout())
	in.Handle(tcell.NewEventMouse(1, 2, tcell.Button1, tcell.ModNone))
	s.Update(0, in, autoplay.Manual)

	assert.Equal(t, 'X', screen.Content(1, 2))
	assert.Equal(t, "X(", string([]rune{screen.Content(0, 0), screen.Content(1, 0)}))
}

func TestRendererFlagAndCounter(t *testing.T) {
	t.Parallel()

	screen, err := tui.NewSimulationScreen(40, 12)
	require.NoError(t, err)
	defer screen.Close()

	r := tui.NewRenderer(screen, "")
	s := session.New(r, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, s.Start(level.Spec{Width: 5, Height: 4, MineCount: 3}))

	in := tui.NewInput(r.Layout())
	in.Handle(tcell.NewEventKey(tcell.KeyRune, 'f', tcell.ModNone))
	s.Update(0, in, autoplay.Manual)

	assert.Equal(t, 'F', screen.Content(1, 2))
	status := make([]rune, 0, 20)
	for x := range 20 {
		status = append(status, screen.Content(x, 0))
	}
	assert.Contains(t, string(status), "mines 002")
}
