package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/session"
)

// Board cells are drawn two columns wide below a status line and a blank
// row, so grid (x, y) sits at screen (originX+2x, originY+y).
const (
	originX   = 1
	originY   = 2
	cellWidth = 2
)

// Layout maps between screen and grid coordinates for the last drawn frame.
type Layout struct {
	Width, Height int
}

func (l Layout) CellAt(sx, sy int) (mines.Position, bool) {
	if sx < originX || sy < originY {
		return mines.NoPosition, false
	}
	x, y := (sx-originX)/cellWidth, sy-originY
	if x >= l.Width || y >= l.Height {
		return mines.NoPosition, false
	}
	return mines.Position{X: x, Y: y}, true
}

func (l Layout) ScreenPos(p mines.Position) (int, int) {
	return originX + p.X*cellWidth, originY + p.Y
}

// Renderer draws frames to a Screen. It implements [session.RenderSink].
type Renderer struct {
	screen *Screen
	layout *Layout
	cursor *mines.Position
	help   string
}

func NewRenderer(screen *Screen, help string) *Renderer {
	return &Renderer{screen: screen, layout: &Layout{}, help: help}
}

func (r *Renderer) Layout() *Layout {
	return r.layout
}

// FollowCursor highlights the cell at *p on every frame.
func (r *Renderer) FollowCursor(p *mines.Position) {
	r.cursor = p
}

func (r *Renderer) Render(f session.Frame) {
	r.layout.Width, r.layout.Height = f.Width, f.Height
	r.screen.Clear()

	r.drawText(0, 0, fmt.Sprintf("%s  mines %s  time %s  %s",
		face(f.Indicator), f.RemainingMines, f.Elapsed, modeLabel(f.Mode),
	), tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true))

	for y := range f.Height {
		for x := range f.Width {
			c := f.Cell(x, y)
			sx, sy := r.layout.ScreenPos(c.Position)
			style := cellStyle(c)
			if r.cursor != nil && *r.cursor == c.Position {
				style = style.Reverse(true)
			}
			r.screen.SetContent(sx, sy, glyph(c), style)
		}
	}

	helpY := originY + f.Height + 1
	r.drawText(0, helpY, f.Level, tcell.StyleDefault.Foreground(tcell.ColorGray))
	r.drawText(0, helpY+1, r.help, tcell.StyleDefault.Foreground(tcell.ColorGray))

	r.screen.Show()
}

func (r *Renderer) drawText(x, y int, msg string, style tcell.Style) {
	for i, ch := range []rune(msg) {
		r.screen.SetContent(x+i, y, ch, style)
	}
}

func face(i session.Indicator) string {
	switch i {
	case session.IndicatorWin:
		return "B)"
	case session.IndicatorLoss:
		return "X("
	case session.IndicatorTie:
		return ":|"
	default:
		return ":)"
	}
}

func modeLabel(m autoplay.Mode) string {
	if m == autoplay.Auto {
		return "[AUTO]"
	}
	return ""
}

func glyph(c mines.Cell) rune {
	switch {
	case c.Flagged:
		return 'F'
	case !c.Revealed:
		return '#'
	case c.Kind == mines.Mine && c.Exploded:
		return 'X'
	case c.Kind == mines.Mine:
		return '*'
	case c.Kind == mines.Number:
		return rune('0' + c.AdjacentMines)
	default:
		return '.'
	}
}

var numberColors = [...]tcell.Color{
	tcell.ColorGray,
	tcell.ColorBlue,
	tcell.ColorGreen,
	tcell.ColorRed,
	tcell.ColorNavy,
	tcell.ColorMaroon,
	tcell.ColorTeal,
	tcell.ColorWhite,
	tcell.ColorSilver,
}

func cellStyle(c mines.Cell) tcell.Style {
	switch {
	case c.Flagged:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case !c.Revealed:
		return tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	case c.Kind == mines.Mine && c.Exploded:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorRed)
	case c.Kind == mines.Mine:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case c.Kind == mines.Number:
		return tcell.StyleDefault.Foreground(numberColors[c.AdjacentMines])
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorGray)
	}
}
