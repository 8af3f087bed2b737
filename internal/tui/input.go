package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

// Input turns terminal events into per-frame presses. It implements
// [session.InputSource]; EndFrame clears the presses once a frame has been
// processed.
type Input struct {
	layout *Layout
	cursor mines.Position

	buttons  tcell.ButtonMask
	pointer  bool
	pointed  mines.Position
	onBoard  bool
	reveal   bool
	flag     bool
	moved    bool
	autoplay bool
	restart  bool
	quit     bool
}

func NewInput(layout *Layout) *Input {
	return &Input{layout: layout}
}

// Cursor is the keyboard cursor. The renderer follows it.
func (in *Input) Cursor() *mines.Position {
	return &in.cursor
}

func (in *Input) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		in.handleKey(ev)
	case *tcell.EventMouse:
		in.handleMouse(ev)
	}
}

func (in *Input) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		in.quit = true
	case tcell.KeyUp:
		in.move(0, -1)
	case tcell.KeyDown:
		in.move(0, 1)
	case tcell.KeyLeft:
		in.move(-1, 0)
	case tcell.KeyRight:
		in.move(1, 0)
	case tcell.KeyEnter:
		in.press(true, false)
	case tcell.KeyRune:
		switch ev.Rune() {
		case ' ':
			in.press(true, false)
		case 'f', 'F':
			in.press(false, true)
		case 'a', 'A':
			in.autoplay = true
		case 'r', 'R':
			in.restart = true
		case 'q', 'Q':
			in.quit = true
		}
	}
}

func (in *Input) press(reveal, flag bool) {
	in.pointer = false
	in.reveal = in.reveal || reveal
	in.flag = in.flag || flag
}

func (in *Input) move(dx, dy int) {
	in.cursor.X = max(0, min(in.cursor.X+dx, in.layout.Width-1))
	in.cursor.Y = max(0, min(in.cursor.Y+dy, in.layout.Height-1))
	in.moved = true
}

// Presses fire when a button goes down, not while it is held.
func (in *Input) handleMouse(ev *tcell.EventMouse) {
	buttons := ev.Buttons()
	pressed := buttons &^ in.buttons
	in.buttons = buttons

	reveal := pressed&tcell.Button1 != 0
	flag := pressed&tcell.Button2 != 0
	if !reveal && !flag {
		return
	}

	in.pointer = true
	in.pointed, in.onBoard = in.layout.CellAt(ev.Position())
	if in.onBoard {
		in.cursor = in.pointed
		in.moved = true
	}
	in.reveal = in.reveal || reveal
	in.flag = in.flag || flag
}

func (in *Input) RevealPressed() bool { return in.reveal }
func (in *Input) FlagPressed() bool   { return in.flag }

func (in *Input) CellUnderCursor() (mines.Position, bool) {
	if in.pointer {
		return in.pointed, in.onBoard
	}
	ok := in.cursor.X < in.layout.Width && in.cursor.Y < in.layout.Height
	return in.cursor, ok
}

func (in *Input) Moved() bool          { return in.moved }
func (in *Input) AutoplayToggled() bool { return in.autoplay }
func (in *Input) RestartPressed() bool  { return in.restart }
func (in *Input) QuitPressed() bool     { return in.quit }

func (in *Input) EndFrame() {
	in.reveal, in.flag = false, false
	in.moved, in.autoplay, in.restart = false, false, false
}
