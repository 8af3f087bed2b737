package autoplay

import (
	"fmt"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

type Mode int8

const (
	Manual Mode = iota
	Auto
)

func (m Mode) String() string {
	if m == Auto {
		return "auto"
	}
	return "manual"
}

type ActionKind int8

const (
	Reveal ActionKind = iota
	Flag
)

func (k ActionKind) String() string {
	switch k {
	case Reveal:
		return "reveal"
	case Flag:
		return "flag"
	default:
		return fmt.Sprintf("action(%d)", int8(k))
	}
}

// Action is a pending bot move. Reveal picks its cell when it runs, so its
// Pos is only meaningful once executed.
type Action struct {
	Kind ActionKind
	Pos  mines.Position
}

func (a Action) String() string {
	if a.Kind == Reveal && a.Pos == mines.NoPosition {
		return "reveal ?"
	}
	return a.Kind.String() + " " + a.Pos.String()
}

// Step is the record of one executed action.
type Step struct {
	Action Action
	Reveal mines.RevealOutcome
	Flag   mines.FlagOutcome
	Tied   bool
	Err    error
}
