package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Kind int8

const (
	Empty Kind = iota
	Number
	Mine
)

func (k Kind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Number:
		return "number"
	case Mine:
		return "mine"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NoPosition is what the autoplay flag scan yields when it finds nothing to
// flag. It is never in bounds.
var NoPosition = Position{-1, -1}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.X, p.Y)
}

type Cell struct {
	Kind          Kind
	Position      Position
	AdjacentMines int
	Revealed      bool
	Exploded      bool
	Flagged       bool
}

func (c Cell) String() string {
	switch {
	case c.Flagged:
		return "*"
	case !c.Revealed:
		return " "
	case c.Kind == Mine && c.Exploded:
		return "X"
	case c.Kind == Mine:
		return "@"
	case c.Kind == Number:
		return strconv.Itoa(c.AdjacentMines)
	default:
		return "."
	}
}

/*
 * Cells are stored row by row in a single slice, so the cell at (x, y) lives
 * at index y*Width+x. The engine mutates them in place through that index.
 */
type Board struct {
	Width, Height int
	TotalMines    int
	FlaggedCount  int
	Cells         []Cell
}

func newBoard(width, height int) *Board {
	cells := make([]Cell, width*height)
	for y := range height {
		for x := range width {
			cells[y*width+x] = Cell{Kind: Empty, Position: Position{x, y}}
		}
	}
	return &Board{Width: width, Height: height, Cells: cells}
}

func (b *Board) InBounds(x, y int) bool {
	return 0 <= x && x < b.Width && 0 <= y && y < b.Height
}

func (b *Board) index(x, y int) int {
	return y*b.Width + x
}

func (b *Board) at(x, y int) *Cell {
	return &b.Cells[b.index(x, y)]
}

// neighbors returns the in-bounds 8-neighbourhood of (x, y), dx outer and dy
// inner, centre excluded.
func (b *Board) neighbors(x, y int) []int {
	indices := make([]int, 0, 8)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if b.InBounds(x+dx, y+dy) {
				indices = append(indices, b.index(x+dx, y+dy))
			}
		}
	}
	return indices
}

func (b *Board) adjacentMines(x, y int) (n int) {
	for _, i := range b.neighbors(x, y) {
		if b.Cells[i].Kind == Mine {
			n++
		}
	}
	return
}

func (b *Board) countMines() (n int) {
	for _, c := range b.Cells {
		if c.Kind == Mine {
			n++
		}
	}
	return
}

func (b *Board) String() string {
	var s strings.Builder
	for y := range b.Height {
		for x := range b.Width {
			fmt.Fprint(&s, b.Cells[b.index(x, y)].String()+" ")
		}
		fmt.Fprint(&s, "\n")
	}
	return s.String()
}
