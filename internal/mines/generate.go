package mines

import "fmt"

// Rand is the randomness generation needs. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
}

const (
	MinRandomSize = 4
	MaxRandomSize = 32 // exclusive
)

// RandomParams picks a level for when no level file is available: width and
// height in [4, 32), mine count in [1, width*height).
func RandomParams(r Rand) GameParams {
	width := MinRandomSize + r.IntN(MaxRandomSize-MinRandomSize)
	height := MinRandomSize + r.IntN(MaxRandomSize-MinRandomSize)
	return GameParams{
		Width:     width,
		Height:    height,
		MineCount: 1 + r.IntN(width*height-1),
	}
}

func Generate(p GameParams, r Rand) (*Board, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	board := newBoard(p.Width, p.Height)
	placeMines(board, p.MineCount, r)
	board.TotalMines = p.MineCount
	fillNumbers(board)
	return board, nil
}

// BoardFromMines builds a board with mines at exactly the given positions.
func BoardFromMines(width, height int, mines []Position) (*Board, error) {
	p := GameParams{Width: width, Height: height, MineCount: len(mines)}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	board := newBoard(width, height)
	for _, m := range mines {
		if !board.InBounds(m.X, m.Y) {
			return nil, invalidSpec(p, fmt.Sprintf("mine %s out of bounds", m))
		}
		c := board.at(m.X, m.Y)
		if c.Kind == Mine {
			return nil, invalidSpec(p, fmt.Sprintf("duplicate mine %s", m))
		}
		c.Kind = Mine
	}
	board.TotalMines = len(mines)
	fillNumbers(board)
	return board, nil
}

/*
 * Each mine goes to a uniformly random cell. If that cell is already mined we
 * walk forward through the grid (next column, then next row, wrapping from the
 * bottom-right corner back to 0:0) until we hit a free one. There is always a
 * free cell because fewer than width*height mines have been placed so far.
 */
func placeMines(b *Board, count int, r Rand) {
	for range count {
		x, y := r.IntN(b.Width), r.IntN(b.Height)
		for b.at(x, y).Kind == Mine {
			x++
			if x >= b.Width {
				x = 0
				y++
				if y >= b.Height {
					y = 0
				}
			}
		}
		b.at(x, y).Kind = Mine
	}
}

func fillNumbers(b *Board) {
	for y := range b.Height {
		for x := range b.Width {
			c := b.at(x, y)
			if c.Kind == Mine {
				continue
			}
			c.AdjacentMines = b.adjacentMines(x, y)
			if c.AdjacentMines > 0 {
				c.Kind = Number
			} else {
				c.Kind = Empty
			}
		}
	}
}
