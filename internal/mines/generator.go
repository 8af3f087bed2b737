package mines

import (
	"fmt"
	"math"
	"strings"
)

type GameParams struct {
	Width, Height, MineCount int
}

func (p GameParams) Unpack() (w int, h int, mc int) {
	return p.Width, p.Height, p.MineCount
}

func (p GameParams) Validate() error {
	switch {
	case p.Width < 1:
		return invalidSpec(p, "width must be positive")
	case p.Height < 1:
		return invalidSpec(p, "height must be positive")
	case p.Width > math.MaxInt/p.Height:
		return invalidSpec(p, "board too large")
	case p.MineCount < 0:
		return invalidSpec(p, "mine count must not be negative")
	case p.MineCount > p.Width*p.Height:
		return invalidSpec(p, "more mines than cells")
	}
	return nil
}

func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Width, p.Height, p.MineCount)
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Width, &p.Height, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}

func (p GameParams) ValidatePosition(x, y int) bool {
	return 0 <= x && x < p.Width && 0 <= y && y < p.Height
}
