package mines

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInvalidSpec = errors.New("invalid level spec")
)

type InvalidSpecError struct {
	Width, Height, MineCount int
	message                  string
}

// [InvalidSpecError] implements [error]
func (e *InvalidSpecError) Error() string {
	return fmt.Sprintf("%s: %s (width = %d, height = %d, mine count = %d)",
		ErrInvalidSpec, e.message, e.Width, e.Height, e.MineCount,
	)
}

func (e *InvalidSpecError) Is(target error) bool {
	return target == ErrInvalidSpec
}

func invalidSpec(p GameParams, message string) *InvalidSpecError {
	return &InvalidSpecError{
		Width:     p.Width,
		Height:    p.Height,
		MineCount: p.MineCount,
		message:   message,
	}
}
