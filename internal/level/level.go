package level

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

const (
	MinDimension = 4
	MaxDimension = 64

	// Dir is where exported levels end up, relative to the export root.
	Dir = "JSON_LEVELS"
)

var (
	ErrEmptyLevel   = errors.New("empty level file")
	ErrInvalidName  = errors.New("invalid level name")
	ErrMissingField = errors.New("level field missing")
)

// Spec is the level file record, one per file.
type Spec struct {
	Name      string `json:"levelName"`
	Width     int    `json:"levelWidth"`
	Height    int    `json:"levelHeight"`
	MineCount int    `json:"totalMinesCount"`
}

func (s Spec) Params() mines.GameParams {
	return mines.GameParams{Width: s.Width, Height: s.Height, MineCount: s.MineCount}
}

// Clamp pulls dimensions into [MinDimension, MaxDimension] and the mine count
// into [0, width*height]. Only authoring tools clamp; generation rejects
// anything out of range instead.
func (s Spec) Clamp() Spec {
	s.Width = clamp(s.Width, MinDimension, MaxDimension)
	s.Height = clamp(s.Height, MinDimension, MaxDimension)
	s.MineCount = clamp(s.MineCount, 0, s.Width*s.Height)
	return s
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

type record struct {
	Name      *string `json:"levelName"`
	Width     *int    `json:"levelWidth"`
	Height    *int    `json:"levelHeight"`
	MineCount *int    `json:"totalMinesCount"`

	LegacyName      *string `json:"_levelName"`
	LegacyWidth     *int    `json:"_levelWidth"`
	LegacyHeight    *int    `json:"_levelHeight"`
	LegacyMineCount *int    `json:"_totalMinesCount"`
}

// [Spec] implements [json.Unmarshaler]. Keys with a leading underscore are
// accepted as well.
func (s *Spec) UnmarshalJSON(data []byte) error {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	name := pick(r.Name, r.LegacyName)
	width := pick(r.Width, r.LegacyWidth)
	height := pick(r.Height, r.LegacyHeight)
	mineCount := pick(r.MineCount, r.LegacyMineCount)
	switch {
	case width == nil:
		return fmt.Errorf("%w: levelWidth", ErrMissingField)
	case height == nil:
		return fmt.Errorf("%w: levelHeight", ErrMissingField)
	case mineCount == nil:
		return fmt.Errorf("%w: totalMinesCount", ErrMissingField)
	}
	*s = Spec{Width: *width, Height: *height, MineCount: *mineCount}
	if name != nil {
		s.Name = *name
	}
	return nil
}

func pick[T any](v, legacy *T) *T {
	if v != nil {
		return v
	}
	return legacy
}

func Decode(r io.Reader) (Spec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Spec{}, err
	}
	return parse(data)
}

func parse(data []byte) (Spec, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Spec{}, ErrEmptyLevel
	}
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("unable to parse level: %w", err)
	}
	return s, nil
}

// Load reads a level file. A file without a name takes it from the file name.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, err
	}
	s, err := parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("%s: %w", path, err)
	}
	if s.Name == "" {
		s.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return s, nil
}

func ValidateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Path is where Export writes the level called name.
func Path(root, name string) string {
	return filepath.Join(root, Dir, name+".json")
}

// Export clamps s and writes it to root/JSON_LEVELS/<name>.json, replacing
// any existing file of that name.
func Export(root string, s Spec) (string, error) {
	if err := ValidateName(s.Name); err != nil {
		return "", err
	}
	s = s.Clamp()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Join(root, Dir), 0o755); err != nil {
		return "", fmt.Errorf("unable to create level directory: %w", err)
	}
	path := Path(root, s.Name)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("unable to write level: %w", err)
	}
	return path, nil
}
