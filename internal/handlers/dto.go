package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gorilla/schema"

	"github.com/vancomm/minesweeper-autoplay/internal/autoplay"
	"github.com/vancomm/minesweeper-autoplay/internal/level"
	"github.com/vancomm/minesweeper-autoplay/internal/mines"
	"github.com/vancomm/minesweeper-autoplay/internal/repository"
)

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)
	return dec
}

type NewGameDTO struct {
	Level     string `schema:"level"`
	Seed      string `schema:"seed"`
	Width     *int   `schema:"width"`
	Height    *int   `schema:"height"`
	MineCount *int   `schema:"mine_count"`
}

var (
	ErrPartialParams = errors.New("width, height and mine_count must be given together")
	ErrBoardTooLarge = fmt.Errorf("width and height must not exceed %d", level.MaxDimension)
)

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// Params returns explicit dimensions, if the request had any. Boards are
// capped at the same size as stored levels.
func (dto NewGameDTO) Params() (*mines.GameParams, error) {
	var params *mines.GameParams
	switch {
	case dto.Seed != "":
		p, err := mines.ParseSeed(dto.Seed)
		if err != nil {
			return nil, err
		}
		params = p
	case dto.Width == nil && dto.Height == nil && dto.MineCount == nil:
		return nil, nil
	case dto.Width == nil || dto.Height == nil || dto.MineCount == nil:
		return nil, ErrPartialParams
	default:
		params = &mines.GameParams{Width: *dto.Width, Height: *dto.Height, MineCount: *dto.MineCount}
	}
	if params.Width > level.MaxDimension || params.Height > level.MaxDimension {
		return nil, ErrBoardTooLarge
	}
	return params, nil
}

type MoveDTO struct {
	Move string `schema:"move,required"`
	X    int    `schema:"x,required"`
	Y    int    `schema:"y,required"`
}

func ParseMoveDTO(src map[string][]string) (MoveDTO, error) {
	var dto MoveDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if _, err := ParseMoveKind(dto.Move); err != nil {
		return dto, err
	}
	return dto, nil
}

func ParseMoveKind(s string) (autoplay.ActionKind, error) {
	switch s {
	case "reveal", "r":
		return autoplay.Reveal, nil
	case "flag", "f":
		return autoplay.Flag, nil
	default:
		return 0, fmt.Errorf("unknown move %q, want reveal or flag", s)
	}
}

const MaxAutoplaySteps = 1000

type AutoplayDTO struct {
	Steps int `schema:"steps"`
}

func ParseAutoplayDTO(src map[string][]string) (AutoplayDTO, error) {
	dto := AutoplayDTO{Steps: 1}
	if err := decoder.Decode(&dto, src); err != nil {
		return dto, err
	}
	if dto.Steps < 1 || dto.Steps > MaxAutoplaySteps {
		return dto, fmt.Errorf("steps must be between 1 and %d", MaxAutoplaySteps)
	}
	return dto, nil
}

type HighscoresDTO struct {
	Level     string `schema:"level"`
	Width     *int   `schema:"width"`
	Height    *int   `schema:"height"`
	MineCount *int   `schema:"mine_count"`
	Limit     int    `schema:"limit"`
}

func ParseHighscoreFilter(src map[string][]string) (repository.HighscoreFilter, error) {
	var dto HighscoresDTO
	if err := decoder.Decode(&dto, src); err != nil {
		return repository.HighscoreFilter{}, err
	}
	filter := repository.HighscoreFilter{Limit: dto.Limit}
	if dto.Level != "" {
		filter.LevelName = &dto.Level
	}
	if dto.Width != nil || dto.Height != nil || dto.MineCount != nil {
		if dto.Width == nil || dto.Height == nil || dto.MineCount == nil {
			return filter, ErrPartialParams
		}
		filter.GameParams = &mines.GameParams{
			Width: *dto.Width, Height: *dto.Height, MineCount: *dto.MineCount,
		}
	}
	return filter, nil
}

// GameSessionDTO is what clients see of a session. Covered cells only show
// whether they are flagged.
type GameSessionDTO struct {
	GameSessionId  string   `json:"game_session_id"`
	Token          string   `json:"token,omitempty"`
	LevelName      *string  `json:"level_name,omitempty"`
	Grid           []string `json:"grid"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	MineCount      int      `json:"mine_count"`
	Status         string   `json:"status"`
	RemainingMines int      `json:"remaining_mines"`
	StartedAt      int64    `json:"started_at"`
	EndedAt        *int64   `json:"ended_at,omitempty"`
}

func Grid(g *mines.Game) []string {
	cells := g.Snapshot()
	rows := make([]string, g.Height())
	var row strings.Builder
	for y := range g.Height() {
		row.Reset()
		for x := range g.Width() {
			row.WriteString(cells[y*g.Width()+x].String())
		}
		rows[y] = row.String()
	}
	return rows
}

func NewGameSessionDTO(s *repository.GameSession, g *mines.Game) *GameSessionDTO {
	var endedAt *int64
	if s.EndedAt != nil {
		e := s.EndedAt.UnixMilli()
		endedAt = &e
	}
	return &GameSessionDTO{
		GameSessionId:  strconv.FormatInt(s.GameSessionId, 10),
		LevelName:      s.LevelName,
		Grid:           Grid(g),
		Width:          g.Width(),
		Height:         g.Height(),
		MineCount:      g.TotalMines(),
		Status:         g.Status().String(),
		RemainingMines: g.RemainingMines(),
		StartedAt:      s.StartedAt.UnixMilli(),
		EndedAt:        endedAt,
	}
}

type StepDTO struct {
	Action  string `json:"action"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`
}

func NewStepDTO(step autoplay.Step) StepDTO {
	dto := StepDTO{
		Action: step.Action.Kind.String(),
		X:      step.Action.Pos.X,
		Y:      step.Action.Pos.Y,
	}
	switch {
	case step.Tied:
		dto.Outcome = "tie"
	case step.Action.Kind == autoplay.Reveal:
		dto.Outcome = step.Reveal.String()
	case step.Flag.Changed && step.Flag.Flagged:
		dto.Outcome = "flagged"
	case step.Flag.Changed:
		dto.Outcome = "unflagged"
	default:
		dto.Outcome = "no-op"
	}
	if step.Err != nil {
		dto.Error = step.Err.Error()
	}
	return dto
}

type AutoplayResultDTO struct {
	Session *GameSessionDTO `json:"session"`
	Steps   []StepDTO       `json:"steps"`
}
