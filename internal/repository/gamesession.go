package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

type GameSession struct {
	GameSessionId int64              `db:"game_session_id"`
	LevelName     *string            `db:"level_name"`
	Width         int                `db:"width"`
	Height        int                `db:"height"`
	MineCount     int                `db:"mine_count"`
	Status        string             `db:"status"`
	State         []byte             `db:"state"`
	StartedAt     time.Time          `db:"started_at"`
	EndedAt       *time.Time         `db:"ended_at"`
	CreatedAt     pgtype.Timestamptz `db:"created_at"`
	UpdatedAt     pgtype.Timestamptz `db:"updated_at"`
}

// Game decodes the stored game state.
func (s GameSession) Game() (*mines.Game, error) {
	return mines.DecodeGame(s.State)
}

type CreateGameSessionParams struct {
	LevelName *string
	Game      *mines.Game
}

func (q Queries) CreateGameSession(
	ctx context.Context, params CreateGameSessionParams,
) (*GameSession, error) {
	state, err := params.Game.Bytes()
	if err != nil {
		return nil, fmt.Errorf("unable to encode game state: %w", err)
	}
	p := params.Game.Params()
	rows, err := q.db.Query(
		ctx,
		`INSERT INTO game_session (
			level_name, width, height, mine_count, status, state
		)
		VALUES (
			@level_name, @width, @height, @mine_count, @status, @state
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"level_name": params.LevelName,
			"width":      p.Width,
			"height":     p.Height,
			"mine_count": p.MineCount,
			"status":     params.Game.Status().String(),
			"state":      state,
		},
	)
	return collectOne[GameSession](rows, err)
}

func (q Queries) FetchGameSession(ctx context.Context, gameSessionId int64) (*GameSession, error) {
	rows, err := q.db.Query(
		ctx,
		"SELECT * FROM game_session WHERE game_session_id = $1",
		gameSessionId,
	)
	return collectOne[GameSession](rows, err)
}

type UpdateGameSessionParams struct {
	Status  *string
	EndedAt *time.Time
	State   *[]byte
}

// UpdateFromGame fills every field from the current game, stamping EndedAt
// once the game is over.
func UpdateFromGame(g *mines.Game, now time.Time) (UpdateGameSessionParams, error) {
	state, err := g.Bytes()
	if err != nil {
		return UpdateGameSessionParams{}, fmt.Errorf("unable to encode game state: %w", err)
	}
	status := g.Status().String()
	params := UpdateGameSessionParams{Status: &status, State: &state}
	if g.Over() {
		endedAt := now.UTC()
		params.EndedAt = &endedAt
	}
	return params, nil
}

func (p UpdateGameSessionParams) SetClause() (string, pgx.NamedArgs) {
	parts := []string{"updated_at = now()"}
	args := pgx.NamedArgs{}

	if p.Status != nil {
		parts = append(parts, "status = @status")
		args["status"] = *p.Status
	}
	if p.EndedAt != nil {
		parts = append(parts, "ended_at = COALESCE(ended_at, @ended_at)")
		args["ended_at"] = *p.EndedAt
	}
	if p.State != nil {
		parts = append(parts, "state = @state")
		args["state"] = *p.State
	}

	return strings.Join(parts, ", "), args
}

func (q Queries) UpdateGameSession(
	ctx context.Context, gameSessionId int64, params UpdateGameSessionParams,
) (*GameSession, error) {
	setClause, args := params.SetClause()
	args["game_session_id"] = gameSessionId
	rows, err := q.db.Query(
		ctx,
		"UPDATE game_session SET "+setClause+" WHERE game_session_id = @game_session_id RETURNING *",
		args,
	)
	return collectOne[GameSession](rows, err)
}
