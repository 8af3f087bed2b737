package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vancomm/minesweeper-autoplay/internal/mines"
)

const DefaultHighscoreLimit = 50

type Highscore struct {
	GameSessionId int64   `db:"game_session_id" json:"game_session_id,string"`
	LevelName     *string `db:"level_name" json:"level_name"`
	Width         int     `db:"width" json:"width"`
	Height        int     `db:"height" json:"height"`
	MineCount     int     `db:"mine_count" json:"mine_count"`
	PlaytimeMs    float64 `db:"playtime_ms" json:"playtime_ms"`
}

type HighscoreFilter struct {
	LevelName  *string
	GameParams *mines.GameParams
	Limit      int
}

func (f HighscoreFilter) WhereClause() (string, pgx.NamedArgs) {
	clauses := make([]string, 0)
	args := pgx.NamedArgs{}
	if f.LevelName != nil {
		clauses = append(clauses, "level_name = @level_name")
		args["level_name"] = *f.LevelName
	}
	if f.GameParams != nil {
		clauses = append(
			clauses,
			"width = @width",
			"height = @height",
			"mine_count = @mine_count",
		)
		args["width"] = f.GameParams.Width
		args["height"] = f.GameParams.Height
		args["mine_count"] = f.GameParams.MineCount
	}
	return strings.Join(clauses, " AND "), args
}

// GetHighscores lists won sessions, fastest first.
func (q Queries) GetHighscores(
	ctx context.Context, filter HighscoreFilter,
) ([]Highscore, error) {
	query := `
	SELECT
		game_session_id,
		level_name,
		width,
		height,
		mine_count,
		(
			extract('epoch' from ended_at) -
			extract('epoch' from started_at)
		) * 1000 playtime_ms
	FROM game_session
	WHERE
		status = 'won'
		AND ended_at IS NOT NULL
	`

	whereClause, args := filter.WhereClause()
	if whereClause != "" {
		query += " AND " + whereClause
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultHighscoreLimit
	}
	args["limit"] = limit
	query += " ORDER BY playtime_ms LIMIT @limit;"

	rows, err := q.db.Query(ctx, query, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Highscore])
}
