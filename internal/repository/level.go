package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/minesweeper-autoplay/internal/level"
)

var ErrLevelExists = errors.New("level name taken")

type Level struct {
	LevelId         int64     `db:"level_id" json:"-"`
	LevelName       string    `db:"level_name" json:"levelName"`
	LevelWidth      int       `db:"level_width" json:"levelWidth"`
	LevelHeight     int       `db:"level_height" json:"levelHeight"`
	TotalMinesCount int       `db:"total_mines_count" json:"totalMinesCount"`
	CreatedAt       time.Time `db:"created_at" json:"-"`
}

func (l Level) Spec() level.Spec {
	return level.Spec{
		Name:      l.LevelName,
		Width:     l.LevelWidth,
		Height:    l.LevelHeight,
		MineCount: l.TotalMinesCount,
	}
}

func (q Queries) CreateLevel(ctx context.Context, spec level.Spec) (*Level, error) {
	rows, err := q.db.Query(
		ctx,
		`INSERT INTO level (
			level_name, level_width, level_height, total_mines_count
		)
		VALUES (
			@level_name, @level_width, @level_height, @total_mines_count
		)
		RETURNING *;`,
		pgx.NamedArgs{
			"level_name":        spec.Name,
			"level_width":       spec.Width,
			"level_height":      spec.Height,
			"total_mines_count": spec.MineCount,
		},
	)
	l, err := collectOne[Level](rows, err)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return nil, ErrLevelExists
	}
	return l, err
}

func (q Queries) FetchLevel(ctx context.Context, name string) (*Level, error) {
	rows, err := q.db.Query(ctx, "SELECT * FROM level WHERE level_name = $1", name)
	return collectOne[Level](rows, err)
}

func (q Queries) ListLevels(ctx context.Context) ([]Level, error) {
	rows, err := q.db.Query(ctx, "SELECT * FROM level ORDER BY level_name")
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Level])
}
