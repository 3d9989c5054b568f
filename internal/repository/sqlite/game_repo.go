package sqlite

import (
	"context"
	"database/sql"

	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

type GameRepo struct {
	db *sql.DB
}

func (r *GameRepo) Create(ctx context.Context, game *domain.Game) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO games (id, name, image_url, created_at) VALUES (?, ?, ?, ?)`,
		game.ID, game.Name, game.ImageURL, toMillis(game.CreatedAt),
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *GameRepo) List(ctx context.Context) ([]domain.Game, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, image_url, created_at FROM games ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []domain.Game
	for rows.Next() {
		var (
			g         domain.Game
			createdAt int64
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.ImageURL, &createdAt); err != nil {
			return nil, err
		}
		g.CreatedAt = fromMillis(createdAt)
		games = append(games, g)
	}
	return games, rows.Err()
}
