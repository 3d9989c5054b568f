package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

const userColumns = `id, email, name, password_hash, avatar, gamertag, description,
	favorite_games, platforms, role, active_games, created_at, updated_at`

type UserRepo struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash,
		user.Avatar, user.Gamertag, user.Description,
		encodeList(user.FavoriteGames), encodeList(user.Platforms), user.Role, encodeList(user.ActiveGames),
		toMillis(user.CreatedAt), toMillis(user.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at, id")
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = ?, avatar = ?, gamertag = ?, description = ?,
			favorite_games = ?, platforms = ?, updated_at = ?
		WHERE id = ?`,
		user.Name, user.Avatar, user.Gamertag, user.Description,
		encodeList(user.FavoriteGames), encodeList(user.Platforms), toMillis(user.UpdatedAt), user.ID,
	)
	return err
}

func (r *UserRepo) SetActiveGames(ctx context.Context, id uuid.UUID, games []string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET active_games = ?, updated_at = ? WHERE id = ?`,
		encodeList(games), toMillis(at), id,
	)
	return err
}

func (r *UserRepo) ListActiveByGame(ctx context.Context, game string) ([]domain.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE json_extract(active_games, '$[0]') = ? ORDER BY name",
		game,
	)
}

func (r *UserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func scanUser(row rowScanner) (*domain.User, error) {
	var (
		u                           domain.User
		favorites, platforms, games string
		createdAt, updatedAt        int64
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Avatar, &u.Gamertag, &u.Description,
		&favorites, &platforms, &u.Role, &games,
		&createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.FavoriteGames, err = decodeList(favorites); err != nil {
		return nil, err
	}
	if u.Platforms, err = decodeList(platforms); err != nil {
		return nil, err
	}
	if u.ActiveGames, err = decodeList(games); err != nil {
		return nil, err
	}
	u.CreatedAt, u.UpdatedAt = fromMillis(createdAt), fromMillis(updatedAt)
	return &u, nil
}
