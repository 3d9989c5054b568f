package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

const userColumns = `id, email, name, password_hash, avatar, gamertag, description,
	favorite_games, platforms, role, active_games, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash,
		user.Avatar, user.Gamertag, user.Description,
		nonNil(user.FavoriteGames), nonNil(user.Platforms), user.Role, nonNil(user.ActiveGames),
		user.CreatedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id))
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.scanUser(r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email))
}

func (r *UserRepo) List(ctx context.Context) ([]domain.User, error) {
	return r.queryUsers(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at")
}

func (r *UserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $1, avatar = $2, gamertag = $3, description = $4,
			favorite_games = $5, platforms = $6, updated_at = $7
		WHERE id = $8`
	_, err := r.pool.Exec(ctx, query,
		user.Name, user.Avatar, user.Gamertag, user.Description,
		nonNil(user.FavoriteGames), nonNil(user.Platforms), user.UpdatedAt, user.ID,
	)
	return err
}

func (r *UserRepo) SetActiveGames(ctx context.Context, id uuid.UUID, games []string, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE users SET active_games = $1, updated_at = $2 WHERE id = $3`,
		nonNil(games), at, id,
	)
	return err
}

// ListActiveByGame matches on the primary active game only.
func (r *UserRepo) ListActiveByGame(ctx context.Context, game string) ([]domain.User, error) {
	return r.queryUsers(ctx,
		"SELECT "+userColumns+" FROM users WHERE active_games[1] = $1 ORDER BY name",
		game,
	)
}

func (r *UserRepo) queryUsers(ctx context.Context, query string, args ...any) ([]domain.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (r *UserRepo) scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Avatar, &u.Gamertag, &u.Description,
		&u.FavoriteGames, &u.Platforms, &u.Role, &u.ActiveGames,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
