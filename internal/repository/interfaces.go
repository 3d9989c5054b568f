package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
)

var (
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrNotFound is returned by writes whose target row is gone.
	ErrNotFound = errors.New("record not found")
)

// Lookups return (nil, nil) when the row does not exist.

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	SetActiveGames(ctx context.Context, id uuid.UUID, games []string, at time.Time) error
	ListActiveByGame(ctx context.Context, game string) ([]domain.User, error)
}

type GameRepository interface {
	Create(ctx context.Context, game *domain.Game) error
	List(ctx context.Context) ([]domain.Game, error)
}

type ChatRepository interface {
	// FindOrCreate returns the chat for the canonical pair (user1 < user2),
	// inserting it if absent. Concurrent callers observe the same chat.
	FindOrCreate(ctx context.Context, user1ID, user2ID uuid.UUID) (*domain.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Chat, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Chat, error)
	ListMessages(ctx context.Context, chatID uuid.UUID) ([]domain.ChatMessage, error)
	// AppendMessage assigns msg.Seq and bumps the chat's updated_at in the
	// same transaction. It returns ErrNotFound if the chat no longer exists.
	AppendMessage(ctx context.Context, msg *domain.ChatMessage) error
	Delete(ctx context.Context, id uuid.UUID) error
}
