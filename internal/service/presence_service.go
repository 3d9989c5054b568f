package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

type PresenceService struct {
	userRepo repository.UserRepository
	now      func() time.Time
}

func NewPresenceService(userRepo repository.UserRepository) *PresenceService {
	return &PresenceService{userRepo: userRepo, now: time.Now}
}

// SetActive marks the caller as playing games. The first entry becomes the
// primary game used for member lookups.
func (s *PresenceService) SetActive(ctx context.Context, caller domain.Identity, games []string) (*domain.User, error) {
	games = cleanList(games)
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	return s.setGames(ctx, caller, games)
}

// SetInactive clears every active game of the caller.
func (s *PresenceService) SetInactive(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	return s.setGames(ctx, caller, []string{})
}

// ListMembers returns users whose primary active game is game.
func (s *PresenceService) ListMembers(ctx context.Context, game string) ([]domain.User, error) {
	game = strings.TrimSpace(game)
	if game == "" {
		return nil, ErrMissingGame
	}

	users, err := s.userRepo.ListActiveByGame(ctx, game)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *PresenceService) setGames(ctx context.Context, caller domain.Identity, games []string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	now := s.now().UTC()
	if err := s.userRepo.SetActiveGames(ctx, user.ID, games, now); err != nil {
		return nil, fmt.Errorf("setting active games: %w", err)
	}

	user.ActiveGames = games
	user.UpdatedAt = now
	return user, nil
}
