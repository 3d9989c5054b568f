package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

type GameService struct {
	gameRepo repository.GameRepository
}

func NewGameService(gameRepo repository.GameRepository) *GameService {
	return &GameService{gameRepo: gameRepo}
}

type AddGameInput struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

func (s *GameService) Add(ctx context.Context, input AddGameInput) (*domain.Game, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrGameNameNeeded
	}

	game := &domain.Game{
		ID:        uuid.New(),
		Name:      name,
		ImageURL:  strings.TrimSpace(input.ImageURL),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrGameExists
		}
		return nil, fmt.Errorf("creating game: %w", err)
	}
	return game, nil
}

func (s *GameService) List(ctx context.Context) ([]domain.Game, error) {
	games, err := s.gameRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	if games == nil {
		games = []domain.Game{}
	}
	return games, nil
}
