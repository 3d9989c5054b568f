package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

type ProfileService struct {
	userRepo repository.UserRepository
}

func NewProfileService(userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{userRepo: userRepo}
}

// UpdateProfileInput carries a partial update. Nil fields keep their
// current value.
type UpdateProfileInput struct {
	Name          *string   `json:"name"`
	Gamertag      *string   `json:"gamertag"`
	Description   *string   `json:"description"`
	Avatar        *string   `json:"avatar"`
	FavoriteGames *[]string `json:"favoriteGames"`
	Platforms     *[]string `json:"platforms"`
}

func (s *ProfileService) Me(ctx context.Context, caller domain.Identity) (*domain.User, error) {
	return s.Get(ctx, caller.UserID)
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *ProfileService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	if users == nil {
		users = []domain.User{}
	}
	return users, nil
}

func (s *ProfileService) UpdateMe(ctx context.Context, caller domain.Identity, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.Get(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Gamertag != nil {
		user.Gamertag = strings.TrimSpace(*input.Gamertag)
	}
	if input.Description != nil {
		user.Description = *input.Description
	}
	if input.Avatar != nil {
		user.Avatar = strings.TrimSpace(*input.Avatar)
	}
	if input.FavoriteGames != nil {
		user.FavoriteGames = cleanList(*input.FavoriteGames)
	}
	if input.Platforms != nil {
		user.Platforms = cleanList(*input.Platforms)
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return user, nil
}
