package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestUpdateMeKeepsOmittedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")

	gamertag := "  ana_gg "
	games := []string{"chess", " ", "go"}
	updated, err := env.profiles.UpdateMe(ctx, ana, UpdateProfileInput{
		Gamertag:      &gamertag,
		FavoriteGames: &games,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Gamertag != "ana_gg" {
		t.Errorf("gamertag = %q", updated.Gamertag)
	}
	if updated.Name != "Ana" {
		t.Errorf("name changed to %q", updated.Name)
	}

	me, err := env.profiles.Me(ctx, ana)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Gamertag != "ana_gg" || me.Name != "Ana" {
		t.Fatalf("stored profile = %+v", me)
	}
	if len(me.FavoriteGames) != 2 || me.FavoriteGames[1] != "go" {
		t.Fatalf("favoriteGames = %v", me.FavoriteGames)
	}

	empty := []string{}
	if _, err := env.profiles.UpdateMe(ctx, ana, UpdateProfileInput{FavoriteGames: &empty}); err != nil {
		t.Fatalf("clear favorites: %v", err)
	}
	me, err = env.profiles.Me(ctx, ana)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if len(me.FavoriteGames) != 0 || me.Gamertag != "ana_gg" {
		t.Fatalf("after clear = %+v", me)
	}
}

func TestGetAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	env.register(t, "Bob", "bob@example.com")

	got, err := env.profiles.Get(ctx, ana.UserID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ana@example.com" {
		t.Fatalf("email = %q", got.Email)
	}

	if _, err := env.profiles.Get(ctx, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}

	users, err := env.profiles.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("users = %d, want 2", len(users))
	}
}
