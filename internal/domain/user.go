package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	Name          string    `json:"name"`
	PasswordHash  string    `json:"-"`
	Avatar        string    `json:"avatar"`
	Gamertag      string    `json:"gamertag"`
	Description   string    `json:"description"`
	FavoriteGames []string  `json:"favoriteGames"`
	Platforms     []string  `json:"platforms"`
	Role          string    `json:"role"`
	ActiveGames   []string  `json:"activeGames"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// IsActive reports whether the user is playing anything right now.
func (u *User) IsActive() bool {
	return len(u.ActiveGames) > 0
}

// ActiveGame is the primary game of an active user, or "" when inactive.
func (u *User) ActiveGame() string {
	if len(u.ActiveGames) == 0 {
		return ""
	}
	return u.ActiveGames[0]
}

// Public returns the fields other users are allowed to see in chats.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:       u.ID,
		Name:     u.Name,
		Avatar:   u.Avatar,
		Gamertag: u.Gamertag,
	}
}

// MarshalJSON adds the derived presence fields so clients keep receiving
// isActive and activeGame next to the list.
func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	p := plain(u)
	if p.ActiveGames == nil {
		p.ActiveGames = []string{}
	}
	if p.FavoriteGames == nil {
		p.FavoriteGames = []string{}
	}
	if p.Platforms == nil {
		p.Platforms = []string{}
	}
	return json.Marshal(struct {
		plain
		IsActive   bool   `json:"isActive"`
		ActiveGame string `json:"activeGame"`
	}{
		plain:      p,
		IsActive:   u.IsActive(),
		ActiveGame: u.ActiveGame(),
	})
}

// PublicProfile is the subset of a user embedded in chats and messages.
type PublicProfile struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Avatar   string    `json:"avatar"`
	Gamertag string    `json:"gamertag,omitempty"`
}

// Identity is an authenticated caller. It travels explicitly from the
// transport layer into every service call.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

// Can reports whether the identity holds the required role. Admins hold
// every role.
func (i Identity) Can(role string) bool {
	if i.Role == RoleAdmin {
		return true
	}
	return i.Role == role
}
