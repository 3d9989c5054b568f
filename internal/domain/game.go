package domain

import (
	"time"

	"github.com/google/uuid"
)

// Game is a catalog entry. Users reference games by name only.
type Game struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	ImageURL  string    `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}
