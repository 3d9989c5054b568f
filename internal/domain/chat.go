package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a two-party conversation. User1ID is always the smaller id in
// string order, so one pair maps to exactly one row.
type Chat struct {
	ID        uuid.UUID `json:"id"`
	User1ID   uuid.UUID `json:"user1Id"`
	User2ID   uuid.UUID `json:"user2Id"`
	LastSeq   int64     `json:"lastSeq"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	// Joined fields
	Participants []PublicProfile `json:"participants"`
	Messages     []ChatMessage   `json:"messages,omitempty"`
}

type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chatId"`
	SenderID  uuid.UUID `json:"senderId"`
	Text      string    `json:"text"`
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"createdAt"`
	// Joined fields
	SenderName   string `json:"senderName,omitempty"`
	SenderAvatar string `json:"senderAvatar,omitempty"`
}

// CanonicalPair orders two user ids the way chats are stored.
func CanonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ParticipantIDs returns both participants in canonical order.
func (c *Chat) ParticipantIDs() []uuid.UUID {
	return []uuid.UUID{c.User1ID, c.User2ID}
}

// Other returns the participant that is not userID.
func (c *Chat) Other(userID uuid.UUID) uuid.UUID {
	if c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}
