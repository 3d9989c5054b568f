package ws

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
)

// Event types - Client → Server
const (
	EventTypeChatMessage = "chat message"
	EventTypePing        = "ping"
)

// Event types - Server → Client
const (
	EventTypePresence = "presence"
	EventTypeActivity = "activity"
	EventTypePong     = "pong"
	EventTypeError    = "error"
)

// Event is the base envelope for all WebSocket messages.
type Event struct {
	Type      string          `json:"type"`
	ChatID    *uuid.UUID      `json:"chatId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

// --- Client → Server payloads ---

type ChatSendPayload struct {
	To   uuid.UUID `json:"to"`
	Text string    `json:"text"`
}

// --- Server → Client payloads ---

type ChatMessagePayload struct {
	Message      domain.ChatMessage     `json:"message"`
	Participants []domain.PublicProfile `json:"participants"`
}

type PresencePayload struct {
	UserID uuid.UUID `json:"userId"`
	Status string    `json:"status"` // "online" | "offline"
}

type ActivityPayload struct {
	UserID      uuid.UUID `json:"userId"`
	ActiveGames []string  `json:"activeGames"`
	ActiveGame  string    `json:"activeGame"`
	IsActive    bool      `json:"isActive"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server→client event with the current timestamp.
func NewEvent(eventType string, chatID *uuid.UUID, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		Type:      eventType,
		ChatID:    chatID,
		Payload:   data,
		Timestamp: time.Now().Unix(),
	}, nil
}
