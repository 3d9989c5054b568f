package ws

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
)

// HubNotifier implements service.Notifier using the WebSocket Hub.
type HubNotifier struct {
	hub *Hub
}

func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub}
}

func (n *HubNotifier) NotifyChatMessage(chat *domain.Chat, msg *domain.ChatMessage) {
	evt, err := NewEvent(EventTypeChatMessage, &chat.ID, ChatMessagePayload{
		Message:      *msg,
		Participants: chat.Participants,
	})
	if err != nil {
		slog.Error("ws notifier: marshal error", "error", err)
		return
	}

	if n.hub.Scope() == ScopeGlobal {
		n.hub.BroadcastAll(evt)
		return
	}
	n.hub.BroadcastToUsers(chat.ParticipantIDs(), evt)
}

// NotifyPresence tells every connection that a user's active games changed.
func (n *HubNotifier) NotifyPresence(userID uuid.UUID, activeGames []string) {
	if activeGames == nil {
		activeGames = []string{}
	}
	payload := ActivityPayload{
		UserID:      userID,
		ActiveGames: activeGames,
		IsActive:    len(activeGames) > 0,
	}
	if payload.IsActive {
		payload.ActiveGame = activeGames[0]
	}

	evt, err := NewEvent(EventTypeActivity, nil, payload)
	if err != nil {
		slog.Error("ws notifier: marshal error", "error", err)
		return
	}
	n.hub.BroadcastAll(evt)
}
