package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
)

const (
	// ScopeParticipants delivers chat events to the chat's participants only.
	ScopeParticipants = "participants"
	// ScopeGlobal delivers every event to every connection and relays
	// inbound chat frames as they arrive.
	ScopeGlobal = "global"
)

// MessageSender persists a chat message on behalf of a connected identity.
type MessageSender interface {
	SendMessage(ctx context.Context, caller domain.Identity, otherID uuid.UUID, text string) (*domain.Chat, error)
}

// Hub manages all active WebSocket clients and routes messages. Its maps
// are owned by the Run goroutine.
type Hub struct {
	scope  string
	sender MessageSender

	// clients maps userID → that user's open connections.
	clients map[uuid.UUID]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMsg
	stopped    chan struct{}
}

type broadcastMsg struct {
	recipients []uuid.UUID // nil means every connection
	client     *Client     // set for a reply to one connection
	data       []byte
}

func NewHub(scope string, sender MessageSender) *Hub {
	if scope != ScopeGlobal {
		scope = ScopeParticipants
	}
	return &Hub{
		scope:      scope,
		sender:     sender,
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *broadcastMsg, 256),
		stopped:    make(chan struct{}),
	}
}

func (h *Hub) Scope() string {
	return h.scope
}

// Run starts the Hub's main event loop and blocks until ctx is done. Every
// open connection is released on return.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.stopped)

	for {
		select {
		case <-ctx.Done():
			for _, conns := range h.clients {
				for client := range conns {
					h.drop(client)
				}
			}
			slog.Info("ws hub stopped")
			return nil

		case client := <-h.register:
			conns, ok := h.clients[client.identity.UserID]
			if !ok {
				conns = make(map[*Client]struct{})
				h.clients[client.identity.UserID] = conns
			}
			conns[client] = struct{}{}
			slog.Debug("ws client connected", "user_id", client.identity.UserID, "connections", len(conns))

			if !ok {
				h.broadcastPresence(client.identity.UserID, "online")
			}

		case client := <-h.unregister:
			if h.drop(client) {
				slog.Debug("ws client disconnected", "user_id", client.identity.UserID)
			}

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// BroadcastToUsers sends an event to every connection of the given users.
func (h *Hub) BroadcastToUsers(userIDs []uuid.UUID, event *Event) {
	if userIDs == nil {
		userIDs = []uuid.UUID{}
	}
	h.enqueue(&broadcastMsg{recipients: userIDs}, event)
}

// BroadcastAll sends an event to every connection.
func (h *Hub) BroadcastAll(event *Event) {
	h.enqueue(&broadcastMsg{}, event)
}

// reply sends an event to a single connection.
func (h *Hub) reply(client *Client, event *Event) {
	h.enqueue(&broadcastMsg{client: client}, event)
}

// relay re-broadcasts a raw client frame to every connection.
func (h *Hub) relay(data []byte) {
	h.send(&broadcastMsg{data: data})
}

func (h *Hub) enqueue(msg *broadcastMsg, event *Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("ws hub: marshal event", "type", event.Type, "error", err)
		return
	}
	msg.data = data
	h.send(msg)
}

func (h *Hub) send(msg *broadcastMsg) {
	select {
	case h.broadcast <- msg:
	case <-h.stopped:
	}
}

// deliver writes msg to the targeted connections. Nothing is kept for users
// who are not connected.
func (h *Hub) deliver(msg *broadcastMsg) {
	if msg.client != nil {
		if conns, ok := h.clients[msg.client.identity.UserID]; ok {
			if _, ok := conns[msg.client]; ok {
				h.deliverTo(map[*Client]struct{}{msg.client: {}}, msg.data)
			}
		}
		return
	}
	if msg.recipients == nil {
		for _, conns := range h.clients {
			h.deliverTo(conns, msg.data)
		}
		return
	}
	for _, userID := range msg.recipients {
		if conns, ok := h.clients[userID]; ok {
			h.deliverTo(conns, msg.data)
		}
	}
}

func (h *Hub) deliverTo(conns map[*Client]struct{}, data []byte) {
	for client := range conns {
		select {
		case client.send <- data:
		default:
			// Client buffer full - disconnect
			slog.Warn("ws client too slow, dropping", "user_id", client.identity.UserID)
			h.drop(client)
		}
	}
}

// drop removes a connection and closes its channels. It reports whether
// the connection was still registered.
func (h *Hub) drop(client *Client) bool {
	userID := client.identity.UserID
	conns, ok := h.clients[userID]
	if !ok {
		return false
	}
	if _, ok := conns[client]; !ok {
		return false
	}
	delete(conns, client)
	close(client.send)
	close(client.done)

	if len(conns) == 0 {
		delete(h.clients, userID)
		h.broadcastPresence(userID, "offline")
	}
	return true
}

// broadcastPresence sends online/offline to all other connected users.
func (h *Hub) broadcastPresence(userID uuid.UUID, status string) {
	evt, err := NewEvent(EventTypePresence, nil, PresencePayload{
		UserID: userID,
		Status: status,
	})
	if err != nil {
		return
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return
	}
	for id, conns := range h.clients {
		if id == userID {
			continue
		}
		for client := range conns {
			select {
			case client.send <- data:
			default:
			}
		}
	}
}
