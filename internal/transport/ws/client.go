package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/service"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	writeWait      = 10 * time.Second
	pingInterval   = 30 * time.Second
	maxMessageSize = 8192
	sendBufSize    = 256
)

// Client represents a single WebSocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	identity domain.Identity

	send chan []byte
	done chan struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, identity domain.Identity) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		identity: identity,
		send:     make(chan []byte, sendBufSize),
		done:     make(chan struct{}),
	}
}

// ReadPump reads messages from the WebSocket and routes them to the Hub.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.stopped:
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		var raw json.RawMessage
		err := wsjson.Read(context.Background(), c.conn, &raw)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("ws client closed", "user_id", c.identity.UserID)
			} else {
				slog.Debug("ws read error", "user_id", c.identity.UserID, "error", err)
			}
			return
		}

		c.handleFrame(raw)
	}
}

// WritePump writes messages from the send channel to the WebSocket.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("ws write error", "user_id", c.identity.UserID, "error", err)
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				slog.Debug("ws ping error", "user_id", c.identity.UserID, "error", err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// handleFrame routes an incoming client frame.
func (c *Client) handleFrame(raw json.RawMessage) {
	var event Event
	if err := json.Unmarshal(raw, &event); err != nil {
		c.sendError("INVALID_EVENT", "frame is not a JSON event")
		return
	}

	switch event.Type {
	case EventTypeChatMessage:
		if c.hub.scope == ScopeGlobal {
			c.hub.relay(raw)
			return
		}
		c.sendChatMessage(event.Payload)

	case EventTypePing:
		c.sendPong()

	default:
		c.sendError("UNKNOWN_EVENT", "unknown event type: "+event.Type)
	}
}

// sendChatMessage persists the message; the chat service's notifier fans
// it out to the participants.
func (c *Client) sendChatMessage(payload json.RawMessage) {
	var p ChatSendPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.sendError("INVALID_PAYLOAD", "invalid chat message payload")
		return
	}
	if strings.TrimSpace(p.Text) == "" {
		c.sendError("INVALID_PAYLOAD", "text is required")
		return
	}
	if c.hub.sender == nil {
		c.sendError("UNAVAILABLE", "chat is not available")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if _, err := c.hub.sender.SendMessage(ctx, c.identity, p.To, p.Text); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalid):
			c.sendError("INVALID_PAYLOAD", err.Error())
		case errors.Is(err, service.ErrNotFound):
			c.sendError("NOT_FOUND", err.Error())
		case errors.Is(err, service.ErrForbidden):
			c.sendError("FORBIDDEN", err.Error())
		default:
			slog.Error("ws send message failed", "user_id", c.identity.UserID, "error", err)
			c.sendError("INTERNAL", "Something went wrong")
		}
	}
}

// Replies go through the hub, which owns the send channel.

func (c *Client) sendPong() {
	c.hub.reply(c, &Event{Type: EventTypePong, Timestamp: time.Now().Unix()})
}

func (c *Client) sendError(code, message string) {
	evt, err := NewEvent(EventTypeError, nil, ErrorPayload{Code: code, Message: message})
	if err != nil {
		return
	}
	c.hub.reply(c, evt)
}
