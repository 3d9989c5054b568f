package ws

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"

	"github.com/vedran77/lobby/internal/domain"
	"nhooyr.io/websocket"
)

// Authenticator resolves a token to an identity.
type Authenticator interface {
	Authenticate(token string) (domain.Identity, error)
}

// ServeWS returns an HTTP handler that upgrades to WebSocket.
// Auth is done via ?token=xxx query param (WebSocket can't send headers).
// origins is the CORS origin list (e.g. "https://app.example.com"); "*"
// allows any origin.
func ServeWS(hub *Hub, auth Authenticator, origins []string) http.HandlerFunc {
	opts := &websocket.AcceptOptions{}
	if slices.Contains(origins, "*") {
		opts.InsecureSkipVerify = true
	} else {
		opts.OriginPatterns = originPatterns(origins)
	}

	return func(w http.ResponseWriter, r *http.Request) {
		tokenStr := r.URL.Query().Get("token")
		if tokenStr == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		identity, err := auth.Authenticate(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			slog.Warn("ws accept failed", "error", err)
			return
		}
		conn.SetReadLimit(maxMessageSize)

		client := NewClient(hub, conn, identity)
		select {
		case hub.register <- client:
		case <-hub.stopped:
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}

		// Start read/write pumps in goroutines
		go client.WritePump()
		go client.ReadPump()
	}
}

// originPatterns turns CORS origins into the host patterns the WebSocket
// accept check matches against. Entries without a scheme are kept as given.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Scheme != "" && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}
