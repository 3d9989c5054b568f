package handlers

import (
	"net/http"

	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/transport/http/middleware"
)

// Router groups the handlers served under /api/v1.
type Router struct {
	Auth   *AuthHandler
	Users  *UserHandler
	Chats  *ChatHandler
	Games  *GameHandler
	Health *HealthHandler
}

func (rt Router) Register(mux *http.ServeMux, authn middleware.Authenticator) {
	auth := middleware.Auth(authn)
	admin := func(h http.HandlerFunc) http.Handler {
		return auth(middleware.RequireRole(domain.RoleAdmin)(h))
	}
	user := func(h http.HandlerFunc) http.Handler {
		return auth(h)
	}

	// Public
	mux.HandleFunc("GET /health", rt.Health.Health)
	mux.HandleFunc("POST /api/v1/auth/register", rt.Auth.Register)
	mux.HandleFunc("POST /api/v1/auth/login", rt.Auth.Login)

	// Games
	mux.Handle("GET /api/v1/games", user(rt.Games.List))
	mux.Handle("POST /api/v1/games", admin(rt.Games.Add))

	// Users and presence
	mux.Handle("GET /api/v1/users", admin(rt.Users.List))
	mux.Handle("GET /api/v1/users/{id}", user(rt.Users.Get))
	mux.Handle("GET /api/v1/me", user(rt.Users.Me))
	mux.Handle("PUT /api/v1/me", user(rt.Users.UpdateMe))
	mux.Handle("POST /api/v1/me/active", user(rt.Users.SetActive))
	mux.Handle("POST /api/v1/me/inactive", user(rt.Users.SetInactive))
	mux.Handle("GET /api/v1/members", user(rt.Users.Members))

	// Chats
	mux.Handle("GET /api/v1/chats", user(rt.Chats.List))
	mux.Handle("GET /api/v1/chats/{otherId}", user(rt.Chats.Open))
	mux.Handle("POST /api/v1/chats/{otherId}", user(rt.Chats.Send))
	mux.Handle("DELETE /api/v1/chats/{chatId}", user(rt.Chats.Delete))
}
