package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/service"
	"github.com/vedran77/lobby/internal/transport/http/middleware"
	"github.com/vedran77/lobby/pkg/validator"
)

// GameList accepts either a single game name or a list of names.
type GameList []string

func (g *GameList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*g = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*g = GameList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*g = many
	return nil
}

type UserHandler struct {
	profileService  *service.ProfileService
	presenceService *service.PresenceService
	notifier        PresenceNotifier
}

// PresenceNotifier is told when a user's active games change.
type PresenceNotifier interface {
	NotifyPresence(userID uuid.UUID, activeGames []string)
}

func NewUserHandler(profileService *service.ProfileService, presenceService *service.PresenceService) *UserHandler {
	return &UserHandler{profileService: profileService, presenceService: presenceService}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (h *UserHandler) SetNotifier(n PresenceNotifier) {
	h.notifier = n
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	user, err := h.profileService.Me(r.Context(), caller)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			writeInternal(w, r, "get me", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	var input service.UpdateProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateProfile(validator.ProfileFields{
		Name:          input.Name,
		Gamertag:      input.Gamertag,
		Description:   input.Description,
		Avatar:        input.Avatar,
		FavoriteGames: input.FavoriteGames,
		Platforms:     input.Platforms,
	}); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	user, err := h.profileService.UpdateMe(r.Context(), caller, input)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			writeInternal(w, r, "update profile", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	user, err := h.profileService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			writeInternal(w, r, "get user", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.profileService.List(r.Context())
	if err != nil {
		writeInternal(w, r, "list users", err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	var input struct {
		Game GameList `json:"game"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}

	user, err := h.presenceService.SetActive(r.Context(), caller, input.Game)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoGames):
			writeValidationErrors(w, validator.ValidationErrors{"game": "Game is required"})
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		default:
			writeInternal(w, r, "set active", err)
		}
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyPresence(user.ID, user.ActiveGames)
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) SetInactive(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	user, err := h.presenceService.SetInactive(r.Context(), caller)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
		} else {
			writeInternal(w, r, "set inactive", err)
		}
		return
	}

	if h.notifier != nil {
		h.notifier.NotifyPresence(user.ID, user.ActiveGames)
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Members(w http.ResponseWriter, r *http.Request) {
	users, err := h.presenceService.ListMembers(r.Context(), r.URL.Query().Get("game"))
	if err != nil {
		if errors.Is(err, service.ErrMissingGame) {
			writeValidationErrors(w, validator.ValidationErrors{"game": "Game query parameter is required"})
		} else {
			writeInternal(w, r, "list members", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, users)
}
