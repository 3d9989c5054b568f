package handlers

import (
	"errors"
	"net/http"

	"github.com/vedran77/lobby/internal/service"
	"github.com/vedran77/lobby/pkg/validator"
)

type GameHandler struct {
	gameService *service.GameService
}

func NewGameHandler(gameService *service.GameService) *GameHandler {
	return &GameHandler{gameService: gameService}
}

func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.gameService.List(r.Context())
	if err != nil {
		writeInternal(w, r, "list games", err)
		return
	}

	writeJSON(w, http.StatusOK, games)
}

func (h *GameHandler) Add(w http.ResponseWriter, r *http.Request) {
	var input service.AddGameInput
	if !decodeJSON(w, r, &input) {
		return
	}

	if errs := validator.ValidateGame(input.Name, input.ImageURL); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	game, err := h.gameService.Add(r.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGameExists):
			writeError(w, http.StatusConflict, "GAME_EXISTS", "Game already exists")
		default:
			writeServiceError(w, r, "add game", err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, game)
}
