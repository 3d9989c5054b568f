package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/service"
	"github.com/vedran77/lobby/internal/transport/http/middleware"
	"github.com/vedran77/lobby/pkg/validator"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())

	chats, err := h.chatService.ListChats(r.Context(), caller)
	if err != nil {
		writeInternal(w, r, "list chats", err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())
	otherID, err := uuid.Parse(r.PathValue("otherId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	chat, err := h.chatService.OpenChat(r.Context(), caller, otherID)
	if err != nil {
		h.writeChatError(w, r, "open chat", err)
		return
	}

	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())
	otherID, err := uuid.Parse(r.PathValue("otherId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid user ID")
		return
	}

	var input struct {
		Text string `json:"text"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if errs := validator.ValidateMessage(input.Text); errs.HasErrors() {
		writeValidationErrors(w, errs)
		return
	}

	chat, err := h.chatService.SendMessage(r.Context(), caller, otherID, input.Text)
	if err != nil {
		h.writeChatError(w, r, "send message", err)
		return
	}

	writeJSON(w, http.StatusCreated, chat)
}

func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetIdentity(r.Context())
	chatID, err := uuid.Parse(r.PathValue("chatId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid chat ID")
		return
	}

	if err := h.chatService.DeleteChat(r.Context(), caller, chatID); err != nil {
		h.writeChatError(w, r, "delete chat", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChatHandler) writeChatError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrCannotChatSelf):
		writeError(w, http.StatusBadRequest, "CANNOT_CHAT_SELF", "Cannot start a chat with yourself")
	case errors.Is(err, service.ErrEmptyMessage):
		writeValidationErrors(w, validator.ValidationErrors{"text": "Message text is required"})
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "User not found")
	case errors.Is(err, service.ErrChatNotFound):
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Chat not found")
	case errors.Is(err, service.ErrNotParticipant):
		writeError(w, http.StatusForbidden, "NOT_PARTICIPANT", "You are not a participant of this chat")
	default:
		writeServiceError(w, r, op, err)
	}
}
