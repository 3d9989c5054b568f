package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

// Notifier pushes real-time events to connected clients.
type Notifier interface {
	NotifyChatMessage(chat *domain.Chat, msg *domain.ChatMessage)
}

type ChatService struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	notifier Notifier
	now      func() time.Time
}

func NewChatService(chatRepo repository.ChatRepository, userRepo repository.UserRepository) *ChatService {
	return &ChatService{
		chatRepo: chatRepo,
		userRepo: userRepo,
		now:      time.Now,
	}
}

// SetNotifier sets the real-time notifier (optional dependency).
func (s *ChatService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ListChats returns the caller's chats, most recently active first.
func (s *ChatService) ListChats(ctx context.Context, caller domain.Identity) ([]domain.Chat, error) {
	chats, err := s.chatRepo.ListByUser(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing chats: %w", err)
	}
	if chats == nil {
		chats = []domain.Chat{}
	}
	return chats, nil
}

// OpenChat finds or creates the chat between the caller and otherID and
// returns it with its messages.
func (s *ChatService) OpenChat(ctx context.Context, caller domain.Identity, otherID uuid.UUID) (*domain.Chat, error) {
	chat, err := s.lookupOrCreate(ctx, caller.UserID, otherID)
	if err != nil {
		return nil, err
	}
	if err := s.loadMessages(ctx, chat); err != nil {
		return nil, err
	}
	return chat, nil
}

// SendMessage appends text to the chat with otherID, creating the chat on
// first contact, and returns the updated chat.
func (s *ChatService) SendMessage(ctx context.Context, caller domain.Identity, otherID uuid.UUID, text string) (*domain.Chat, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	chat, err := s.lookupOrCreate(ctx, caller.UserID, otherID)
	if err != nil {
		return nil, err
	}

	msg, err := s.appendMessage(ctx, chat, caller.UserID, text)
	if err != nil {
		return nil, err
	}

	updated, err := s.chatRepo.GetByID(ctx, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading chat: %w", err)
	}
	if updated == nil {
		// Deleted by the other participant between append and reload.
		return nil, ErrChatNotFound
	}
	if err := s.loadMessages(ctx, updated); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyChatMessage(updated, msg)
	}

	return updated, nil
}

// DeleteChat removes a chat and its messages. Only participants may do so.
func (s *ChatService) DeleteChat(ctx context.Context, caller domain.Identity, chatID uuid.UUID) error {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return fmt.Errorf("loading chat: %w", err)
	}
	if chat == nil {
		return ErrChatNotFound
	}
	if !chat.HasParticipant(caller.UserID) {
		return ErrNotParticipant
	}

	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return fmt.Errorf("deleting chat: %w", err)
	}
	return nil
}

func (s *ChatService) lookupOrCreate(ctx context.Context, userID, otherID uuid.UUID) (*domain.Chat, error) {
	if userID == otherID {
		return nil, ErrCannotChatSelf
	}

	for _, id := range []uuid.UUID{userID, otherID} {
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("looking up user: %w", err)
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	u1, u2 := domain.CanonicalPair(userID, otherID)
	chat, err := s.chatRepo.FindOrCreate(ctx, u1, u2)
	if err != nil {
		return nil, fmt.Errorf("find or create chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) appendMessage(ctx context.Context, chat *domain.Chat, senderID uuid.UUID, text string) (*domain.ChatMessage, error) {
	if !chat.HasParticipant(senderID) {
		return nil, ErrNotParticipant
	}

	msg := &domain.ChatMessage{
		ID:        uuid.New(),
		ChatID:    chat.ID,
		SenderID:  senderID,
		Text:      text,
		CreatedAt: s.now().UTC(),
	}
	if err := s.chatRepo.AppendMessage(ctx, msg); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrChatNotFound
		}
		return nil, fmt.Errorf("appending message: %w", err)
	}

	for _, p := range chat.Participants {
		if p.ID == senderID {
			msg.SenderName, msg.SenderAvatar = p.Name, p.Avatar
		}
	}
	return msg, nil
}

func (s *ChatService) loadMessages(ctx context.Context, chat *domain.Chat) error {
	messages, err := s.chatRepo.ListMessages(ctx, chat.ID)
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}
	if messages == nil {
		messages = []domain.ChatMessage{}
	}
	chat.Messages = messages
	return nil
}
