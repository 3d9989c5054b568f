package service

import (
	"errors"
	"fmt"
)

// Error categories. Every sentinel below wraps exactly one of them so the
// transport layer can map whole classes to a status code.
var (
	ErrInvalid      = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	ErrEmailTaken   = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrInvalidCreds = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)
	ErrInvalidToken = fmt.Errorf("invalid or expired token: %w", ErrUnauthorized)

	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)

	ErrChatNotFound   = fmt.Errorf("chat %w", ErrNotFound)
	ErrNotParticipant = fmt.Errorf("you are not a participant of this chat: %w", ErrForbidden)
	ErrCannotChatSelf = fmt.Errorf("cannot start a chat with yourself: %w", ErrInvalid)
	ErrEmptyMessage   = fmt.Errorf("message text is required: %w", ErrInvalid)

	ErrNoGames        = fmt.Errorf("game is required to set active: %w", ErrInvalid)
	ErrMissingGame    = fmt.Errorf("game query is required: %w", ErrInvalid)
	ErrGameNameNeeded = fmt.Errorf("game name is required: %w", ErrInvalid)
	ErrGameExists     = fmt.Errorf("game already exists: %w", ErrConflict)
	ErrAdminOnly      = fmt.Errorf("admin access required: %w", ErrForbidden)
)
