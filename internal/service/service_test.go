package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository/sqlite"
)

type testEnv struct {
	store    *sqlite.Store
	auth     *AuthService
	chats    *ChatService
	presence *PresenceService
	profiles *ProfileService
	games    *GameService
	notifier *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "lobby.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	env := &testEnv{
		store:    store,
		auth:     NewAuthService(store.Users(), "test-secret", testTokenTTL, []string{"Boss@Example.com"}),
		chats:    NewChatService(store.Chats(), store.Users()),
		presence: NewPresenceService(store.Users()),
		profiles: NewProfileService(store.Users()),
		games:    NewGameService(store.Games()),
		notifier: &recordingNotifier{},
	}
	env.chats.SetNotifier(env.notifier)
	return env
}

// register creates an account and returns the identity its token carries.
func (e *testEnv) register(t *testing.T, name, email string) domain.Identity {
	t.Helper()
	resp, err := e.auth.Register(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	id, err := e.auth.Authenticate(resp.AccessToken)
	if err != nil {
		t.Fatalf("authenticate %s: %v", email, err)
	}
	return id
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []*domain.ChatMessage
}

func (n *recordingNotifier) NotifyChatMessage(_ *domain.Chat, msg *domain.ChatMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, msg)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.events)
}
