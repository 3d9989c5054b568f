package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
	"github.com/vedran77/lobby/internal/repository"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "lobby.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createUser(t *testing.T, store *Store, email, name string) *domain.User {
	t.Helper()
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	u := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lobby.db")
	first, err := Open(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	_ = first.Close()

	second, err := Open(path)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	_ = second.Close()
}

func TestUserRoundTripAndDuplicateEmail(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	users := store.Users()

	u := createUser(t, store, "ana@example.com", "Ana")

	got, err := users.GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got == nil || got.ID != u.ID || got.Name != "Ana" {
		t.Fatalf("get by email = %+v, want id %s", got, u.ID)
	}
	if len(got.ActiveGames) != 0 || got.FavoriteGames == nil {
		t.Fatalf("list columns not decoded: %+v", got)
	}

	missing, err := users.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("get missing = %v, %v; want nil, nil", missing, err)
	}

	dup := *u
	dup.ID = uuid.New()
	if err := users.Create(ctx, &dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate create err = %v, want ErrDuplicate", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	u := createUser(t, store, "ana@example.com", "Ana")

	u.Gamertag = "ana_gg"
	u.FavoriteGames = []string{"Chess", "Go"}
	u.Platforms = []string{"pc"}
	u.UpdatedAt = u.UpdatedAt.Add(time.Minute)
	if err := store.Users().UpdateProfile(ctx, u); err != nil {
		t.Fatalf("update profile: %v", err)
	}

	got, err := store.Users().GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Gamertag != "ana_gg" || len(got.FavoriteGames) != 2 || got.Platforms[0] != "pc" {
		t.Fatalf("profile not persisted: %+v", got)
	}
}

func TestListActiveByGameMatchesPrimaryGame(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	users := store.Users()

	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	c := createUser(t, store, "c@example.com", "Charlie")
	now := time.Now()

	if err := users.SetActiveGames(ctx, a.ID, []string{"chess", "go"}, now); err != nil {
		t.Fatal(err)
	}
	if err := users.SetActiveGames(ctx, b.ID, []string{"go", "chess"}, now); err != nil {
		t.Fatal(err)
	}
	if err := users.SetActiveGames(ctx, c.ID, []string{"chess"}, now); err != nil {
		t.Fatal(err)
	}
	if err := users.SetActiveGames(ctx, c.ID, nil, now); err != nil {
		t.Fatal(err)
	}

	members, err := users.ListActiveByGame(ctx, "chess")
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].ID != a.ID {
		t.Fatalf("members = %+v, want only %s", members, a.Name)
	}
}

func TestFindOrCreateIsIdempotent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	u1, u2 := domain.CanonicalPair(a.ID, b.ID)

	first, err := store.Chats().FindOrCreate(ctx, u1, u2)
	if err != nil {
		t.Fatalf("first find or create: %v", err)
	}
	second, err := store.Chats().FindOrCreate(ctx, u1, u2)
	if err != nil {
		t.Fatalf("second find or create: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("chat ids differ: %s vs %s", first.ID, second.ID)
	}
	if len(first.Participants) != 2 || first.Participants[0].ID != u1 {
		t.Fatalf("participants = %+v", first.Participants)
	}
}

func TestFindOrCreateConcurrentCallsShareOneChat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	u1, u2 := domain.CanonicalPair(a.ID, b.ID)

	const workers = 16
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			chat, err := store.Chats().FindOrCreate(ctx, u1, u2)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = chat.ID
		}(i)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
		if ids[i] != ids[0] {
			t.Fatalf("worker %d got chat %s, worker 0 got %s", i, ids[i], ids[0])
		}
	}

	chats, err := store.Chats().ListByUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("chats for pair = %d, want 1", len(chats))
	}
}

func TestFindOrCreateRacingDeleteAlwaysReturnsChat(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	u1, u2 := domain.CanonicalPair(a.ID, b.ID)

	const rounds = 50
	var wg sync.WaitGroup
	errs := make(chan error, 2*rounds)
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			chat, err := store.Chats().FindOrCreate(ctx, u1, u2)
			if err != nil {
				errs <- err
				continue
			}
			if chat == nil || chat.User1ID != u1 || chat.User2ID != u2 {
				errs <- errors.New("find or create returned a wrong chat")
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			chats, err := store.Chats().ListByUser(ctx, a.ID)
			if err != nil {
				errs <- err
				continue
			}
			for _, c := range chats {
				if err := store.Chats().Delete(ctx, c.ID); err != nil {
					errs <- err
				}
			}
		}
	}()
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Fatalf("concurrent find or create and delete: %v", err)
	}
}

func TestAppendMessageAssignsSequenceAndAdvancesUpdatedAt(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	u1, u2 := domain.CanonicalPair(a.ID, b.ID)
	chat, err := store.Chats().FindOrCreate(ctx, u1, u2)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}

	prev := chat.UpdatedAt
	base := time.Now().Add(time.Second)
	for i, text := range []string{"gg", "rematch?", "sure"} {
		msg := &domain.ChatMessage{
			ID:        uuid.New(),
			ChatID:    chat.ID,
			SenderID:  a.ID,
			Text:      text,
			CreatedAt: base.Add(time.Duration(i) * time.Millisecond * 5),
		}
		if err := store.Chats().AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append %q: %v", text, err)
		}
		if msg.Seq != int64(i+1) {
			t.Fatalf("seq = %d, want %d", msg.Seq, i+1)
		}

		got, err := store.Chats().GetByID(ctx, chat.ID)
		if err != nil {
			t.Fatalf("get chat: %v", err)
		}
		if got.UpdatedAt.Before(prev) {
			t.Fatalf("updated_at went backwards: %v < %v", got.UpdatedAt, prev)
		}
		prev = got.UpdatedAt
	}

	// An older timestamp must not move updated_at back.
	late := &domain.ChatMessage{ID: uuid.New(), ChatID: chat.ID, SenderID: b.ID, Text: "late", CreatedAt: base.Add(-time.Hour)}
	if err := store.Chats().AppendMessage(ctx, late); err != nil {
		t.Fatalf("append late: %v", err)
	}
	got, _ := store.Chats().GetByID(ctx, chat.ID)
	if got.UpdatedAt.Before(prev) {
		t.Fatalf("updated_at regressed to %v", got.UpdatedAt)
	}

	messages, err := store.Chats().ListMessages(ctx, chat.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(messages))
	}
	for i, m := range messages {
		if m.Seq != int64(i+1) {
			t.Fatalf("message %d seq = %d", i, m.Seq)
		}
	}
	if messages[0].SenderName != "Alpha" || messages[3].SenderName != "Bravo" {
		t.Fatalf("sender names not joined: %+v", messages)
	}
}

func TestListByUserOrdersByUpdatedAtDesc(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	c := createUser(t, store, "c@example.com", "Charlie")

	ab := openChat(t, store, a.ID, b.ID)
	ac := openChat(t, store, a.ID, c.ID)

	now := time.Now().Add(time.Minute)
	addMessage := func(chatID uuid.UUID, at time.Time) {
		msg := &domain.ChatMessage{ID: uuid.New(), ChatID: chatID, SenderID: a.ID, Text: "hi", CreatedAt: at}
		if err := store.Chats().AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	addMessage(ac.ID, now)
	addMessage(ab.ID, now.Add(time.Second))

	chats, err := store.Chats().ListByUser(ctx, a.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 2 || chats[0].ID != ab.ID || chats[1].ID != ac.ID {
		t.Fatalf("order = %v, want ab then ac", chats)
	}

	bChats, _ := store.Chats().ListByUser(ctx, b.ID)
	if len(bChats) != 1 {
		t.Fatalf("b chats = %d, want 1", len(bChats))
	}
}

func TestDeleteRemovesMessages(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	a := createUser(t, store, "a@example.com", "Alpha")
	b := createUser(t, store, "b@example.com", "Bravo")
	chat := openChat(t, store, a.ID, b.ID)
	msg := &domain.ChatMessage{ID: uuid.New(), ChatID: chat.ID, SenderID: a.ID, Text: "bye", CreatedAt: time.Now()}
	if err := store.Chats().AppendMessage(ctx, msg); err != nil {
		t.Fatal(err)
	}

	if err := store.Chats().Delete(ctx, chat.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, err := store.Chats().GetByID(ctx, chat.ID)
	if err != nil || got != nil {
		t.Fatalf("get after delete = %v, %v", got, err)
	}
	messages, err := store.Chats().ListMessages(ctx, chat.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(messages) != 0 {
		t.Fatalf("messages survived delete: %d", len(messages))
	}
}

func TestGamesUniqueName(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	games := store.Games()

	for _, name := range []string{"Go", "Chess"} {
		if err := games.Create(ctx, &domain.Game{ID: uuid.New(), Name: name, CreatedAt: time.Now()}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	err := games.Create(ctx, &domain.Game{ID: uuid.New(), Name: "Chess", CreatedAt: time.Now()})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate game err = %v", err)
	}

	list, err := games.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Name != "Chess" {
		t.Fatalf("list = %+v, want sorted by name", list)
	}
}

func openChat(t *testing.T, store *Store, a, b uuid.UUID) *domain.Chat {
	t.Helper()
	u1, u2 := domain.CanonicalPair(a, b)
	chat, err := store.Chats().FindOrCreate(context.Background(), u1, u2)
	if err != nil {
		t.Fatalf("find or create: %v", err)
	}
	return chat
}
