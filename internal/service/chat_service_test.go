package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/lobby/internal/domain"
)

func TestOpenChatIsIdempotentAndSymmetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	first, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	again, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("reopen chat: %v", err)
	}
	reverse, err := env.chats.OpenChat(ctx, bob, ana.UserID)
	if err != nil {
		t.Fatalf("open chat from other side: %v", err)
	}

	if first.ID != again.ID || first.ID != reverse.ID {
		t.Fatalf("chat ids differ: %s %s %s", first.ID, again.ID, reverse.ID)
	}
	if len(first.Participants) != 2 {
		t.Fatalf("participants = %d, want 2", len(first.Participants))
	}
	if first.Messages == nil || len(first.Messages) != 0 {
		t.Fatalf("messages = %v, want empty list", first.Messages)
	}
}

func TestOpenChatConcurrentCallersShareOneChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	const workers = 12
	ids := make([]uuid.UUID, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			caller, other := ana, bob.UserID
			if i%2 == 1 {
				caller, other = bob, ana.UserID
			}
			chat, err := env.chats.OpenChat(ctx, caller, other)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = chat.ID
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	for i, id := range ids {
		if id != ids[0] {
			t.Fatalf("worker %d got chat %s, want %s", i, id, ids[0])
		}
	}

	chats, err := env.chats.ListChats(ctx, ana)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) != 1 {
		t.Fatalf("chats = %d, want 1", len(chats))
	}
}

func TestOpenChatRejectsSelfAndUnknownUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")

	if _, err := env.chats.OpenChat(ctx, ana, ana.UserID); !errors.Is(err, ErrCannotChatSelf) {
		t.Fatalf("self chat err = %v, want ErrCannotChatSelf", err)
	}
	if _, err := env.chats.OpenChat(ctx, ana, uuid.New()); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("unknown user err = %v, want ErrUserNotFound", err)
	}

	ghost := domain.Identity{UserID: uuid.New(), Role: domain.RoleUser}
	if _, err := env.chats.OpenChat(ctx, ghost, ana.UserID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown caller err = %v, want not found", err)
	}
}

func TestSendMessageAppendsExactlyOne(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	chat, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	prevCount, prevUpdated := len(chat.Messages), chat.UpdatedAt

	texts := []string{"hi", "  gg  ", "rematch?"}
	for i, text := range texts {
		sender, other := ana, bob.UserID
		if i%2 == 1 {
			sender, other = bob, ana.UserID
		}
		updated, err := env.chats.SendMessage(ctx, sender, other, text)
		if err != nil {
			t.Fatalf("send %q: %v", text, err)
		}
		if updated.ID != chat.ID {
			t.Fatalf("message landed in chat %s, want %s", updated.ID, chat.ID)
		}
		if len(updated.Messages) != prevCount+1 {
			t.Fatalf("messages = %d, want %d", len(updated.Messages), prevCount+1)
		}
		if updated.UpdatedAt.Before(prevUpdated) {
			t.Fatalf("updatedAt went back from %v to %v", prevUpdated, updated.UpdatedAt)
		}
		last := updated.Messages[len(updated.Messages)-1]
		if last.SenderID != sender.UserID || last.Seq != int64(i+1) {
			t.Fatalf("last message = %+v", last)
		}
		prevCount, prevUpdated = len(updated.Messages), updated.UpdatedAt
	}

	if got := chat.Messages; len(got) != 0 {
		t.Fatalf("original snapshot mutated: %v", got)
	}
	if env.notifier.count() != len(texts) {
		t.Fatalf("notifications = %d, want %d", env.notifier.count(), len(texts))
	}
	if env.notifier.events[1].Text != "gg" {
		t.Fatalf("stored text = %q, want trimmed", env.notifier.events[1].Text)
	}
}

func TestSendMessageCreatesChatOnFirstContact(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	chat, err := env.chats.SendMessage(ctx, ana, bob.UserID, "first")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(chat.Messages) != 1 || chat.Messages[0].SenderName != "Ana" {
		t.Fatalf("messages = %+v", chat.Messages)
	}

	opened, err := env.chats.OpenChat(ctx, bob, ana.UserID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if opened.ID != chat.ID {
		t.Fatalf("open returned chat %s, want %s", opened.ID, chat.ID)
	}
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	for _, text := range []string{"", "   ", "\n\t"} {
		if _, err := env.chats.SendMessage(ctx, ana, bob.UserID, text); !errors.Is(err, ErrEmptyMessage) {
			t.Fatalf("text %q: err = %v, want ErrEmptyMessage", text, err)
		}
	}
	chats, err := env.chats.ListChats(ctx, ana)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 0 {
		t.Fatalf("rejected message created %d chats", len(chats))
	}
	if env.notifier.count() != 0 {
		t.Fatal("rejected message was broadcast")
	}
}

func TestSendMessageConcurrentSendersGetDistinctSeqs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")

	const perSide = 8
	var wg sync.WaitGroup
	errs := make(chan error, 2*perSide)
	for i := 0; i < perSide; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := env.chats.SendMessage(ctx, ana, bob.UserID, "from ana"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := env.chats.SendMessage(ctx, bob, ana.UserID, "from bob"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("send: %v", err)
	}

	chat, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(chat.Messages) != 2*perSide {
		t.Fatalf("messages = %d, want %d", len(chat.Messages), 2*perSide)
	}
	for i, m := range chat.Messages {
		if m.Seq != int64(i+1) {
			t.Fatalf("message %d has seq %d", i, m.Seq)
		}
	}
}

func TestListChatsOrderedByActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	cat := env.register(t, "Cat", "cat@example.com")

	// Ahead of the wall clock so message times, not creation times, decide.
	base := time.Now().UTC().Add(time.Hour).Truncate(time.Millisecond)
	clock := base
	env.chats.now = func() time.Time { return clock }

	withBob, err := env.chats.SendMessage(ctx, ana, bob.UserID, "hi bob")
	if err != nil {
		t.Fatalf("send bob: %v", err)
	}
	clock = base.Add(time.Minute)
	withCat, err := env.chats.SendMessage(ctx, ana, cat.UserID, "hi cat")
	if err != nil {
		t.Fatalf("send cat: %v", err)
	}

	chats, err := env.chats.ListChats(ctx, ana)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(chats) != 2 || chats[0].ID != withCat.ID || chats[1].ID != withBob.ID {
		t.Fatalf("order = %v", chatIDs(chats))
	}

	clock = base.Add(2 * time.Minute)
	if _, err := env.chats.SendMessage(ctx, bob, ana.UserID, "back"); err != nil {
		t.Fatalf("send back: %v", err)
	}
	chats, err = env.chats.ListChats(ctx, ana)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if chats[0].ID != withBob.ID {
		t.Fatalf("order after reply = %v", chatIDs(chats))
	}

	onlyCat, err := env.chats.ListChats(ctx, cat)
	if err != nil {
		t.Fatalf("list cat: %v", err)
	}
	if len(onlyCat) != 1 || onlyCat[0].ID != withCat.ID {
		t.Fatalf("cat sees %v", chatIDs(onlyCat))
	}
}

func TestListChatsEmpty(t *testing.T) {
	env := newTestEnv(t)
	ana := env.register(t, "Ana", "ana@example.com")

	chats, err := env.chats.ListChats(context.Background(), ana)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if chats == nil || len(chats) != 0 {
		t.Fatalf("chats = %v, want empty non-nil", chats)
	}
}

func TestDeleteChat(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.register(t, "Ana", "ana@example.com")
	bob := env.register(t, "Bob", "bob@example.com")
	eve := env.register(t, "Eve", "eve@example.com")

	chat, err := env.chats.SendMessage(ctx, ana, bob.UserID, "secret plans")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if err := env.chats.DeleteChat(ctx, eve, chat.ID); !errors.Is(err, ErrNotParticipant) || !errors.Is(err, ErrForbidden) {
		t.Fatalf("outsider delete err = %v, want ErrNotParticipant", err)
	}
	intact, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("open after refused delete: %v", err)
	}
	if intact.ID != chat.ID || len(intact.Messages) != 1 {
		t.Fatalf("chat changed after refused delete: %+v", intact)
	}

	if err := env.chats.DeleteChat(ctx, bob, chat.ID); err != nil {
		t.Fatalf("participant delete: %v", err)
	}
	if err := env.chats.DeleteChat(ctx, bob, chat.ID); !errors.Is(err, ErrChatNotFound) {
		t.Fatalf("second delete err = %v, want ErrChatNotFound", err)
	}

	fresh, err := env.chats.OpenChat(ctx, ana, bob.UserID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if fresh.ID == chat.ID || len(fresh.Messages) != 0 {
		t.Fatalf("reopened chat = %+v, want a new empty chat", fresh)
	}
}

func chatIDs(chats []domain.Chat) []uuid.UUID {
	ids := make([]uuid.UUID, len(chats))
	for i, c := range chats {
		ids[i] = c.ID
	}
	return ids
}
