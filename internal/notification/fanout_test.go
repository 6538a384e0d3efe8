package notification

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	id "campusforum/pkg/domain"
)

type subscriberSourceStub struct {
	subscribers []id.UserID
	err         error
}

func (s *subscriberSourceStub) SubscribersOf(context.Context, id.ThreadID) ([]id.UserID, error) {
	return s.subscribers, s.err
}

// failingStore rejects writes for the configured user ids.
type failingStore struct {
	*InMemoryStore
	mu      sync.Mutex
	failFor map[id.UserID]bool
}

func (s *failingStore) Create(ctx context.Context, n Notification) error {
	s.mu.Lock()
	fail := s.failFor[n.UserID]
	s.mu.Unlock()
	if fail {
		return errors.New("store unavailable")
	}
	return s.InMemoryStore.Create(ctx, n)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNotifyNewReply_SkipsReplyAuthor(t *testing.T) {
	author := id.UserID(uuid.New())
	other1 := id.UserID(uuid.New())
	other2 := id.UserID(uuid.New())

	store := NewInMemoryStore()
	fanout := NewFanOut(
		&subscriberSourceStub{subscribers: []id.UserID{other1, author, other2}},
		store, testLogger(), nil)

	threadID := id.ThreadID(uuid.New())
	delivered, err := fanout.NotifyNewReply(context.Background(), threadID, "Exam schedule", author)
	require.NoError(t, err)
	require.Equal(t, 2, delivered)

	authorInbox, err := store.ListByUser(context.Background(), author)
	require.NoError(t, err)
	require.Empty(t, authorInbox, "reply author must not be notified of their own reply")

	for _, subscriber := range []id.UserID{other1, other2} {
		inbox, err := store.ListByUser(context.Background(), subscriber)
		require.NoError(t, err)
		require.Len(t, inbox, 1)
		require.Equal(t, id.NotificationNewReply, inbox[0].Type)
		require.Equal(t, "New reply in thread: Exam schedule", inbox[0].Message)
		require.NotNil(t, inbox[0].ThreadID)
		require.Equal(t, threadID, *inbox[0].ThreadID)
	}
}

func TestNotifyNewReply_NoSubscribersIsNoOp(t *testing.T) {
	store := NewInMemoryStore()
	fanout := NewFanOut(&subscriberSourceStub{}, store, testLogger(), nil)

	delivered, err := fanout.NotifyNewReply(context.Background(), id.ThreadID(uuid.New()), "t", id.UserID(uuid.New()))
	require.NoError(t, err)
	require.Zero(t, delivered)
}

func TestNotifyNewReply_OneFailureDoesNotBlockOthers(t *testing.T) {
	author := id.UserID(uuid.New())
	healthy := id.UserID(uuid.New())
	broken := id.UserID(uuid.New())

	store := &failingStore{
		InMemoryStore: NewInMemoryStore(),
		failFor:       map[id.UserID]bool{broken: true},
	}
	fanout := NewFanOut(
		&subscriberSourceStub{subscribers: []id.UserID{broken, healthy}},
		store, testLogger(), nil)

	delivered, err := fanout.NotifyNewReply(context.Background(), id.ThreadID(uuid.New()), "t", author)
	require.NoError(t, err, "per-subscriber failures are absorbed")
	require.Equal(t, 1, delivered)

	inbox, err := store.ListByUser(context.Background(), healthy)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
}

func TestNotifyNewReply_SubscriberLookupFailurePropagates(t *testing.T) {
	fanout := NewFanOut(
		&subscriberSourceStub{err: errors.New("db down")},
		NewInMemoryStore(), testLogger(), nil)

	_, err := fanout.NotifyNewReply(context.Background(), id.ThreadID(uuid.New()), "t", id.UserID(uuid.New()))
	require.Error(t, err)
}

func TestNotifyUser_DeliversAccountLevelNotification(t *testing.T) {
	store := NewInMemoryStore()
	fanout := NewFanOut(&subscriberSourceStub{}, store, testLogger(), nil)

	target := id.UserID(uuid.New())
	err := fanout.NotifyUser(context.Background(), target, id.NotificationUserBanned, "Your account has been banned")
	require.NoError(t, err)

	inbox, err := store.ListByUser(context.Background(), target)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, id.NotificationUserBanned, inbox[0].Type)
	require.Nil(t, inbox[0].ThreadID)
}
