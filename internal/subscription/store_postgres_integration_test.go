//go:build integration

package subscription

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	id "campusforum/pkg/domain"
	"campusforum/internal/platform/postgres"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/testutil/containers"
)

func seedThread(t *testing.T, pc *containers.PostgresContainer, threadID id.ThreadID) {
	t.Helper()
	now := time.Now()
	_, err := pc.DB.ExecContext(context.Background(),
		`INSERT INTO threads (id, author_id, category_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		threadID.String(), uuid.NewString(), uuid.NewString(), "seed thread", "body", now, now)
	require.NoError(t, err)
}

func TestPostgresStore_DuplicatePairConflicts(t *testing.T) {
	pc := containers.NewPostgresContainer(t, postgres.Schema...)
	store := NewPostgresStore(pc.DB)

	threadID := id.ThreadID(uuid.New())
	seedThread(t, pc, threadID)

	sub := Subscription{
		UserID:    id.UserID(uuid.New()),
		ThreadID:  threadID,
		CreatedAt: time.Now(),
	}

	require.NoError(t, store.Add(context.Background(), sub))
	require.ErrorIs(t, store.Add(context.Background(), sub), sentinel.ErrConflict)

	subscribers, err := store.ListByThread(context.Background(), threadID)
	require.NoError(t, err)
	require.Len(t, subscribers, 1)
}

func TestPostgresStore_RemoveSemantics(t *testing.T) {
	pc := containers.NewPostgresContainer(t, postgres.Schema...)
	store := NewPostgresStore(pc.DB)

	threadID := id.ThreadID(uuid.New())
	seedThread(t, pc, threadID)
	userID := id.UserID(uuid.New())

	require.ErrorIs(t,
		store.Remove(context.Background(), userID, threadID),
		sentinel.ErrNotFound)

	require.NoError(t, store.Add(context.Background(), Subscription{
		UserID:    userID,
		ThreadID:  threadID,
		CreatedAt: time.Now(),
	}))
	require.NoError(t, store.Remove(context.Background(), userID, threadID))

	subscribers, err := store.ListByThread(context.Background(), threadID)
	require.NoError(t, err)
	require.Empty(t, subscribers)
}

func TestPostgresStore_RemoveAllForThread(t *testing.T) {
	pc := containers.NewPostgresContainer(t, postgres.Schema...)
	store := NewPostgresStore(pc.DB)

	threadID := id.ThreadID(uuid.New())
	otherThread := id.ThreadID(uuid.New())
	seedThread(t, pc, threadID)
	seedThread(t, pc, otherThread)

	keeper := id.UserID(uuid.New())
	for range 3 {
		require.NoError(t, store.Add(context.Background(), Subscription{
			UserID:    id.UserID(uuid.New()),
			ThreadID:  threadID,
			CreatedAt: time.Now(),
		}))
	}
	require.NoError(t, store.Add(context.Background(), Subscription{
		UserID:    keeper,
		ThreadID:  otherThread,
		CreatedAt: time.Now(),
	}))

	require.NoError(t, store.RemoveAllForThread(context.Background(), threadID))

	subscribers, err := store.ListByThread(context.Background(), threadID)
	require.NoError(t, err)
	require.Empty(t, subscribers)

	kept, err := store.ListByThread(context.Background(), otherThread)
	require.NoError(t, err)
	require.Equal(t, []id.UserID{keeper}, kept)
}
