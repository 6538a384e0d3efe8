//go:build integration

package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/audit"
	"campusforum/pkg/testutil/containers"
)

func TestKafkaStore_AppendAndConsume(t *testing.T) {
	redpanda := containers.NewRedpandaContainer(t)
	const topic = "campusforum.audit.test"

	store, err := New([]string{redpanda.Broker}, topic)
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	actor := id.NewUserID()
	event := audit.Event{
		Category:  audit.CategorySecurity,
		Timestamp: time.Now().UTC(),
		ActorID:   actor,
		SubjectID: "target-user",
		Action:    string(audit.EventUserBanned),
		Reason:    "spamming",
		RequestID: "req-123",
	}
	require.NoError(t, store.Append(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(redpanda.Broker),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	require.NoError(t, err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	require.NoError(t, fetches.Err())

	records := fetches.Records()
	require.Len(t, records, 1)
	require.Equal(t, actor.String(), string(records[0].Key), "records are keyed by actor for per-actor ordering")

	var got struct {
		Category  string `json:"category"`
		ActorID   string `json:"actor_id"`
		SubjectID string `json:"subject_id"`
		Action    string `json:"action"`
		Reason    string `json:"reason"`
		RequestID string `json:"request_id"`
	}
	require.NoError(t, json.Unmarshal(records[0].Value, &got))
	require.Equal(t, "security", got.Category)
	require.Equal(t, actor.String(), got.ActorID)
	require.Equal(t, "target-user", got.SubjectID)
	require.Equal(t, "user_banned", got.Action)
	require.Equal(t, "spamming", got.Reason)
	require.Equal(t, "req-123", got.RequestID)
}

func TestKafkaStore_EnsureTopicIsIdempotent(t *testing.T) {
	redpanda := containers.NewRedpandaContainer(t)
	const topic = "campusforum.audit.idempotent"

	first, err := New([]string{redpanda.Broker}, topic)
	require.NoError(t, err)
	first.Close()

	// A second producer against an existing topic must not fail.
	second, err := New([]string{redpanda.Broker}, topic)
	require.NoError(t, err)
	second.Close()
}
