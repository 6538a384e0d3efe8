package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "campusforum/pkg/platform/audit"
)

// Store ships audit events to a Kafka topic. Kafka is the source of truth for
// the audit trail; downstream consumers materialize it for querying.
type Store struct {
	client *kgo.Client
	topic  string
}

// payload is the JSON structure published to Kafka.
type payload struct {
	Category  string `json:"category"`
	Timestamp string `json:"timestamp"`
	ActorID   string `json:"actor_id,omitempty"`
	SubjectID string `json:"subject_id,omitempty"`
	Action    string `json:"action"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}

// New connects a producer and ensures the audit topic exists.
func New(brokers []string, topic string) (*Store, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := ensureTopic(ctx, client, topic); err != nil {
		client.Close()
		return nil, err
	}

	return &Store{client: client, topic: topic}, nil
}

func ensureTopic(ctx context.Context, client *kgo.Client, topic string) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopic(ctx, 1, 1, nil, topic)
	if err != nil && !errors.Is(err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic: %w", err)
	}
	if resp.Err != nil && !errors.Is(resp.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create audit topic: %w", resp.Err)
	}
	return nil
}

// Append publishes one event, keyed by actor so per-actor ordering holds.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	p := payload{
		Category:  string(event.Category),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		SubjectID: event.SubjectID,
		Action:    event.Action,
		Reason:    event.Reason,
		RequestID: event.RequestID,
		ClientIP:  event.ClientIP,
		UserAgent: event.UserAgent,
	}
	if !event.ActorID.IsNil() {
		p.ActorID = event.ActorID.String()
	}

	value, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(p.ActorID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes pending records and releases the producer.
func (s *Store) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = s.client.Flush(ctx)
	s.client.Close()
}
