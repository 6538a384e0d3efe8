package subscription

import (
	"context"
	"sort"
	"sync"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu       sync.RWMutex
	byThread map[id.ThreadID]map[id.UserID]Subscription
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byThread: make(map[id.ThreadID]map[id.UserID]Subscription)}
}

func (s *InMemoryStore) Add(_ context.Context, sub Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs, ok := s.byThread[sub.ThreadID]
	if !ok {
		subs = make(map[id.UserID]Subscription)
		s.byThread[sub.ThreadID] = subs
	}
	if _, exists := subs[sub.UserID]; exists {
		return sentinel.ErrConflict
	}
	subs[sub.UserID] = sub
	return nil
}

func (s *InMemoryStore) Remove(_ context.Context, userID id.UserID, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byThread[threadID]
	if _, exists := subs[userID]; !exists {
		return sentinel.ErrNotFound
	}
	delete(subs, userID)
	return nil
}

// ListByThread returns subscriber ids in a stable order so fan-out and tests
// behave deterministically.
func (s *InMemoryStore) ListByThread(_ context.Context, threadID id.ThreadID) ([]id.UserID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := s.byThread[threadID]
	out := make([]id.UserID, 0, len(subs))
	for userID := range subs {
		out = append(out, userID)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Subscription
	for _, subs := range s.byThread {
		if sub, ok := subs[userID]; ok {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) RemoveAllForThread(_ context.Context, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byThread, threadID)
	return nil
}
