package notification

import (
	"context"
	"sort"
	"sync"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	byUser map[id.UserID][]Notification
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byUser: make(map[id.UserID][]Notification)}
}

func (s *InMemoryStore) Create(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byUser[n.UserID] = append(s.byUser[n.UserID], n)
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (s *InMemoryStore) ListByUser(_ context.Context, userID id.UserID) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]Notification{}, s.byUser[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) ListUnreadByUser(_ context.Context, userID id.UserID) ([]Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Notification
	for _, n := range s.byUser[userID] {
		if !n.Read {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) MarkRead(_ context.Context, userID id.UserID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byUser[userID]
	for i := range list {
		if list[i].ID == notificationID {
			list[i].Read = true
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemoryStore) MarkAllRead(_ context.Context, userID id.UserID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var updated int
	list := s.byUser[userID]
	for i := range list {
		if !list[i].Read {
			list[i].Read = true
			updated++
		}
	}
	return updated, nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID, notificationID id.NotificationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.byUser[userID]
	for i := range list {
		if list[i].ID == notificationID {
			s.byUser[userID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}
