package identity

import (
	"context"
	"sort"
	"strings"
	"sync"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu    sync.RWMutex
	users map[id.UserID]User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{users: make(map[id.UserID]User)}
}

func (s *InMemoryStore) Create(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, userID id.UserID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &u, nil
}

func (s *InMemoryStore) FindByUsername(_ context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			return &u, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) Update(_ context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID == u.ID {
			continue
		}
		if strings.EqualFold(existing.Username, u.Username) || strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.users, userID)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
