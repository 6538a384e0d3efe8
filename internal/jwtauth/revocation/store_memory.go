package revocation

import (
	"context"
	"sync"
	"time"

	id "campusforum/pkg/domain"
)

// MemoryTRL is an in-process revocation list for single-instance deployments
// and tests. Entries expire lazily on read.
type MemoryTRL struct {
	mu     sync.RWMutex
	tokens map[string]time.Time
	users  map[id.UserID]time.Time
}

func NewMemoryTRL() *MemoryTRL {
	return &MemoryTRL{
		tokens: make(map[string]time.Time),
		users:  make(map[id.UserID]time.Time),
	}
}

func (t *MemoryTRL) RevokeToken(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[jti] = time.Now().Add(ttl)
	return nil
}

func (t *MemoryTRL) RevokeUser(_ context.Context, userID id.UserID, ttl time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[userID] = time.Now().Add(ttl)
	return nil
}

func (t *MemoryTRL) IsTokenRevoked(_ context.Context, userID id.UserID, jti string) (bool, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	now := time.Now()
	if deadline, ok := t.users[userID]; ok && now.Before(deadline) {
		return true, nil
	}
	if deadline, ok := t.tokens[jti]; ok && jti != "" && now.Before(deadline) {
		return true, nil
	}
	return false, nil
}
