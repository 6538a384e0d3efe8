package thread

import (
	"context"
	"sort"
	"sync"
	"time"

	id "campusforum/pkg/domain"
	"campusforum/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	threads map[id.ThreadID]Thread
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{threads: make(map[id.ThreadID]Thread)}
}

func (s *InMemoryStore) Create(_ context.Context, t Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.threads[t.ID]; exists {
		return sentinel.ErrConflict
	}
	s.threads[t.ID] = t
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, threadID id.ThreadID) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.threads[threadID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &t, nil
}

func (s *InMemoryStore) Update(_ context.Context, t Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[t.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.threads[t.ID] = t
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.threads[threadID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.threads, threadID)
	return nil
}

// List returns pinned threads first, then by last activity.
func (s *InMemoryStore) List(_ context.Context) ([]Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Thread, 0, len(s.threads))
	for _, t := range s.threads {
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return activityOf(out[i]).After(activityOf(out[j]))
	})
	return out, nil
}

func activityOf(t Thread) time.Time {
	if t.LastReplyAt != nil {
		return *t.LastReplyAt
	}
	return t.CreatedAt
}

func (s *InMemoryStore) IncrementViewCount(_ context.Context, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.threads[threadID]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.ViewCount++
	s.threads[threadID] = t
	return nil
}

func (s *InMemoryStore) ListIDsCreatedBefore(_ context.Context, cutoff time.Time) ([]id.ThreadID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []id.ThreadID
	for _, t := range s.threads {
		if t.CreatedAt.Before(cutoff) {
			out = append(out, t.ID)
		}
	}
	return out, nil
}

type InMemoryReplyStore struct {
	mu      sync.RWMutex
	replies map[id.ReplyID]Reply
}

func NewInMemoryReplyStore() *InMemoryReplyStore {
	return &InMemoryReplyStore{replies: make(map[id.ReplyID]Reply)}
}

func (s *InMemoryReplyStore) Create(_ context.Context, r Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.replies[r.ID]; exists {
		return sentinel.ErrConflict
	}
	s.replies[r.ID] = r
	return nil
}

func (s *InMemoryReplyStore) FindByID(_ context.Context, replyID id.ReplyID) (*Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.replies[replyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryReplyStore) Update(_ context.Context, r Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.replies[r.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.replies[r.ID] = r
	return nil
}

func (s *InMemoryReplyStore) Delete(_ context.Context, replyID id.ReplyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.replies[replyID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.replies, replyID)
	return nil
}

func (s *InMemoryReplyStore) ListByThread(_ context.Context, threadID id.ThreadID) ([]Reply, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Reply
	for _, r := range s.replies {
		if r.ThreadID == threadID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryReplyStore) DeleteByThread(_ context.Context, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for replyID, r := range s.replies {
		if r.ThreadID == threadID {
			delete(s.replies, replyID)
		}
	}
	return nil
}
