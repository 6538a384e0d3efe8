package retention

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"

	dErrors "campusforum/pkg/domain-errors"
)

// DefaultAutoDeleteDays is used until an admin configures otherwise.
const DefaultAutoDeleteDays = 90

const settingsKey = "settings:auto_delete_days"

// SettingsProvider stores the retention threshold. Zero or negative disables
// sweeping.
type SettingsProvider interface {
	AutoDeleteDays(ctx context.Context) (int, error)
	SetAutoDeleteDays(ctx context.Context, days int) error
	// SeedAutoDeleteDays installs the boot-time default only when no
	// threshold has been configured yet, so restarts never clobber an
	// admin's runtime change.
	SeedAutoDeleteDays(ctx context.Context, days int) error
}

// MemorySettings keeps the threshold in process, for single-instance and test
// deployments.
type MemorySettings struct {
	mu         sync.RWMutex
	days       int
	configured bool
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{days: DefaultAutoDeleteDays}
}

func (s *MemorySettings) AutoDeleteDays(context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.days, nil
}

func (s *MemorySettings) SetAutoDeleteDays(_ context.Context, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days = days
	s.configured = true
	return nil
}

func (s *MemorySettings) SeedAutoDeleteDays(_ context.Context, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.configured {
		return nil
	}
	s.days = days
	return nil
}

// RedisSettings shares the threshold across instances so an admin change on
// one node takes effect everywhere on the next sweep.
type RedisSettings struct {
	client *redis.Client
}

func NewRedisSettings(client *redis.Client) *RedisSettings {
	return &RedisSettings{client: client}
}

func (s *RedisSettings) AutoDeleteDays(ctx context.Context) (int, error) {
	raw, err := s.client.Get(ctx, settingsKey).Result()
	if errors.Is(err, redis.Nil) {
		return DefaultAutoDeleteDays, nil
	}
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read retention settings")
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "corrupt retention settings")
	}
	return days, nil
}

func (s *RedisSettings) SetAutoDeleteDays(ctx context.Context, days int) error {
	if err := s.client.Set(ctx, settingsKey, strconv.Itoa(days), 0).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store retention settings")
	}
	return nil
}

// SeedAutoDeleteDays writes the default with SETNX so a value an admin set on
// a previous boot survives the restart.
func (s *RedisSettings) SeedAutoDeleteDays(ctx context.Context, days int) error {
	if err := s.client.SetNX(ctx, settingsKey, strconv.Itoa(days), 0).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to seed retention settings")
	}
	return nil
}
