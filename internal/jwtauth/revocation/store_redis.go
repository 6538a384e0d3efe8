package revocation

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	id "campusforum/pkg/domain"
)

var (
	isRevokedDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "campusforum_is_token_revoked_duration_ms",
		Help:    "Latency of token revocation checks in milliseconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
	})
)

const (
	// Per-token revocation marker.
	revokedTokenKeyPrefix = "trl:jti:"
	// Per-user revocation marker; set on ban so every outstanding stateless
	// credential of that user dies without enumerating JTIs.
	revokedUserKeyPrefix = "trl:user:"
)

// RedisTRL is a Redis-backed token revocation list. This is the
// production-recommended implementation for distributed deployments where
// multiple instances need to share revocation state.
type RedisTRL struct {
	client *redis.Client
}

// NewRedisTRL constructs a Redis-backed token revocation list.
func NewRedisTRL(client *redis.Client) *RedisTRL {
	return &RedisTRL{client: client}
}

// RevokeToken adds a single token to the revocation list with TTL.
func (t *RedisTRL) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	// Store "1" as a simple marker; the key existence is what matters.
	return t.client.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// RevokeUser marks every credential of a user revoked for ttl. The TTL only
// needs to outlive the longest-lived token issued before the ban.
func (t *RedisTRL) RevokeUser(ctx context.Context, userID id.UserID, ttl time.Duration) error {
	return t.client.Set(ctx, revokedUserKeyPrefix+userID.String(), "1", ttl).Err()
}

// IsTokenRevoked checks the user-level marker first, then the per-token one.
// Returns false if neither key exists (not revoked or expired).
func (t *RedisTRL) IsTokenRevoked(ctx context.Context, userID id.UserID, jti string) (bool, error) {
	start := time.Now()
	defer func() {
		isRevokedDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	revoked, err := t.exists(ctx, revokedUserKeyPrefix+userID.String())
	if err != nil || revoked {
		return revoked, err
	}
	if jti == "" {
		return false, nil
	}
	return t.exists(ctx, revokedTokenKeyPrefix+jti)
}

func (t *RedisTRL) exists(ctx context.Context, key string) (bool, error) {
	_, err := t.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
