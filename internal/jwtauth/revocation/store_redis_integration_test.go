//go:build integration

package revocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	id "campusforum/pkg/domain"
	"campusforum/pkg/testutil/containers"
)

func TestRedisTRL_TokenRevocation(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	trl := NewRedisTRL(rc.Client)
	ctx := context.Background()

	userID := id.NewUserID()
	const jti = "token-abc"

	revoked, err := trl.IsTokenRevoked(ctx, userID, jti)
	require.NoError(t, err)
	require.False(t, revoked)

	require.NoError(t, trl.RevokeToken(ctx, jti, time.Minute))

	revoked, err = trl.IsTokenRevoked(ctx, userID, jti)
	require.NoError(t, err)
	require.True(t, revoked)

	// A different token of the same user is untouched.
	revoked, err = trl.IsTokenRevoked(ctx, userID, "token-other")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisTRL_UserRevocationCoversEveryToken(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	trl := NewRedisTRL(rc.Client)
	ctx := context.Background()

	banned := id.NewUserID()
	other := id.NewUserID()

	require.NoError(t, trl.RevokeUser(ctx, banned, time.Minute))

	for _, jti := range []string{"first", "second", ""} {
		revoked, err := trl.IsTokenRevoked(ctx, banned, jti)
		require.NoError(t, err)
		require.True(t, revoked, "every credential of a banned user is dead")
	}

	revoked, err := trl.IsTokenRevoked(ctx, other, "first")
	require.NoError(t, err)
	require.False(t, revoked)
}

func TestRedisTRL_RevocationExpires(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	trl := NewRedisTRL(rc.Client)
	ctx := context.Background()

	userID := id.NewUserID()
	require.NoError(t, trl.RevokeUser(ctx, userID, 100*time.Millisecond))

	require.Eventually(t, func() bool {
		revoked, err := trl.IsTokenRevoked(ctx, userID, "")
		return err == nil && !revoked
	}, 5*time.Second, 50*time.Millisecond, "revocation markers expire with the token TTL")
}
