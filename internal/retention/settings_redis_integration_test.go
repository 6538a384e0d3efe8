//go:build integration

package retention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campusforum/pkg/testutil/containers"
)

func TestRedisSettings_SeedNeverClobbersConfiguredThreshold(t *testing.T) {
	rc := containers.NewRedisContainer(t)
	settings := NewRedisSettings(rc.Client)
	ctx := context.Background()

	// First boot: no value in Redis yet, the seed lands.
	require.NoError(t, settings.SeedAutoDeleteDays(ctx, 90))
	days, err := settings.AutoDeleteDays(ctx)
	require.NoError(t, err)
	require.Equal(t, 90, days)

	// An admin changes the threshold, then the process restarts.
	require.NoError(t, settings.SetAutoDeleteDays(ctx, 14))
	require.NoError(t, settings.SeedAutoDeleteDays(ctx, 90))

	days, err = settings.AutoDeleteDays(ctx)
	require.NoError(t, err)
	require.Equal(t, 14, days)
}
