package retention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"campusforum/pkg/testutil"
)

func TestMemorySettings_SeedAppliesOnFreshBoot(t *testing.T) {
	ctx := context.Background()
	settings := NewMemorySettings()

	require.NoError(t, settings.SeedAutoDeleteDays(ctx, 30))

	days, err := settings.AutoDeleteDays(ctx)
	require.NoError(t, err)
	require.Equal(t, 30, days)
}

func TestMemorySettings_SeedNeverClobbersConfiguredThreshold(t *testing.T) {
	ctx := context.Background()
	settings := NewMemorySettings()

	testutil.Given(t, "an admin configured a threshold at runtime", func(t *testing.T) {
		require.NoError(t, settings.SetAutoDeleteDays(ctx, 14))
	})
	testutil.When(t, "the process reboots with the env default", func(t *testing.T) {
		require.NoError(t, settings.SeedAutoDeleteDays(ctx, 90))
	})
	testutil.Then(t, "the admin's threshold survives", func(t *testing.T) {
		days, err := settings.AutoDeleteDays(ctx)
		require.NoError(t, err)
		require.Equal(t, 14, days)
	})
}
