package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "campusforum/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseUserID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseThreadID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseUserID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseUserID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, UserID(validUUID), id)
	})
}

func TestRole_Parse(t *testing.T) {
	t.Run("accepts known roles", func(t *testing.T) {
		for _, s := range []string{"USER", "MODERATOR", "ADMIN"} {
			r, err := ParseRole(s)
			require.NoError(t, err)
			assert.True(t, r.IsValid())
		}
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := ParseRole("superadmin")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects empty role", func(t *testing.T) {
		_, err := ParseRole("")
		require.Error(t, err)
	})
}

func TestRole_ProtectionOrdering(t *testing.T) {
	assert.Less(t, RoleUser.Protection(), RoleModerator.Protection())
	assert.Less(t, RoleModerator.Protection(), RoleAdmin.Protection())
	// Corrupt values must never gain protection.
	assert.Less(t, Role("whatever").Protection(), RoleUser.Protection())
}

func TestUserStatus_Parse(t *testing.T) {
	for _, s := range []string{"ACTIVE", "BANNED", "SUSPENDED"} {
		st, err := ParseUserStatus(s)
		require.NoError(t, err)
		assert.True(t, st.IsValid())
	}

	_, err := ParseUserStatus("deleted")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestNotificationType_Parse(t *testing.T) {
	nt, err := ParseNotificationType("NEW_REPLY")
	require.NoError(t, err)
	assert.Equal(t, NotificationNewReply, nt)

	_, err = ParseNotificationType("NEW_POST")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}
