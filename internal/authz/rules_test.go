package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	id "campusforum/pkg/domain"
)

func activeActor(role id.Role) Actor {
	return Actor{ID: id.NewUserID(), Role: role, Status: id.StatusActive}
}

func ownedBy(kind ResourceKind, owner Actor) Resource {
	return Resource{Kind: kind, OwnerID: owner.ID, OwnerRole: owner.Role}
}

func TestDecide_InactiveAccountsAreDeniedEverything(t *testing.T) {
	for _, status := range []id.UserStatus{id.StatusBanned, id.StatusSuspended} {
		actor := Actor{ID: id.NewUserID(), Role: id.RoleAdmin, Status: status}
		target := activeActor(id.RoleUser)

		for _, op := range []Operation{
			OpEditThread, OpDeleteThread, OpPinThread, OpLockThread,
			OpEditReply, OpDeleteReply, OpBanUser, OpUnbanUser,
			OpChangeRole, OpDeleteUser, OpListUsers,
		} {
			d := Decide(actor, op, ownedBy(KindThread, target))
			assert.False(t, d.Allowed, "status %s must deny %s", status, op)
			assert.Equal(t, "account not active", d.Reason)
		}
	}
}

func TestDecide_OwnershipAllowsEditAndDelete(t *testing.T) {
	for _, role := range []id.Role{id.RoleUser, id.RoleModerator, id.RoleAdmin} {
		author := activeActor(role)
		own := ownedBy(KindThread, author)

		assert.True(t, Decide(author, OpEditThread, own).Allowed, "author edits own thread")
		assert.True(t, Decide(author, OpDeleteThread, own).Allowed, "author deletes own thread")

		ownReply := ownedBy(KindReply, author)
		assert.True(t, Decide(author, OpEditReply, ownReply).Allowed, "author edits own reply")
		assert.True(t, Decide(author, OpDeleteReply, ownReply).Allowed, "author deletes own reply")
	}
}

func TestDecide_EditingIsAuthorOnly(t *testing.T) {
	user := activeActor(id.RoleUser)

	for _, role := range []id.Role{id.RoleModerator, id.RoleAdmin} {
		actor := activeActor(role)
		d := Decide(actor, OpEditThread, ownedBy(KindThread, user))
		assert.False(t, d.Allowed, "%s must not edit another author's thread", role)
		assert.Equal(t, "only the author may edit this content", d.Reason)

		d = Decide(actor, OpEditReply, ownedBy(KindReply, user))
		assert.False(t, d.Allowed, "%s must not edit another author's reply", role)
	}
}

func TestDecide_DeletionHierarchy(t *testing.T) {
	user := activeActor(id.RoleUser)
	otherUser := activeActor(id.RoleUser)
	moderator := activeActor(id.RoleModerator)
	otherModerator := activeActor(id.RoleModerator)
	admin := activeActor(id.RoleAdmin)
	otherAdmin := activeActor(id.RoleAdmin)

	cases := []struct {
		name    string
		actor   Actor
		owner   Actor
		allowed bool
	}{
		{"moderator deletes user-owned", moderator, user, true},
		{"moderator denied on moderator-owned", moderator, otherModerator, false},
		{"moderator denied on admin-owned", moderator, admin, false},
		{"admin deletes user-owned", admin, user, true},
		{"admin deletes moderator-owned", admin, moderator, true},
		{"admin denied on admin-owned", admin, otherAdmin, false},
		{"user denied on other user-owned", user, otherUser, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, op := range []Operation{OpDeleteThread, OpDeleteReply} {
				kind := KindThread
				if op == OpDeleteReply {
					kind = KindReply
				}
				d := Decide(tc.actor, op, ownedBy(kind, tc.owner))
				assert.Equal(t, tc.allowed, d.Allowed, "%s on %s", op, tc.owner.Role)
				if !tc.allowed {
					assert.NotEmpty(t, d.Reason, "deny must carry a reason")
				}
			}
		})
	}
}

func TestDecide_PinAndLockIgnoreOwnership(t *testing.T) {
	author := activeActor(id.RoleAdmin)
	res := ownedBy(KindThread, author)

	assert.True(t, Decide(activeActor(id.RoleModerator), OpPinThread, res).Allowed)
	assert.True(t, Decide(activeActor(id.RoleAdmin), OpLockThread, res).Allowed)

	d := Decide(activeActor(id.RoleUser), OpPinThread, res)
	assert.False(t, d.Allowed)
	// Owning the thread does not grant pin rights either.
	d = Decide(author, OpPinThread, res)
	assert.True(t, d.Allowed, "admin author may pin, via role not ownership")

	user := activeActor(id.RoleUser)
	d = Decide(user, OpLockThread, ownedBy(KindThread, user))
	assert.False(t, d.Allowed, "plain users cannot lock their own threads")
}

func TestDecide_AdminAccountsAreImmune(t *testing.T) {
	admin := activeActor(id.RoleAdmin)
	otherAdmin := activeActor(id.RoleAdmin)
	target := ownedBy(KindUser, otherAdmin)

	for _, op := range []Operation{OpBanUser, OpChangeRole, OpDeleteUser} {
		d := Decide(admin, op, target)
		assert.False(t, d.Allowed, "admin target must be immune to %s", op)
		assert.NotEmpty(t, d.Reason)

		d = Decide(activeActor(id.RoleModerator), op, target)
		assert.False(t, d.Allowed, "moderator must not %s an admin", op)
	}
}

func TestDecide_UserManagementRoles(t *testing.T) {
	user := activeActor(id.RoleUser)
	target := ownedBy(KindUser, user)

	t.Run("ban and unban need moderator or admin", func(t *testing.T) {
		for _, op := range []Operation{OpBanUser, OpUnbanUser} {
			assert.True(t, Decide(activeActor(id.RoleModerator), op, target).Allowed)
			assert.True(t, Decide(activeActor(id.RoleAdmin), op, target).Allowed)
			assert.False(t, Decide(activeActor(id.RoleUser), op, target).Allowed)
		}
	})

	t.Run("role change and account deletion need admin", func(t *testing.T) {
		for _, op := range []Operation{OpChangeRole, OpDeleteUser} {
			assert.True(t, Decide(activeActor(id.RoleAdmin), op, target).Allowed)
			assert.False(t, Decide(activeActor(id.RoleModerator), op, target).Allowed)
			assert.False(t, Decide(activeActor(id.RoleUser), op, target).Allowed)
		}
	})

	t.Run("listing users needs admin", func(t *testing.T) {
		assert.True(t, Decide(activeActor(id.RoleAdmin), OpListUsers, Resource{Kind: KindUser}).Allowed)
		assert.False(t, Decide(activeActor(id.RoleModerator), OpListUsers, Resource{Kind: KindUser}).Allowed)
		assert.False(t, Decide(activeActor(id.RoleUser), OpListUsers, Resource{Kind: KindUser}).Allowed)
	})
}

func TestDecide_UnknownOperationIsDenied(t *testing.T) {
	d := Decide(activeActor(id.RoleAdmin), Operation("export_database"), Resource{})
	assert.False(t, d.Allowed)
	assert.Equal(t, "insufficient privilege", d.Reason)
}
