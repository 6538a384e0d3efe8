package authz

import id "campusforum/pkg/domain"

// Decide applies the authorization rule chain to produce a decision.
// This is pure domain logic - no I/O, no side effects.
//
// Rule precedence (first match wins):
//  1. Inactive accounts are denied all mutating operations
//  2. Ownership - authors edit and delete their own threads/replies;
//     editing content is author-only, no role overrides it
//  3. Deletion hierarchy - a moderator deletes USER-owned resources only;
//     an admin deletes USER- or MODERATOR-owned, never another admin's
//  4. Pin/lock - moderator or admin, ownership irrelevant
//  5. User management - ban/unban need moderator or admin; role changes,
//     account deletion, and user listing need admin; ADMIN target accounts
//     are immune to ban, demotion, and deletion under any actor
//  6. Everything else is denied
func Decide(actor Actor, op Operation, resource Resource) Decision {
	// Rule 1: only ACTIVE accounts may mutate.
	if actor.Status != id.StatusActive {
		return Deny("account not active")
	}

	// Rule 2: ownership.
	if isOwnResourceOp(op) && actor.ID == resource.OwnerID {
		return Allow()
	}

	switch op {
	case OpEditThread, OpEditReply:
		// Content editing never escalates past the author.
		return Deny("only the author may edit this content")

	case OpDeleteThread, OpDeleteReply:
		return decideDeletion(actor, resource)

	case OpPinThread, OpLockThread:
		if actor.Role == id.RoleModerator || actor.Role == id.RoleAdmin {
			return Allow()
		}
		return Deny("pinning and locking require a moderator")

	case OpBanUser:
		if resource.OwnerRole == id.RoleAdmin {
			return Deny("admin accounts cannot be banned")
		}
		if actor.Role == id.RoleModerator || actor.Role == id.RoleAdmin {
			return Allow()
		}
		return Deny("banning requires a moderator")

	case OpUnbanUser:
		if actor.Role == id.RoleModerator || actor.Role == id.RoleAdmin {
			return Allow()
		}
		return Deny("unbanning requires a moderator")

	case OpChangeRole:
		if actor.Role != id.RoleAdmin {
			return Deny("changing roles requires an admin")
		}
		if resource.OwnerRole == id.RoleAdmin {
			return Deny("admin accounts cannot be demoted")
		}
		return Allow()

	case OpDeleteUser:
		if actor.Role != id.RoleAdmin {
			return Deny("deleting accounts requires an admin")
		}
		if resource.OwnerRole == id.RoleAdmin {
			return Deny("admin accounts cannot be deleted")
		}
		return Allow()

	case OpListUsers:
		if actor.Role == id.RoleAdmin {
			return Allow()
		}
		return Deny("listing users requires an admin")
	}

	// Rule 6: unmatched operations are denied.
	return Deny("insufficient privilege")
}

// decideDeletion applies rule 3: deletion escalates strictly up the
// protection hierarchy. Equal ranks never override each other, so a moderator
// cannot delete another moderator's content and no one deletes an admin's.
func decideDeletion(actor Actor, resource Resource) Decision {
	if actor.Role != id.RoleModerator && actor.Role != id.RoleAdmin {
		return Deny("insufficient privilege")
	}
	if actor.Role.Protection() > resource.OwnerRole.Protection() {
		return Allow()
	}
	return Deny("cannot delete content owned by a " + resource.OwnerRole.String())
}

func isOwnResourceOp(op Operation) bool {
	switch op {
	case OpEditThread, OpDeleteThread, OpEditReply, OpDeleteReply:
		return true
	}
	return false
}
