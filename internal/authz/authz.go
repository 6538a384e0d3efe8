// Package authz is the single decision point for every mutating operation on
// a thread, reply, or user account. The allow/deny matrix is centralized in a
// pure rule chain (rules.go) so policy is testable in isolation; the Engine
// adds observability and domain-error translation for callers.
package authz

import (
	id "campusforum/pkg/domain"
)

// Operation is the closed set of policy-gated operations.
type Operation string

const (
	OpEditThread   Operation = "edit_thread"
	OpDeleteThread Operation = "delete_thread"
	OpPinThread    Operation = "pin_thread"
	OpLockThread   Operation = "lock_thread"
	OpEditReply    Operation = "edit_reply"
	OpDeleteReply  Operation = "delete_reply"
	OpBanUser      Operation = "ban_user"
	OpUnbanUser    Operation = "unban_user"
	OpChangeRole   Operation = "change_role"
	OpDeleteUser   Operation = "delete_user"
	OpListUsers    Operation = "list_users"
)

// ResourceKind distinguishes what the operation targets.
type ResourceKind string

const (
	KindThread ResourceKind = "thread"
	KindReply  ResourceKind = "reply"
	KindUser   ResourceKind = "user"
)

// Actor is the authenticated principal requesting an operation.
type Actor struct {
	ID     id.UserID
	Role   id.Role
	Status id.UserStatus
}

// Resource describes the ownership of the operation's target. For user
// management operations the "owner" is the target account itself. ListUsers
// has no target; pass a zero Resource with Kind set.
type Resource struct {
	Kind      ResourceKind
	OwnerID   id.UserID
	OwnerRole id.Role
}

// Decision is the outcome of a policy evaluation. Deny always carries a
// human-readable reason; it is surfaced to callers, never swallowed.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow is the positive decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny is the negative decision with a reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
