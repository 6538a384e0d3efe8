// Package audit captures the moderation and account-lifecycle trail. Events
// are emitted from domain logic, queued in-process, and shipped to Kafka by
// the worker; the memory store backs tests and broker-less deployments.
package audit

import (
	"time"

	id "campusforum/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing downstream.
type EventCategory string

const (
	// CategoryCompliance covers account-lifecycle events with long retention
	// needs: registrations, deletions, role changes.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse monitoring:
	// bans, unbans, authorization denials worth flagging.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine operational visibility:
	// pins, locks, retention sweeps.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is who performed the action.
	ActorID id.UserID
	// SubjectID identifies the affected entity (user id, thread id, ...) as a
	// string since subjects span aggregate types.
	SubjectID string
	Action    string
	Reason    string
	RequestID string
	ClientIP  string
	UserAgent string
}

type AuditEvent string

const (
	// Account lifecycle
	EventUserRegistered  AuditEvent = "user_registered"
	EventUserDeleted     AuditEvent = "user_deleted"
	EventUserRoleChanged AuditEvent = "user_role_changed"

	// Moderation
	EventUserBanned    AuditEvent = "user_banned"
	EventUserUnbanned  AuditEvent = "user_unbanned"
	EventThreadDeleted AuditEvent = "thread_deleted"
	EventThreadPinned  AuditEvent = "thread_pinned"
	EventThreadLocked  AuditEvent = "thread_locked"
	EventReplyDeleted  AuditEvent = "reply_deleted"

	// Background jobs
	EventRetentionSweep AuditEvent = "retention_sweep_completed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	EventUserRegistered:  CategoryCompliance,
	EventUserDeleted:     CategoryCompliance,
	EventUserRoleChanged: CategoryCompliance,

	EventUserBanned:   CategorySecurity,
	EventUserUnbanned: CategorySecurity,

	EventThreadDeleted:  CategoryOperations,
	EventThreadPinned:   CategoryOperations,
	EventThreadLocked:   CategoryOperations,
	EventReplyDeleted:   CategoryOperations,
	EventRetentionSweep: CategoryOperations,
}

// Category resolves the event's category, defaulting to operations so an
// unmapped action never vanishes from the trail.
func (e AuditEvent) Category() EventCategory {
	if c, ok := eventCategories[e]; ok {
		return c
	}
	return CategoryOperations
}
