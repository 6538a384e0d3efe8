package thread

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campusforum/internal/authz"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/audit"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/platform/tx"
	"campusforum/pkg/requestcontext"
)

const (
	maxTitleLength   = 200
	maxContentLength = 20000
)

// RoleResolver reports the current role of a user. Ownership protection is
// evaluated against the owner's role at decision time, not at creation time.
type RoleResolver interface {
	RoleOf(ctx context.Context, userID id.UserID) (id.Role, error)
}

// SubscriptionCascade removes a thread's subscriptions during deletion.
type SubscriptionCascade interface {
	RemoveAllForThread(ctx context.Context, threadID id.ThreadID) error
}

// ReplyNotifier fans a new reply out to thread subscribers.
type ReplyNotifier interface {
	NotifyNewReply(ctx context.Context, threadID id.ThreadID, threadTitle string, authorID id.UserID) (int, error)
}

// AuditPublisher records moderation actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns thread and reply lifecycle. Every mutation on someone else's
// content goes through the authorization engine first.
type Service struct {
	threads Store
	replies ReplyStore
	engine  *authz.Engine
	roles   RoleResolver
	subs    SubscriptionCascade
	fanout  ReplyNotifier
	auditor AuditPublisher
	runner  tx.Runner
	logger  *slog.Logger
}

func NewService(
	threads Store,
	replies ReplyStore,
	engine *authz.Engine,
	roles RoleResolver,
	subs SubscriptionCascade,
	fanout ReplyNotifier,
	auditor AuditPublisher,
	runner tx.Runner,
	logger *slog.Logger,
) *Service {
	return &Service{
		threads: threads,
		replies: replies,
		engine:  engine,
		roles:   roles,
		subs:    subs,
		fanout:  fanout,
		auditor: auditor,
		runner:  runner,
		logger:  logger,
	}
}

// ownerRole resolves the content owner's current role. A missing owner
// (account deleted since posting) counts as USER so moderation still works.
func (s *Service) ownerRole(ctx context.Context, ownerID id.UserID) (id.Role, error) {
	role, err := s.roles.RoleOf(ctx, ownerID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return id.RoleUser, nil
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve owner role")
	}
	return role, nil
}

func validateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return dErrors.New(dErrors.CodeBadRequest, "title is required")
	}
	if len(title) > maxTitleLength {
		return dErrors.New(dErrors.CodeBadRequest, "title is too long")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "content is required")
	}
	if len(content) > maxContentLength {
		return dErrors.New(dErrors.CodeBadRequest, "content is too long")
	}
	return nil
}

// Create starts a new thread authored by the actor. The category is an
// opaque reference; category management lives outside this service.
func (s *Service) Create(ctx context.Context, actor authz.Actor, categoryID id.CategoryID, title, content string) (*Thread, error) {
	if actor.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if categoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	t := Thread{
		ID:         id.NewThreadID(),
		AuthorID:   actor.ID,
		CategoryID: categoryID,
		Title:      strings.TrimSpace(title),
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.threads.Create(ctx, t); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create thread")
	}

	s.logger.InfoContext(ctx, "thread created",
		"thread_id", t.ID,
		"author_id", actor.ID,
	)
	return &t, nil
}

// Get returns a thread with its replies and counts the view.
func (s *Service) Get(ctx context.Context, threadID id.ThreadID) (*Thread, []Reply, error) {
	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, nil, err
	}
	if err := s.threads.IncrementViewCount(ctx, threadID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count view")
	}
	t.ViewCount++

	replies, err := s.replies.ListByThread(ctx, threadID)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list replies")
	}
	return t, replies, nil
}

// List returns all threads, pinned first, then most recently active.
func (s *Service) List(ctx context.Context) ([]Thread, error) {
	threads, err := s.threads.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list threads")
	}
	return threads, nil
}

// ThreadExists reports thread existence for the subscription registry.
func (s *Service) ThreadExists(ctx context.Context, threadID id.ThreadID) (bool, error) {
	_, err := s.threads.FindByID(ctx, threadID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Edit replaces a thread's title, content, and category. Author-only; no
// moderator override.
func (s *Service) Edit(ctx context.Context, actor authz.Actor, threadID id.ThreadID, categoryID id.CategoryID, title, content string) (*Thread, error) {
	if categoryID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "category is required")
	}
	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	ownerRole, err := s.ownerRole(ctx, t.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Require(ctx, actor, authz.OpEditThread, authz.Resource{
		Kind:      authz.KindThread,
		OwnerID:   t.AuthorID,
		OwnerRole: ownerRole,
	}); err != nil {
		return nil, err
	}

	t.CategoryID = categoryID
	t.Title = strings.TrimSpace(title)
	t.Content = content
	t.UpdatedAt = requestcontext.Now(ctx)
	if err := s.updateThread(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// Delete removes a thread with its replies and subscriptions in one
// transaction.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, threadID id.ThreadID) error {
	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return err
	}
	ownerRole, err := s.ownerRole(ctx, t.AuthorID)
	if err != nil {
		return err
	}
	if err := s.engine.Require(ctx, actor, authz.OpDeleteThread, authz.Resource{
		Kind:      authz.KindThread,
		OwnerID:   t.AuthorID,
		OwnerRole: ownerRole,
	}); err != nil {
		return err
	}

	err = s.runner.InTx(ctx, func(ctx context.Context) error {
		if err := s.replies.DeleteByThread(ctx, threadID); err != nil {
			return err
		}
		if err := s.subs.RemoveAllForThread(ctx, threadID); err != nil {
			return err
		}
		return s.threads.Delete(ctx, threadID)
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete thread")
	}

	s.logger.InfoContext(ctx, "thread deleted",
		"thread_id", threadID,
		"author_id", t.AuthorID,
		"actor_id", actor.ID,
	)
	s.emitAudit(ctx, actor, audit.EventThreadDeleted, threadID.String(), "")
	return nil
}

// SetPinned pins or unpins a thread.
func (s *Service) SetPinned(ctx context.Context, actor authz.Actor, threadID id.ThreadID, pinned bool) (*Thread, error) {
	t, err := s.moderateFlag(ctx, actor, threadID, authz.OpPinThread, func(t *Thread) { t.Pinned = pinned })
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, audit.EventThreadPinned, threadID.String(), "")
	return t, nil
}

// SetLocked locks or unlocks a thread. Locked threads reject new replies.
func (s *Service) SetLocked(ctx context.Context, actor authz.Actor, threadID id.ThreadID, locked bool) (*Thread, error) {
	t, err := s.moderateFlag(ctx, actor, threadID, authz.OpLockThread, func(t *Thread) { t.Locked = locked })
	if err != nil {
		return nil, err
	}
	s.emitAudit(ctx, actor, audit.EventThreadLocked, threadID.String(), "")
	return t, nil
}

func (s *Service) moderateFlag(ctx context.Context, actor authz.Actor, threadID id.ThreadID, op authz.Operation, apply func(*Thread)) (*Thread, error) {
	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	ownerRole, err := s.ownerRole(ctx, t.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Require(ctx, actor, op, authz.Resource{
		Kind:      authz.KindThread,
		OwnerID:   t.AuthorID,
		OwnerRole: ownerRole,
	}); err != nil {
		return nil, err
	}

	apply(t)
	t.UpdatedAt = requestcontext.Now(ctx)
	if err := s.updateThread(ctx, *t); err != nil {
		return nil, err
	}
	return t, nil
}

// CreateReply posts a reply and fans it out to subscribers exactly once.
func (s *Service) CreateReply(ctx context.Context, actor authz.Actor, threadID id.ThreadID, content string) (*Reply, error) {
	if actor.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	t, err := s.findThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	// Moderators and admins may still reply on a locked thread.
	if t.Locked && actor.Role != id.RoleModerator && actor.Role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeConflict, "thread is locked")
	}

	now := requestcontext.Now(ctx)
	reply := Reply{
		ID:        id.NewReplyID(),
		ThreadID:  threadID,
		AuthorID:  actor.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create reply")
	}

	t.LastReplyAt = &now
	if err := s.updateThread(ctx, *t); err != nil {
		return nil, err
	}

	delivered, err := s.fanout.NotifyNewReply(ctx, threadID, t.Title, actor.ID)
	if err != nil {
		// The reply exists; losing notifications is logged, not surfaced.
		s.logger.ErrorContext(ctx, "reply fan-out failed",
			"thread_id", threadID,
			"reply_id", reply.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "reply created",
		"thread_id", threadID,
		"reply_id", reply.ID,
		"author_id", actor.ID,
		"notified", delivered,
	)
	return &reply, nil
}

// EditReply replaces a reply's content. Author-only.
func (s *Service) EditReply(ctx context.Context, actor authz.Actor, replyID id.ReplyID, content string) (*Reply, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	reply, err := s.findReply(ctx, replyID)
	if err != nil {
		return nil, err
	}
	ownerRole, err := s.ownerRole(ctx, reply.AuthorID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Require(ctx, actor, authz.OpEditReply, authz.Resource{
		Kind:      authz.KindReply,
		OwnerID:   reply.AuthorID,
		OwnerRole: ownerRole,
	}); err != nil {
		return nil, err
	}

	reply.Content = content
	reply.UpdatedAt = requestcontext.Now(ctx)
	if err := s.replies.Update(ctx, *reply); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "reply not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update reply")
	}
	return reply, nil
}

// DeleteReply removes a single reply.
func (s *Service) DeleteReply(ctx context.Context, actor authz.Actor, replyID id.ReplyID) error {
	reply, err := s.findReply(ctx, replyID)
	if err != nil {
		return err
	}
	ownerRole, err := s.ownerRole(ctx, reply.AuthorID)
	if err != nil {
		return err
	}
	if err := s.engine.Require(ctx, actor, authz.OpDeleteReply, authz.Resource{
		Kind:      authz.KindReply,
		OwnerID:   reply.AuthorID,
		OwnerRole: ownerRole,
	}); err != nil {
		return err
	}

	if err := s.replies.Delete(ctx, replyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "reply not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete reply")
	}

	s.logger.InfoContext(ctx, "reply deleted",
		"reply_id", replyID,
		"thread_id", reply.ThreadID,
		"author_id", reply.AuthorID,
		"actor_id", actor.ID,
	)
	s.emitAudit(ctx, actor, audit.EventReplyDeleted, replyID.String(), "")
	return nil
}

// PurgeCreatedBefore deletes every thread created before the cutoff, each with
// its replies and subscriptions on one transaction. Returns the count removed.
func (s *Service) PurgeCreatedBefore(ctx context.Context, cutoff time.Time) (int, error) {
	ids, err := s.threads.ListIDsCreatedBefore(ctx, cutoff)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expired threads")
	}

	var purged int
	for _, threadID := range ids {
		err := s.runner.InTx(ctx, func(ctx context.Context) error {
			if err := s.replies.DeleteByThread(ctx, threadID); err != nil {
				return err
			}
			if err := s.subs.RemoveAllForThread(ctx, threadID); err != nil {
				return err
			}
			return s.threads.Delete(ctx, threadID)
		})
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				continue
			}
			return purged, dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge thread")
		}
		purged++
	}
	return purged, nil
}

func (s *Service) findThread(ctx context.Context, threadID id.ThreadID) (*Thread, error) {
	t, err := s.threads.FindByID(ctx, threadID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "thread not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load thread")
	}
	return t, nil
}

func (s *Service) findReply(ctx context.Context, replyID id.ReplyID) (*Reply, error) {
	r, err := s.replies.FindByID(ctx, replyID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "reply not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load reply")
	}
	return r, nil
}

func (s *Service) updateThread(ctx context.Context, t Thread) error {
	if err := s.threads.Update(ctx, t); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "thread not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update thread")
	}
	return nil
}

func (s *Service) emitAudit(ctx context.Context, actor authz.Actor, action audit.AuditEvent, subjectID, reason string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		ActorID:   actor.ID,
		SubjectID: subjectID,
		Action:    string(action),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"error", err,
		)
	}
}
