package thread

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"campusforum/internal/authz"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/tx"
	"campusforum/pkg/requestcontext"
)

type roleResolverStub struct {
	mu    sync.Mutex
	roles map[id.UserID]id.Role
}

func (r *roleResolverStub) RoleOf(_ context.Context, userID id.UserID) (id.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if role, ok := r.roles[userID]; ok {
		return role, nil
	}
	return "", dErrors.New(dErrors.CodeNotFound, "user not found")
}

type subscriptionCascadeStub struct {
	mu      sync.Mutex
	removed []id.ThreadID
}

func (s *subscriptionCascadeStub) RemoveAllForThread(_ context.Context, threadID id.ThreadID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, threadID)
	return nil
}

type fanoutStub struct {
	mu    sync.Mutex
	calls []id.ThreadID
}

func (f *fanoutStub) NotifyNewReply(_ context.Context, threadID id.ThreadID, _ string, _ id.UserID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, threadID)
	return 0, nil
}

var testEngine = authz.NewEngine(nil, nil)

type ServiceSuite struct {
	suite.Suite
	service *Service
	threads *InMemoryStore
	replies *InMemoryReplyStore
	roles   *roleResolverStub
	subs    *subscriptionCascadeStub
	fanout  *fanoutStub

	user      authz.Actor
	moderator authz.Actor
	admin     authz.Actor
	category  id.CategoryID
}

func (s *ServiceSuite) SetupTest() {
	s.threads = NewInMemoryStore()
	s.replies = NewInMemoryReplyStore()
	s.subs = &subscriptionCascadeStub{}
	s.fanout = &fanoutStub{}

	s.category = id.NewCategoryID()
	s.user = actor(id.RoleUser)
	s.moderator = actor(id.RoleModerator)
	s.admin = actor(id.RoleAdmin)
	s.roles = &roleResolverStub{roles: map[id.UserID]id.Role{
		s.user.ID:      id.RoleUser,
		s.moderator.ID: id.RoleModerator,
		s.admin.ID:     id.RoleAdmin,
	}}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.service = NewService(s.threads, s.replies, testEngine, s.roles, s.subs, s.fanout, nil, tx.NoopRunner{}, logger)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func actor(role id.Role) authz.Actor {
	return authz.Actor{
		ID:     id.UserID(uuid.New()),
		Role:   role,
		Status: id.StatusActive,
	}
}

func (s *ServiceSuite) createThread(owner authz.Actor) *Thread {
	t, err := s.service.Create(context.Background(), owner, s.category, "Exam schedule", "When is the final?")
	s.Require().NoError(err)
	return t
}

func (s *ServiceSuite) TestCreate_RejectsBlankTitle() {
	_, err := s.service.Create(context.Background(), s.user, s.category, "   ", "content")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestCreate_RejectsBlankContent() {
	_, err := s.service.Create(context.Background(), s.user, s.category, "title", "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestCreate_RejectsMissingCategory() {
	_, err := s.service.Create(context.Background(), s.user, id.CategoryID{}, "title", "content")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestGet_IncrementsViewCount() {
	t := s.createThread(s.user)

	got, _, err := s.service.Get(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), got.ViewCount)

	got, _, err = s.service.Get(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), got.ViewCount)
}

func (s *ServiceSuite) TestGet_UnknownThreadIsNotFound() {
	_, _, err := s.service.Get(context.Background(), id.ThreadID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestEdit_AuthorMayEdit() {
	t := s.createThread(s.user)

	moved := id.NewCategoryID()
	updated, err := s.service.Edit(context.Background(), s.user, t.ID, moved, "New title", "new content")
	s.Require().NoError(err)
	s.Equal("New title", updated.Title)
	s.Equal(moved, updated.CategoryID)
}

func (s *ServiceSuite) TestEdit_AdminMayNotEditOthersThread() {
	t := s.createThread(s.user)

	_, err := s.service.Edit(context.Background(), s.admin, t.ID, t.CategoryID, "hijack", "content")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestDelete_ModeratorDeletesUserThreadWithCascade() {
	t := s.createThread(s.user)
	_, err := s.service.CreateReply(context.Background(), s.moderator, t.ID, "a reply")
	s.Require().NoError(err)

	s.Require().NoError(s.service.Delete(context.Background(), s.moderator, t.ID))

	_, _, err = s.service.Get(context.Background(), t.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	replies, err := s.replies.ListByThread(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Empty(replies, "replies must be removed with the thread")
	s.Equal([]id.ThreadID{t.ID}, s.subs.removed, "subscriptions must be removed with the thread")
}

func (s *ServiceSuite) TestDelete_ModeratorCannotDeleteModeratorThread() {
	otherModerator := actor(id.RoleModerator)
	s.roles.roles[otherModerator.ID] = id.RoleModerator
	t := s.createThread(otherModerator)

	err := s.service.Delete(context.Background(), s.moderator, t.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestDelete_AdminCannotDeleteAdminThread() {
	otherAdmin := actor(id.RoleAdmin)
	s.roles.roles[otherAdmin.ID] = id.RoleAdmin
	t := s.createThread(otherAdmin)

	err := s.service.Delete(context.Background(), s.admin, t.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestDelete_DeletedOwnerCountsAsUser() {
	ghost := actor(id.RoleUser)
	t := s.createThread(ghost)
	// The author's account is gone; the resolver has no entry for them.

	s.Require().NoError(s.service.Delete(context.Background(), s.moderator, t.ID))
}

func (s *ServiceSuite) TestSetPinned_RequiresModerator() {
	t := s.createThread(s.user)

	_, err := s.service.SetPinned(context.Background(), s.user, t.ID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	pinned, err := s.service.SetPinned(context.Background(), s.moderator, t.ID, true)
	s.Require().NoError(err)
	s.True(pinned.Pinned)
}

func (s *ServiceSuite) TestSetLocked_OwnerCannotLockOwnThread() {
	t := s.createThread(s.user)

	_, err := s.service.SetLocked(context.Background(), s.user, t.ID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *ServiceSuite) TestCreateReply_UpdatesLastReplyAndFansOutOnce() {
	t := s.createThread(s.user)
	now := time.Now().Round(time.Second)
	ctx := requestcontext.WithTime(context.Background(), now)

	_, err := s.service.CreateReply(ctx, s.moderator, t.ID, "first reply")
	s.Require().NoError(err)

	got, err := s.threads.FindByID(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.LastReplyAt)
	s.True(got.LastReplyAt.Equal(now))

	s.Equal([]id.ThreadID{t.ID}, s.fanout.calls, "exactly one fan-out per reply")
}

func (s *ServiceSuite) TestCreateReply_LockedThreadConflicts() {
	t := s.createThread(s.user)
	_, err := s.service.SetLocked(context.Background(), s.moderator, t.ID, true)
	s.Require().NoError(err)

	_, err = s.service.CreateReply(context.Background(), s.user, t.ID, "too late")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Empty(s.fanout.calls, "no fan-out for a rejected reply")
}

func (s *ServiceSuite) TestCreateReply_LockDoesNotStopModeratorsOrAdmins() {
	t := s.createThread(s.user)
	_, err := s.service.SetLocked(context.Background(), s.moderator, t.ID, true)
	s.Require().NoError(err)

	_, err = s.service.CreateReply(context.Background(), s.moderator, t.ID, "pinning down the answer")
	s.Require().NoError(err)

	_, err = s.service.CreateReply(context.Background(), s.admin, t.ID, "closing remark")
	s.Require().NoError(err)

	replies, err := s.replies.ListByThread(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Len(replies, 2)
}

func (s *ServiceSuite) TestEditReply_AuthorOnly() {
	t := s.createThread(s.user)
	reply, err := s.service.CreateReply(context.Background(), s.user, t.ID, "original")
	s.Require().NoError(err)

	_, err = s.service.EditReply(context.Background(), s.admin, reply.ID, "edited")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))

	updated, err := s.service.EditReply(context.Background(), s.user, reply.ID, "edited")
	s.Require().NoError(err)
	s.Equal("edited", updated.Content)
}

func (s *ServiceSuite) TestDeleteReply_AdminDeletesModeratorReply() {
	t := s.createThread(s.user)
	reply, err := s.service.CreateReply(context.Background(), s.moderator, t.ID, "mod reply")
	s.Require().NoError(err)

	s.Require().NoError(s.service.DeleteReply(context.Background(), s.admin, reply.ID))

	replies, err := s.replies.ListByThread(context.Background(), t.ID)
	s.Require().NoError(err)
	s.Empty(replies)
}

func (s *ServiceSuite) TestPurgeCreatedBefore_RemovesOnlyExpiredThreads() {
	old := s.createThread(s.user)
	oldThread, err := s.threads.FindByID(context.Background(), old.ID)
	s.Require().NoError(err)
	oldThread.CreatedAt = time.Now().AddDate(0, 0, -100)
	s.Require().NoError(s.threads.Update(context.Background(), *oldThread))

	fresh := s.createThread(s.user)

	purged, err := s.service.PurgeCreatedBefore(context.Background(), time.Now().AddDate(0, 0, -30))
	s.Require().NoError(err)
	s.Equal(1, purged)

	_, _, err = s.service.Get(context.Background(), old.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	_, _, err = s.service.Get(context.Background(), fresh.ID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestThreadExists() {
	t := s.createThread(s.user)

	exists, err := s.service.ThreadExists(context.Background(), t.ID)
	s.Require().NoError(err)
	s.True(exists)

	exists, err = s.service.ThreadExists(context.Background(), id.ThreadID(uuid.New()))
	s.Require().NoError(err)
	s.False(exists)
}
