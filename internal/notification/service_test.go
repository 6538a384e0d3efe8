package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
)

type InboxSuite struct {
	suite.Suite
	service *Service
	store   *InMemoryStore
	owner   id.UserID
}

func (s *InboxSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.owner = id.UserID(uuid.New())
	s.service = NewService(s.store, testLogger())
}

func TestInboxSuite(t *testing.T) {
	suite.Run(t, new(InboxSuite))
}

func (s *InboxSuite) seed(owner id.UserID, read bool) Notification {
	n := Notification{
		ID:        id.NewNotificationID(),
		UserID:    owner,
		Type:      id.NotificationNewReply,
		Message:   "New reply in thread: t",
		Read:      read,
		CreatedAt: time.Now(),
	}
	s.Require().NoError(s.store.Create(context.Background(), n))
	return n
}

func (s *InboxSuite) TestList_ReturnsOwnNotificationsOnly() {
	mine := s.seed(s.owner, false)
	s.seed(id.UserID(uuid.New()), false)

	out, err := s.service.List(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(mine.ID, out[0].ID)
}

func (s *InboxSuite) TestListUnread_ExcludesRead() {
	unread := s.seed(s.owner, false)
	s.seed(s.owner, true)

	out, err := s.service.ListUnread(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Require().Len(out, 1)
	s.Equal(unread.ID, out[0].ID)
}

func (s *InboxSuite) TestMarkRead_OtherUsersNotificationIsNotFound() {
	other := s.seed(id.UserID(uuid.New()), false)

	err := s.service.MarkRead(context.Background(), s.owner, other.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *InboxSuite) TestMarkRead_UpdatesNotification() {
	n := s.seed(s.owner, false)

	s.Require().NoError(s.service.MarkRead(context.Background(), s.owner, n.ID))

	unread, err := s.service.ListUnread(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Empty(unread)
}

func (s *InboxSuite) TestMarkAllRead_ReturnsUpdatedCount() {
	s.seed(s.owner, false)
	s.seed(s.owner, false)
	s.seed(s.owner, true)

	updated, err := s.service.MarkAllRead(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Equal(2, updated)

	updated, err = s.service.MarkAllRead(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Zero(updated, "second pass has nothing left to update")
}

func (s *InboxSuite) TestDelete_OwnerScoped() {
	n := s.seed(s.owner, false)
	other := s.seed(id.UserID(uuid.New()), false)

	err := s.service.Delete(context.Background(), s.owner, other.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Require().NoError(s.service.Delete(context.Background(), s.owner, n.ID))

	out, err := s.service.List(context.Background(), s.owner)
	s.Require().NoError(err)
	s.Empty(out)
}

func (s *InboxSuite) TestAnonymousAccessIsUnauthorized() {
	_, err := s.service.List(context.Background(), id.UserID{})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
