package subscription

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
)

type threadCheckerStub struct {
	existing map[id.ThreadID]bool
}

func (t *threadCheckerStub) ThreadExists(_ context.Context, threadID id.ThreadID) (bool, error) {
	return t.existing[threadID], nil
}

type ServiceSuite struct {
	suite.Suite
	service *Service
	store   *InMemoryStore
	threads *threadCheckerStub

	userID   id.UserID
	threadID id.ThreadID
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.userID = id.UserID(uuid.New())
	s.threadID = id.ThreadID(uuid.New())
	s.threads = &threadCheckerStub{existing: map[id.ThreadID]bool{s.threadID: true}}

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	s.service = NewService(s.store, s.threads, logger)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestSubscribe_CreatesSubscription() {
	sub, err := s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)
	s.Equal(s.userID, sub.UserID)
	s.Equal(s.threadID, sub.ThreadID)

	subscribers, err := s.service.SubscribersOf(context.Background(), s.threadID)
	s.Require().NoError(err)
	s.Equal([]id.UserID{s.userID}, subscribers)
}

func (s *ServiceSuite) TestSubscribe_TwiceReturnsConflict() {
	_, err := s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)

	_, err = s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	subscribers, err := s.service.SubscribersOf(context.Background(), s.threadID)
	s.Require().NoError(err)
	s.Len(subscribers, 1, "duplicate subscribe must not add a second row")
}

func (s *ServiceSuite) TestSubscribe_UnknownThreadReturnsNotFound() {
	_, err := s.service.Subscribe(context.Background(), s.userID, id.ThreadID(uuid.New()))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestSubscribe_AnonymousReturnsUnauthorized() {
	_, err := s.service.Subscribe(context.Background(), id.UserID{}, s.threadID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestUnsubscribe_RemovesSubscription() {
	_, err := s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)

	s.Require().NoError(s.service.Unsubscribe(context.Background(), s.userID, s.threadID))

	subscribers, err := s.service.SubscribersOf(context.Background(), s.threadID)
	s.Require().NoError(err)
	s.Empty(subscribers)
}

func (s *ServiceSuite) TestUnsubscribe_MissingReturnsNotFound() {
	err := s.service.Unsubscribe(context.Background(), s.userID, s.threadID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *ServiceSuite) TestUnsubscribe_ThenResubscribeSucceeds() {
	_, err := s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)
	s.Require().NoError(s.service.Unsubscribe(context.Background(), s.userID, s.threadID))

	_, err = s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestRemoveAllForThread_ClearsSubscribers() {
	for range 3 {
		otherID := id.UserID(uuid.New())
		_, err := s.service.Subscribe(context.Background(), otherID, s.threadID)
		s.Require().NoError(err)
	}

	s.Require().NoError(s.service.RemoveAllForThread(context.Background(), s.threadID))

	subscribers, err := s.service.SubscribersOf(context.Background(), s.threadID)
	s.Require().NoError(err)
	s.Empty(subscribers)
}

func (s *ServiceSuite) TestListForUser_ReturnsOwnSubscriptionsOnly() {
	other := id.UserID(uuid.New())
	secondThread := id.ThreadID(uuid.New())
	s.threads.existing[secondThread] = true

	_, err := s.service.Subscribe(context.Background(), s.userID, s.threadID)
	s.Require().NoError(err)
	_, err = s.service.Subscribe(context.Background(), s.userID, secondThread)
	s.Require().NoError(err)
	_, err = s.service.Subscribe(context.Background(), other, s.threadID)
	s.Require().NoError(err)

	subs, err := s.service.ListForUser(context.Background(), s.userID)
	s.Require().NoError(err)
	s.Len(subs, 2)
	for _, sub := range subs {
		s.Equal(s.userID, sub.UserID)
	}
}
