package domain

import (
	"github.com/google/uuid"

	dErrors "campusforum/pkg/domain-errors"
)

// Typed identifiers for the forum's aggregates. Distinct types keep a ThreadID
// from ever being passed where a UserID is expected; the compiler enforces it.
//
// Invariant: IDs must be valid, non-nil UUIDs. Construct via the Parse
// functions at trust boundaries; direct casting bypasses validation.
type (
	UserID         uuid.UUID
	ThreadID       uuid.UUID
	ReplyID        uuid.UUID
	CategoryID     uuid.UUID
	NotificationID uuid.UUID
)

func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+kind+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id cannot be nil")
	}
	return u, nil
}

// ParseUserID validates and returns a UserID from external input.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

func ParseThreadID(s string) (ThreadID, error) {
	u, err := parseUUID(s, "thread")
	return ThreadID(u), err
}

func ParseReplyID(s string) (ReplyID, error) {
	u, err := parseUUID(s, "reply")
	return ReplyID(u), err
}

func ParseCategoryID(s string) (CategoryID, error) {
	u, err := parseUUID(s, "category")
	return CategoryID(u), err
}

func ParseNotificationID(s string) (NotificationID, error) {
	u, err := parseUUID(s, "notification")
	return NotificationID(u), err
}

// NewUserID mints a random UserID. The New* constructors are for services
// creating aggregates, not for parsing input.
func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewThreadID() ThreadID             { return ThreadID(uuid.New()) }
func NewReplyID() ReplyID               { return ReplyID(uuid.New()) }
func NewCategoryID() CategoryID         { return CategoryID(uuid.New()) }
func NewNotificationID() NotificationID { return NotificationID(uuid.New()) }

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id ThreadID) String() string       { return uuid.UUID(id).String() }
func (id ReplyID) String() string        { return uuid.UUID(id).String() }
func (id CategoryID) String() string     { return uuid.UUID(id).String() }
func (id NotificationID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id ThreadID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id ReplyID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id CategoryID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id NotificationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
