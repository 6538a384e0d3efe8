package domain

import dErrors "campusforum/pkg/domain-errors"

// UserStatus is the account lifecycle state. Only ACTIVE accounts may perform
// mutating operations; BANNED and SUSPENDED accounts keep read access.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusBanned    UserStatus = "BANNED"
	StatusSuspended UserStatus = "SUSPENDED"
)

var validStatuses = map[UserStatus]bool{
	StatusActive:    true,
	StatusBanned:    true,
	StatusSuspended: true,
}

// ParseUserStatus constructs a UserStatus from external input.
func ParseUserStatus(s string) (UserStatus, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "status cannot be empty")
	}
	st := UserStatus(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown status")
	}
	return st, nil
}

func (s UserStatus) IsValid() bool {
	return validStatuses[s]
}

func (s UserStatus) String() string {
	return string(s)
}
