package domain

import dErrors "campusforum/pkg/domain-errors"

// Role is the closed set of privilege levels a user account can hold.
// Invariant: the value must be one of the supported roles.
//
// Usage: construct via ParseRole at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type Role string

const (
	RoleUser      Role = "USER"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
)

// roleProtection orders roles for protection purposes: a resource owned by a
// higher-protection role resists moderation by lower or equal actors. This is
// deliberately separate from any permission ordering; the allow/deny matrix
// lives in internal/authz.
var roleProtection = map[Role]int{
	RoleUser:      1,
	RoleModerator: 2,
	RoleAdmin:     3,
}

// ParseRole constructs a Role from external input.
//
// Errors: returns CodeInvalidInput when the value is empty or unsupported.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return r, nil
}

// IsValid checks if the role is one of the supported enum values.
func (r Role) IsValid() bool {
	_, ok := roleProtection[r]
	return ok
}

// Protection returns the role's protection rank (USER < MODERATOR < ADMIN).
// Unknown roles rank below USER so a corrupt value never gains protection.
func (r Role) Protection() int {
	return roleProtection[r]
}

func (r Role) String() string {
	return string(r)
}
