package identity

import (
	"time"

	id "campusforum/pkg/domain"
)

// User is a forum account. PasswordHash never leaves this package; handlers
// render users through Profile.
type User struct {
	ID           id.UserID
	Username     string
	Email        string
	PasswordHash string
	Role         id.Role
	Status       id.UserStatus
	AvatarURL    string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile is the externally visible view of a user.
type Profile struct {
	ID        id.UserID
	Username  string
	Email     string
	Role      id.Role
	Status    id.UserStatus
	AvatarURL string
	Bio       string
	CreatedAt time.Time
}

// ProfileOf strips credentials from a user record.
func ProfileOf(u *User) Profile {
	return Profile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}

// ProfileUpdate carries the self-service profile fields. Nil fields stay
// unchanged.
type ProfileUpdate struct {
	Email     *string
	AvatarURL *string
	Bio       *string
}
