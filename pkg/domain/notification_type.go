package domain

import dErrors "campusforum/pkg/domain-errors"

// NotificationType tags a notification record with the event that produced it.
type NotificationType string

const (
	NotificationNewReply           NotificationType = "NEW_REPLY"
	NotificationThreadLocked       NotificationType = "THREAD_LOCKED"
	NotificationThreadPinned       NotificationType = "THREAD_PINNED"
	NotificationUserBanned         NotificationType = "USER_BANNED"
	NotificationUserMentioned      NotificationType = "USER_MENTIONED"
	NotificationSystemAnnouncement NotificationType = "SYSTEM_ANNOUNCEMENT"
)

var validNotificationTypes = map[NotificationType]bool{
	NotificationNewReply:           true,
	NotificationThreadLocked:       true,
	NotificationThreadPinned:       true,
	NotificationUserBanned:         true,
	NotificationUserMentioned:      true,
	NotificationSystemAnnouncement: true,
}

// ParseNotificationType constructs a NotificationType from external input.
func ParseNotificationType(s string) (NotificationType, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "notification type cannot be empty")
	}
	t := NotificationType(s)
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unknown notification type")
	}
	return t, nil
}

func (t NotificationType) IsValid() bool {
	return validNotificationTypes[t]
}

func (t NotificationType) String() string {
	return string(t)
}
