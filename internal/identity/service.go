package identity

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"golang.org/x/crypto/bcrypt"

	"campusforum/internal/authz"
	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
	"campusforum/pkg/platform/audit"
	"campusforum/pkg/platform/sentinel"
	"campusforum/pkg/requestcontext"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 30
	minPasswordLength = 8
	maxBioLength      = 500
)

// TokenIssuer mints access tokens after a successful login.
type TokenIssuer interface {
	IssueToken(userID id.UserID, username string, role id.Role) (string, error)
	TokenTTL() time.Duration
}

// CredentialRevoker invalidates outstanding tokens. Banning, role changes,
// and account deletion all revoke at the user level since stateless tokens
// cannot be enumerated.
type CredentialRevoker interface {
	RevokeUser(ctx context.Context, userID id.UserID, ttl time.Duration) error
}

// Notifier delivers account-level notifications.
type Notifier interface {
	NotifyUser(ctx context.Context, userID id.UserID, notificationType id.NotificationType, message string) error
}

// AuditPublisher records account lifecycle events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service owns account lifecycle: registration, login, moderation of
// accounts, and role administration.
type Service struct {
	users   UserStore
	tokens  TokenIssuer
	revoker CredentialRevoker
	notify  Notifier
	engine  *authz.Engine
	auditor AuditPublisher
	logger  *slog.Logger
}

func NewService(
	users UserStore,
	tokens TokenIssuer,
	revoker CredentialRevoker,
	notify Notifier,
	engine *authz.Engine,
	auditor AuditPublisher,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:   users,
		tokens:  tokens,
		revoker: revoker,
		notify:  notify,
		engine:  engine,
		auditor: auditor,
		logger:  logger,
	}
}

// Register creates a USER account. Usernames and emails are unique,
// case-insensitively.
func (s *Service) Register(ctx context.Context, username, email, password string) (*Profile, error) {
	username = strings.TrimSpace(username)
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, "username must be 3-30 characters")
	}
	if !govalidator.IsEmail(email) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	user := User{
		ID:           id.NewUserID(),
		Username:     username,
		Email:        strings.ToLower(email),
		PasswordHash: string(hash),
		Role:         id.RoleUser,
		Status:       id.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "username or email already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"username", user.Username,
	)
	s.emitAudit(ctx, user.ID, audit.EventUserRegistered, user.ID.String(), "")

	profile := ProfileOf(&user)
	return &profile, nil
}

// Login verifies credentials and issues an access token. Unknown usernames
// and wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, username, password string) (string, *Profile, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	switch user.Status {
	case id.StatusBanned:
		return "", nil, dErrors.New(dErrors.CodeForbidden, "account is banned")
	case id.StatusSuspended:
		return "", nil, dErrors.New(dErrors.CodeForbidden, "account is suspended")
	}

	token, err := s.tokens.IssueToken(user.ID, user.Username, user.Role)
	if err != nil {
		return "", nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", user.ID)
	profile := ProfileOf(user)
	return token, &profile, nil
}

// GetProfile returns a user's public profile.
func (s *Service) GetProfile(ctx context.Context, userID id.UserID) (*Profile, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := ProfileOf(user)
	return &profile, nil
}

// RoleOf reports a user's current role, for ownership protection checks.
func (s *Service) RoleOf(ctx context.Context, userID id.UserID) (id.Role, error) {
	user, err := s.findUser(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// List returns all accounts. Admin only.
func (s *Service) List(ctx context.Context, actor authz.Actor) ([]Profile, error) {
	if err := s.engine.Require(ctx, actor, authz.OpListUsers, authz.Resource{Kind: authz.KindUser}); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	out := make([]Profile, 0, len(users))
	for i := range users {
		out = append(out, ProfileOf(&users[i]))
	}
	return out, nil
}

// UpdateProfile lets a user change their own email, avatar, and bio.
func (s *Service) UpdateProfile(ctx context.Context, actor authz.Actor, update ProfileUpdate) (*Profile, error) {
	if actor.ID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if update.Email != nil && !govalidator.IsEmail(*update.Email) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid email address")
	}
	if update.Bio != nil && len(*update.Bio) > maxBioLength {
		return nil, dErrors.New(dErrors.CodeBadRequest, "bio is too long")
	}

	user, err := s.findUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if update.Email != nil {
		user.Email = strings.ToLower(*update.Email)
	}
	if update.AvatarURL != nil {
		user.AvatarURL = *update.AvatarURL
	}
	if update.Bio != nil {
		user.Bio = *update.Bio
	}
	user.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, *user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "email already in use")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}
	profile := ProfileOf(user)
	return &profile, nil
}

// Ban moves an account to BANNED, revokes its outstanding credentials, and
// notifies the target. Admin accounts cannot be banned.
func (s *Service) Ban(ctx context.Context, actor authz.Actor, targetID id.UserID, reason string) error {
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.engine.Require(ctx, actor, authz.OpBanUser, authz.Resource{
		Kind:      authz.KindUser,
		OwnerID:   target.ID,
		OwnerRole: target.Role,
	}); err != nil {
		return err
	}
	if target.Status == id.StatusBanned {
		return dErrors.New(dErrors.CodeConflict, "user is already banned")
	}

	target.Status = id.StatusBanned
	target.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, *target); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	if err := s.revoker.RevokeUser(ctx, target.ID, s.tokens.TokenTTL()); err != nil {
		// The status change already blocks future logins; revocation failure
		// leaves a window no longer than the token TTL.
		s.logger.ErrorContext(ctx, "failed to revoke banned user's credentials",
			"user_id", target.ID,
			"error", err,
		)
	}

	message := "Your account has been banned"
	if reason != "" {
		message += ": " + reason
	}
	if err := s.notify.NotifyUser(ctx, target.ID, id.NotificationUserBanned, message); err != nil {
		s.logger.WarnContext(ctx, "failed to notify banned user",
			"user_id", target.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "user banned",
		"user_id", target.ID,
		"actor_id", actor.ID,
		"reason", reason,
	)
	s.emitAudit(ctx, actor.ID, audit.EventUserBanned, target.ID.String(), reason)
	return nil
}

// Unban returns a banned account to ACTIVE.
func (s *Service) Unban(ctx context.Context, actor authz.Actor, targetID id.UserID) error {
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.engine.Require(ctx, actor, authz.OpUnbanUser, authz.Resource{
		Kind:      authz.KindUser,
		OwnerID:   target.ID,
		OwnerRole: target.Role,
	}); err != nil {
		return err
	}
	if target.Status != id.StatusBanned {
		return dErrors.New(dErrors.CodeConflict, "user is not banned")
	}

	target.Status = id.StatusActive
	target.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, *target); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	s.logger.InfoContext(ctx, "user unbanned",
		"user_id", target.ID,
		"actor_id", actor.ID,
	)
	s.emitAudit(ctx, actor.ID, audit.EventUserUnbanned, target.ID.String(), "")
	return nil
}

// ChangeRole sets a user's role. Admin only; admins cannot be demoted. Old
// tokens carry the stale role claim, so credentials are revoked.
func (s *Service) ChangeRole(ctx context.Context, actor authz.Actor, targetID id.UserID, newRole id.Role) (*Profile, error) {
	if !newRole.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown role")
	}

	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.engine.Require(ctx, actor, authz.OpChangeRole, authz.Resource{
		Kind:      authz.KindUser,
		OwnerID:   target.ID,
		OwnerRole: target.Role,
	}); err != nil {
		return nil, err
	}

	if target.Role == newRole {
		profile := ProfileOf(target)
		return &profile, nil
	}

	previous := target.Role
	target.Role = newRole
	target.UpdatedAt = requestcontext.Now(ctx)
	if err := s.users.Update(ctx, *target); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
	}

	if err := s.revoker.RevokeUser(ctx, target.ID, s.tokens.TokenTTL()); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke credentials after role change",
			"user_id", target.ID,
			"error", err,
		)
	}

	s.logger.InfoContext(ctx, "user role changed",
		"user_id", target.ID,
		"actor_id", actor.ID,
		"from", previous,
		"to", newRole,
	)
	s.emitAudit(ctx, actor.ID, audit.EventUserRoleChanged, target.ID.String(), previous.String()+" -> "+newRole.String())

	profile := ProfileOf(target)
	return &profile, nil
}

// Delete removes an account and revokes its credentials. Admin only; admin
// accounts cannot be deleted.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, targetID id.UserID) error {
	target, err := s.findUser(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.engine.Require(ctx, actor, authz.OpDeleteUser, authz.Resource{
		Kind:      authz.KindUser,
		OwnerID:   target.ID,
		OwnerRole: target.Role,
	}); err != nil {
		return err
	}

	if err := s.revoker.RevokeUser(ctx, target.ID, s.tokens.TokenTTL()); err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke deleted user's credentials",
			"user_id", target.ID,
			"error", err,
		)
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "user not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}

	s.logger.InfoContext(ctx, "user deleted",
		"user_id", target.ID,
		"actor_id", actor.ID,
	)
	s.emitAudit(ctx, actor.ID, audit.EventUserDeleted, target.ID.String(), "")
	return nil
}

func (s *Service) findUser(ctx context.Context, userID id.UserID) (*User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
	}
	return user, nil
}

func (s *Service) emitAudit(ctx context.Context, actorID id.UserID, action audit.AuditEvent, subjectID, reason string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		ActorID:   actorID,
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
