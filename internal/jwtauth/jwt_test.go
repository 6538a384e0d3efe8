package jwtauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "campusforum/pkg/domain"
	dErrors "campusforum/pkg/domain-errors"
)

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewService("test-signing-key", "campusforum", time.Hour)
	userID := id.NewUserID()

	token, err := svc.IssueToken(userID, "alice", id.RoleModerator)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "MODERATOR", claims.Role)
	assert.NotEmpty(t, claims.ID, "tokens must carry a JTI for revocation")
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewService("test-signing-key", "campusforum", -time.Minute)

	token, err := svc.IssueToken(id.NewUserID(), "bob", id.RoleUser)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateToken_WrongKey(t *testing.T) {
	issuer := NewService("key-one", "campusforum", time.Hour)
	verifier := NewService("key-two", "campusforum", time.Hour)

	token, err := issuer.IssueToken(id.NewUserID(), "carol", id.RoleUser)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := NewService("test-signing-key", "campusforum", time.Hour)

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestServiceAdapter_ParsesPrincipal(t *testing.T) {
	svc := NewService("test-signing-key", "campusforum", time.Hour)
	adapter := NewServiceAdapter(svc)
	userID := id.NewUserID()

	token, err := svc.IssueToken(userID, "dave", id.RoleAdmin)
	require.NoError(t, err)

	claims, err := adapter.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "dave", claims.Username)
	assert.Equal(t, id.RoleAdmin, claims.Role)
	assert.NotEmpty(t, claims.JTI)
}
