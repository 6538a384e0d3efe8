package authz

import (
	"context"

	id "campusforum/pkg/domain"
	"campusforum/pkg/requestcontext"
)

// ActorFromContext builds the acting principal from authenticated request
// context. Status is ACTIVE by construction: banning an account revokes its
// credentials, so a request that passed auth middleware cannot belong to a
// banned user.
func ActorFromContext(ctx context.Context) Actor {
	return Actor{
		ID:     requestcontext.UserID(ctx),
		Role:   requestcontext.Role(ctx),
		Status: id.StatusActive,
	}
}
