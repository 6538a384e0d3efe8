package testutil

import (
	"net/http"

	id "campusforum/pkg/domain"
	"campusforum/pkg/requestcontext"
)

// WithPrincipal adds an authenticated principal to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithPrincipal(req *http.Request, userID id.UserID, role id.Role) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
