package auth

import (
	"log/slog"
	"net/http"

	id "campusforum/pkg/domain"
	"campusforum/pkg/requestcontext"
)

// RequireAdmin gates a route subtree to ADMIN principals. It must run after
// RequireAuth, which populates the role in the request context.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestcontext.Role(r.Context()) != id.RoleAdmin {
				logger.WarnContext(r.Context(), "admin route denied",
					"user_id", requestcontext.UserID(r.Context()),
					"path", r.URL.Path,
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "admin privileges required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
