package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "campusforum/pkg/domain"
	request "campusforum/pkg/platform/middleware/request"
	"campusforum/pkg/requestcontext"
)

// TokenValidator defines the interface for validating bearer credentials.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// TokenRevocationChecker defines the interface for checking if credentials are
// revoked, either a single token by its JTI or every token of a banned user.
type TokenRevocationChecker interface {
	IsTokenRevoked(ctx context.Context, userID id.UserID, jti string) (bool, error)
}

// Claims represents the principal we expect from the token validator.
type Claims struct {
	UserID   id.UserID
	Username string
	Role     id.Role
	JTI      string // token ID for revocation tracking
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth parses the bearer credential, rejects revoked tokens, and
// injects the principal (user id, username, role) into the request context.
func RequireAuth(validator TokenValidator, revocationChecker TokenRevocationChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx := r.Context()

			// Banned users have their outstanding token IDs revoked; the
			// stateless credential alone is not enough.
			if revocationChecker != nil {
				if claims.JTI == "" {
					logger.WarnContext(ctx, "unauthorized access - missing token jti",
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
					return
				}

				revoked, err := revocationChecker.IsTokenRevoked(ctx, claims.UserID, claims.JTI)
				if err != nil {
					logger.ErrorContext(ctx, "failed to check token revocation",
						"error", err,
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusInternalServerError, "internal_error", "Failed to validate token")
					return
				}
				if revoked {
					logger.WarnContext(ctx, "unauthorized access - token revoked",
						"jti", claims.JTI,
						"request_id", request.GetRequestID(ctx),
					)
					writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Token has been revoked")
					return
				}
			}

			ctx = requestcontext.WithUserID(ctx, claims.UserID)
			ctx = requestcontext.WithUsername(ctx, claims.Username)
			ctx = requestcontext.WithRole(ctx, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
