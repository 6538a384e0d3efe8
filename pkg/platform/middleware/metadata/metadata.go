// Package metadata captures client IP and a parsed User-Agent summary for the
// audit trail on moderation actions.
package metadata

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"campusforum/pkg/requestcontext"
)

// WithClientMetadata records the caller's IP and browser/OS summary in the
// request context.
func WithClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithClientMetadata(r.Context(), clientIP(r), userAgentSummary(r.UserAgent()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clientIP(r *http.Request) string {
	// First hop of X-Forwarded-For wins when a proxy set it.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func userAgentSummary(raw string) string {
	if raw == "" {
		return ""
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	if name == "" {
		return raw
	}
	return fmt.Sprintf("%s %s (%s)", name, version, ua.OS())
}
