// Package middleware carries the request-scoped session identity from
// HTTP headers into the request context.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/firefly-oss/lib-session-manager/internal/models"
)

// Identity headers recognized by the session middleware.
const (
	HeaderPartyID           = "X-Party-Id"
	HeaderSessionID         = "X-Session-Id"
	HeaderSourceApplication = "X-Source-Application"
)

type contextKey string

const (
	ctxKeyPartyID    contextKey = "party_id"
	ctxKeySessionID  contextKey = "session_id"
	ctxKeyClientMeta contextKey = "client_metadata"
)

// SessionContext extracts the party id, session id and client metadata
// from the request and stores them in the request context. Requests
// without identity headers pass through untouched; handlers that need
// an identity reject those themselves.
func SessionContext() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if raw := r.Header.Get(HeaderPartyID); raw != "" {
				if partyID, err := uuid.Parse(raw); err == nil {
					ctx = context.WithValue(ctx, ctxKeyPartyID, partyID)
				}
			}
			if sessionID := r.Header.Get(HeaderSessionID); sessionID != "" {
				ctx = context.WithValue(ctx, ctxKeySessionID, sessionID)
			}

			userAgent := r.UserAgent()
			meta := models.ClientMetadata{
				IPAddress:         r.RemoteAddr,
				UserAgent:         userAgent,
				Channel:           DetectChannel(userAgent),
				SourceApplication: r.Header.Get(HeaderSourceApplication),
			}
			ctx = context.WithValue(ctx, ctxKeyClientMeta, meta)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PartyIDFrom returns the party id parsed from the request headers.
func PartyIDFrom(ctx context.Context) (uuid.UUID, bool) {
	partyID, ok := ctx.Value(ctxKeyPartyID).(uuid.UUID)
	return partyID, ok
}

// SessionIDFrom returns the session id from the request headers.
func SessionIDFrom(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(ctxKeySessionID).(string)
	return sessionID, ok
}

// ClientMetadataFrom returns the client metadata captured for this
// request. The zero value is returned outside the middleware.
func ClientMetadataFrom(ctx context.Context) models.ClientMetadata {
	meta, _ := ctx.Value(ctxKeyClientMeta).(models.ClientMetadata)
	return meta
}

// DetectChannel classifies the caller from its user agent: browsers on
// handheld devices are "mobile", other browsers "web", everything else
// (SDKs, service-to-service calls, empty agents) "api".
func DetectChannel(userAgent string) string {
	if userAgent == "" {
		return "api"
	}
	ua := strings.ToLower(userAgent)
	switch {
	case strings.Contains(ua, "mobile"),
		strings.Contains(ua, "android"),
		strings.Contains(ua, "iphone"),
		strings.Contains(ua, "ipad"):
		return "mobile"
	case strings.Contains(ua, "mozilla"),
		strings.Contains(ua, "chrome"),
		strings.Contains(ua, "safari"):
		return "web"
	default:
		return "api"
	}
}
