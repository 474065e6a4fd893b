// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets the values; services read them. Keeping this package free of
// net/http lets the SML workflow run unchanged from HTTP handlers, CLIs and tests.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithActor(ctx, "operator@example.org")
package requestcontext

import (
	"context"
	"time"
)

type (
	actorIDKey     struct{}
	sessionKeyKey  struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeySessionKey  = sessionKeyKey{}
	ContextKeyClientIP    = clientIPKey{}
	ContextKeyUserAgent   = userAgentKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ActorID returns the operator that triggered the current action, or "".
func ActorID(ctx context.Context) string {
	if actor, ok := ctx.Value(ContextKeyActorID).(string); ok {
		return actor
	}
	return ""
}

// WithActor injects the acting operator into the context.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ContextKeyActorID, actorID)
}

// SessionKey identifies the caller's session for session-scoped caches.
// Falls back to the actor ID, then to "" (shared).
func SessionKey(ctx context.Context) string {
	if key, ok := ctx.Value(ContextKeySessionKey).(string); ok && key != "" {
		return key
	}
	return ActorID(ctx)
}

// WithSessionKey injects a session key into the context.
func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeySessionKey, key)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(ContextKeyClientIP).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP injects the client IP address into the context.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ContextKeyClientIP, ip)
}

// UserAgent is the caller's User-Agent header, or "".
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		return ua
	}
	return ""
}

func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, ContextKeyUserAgent, userAgent)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (for non-HTTP contexts like CLI and tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
