package testutil

import (
	"context"
	"net/http"
	"time"

	"smpadmin/pkg/requestcontext"
)

// WithActor adds an operator identity to the request context, as the admin
// middleware would for an authenticated call.
func WithActor(req *http.Request, actorID string) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actorID))
}

// WithRequestID adds a request ID to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// WithNow pins the request-scoped clock.
func WithNow(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// ContextAt returns a background context whose request clock reads now.
func ContextAt(now time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), now)
}
