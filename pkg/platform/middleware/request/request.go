// Package request tags every inbound request with an ID that flows into
// logs and audit events.
package request

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"smpadmin/pkg/requestcontext"
)

// HeaderRequestID is read from and echoed to the client.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// RequestID reuses a caller-supplied X-Request-ID or generates one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	return requestcontext.RequestID(ctx)
}
