package admin

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"smpadmin/pkg/requestcontext"
)

const (
	HeaderAdminToken = "X-Admin-Token"
	// HeaderAdminActor names the operator for the audit trail.
	HeaderAdminActor = "X-Admin-Actor"

	defaultActor = "admin"
)

// RequireAdminToken rejects requests without the expected admin token.
// Accepted requests carry the operator name as actor and a session key
// derived from the token and actor.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token := r.Header.Get(HeaderAdminToken)
			if expectedToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", requestcontext.RequestID(ctx),
					"client_ip", requestcontext.ClientIP(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"admin token required"}`))
				return
			}

			actor := strings.TrimSpace(r.Header.Get(HeaderAdminActor))
			if actor == "" {
				actor = defaultActor
			}
			sum := sha256.Sum256([]byte(token + "\x00" + actor))

			ctx = requestcontext.WithActor(ctx, actor)
			ctx = requestcontext.WithSessionKey(ctx, hex.EncodeToString(sum[:8]))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
