// Package requesttime pins one "now" per HTTP request so certificate window
// checks, audit timestamps and outcome messages agree on the date.
package requesttime

import (
	"net/http"
	"time"

	"smpadmin/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
