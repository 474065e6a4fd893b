package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"smpadmin/internal/platform/config"
	"smpadmin/internal/platform/metrics"
	"smpadmin/internal/platform/middleware"
	"smpadmin/internal/sml/handler"
	"smpadmin/pkg/platform/httputil"
	"smpadmin/pkg/platform/middleware/admin"
	"smpadmin/pkg/platform/middleware/metadata"
	"smpadmin/pkg/platform/middleware/request"
	"smpadmin/pkg/platform/middleware/requesttime"
)

func newRouter(cfg *config.Config, log *slog.Logger, m *metrics.Metrics, in *infra, h *handler.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Recover(log))
	r.Use(middleware.AccessLog(log))
	r.Use(m.Middleware)

	r.Get("/healthz", healthHandler(in))
	r.Handle("/metrics", m.Handler())

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.Server.AdminToken, log))
		h.Register(r)
	})
	return r
}

// healthHandler reports 503 when a configured backend does not answer.
func healthHandler(in *infra) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		checks := map[string]string{}
		healthy := true
		if in.db != nil {
			checks["postgres"] = "ok"
			if err := in.db.PingContext(ctx); err != nil {
				checks["postgres"] = err.Error()
				healthy = false
			}
		}
		if in.redis != nil {
			checks["redis"] = "ok"
			if err := in.redis.Health(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		status, code := "ok", http.StatusOK
		if !healthy {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, code, map[string]any{"status": status, "checks": checks})
	}
}
