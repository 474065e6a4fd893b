// Package handler exposes the SML registration workflow over JSON/HTTP.
// Routes are expected to be mounted behind the admin token guard.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"smpadmin/internal/sml/models"
	"smpadmin/internal/sml/service"
	dErrors "smpadmin/pkg/domain-errors"
	audit "smpadmin/pkg/platform/audit"
	"smpadmin/pkg/platform/httputil"
	"smpadmin/pkg/requestcontext"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// Service is the workflow surface used by the handler. Implemented by
// service.Service.
type Service interface {
	Register(ctx context.Context, in service.RegisterInput) (*models.Outcome, error)
	Update(ctx context.Context, in service.UpdateInput) (*models.Outcome, error)
	Unregister(ctx context.Context, in service.UnregisterInput) (*models.Outcome, error)
	PrepareCertificateUpdate(ctx context.Context, in service.CertificateUpdateInput) (*models.Outcome, error)
	Capabilities(ctx context.Context) (*models.Capabilities, error)
	SelectableSMLs(ctx context.Context, action audit.Action) ([]models.SMLInfo, error)

	ListSMLInfos(ctx context.Context) ([]models.SMLInfo, error)
	GetSMLInfo(ctx context.Context, id string) (*models.SMLInfo, error)
	CreateSMLInfo(ctx context.Context, in service.SMLInfoInput) (*models.SMLInfo, error)
	UpdateSMLInfo(ctx context.Context, id string, in service.SMLInfoInput) (*models.SMLInfo, error)
	DeleteSMLInfo(ctx context.Context, id string) error
}

// AuditLog reads back recent audit events.
type AuditLog interface {
	List(ctx context.Context, limit int) ([]audit.Event, error)
}

type Handler struct {
	service Service
	audits  AuditLog
	logger  *slog.Logger
}

// New constructs the handler. audits may be nil, in which case the audit
// listing route is not mounted.
func New(svc Service, audits AuditLog, logger *slog.Logger) *Handler {
	return &Handler{service: svc, audits: audits, logger: logger}
}

// Register mounts the SML admin routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/sml", func(r chi.Router) {
		r.Post("/registration", h.HandleRegister)
		r.Put("/registration", h.HandleUpdate)
		r.Delete("/registration", h.HandleUnregister)
		r.Post("/certificate", h.HandlePrepareCertificateUpdate)
		r.Get("/capabilities", h.HandleCapabilities)
		r.Get("/selectable", h.HandleSelectable)

		r.Get("/endpoints", h.HandleListSMLInfos)
		r.Post("/endpoints", h.HandleCreateSMLInfo)
		r.Get("/endpoints/{id}", h.HandleGetSMLInfo)
		r.Put("/endpoints/{id}", h.HandleUpdateSMLInfo)
		r.Delete("/endpoints/{id}", h.HandleDeleteSMLInfo)
	})
	if h.audits != nil {
		r.Get("/admin/audit", h.HandleListAudit)
	}
}

// HandleRegister handles POST /admin/sml/registration.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegistrationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeOutcome(w, r, string(audit.ActionSMLCreate), func() (*models.Outcome, error) {
		return h.service.Register(ctx, req.RegisterInput())
	})
}

// HandleUpdate handles PUT /admin/sml/registration.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegistrationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeOutcome(w, r, string(audit.ActionSMLUpdate), func() (*models.Outcome, error) {
		return h.service.Update(ctx, req.UpdateInput())
	})
}

// HandleUnregister handles DELETE /admin/sml/registration. The SML may be
// given as JSON body or as sml_id query parameter.
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	in := service.UnregisterInput{SMLID: r.URL.Query().Get("sml_id")}
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[UnregisterRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
		if !ok {
			return
		}
		if req.SMLID != "" {
			in.SMLID = req.SMLID
		}
	}
	h.writeOutcome(w, r, string(audit.ActionSMLDelete), func() (*models.Outcome, error) {
		return h.service.Unregister(ctx, in)
	})
}

// HandlePrepareCertificateUpdate handles POST /admin/sml/certificate.
func (h *Handler) HandlePrepareCertificateUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CertificateUpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	h.writeOutcome(w, r, string(audit.ActionSMLUpdateCert), func() (*models.Outcome, error) {
		return h.service.PrepareCertificateUpdate(ctx, service.CertificateUpdateInput{
			MigrationDate: req.MigrationDate,
			PublicKey:     req.PublicKey,
		})
	})
}

// writeOutcome runs a workflow step. Both success and failure outcomes are
// answered with 200; only rejected or unavailable requests map to an error
// status.
func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, action string, run func() (*models.Outcome, error)) {
	ctx := r.Context()
	start := time.Now()
	outcome, err := run()
	if err != nil {
		h.logger.WarnContext(ctx, "sml workflow request not executed",
			"request_id", requestcontext.RequestID(ctx),
			"action", action,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "sml workflow request executed",
		"request_id", requestcontext.RequestID(ctx),
		"action", action,
		"success", outcome.Success,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, outcome)
}

// HandleCapabilities handles GET /admin/sml/capabilities.
func (h *Handler) HandleCapabilities(w http.ResponseWriter, r *http.Request) {
	caps, err := h.service.Capabilities(r.Context())
	if err != nil {
		h.fail(w, r, "failed to compute capabilities", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, caps)
}

// HandleSelectable handles GET /admin/sml/selectable?action=.
func (h *Handler) HandleSelectable(w http.ResponseWriter, r *http.Request) {
	action := audit.Action(r.URL.Query().Get("action"))
	if action == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "action query parameter is required"))
		return
	}
	infos, err := h.service.SelectableSMLs(r.Context(), action)
	if err != nil {
		h.fail(w, r, "failed to list selectable SMLs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SelectableResponse{Action: string(action), SMLs: nonNil(infos)})
}

func (h *Handler) HandleListSMLInfos(w http.ResponseWriter, r *http.Request) {
	infos, err := h.service.ListSMLInfos(r.Context())
	if err != nil {
		h.fail(w, r, "failed to list SMLs", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SMLListResponse{SMLs: nonNil(infos)})
}

func (h *Handler) HandleGetSMLInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.GetSMLInfo(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, "failed to load SML", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) HandleCreateSMLInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SMLInfoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	info, err := h.service.CreateSMLInfo(ctx, req.Input())
	if err != nil {
		h.fail(w, r, "failed to create SML", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, info)
}

func (h *Handler) HandleUpdateSMLInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[SMLInfoRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	info, err := h.service.UpdateSMLInfo(ctx, chi.URLParam(r, "id"), req.Input())
	if err != nil {
		h.fail(w, r, "failed to update SML", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

func (h *Handler) HandleDeleteSMLInfo(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSMLInfo(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "failed to delete SML", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleListAudit handles GET /admin/audit?limit=n.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be a positive integer"))
			return
		}
		limit = min(n, maxAuditLimit)
	}
	events, err := h.audits.List(r.Context(), limit)
	if err != nil {
		h.fail(w, r, "failed to list audit events", dErrors.Wrap(err, dErrors.CodeInternal, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromEvents(events))
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	} else {
		h.logger.WarnContext(ctx, msg, "request_id", requestcontext.RequestID(ctx), "error", err)
	}
	httputil.WriteError(w, err)
}
