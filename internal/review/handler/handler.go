// Package handler exposes the governance workflow over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gxpgovern/internal/auditchain"
	"gxpgovern/internal/draft/models"
	"gxpgovern/internal/review"
	id "gxpgovern/pkg/domain"
	dErrors "gxpgovern/pkg/domain-errors"
	"gxpgovern/pkg/platform/httputil"
	"gxpgovern/pkg/requestcontext"
)

// Checker triggers an on-demand regulatory intelligence cycle.
type Checker interface {
	CheckNow(ctx context.Context) ([]models.DraftContent, error)
}

type Handler struct {
	service *review.Service
	checker Checker
	logger  *slog.Logger
}

func New(service *review.Service, checker Checker, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		checker: checker,
		logger:  logger,
	}
}

// Register mounts the governance routes. Authentication middleware is applied
// by the caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/govern/drafts", h.handlePropose)
	r.Get("/govern/drafts", h.handleList)
	r.Get("/govern/drafts/{id}", h.handleGet)
	r.Post("/govern/drafts/{id}/approve", h.handleApprove)
	r.Post("/govern/drafts/{id}/reject", h.handleReject)
	r.Post("/govern/drafts/{id}/request-revision", h.handleRequestRevision)
	r.Post("/govern/drafts/{id}/authorize-agentic", h.handleAuthorizeAgentic)
	r.Post("/govern/regwatch/check", h.handleRegwatchCheck)
	r.Get("/govern/audit", h.handleAuditList)
	r.Get("/govern/audit/export", h.handleAuditExport)
	r.Get("/govern/audit/verify", h.handleAuditVerify)
}

func (h *Handler) handlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[proposeDraftRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	draft, err := req.toDraft()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	saved, accepted, err := h.service.Propose(ctx, requestcontext.ActorFrom(ctx), draft)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if !accepted {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"accepted": false,
			"reason":   "duplicate of a previously proposed regulatory input",
		})
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, map[string]any{
		"accepted": true,
		"draft":    saved,
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"drafts": drafts})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	draftID, err := id.ParseDraftID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	draft, err := h.service.Get(r.Context(), draftID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Approve)
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.Reject)
}

func (h *Handler) handleRequestRevision(w http.ResponseWriter, r *http.Request) {
	h.handleTransition(w, r, h.service.RequestRevision)
}

type transitionFunc func(ctx context.Context, actor requestcontext.Actor, draftID id.DraftID, comment string) (models.DraftContent, error)

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request, transition transitionFunc) {
	ctx := r.Context()
	draftID, err := id.ParseDraftID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[reviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft, err := transition(ctx, requestcontext.ActorFrom(ctx), draftID, req.Comment)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleAuthorizeAgentic(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	draftID, err := id.ParseDraftID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	draft, err := h.service.AuthorizeAgentic(ctx, requestcontext.ActorFrom(ctx), draftID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, draft)
}

func (h *Handler) handleRegwatchCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor := requestcontext.ActorFrom(ctx)
	if !review.Can(actor.Role, review.PermContentPropose) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "role cannot trigger regulatory checks"))
		return
	}
	proposed, err := h.checker.CheckNow(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "on-demand regulatory check failed",
			slog.Any("error", err))
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "regulatory check failed"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"proposed": len(proposed),
		"drafts":   proposed,
	})
}

func (h *Handler) handleAuditList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.AuditEntries(ctx, requestcontext.ActorFrom(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleAuditExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entries, err := h.service.AuditEntries(ctx, requestcontext.ActorFrom(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		out, err := auditchain.ExportJSON(entries)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-trail.json"`)
		_, _ = w.Write(out)
	case "csv":
		out, err := auditchain.ExportCSV(entries)
		if err != nil {
			httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "export failed"))
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="audit-trail.csv"`)
		_, _ = w.Write(out)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "unsupported export format: "+format))
	}
}

func (h *Handler) handleAuditVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	length, err := h.service.VerifyAudit(ctx, requestcontext.ActorFrom(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeIntegrity) {
			httputil.WriteJSON(w, http.StatusConflict, map[string]any{
				"valid":   false,
				"entries": length,
				"reason":  err.Error(),
			})
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"valid":   true,
		"entries": length,
	})
}
