// Package handler exposes ad hoc guardrail evaluation so authors can check a
// draft before submitting it for review.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"gxpgovern/internal/draft/models"
	"gxpgovern/internal/guardrail"
	"gxpgovern/pkg/platform/httputil"
	"gxpgovern/pkg/requestcontext"
)

type Handler struct {
	evaluator *guardrail.Evaluator
	logger    *slog.Logger
}

func New(evaluator *guardrail.Evaluator, logger *slog.Logger) *Handler {
	return &Handler{evaluator: evaluator, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/guardrail/validate", h.handleValidate)
}

type validateRequest struct {
	ModuleID          string `json:"moduleId"`
	Content           string `json:"content"`
	Rationale         string `json:"rationale"`
	RegulatoryTrigger struct {
		Authority     string `json:"authority"`
		Document      string `json:"document"`
		Section       string `json:"section"`
		EffectiveDate string `json:"effectiveDate"`
		URL           string `json:"url"`
	} `json:"regulatoryTrigger"`
}

// handleValidate evaluates the submitted fields without persisting anything.
// Unknown authorities and unparseable dates pass through as zero values so
// the rules report them rather than the endpoint rejecting the request.
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[validateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	draft := models.DraftContent{
		ModuleID:  req.ModuleID,
		Content:   req.Content,
		Rationale: req.Rationale,
		RegulatoryTrigger: models.RegulatoryReference{
			Authority:     models.Authority(req.RegulatoryTrigger.Authority),
			Document:      req.RegulatoryTrigger.Document,
			Section:       req.RegulatoryTrigger.Section,
			EffectiveDate: parseEffectiveDate(req.RegulatoryTrigger.EffectiveDate),
			URL:           req.RegulatoryTrigger.URL,
		},
	}
	report := h.evaluator.Evaluate(draft)
	httputil.WriteJSON(w, http.StatusOK, report)
}

func parseEffectiveDate(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}
