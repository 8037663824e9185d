// Package httptransport assembles the HTTP surface: public health and
// metrics endpoints plus the authenticated governance API.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	guardrailhandler "gxpgovern/internal/guardrail/handler"
	"gxpgovern/internal/platform/metrics"
	"gxpgovern/internal/platform/middleware"
	reviewhandler "gxpgovern/internal/review/handler"
	"gxpgovern/pkg/platform/httputil"
)

// NewRouter wires all endpoints. Governance and guardrail routes require a
// valid bearer token; health and metrics stay public.
func NewRouter(
	review *reviewhandler.Handler,
	guardrail *guardrailhandler.Handler,
	validator middleware.Validator,
	appMetrics *metrics.Metrics,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(appMetrics.Latency)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientMeta)
		r.Use(middleware.RequireAuth(validator, logger))
		review.Register(r)
		guardrail.Register(r)
	})

	return r
}
