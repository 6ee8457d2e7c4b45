package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const noStore = "no-store"

type APIHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewAPIHandlers(dashboard *services.Dashboard, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

type seriesResponse struct {
	Series models.AggregateSeries `json:"series"`
	Chart  models.ChartSpec       `json:"chart"`
}

func (h *APIHandlers) HandleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.dashboard.Options(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	headers := map[string]string{
		"Cache-Control": "public, max-age=60",
	}

	errors.WriteSuccessWithHeaders(w, opts, headers)
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r)
	if !ok {
		return
	}

	errors.WriteSuccessWithHeaders(w, view, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleProductLine(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r)
	if !ok {
		return
	}

	data := seriesResponse{Series: view.ProductLine, Chart: view.ProductChart}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

func (h *APIHandlers) HandleHourly(w http.ResponseWriter, r *http.Request) {
	view, ok := h.build(w, r)
	if !ok {
		return
	}

	data := seriesResponse{Series: view.Hourly, Chart: view.HourlyChart}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": noStore})
}

// HandleHealth reports unhealthy when the sales source can no longer be
// loaded.
func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	rs, err := h.dashboard.Warm(r.Context())
	if err != nil {
		appErr := errors.ServiceUnavailable("sales source unavailable")
		appErr.Cause = err
		h.writeError(w, r, appErr)
		return
	}

	healthData := map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"records":   rs.Len(),
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.dashboard.Stats()

	errors.WriteSuccess(w, stats)
}

// HandleInvalidate drops the cached record set and reloads it straight away
// so a broken source is reported to the caller.
func (h *APIHandlers) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	h.dashboard.Invalidate()

	rs, err := h.dashboard.Warm(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("sales cache reloaded",
		"records", rs.Len(),
		"request_id", observability.GetRequestID(r.Context()),
	)

	errors.WriteSuccess(w, h.dashboard.Stats())
}

func (h *APIHandlers) build(w http.ResponseWriter, r *http.Request) (*models.DashboardView, bool) {
	view, err := h.dashboard.Build(r.Context(), selectionFromQuery(r.URL.Query()))
	if err != nil {
		h.writeError(w, r, err)
		return nil, false
	}
	return view, true
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}
