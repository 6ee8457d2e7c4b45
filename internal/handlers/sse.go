package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		logger:    logger,
	}
}

// chartSignals are pushed after every recompute; the page redraws both
// charts from them.
type chartSignals struct {
	ProductChart models.ChartSpec `json:"productChart"`
	HourlyChart  models.ChartSpec `json:"hourlyChart"`
}

// resetSignals also rewrites the bound selection back to every option.
type resetSignals struct {
	Cities        []string         `json:"cities"`
	CustomerTypes []string         `json:"customerTypes"`
	Genders       []string         `json:"genders"`
	ProductChart  models.ChartSpec `json:"productChart"`
	HourlyChart   models.ChartSpec `json:"hourlyChart"`
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

// HandleDashboard recomputes the view for the selection held in the client
// signals.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var sel models.Selection
	if err := datastar.ReadSignals(r, &sel); err != nil {
		appErr := errors.BadRequest("invalid dashboard signals")
		appErr.Cause = err
		errors.WriteError(w, h.logger, appErr, observability.GetRequestID(r.Context()))
		return
	}

	sse := datastar.NewSSE(w, r)

	view, err := h.dashboard.Build(r.Context(), sel)
	if err != nil {
		h.logger.Error("build dashboard", "error", err)
		h.patchStatus(r.Context(), sse, "No se pudieron cargar los datos de ventas.")
		return
	}

	if err := h.patchView(r.Context(), sse, view, chartSignals{
		ProductChart: view.ProductChart,
		HourlyChart:  view.HourlyChart,
	}); err != nil {
		h.logger.Error("patch dashboard", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// HandleReset restores the default selection of every option.
func (h *SSEHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	view, err := h.dashboard.Build(r.Context(), models.Selection{})
	if err != nil {
		h.logger.Error("build dashboard", "error", err)
		h.patchStatus(r.Context(), sse, "No se pudieron cargar los datos de ventas.")
		return
	}

	if err := h.patchView(r.Context(), sse, view, resetSignals{
		Cities:        view.Selection.Cities,
		CustomerTypes: view.Selection.CustomerTypes,
		Genders:       view.Selection.Genders,
		ProductChart:  view.ProductChart,
		HourlyChart:   view.HourlyChart,
	}); err != nil {
		h.logger.Error("patch dashboard", "error", err)
		return
	}

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) patchView(ctx context.Context, sse *datastar.ServerSentEventGenerator, view *models.DashboardView, signals any) error {
	html, err := renderComponent(ctx, templates.KPIs(view))
	if err != nil {
		return fmt.Errorf("render kpis: %w", err)
	}
	if err := sse.PatchElements(html); err != nil {
		return fmt.Errorf("patch kpis: %w", err)
	}

	jsonData, err := json.Marshal(signals)
	if err != nil {
		return fmt.Errorf("marshal chart signals: %w", err)
	}
	if err := sse.PatchSignals(jsonData); err != nil {
		return fmt.Errorf("patch chart signals: %w", err)
	}
	return nil
}

func (h *SSEHandlers) patchStatus(ctx context.Context, sse *datastar.ServerSentEventGenerator, message string) {
	html, err := renderComponent(ctx, templates.Status(message))
	if err != nil {
		h.logger.Error("render status", "error", err)
		return
	}
	if err := sse.PatchElements(html); err != nil {
		h.logger.Error("patch status", "error", err)
	}
}
