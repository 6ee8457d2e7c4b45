// Package templates holds the dashboard markup. Components are written in
// dashboard.templ; run `templ generate` after editing it.
package templates

import (
	"fmt"
	"strings"

	"sales-dashboard/internal/models"
)

const (
	KPIElementID = "kpis"
	StatusID     = "status"
)

// Page is the data the full dashboard page is rendered from.
type Page struct {
	Title   string
	Options models.FilterOptions
	View    *models.DashboardView
}

// pageSignals seeds the client store; the chart signals are replaced on every
// SSE round trip.
type pageSignals struct {
	Cities        []string         `json:"cities"`
	CustomerTypes []string         `json:"customerTypes"`
	Genders       []string         `json:"genders"`
	ProductChart  models.ChartSpec `json:"productChart"`
	HourlyChart   models.ChartSpec `json:"hourlyChart"`
}

func signalsOf(view *models.DashboardView) pageSignals {
	return pageSignals{
		Cities:        view.Selection.Cities,
		CustomerTypes: view.Selection.CustomerTypes,
		Genders:       view.Selection.Genders,
		ProductChart:  view.ProductChart,
		HourlyChart:   view.HourlyChart,
	}
}

func statusLine(view *models.DashboardView) string {
	if view.Matched == 0 {
		return "Ningun registro coincide con el filtro."
	}
	return fmt.Sprintf("%d de %d registros", view.Matched, view.TotalRecords)
}

func ratingText(summary models.KPISummary) string {
	return summary.AverageRating.StringFixed(1) + " " + strings.Repeat("⭐", max(summary.Stars(), 0))
}
