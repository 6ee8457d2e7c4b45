package services

import (
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const (
	ratingPlaces = 1
	ticketPlaces = 2
)

// Summarize computes the KPI figures. Sums are exact decimal sums of the
// recorded amounts; means are rounded half away from zero. Over zero records
// every figure is zero.
func Summarize(records []models.SaleRecord) models.KPISummary {
	summary := models.KPISummary{
		Total:         decimal.Zero,
		AverageRating: decimal.Zero,
		AverageTicket: decimal.Zero,
		Count:         len(records),
	}
	if len(records) == 0 {
		return summary
	}

	ratingSum := decimal.Zero
	for _, r := range records {
		summary.Total = summary.Total.Add(decimal.NewFromFloat(r.Total))
		ratingSum = ratingSum.Add(decimal.NewFromFloat(r.Rating))
	}

	n := decimal.NewFromInt(int64(len(records)))
	summary.AverageRating = ratingSum.Div(n).Round(ratingPlaces)
	summary.AverageTicket = summary.Total.Div(n).Round(ticketPlaces)
	return summary
}
