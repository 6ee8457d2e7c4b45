package services

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

const (
	ProductChartID = "product-line-chart"
	HourlyChartID  = "hourly-chart"

	barColor        = "#C8C8C8"
	transparentFill = "rgba(0, 0, 0, 0)"
)

// ProductLineSeries sums Total per product line, ordered from the smallest
// to the largest sum. Equal sums are ordered by name.
func ProductLineSeries(records []models.SaleRecord) models.AggregateSeries {
	sums := make(map[string]decimal.Decimal)
	for _, r := range records {
		sums[r.ProductLine] = sums[r.ProductLine].Add(decimal.NewFromFloat(r.Total))
	}

	type group struct {
		key string
		sum decimal.Decimal
	}
	groups := make([]group, 0, len(sums))
	for k, v := range sums {
		groups = append(groups, group{key: k, sum: v})
	}
	slices.SortFunc(groups, func(a, b group) int {
		if c := a.sum.Cmp(b.sum); c != 0 {
			return c
		}
		return cmp.Compare(a.key, b.key)
	})

	points := make([]models.SeriesPoint, len(groups))
	for i, g := range groups {
		points[i] = models.SeriesPoint{Key: g.key, Value: g.sum.InexactFloat64()}
	}
	return models.AggregateSeries{Dimension: models.ColumnProductLine, Points: points}
}

// HourlySeries sums Total per hour of day in chronological order. Hours
// without sales are absent rather than zero.
func HourlySeries(records []models.SaleRecord) models.AggregateSeries {
	sums := make(map[int]decimal.Decimal)
	for _, r := range records {
		sums[r.Hour] = sums[r.Hour].Add(decimal.NewFromFloat(r.Total))
	}

	hours := make([]int, 0, len(sums))
	for h := range sums {
		hours = append(hours, h)
	}
	slices.Sort(hours)

	points := make([]models.SeriesPoint, len(hours))
	for i, h := range hours {
		points[i] = models.SeriesPoint{Key: strconv.Itoa(h), Value: sums[h].InexactFloat64()}
	}
	return models.AggregateSeries{Dimension: "Hour", Points: points}
}

// ProductLineChart is a horizontal bar chart ranking product lines.
func ProductLineChart(s models.AggregateSeries) models.ChartSpec {
	return models.ChartSpec{
		ID:          ProductChartID,
		Title:       "Ventas por linea de producto",
		Orientation: "h",
		Categories:  s.Keys(),
		Values:      s.Values(),
		Color:       barColor,
		Background:  transparentFill,
		XAxis:       models.AxisSpec{Title: models.ColumnTotal, ShowGrid: false},
		YAxis:       models.AxisSpec{Title: models.ColumnProductLine, ShowGrid: true},
	}
}

// HourlyChart is a vertical bar chart of sales by hour with a tick per hour.
func HourlyChart(s models.AggregateSeries) models.ChartSpec {
	return models.ChartSpec{
		ID:          HourlyChartID,
		Title:       "Ventas por hora",
		Orientation: "v",
		Categories:  s.Keys(),
		Values:      s.Values(),
		Color:       barColor,
		Background:  transparentFill,
		XAxis:       models.AxisSpec{Title: "hora", ShowGrid: true, TickMode: "linear"},
		YAxis:       models.AxisSpec{Title: models.ColumnTotal, ShowGrid: false},
	}
}
