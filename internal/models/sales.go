package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Column headers of the Sales sheet that the dashboard depends on.
const (
	ColumnCity         = "City"
	ColumnCustomerType = "Customer_type"
	ColumnGender       = "Gender"
	ColumnProductLine  = "Product line"
	ColumnTotal        = "Total"
	ColumnRating       = "Rating"
	ColumnTime         = "Time"
)

// RequiredColumns lists the headers a source must provide.
var RequiredColumns = []string{
	ColumnCity,
	ColumnCustomerType,
	ColumnGender,
	ColumnProductLine,
	ColumnTotal,
	ColumnRating,
	ColumnTime,
}

type SaleRecord struct {
	City         string  `json:"city"`
	CustomerType string  `json:"customer_type"`
	Gender       string  `json:"gender"`
	ProductLine  string  `json:"product_line"`
	Total        float64 `json:"total"`
	Rating       float64 `json:"rating"`
	Time         string  `json:"time"`
	Hour         int     `json:"hour"`
}

// RecordSet is a loaded sheet. It is shared between requests and must be
// treated as read-only; filtering always produces a new slice.
type RecordSet struct {
	Records     []SaleRecord `json:"records"`
	Source      string       `json:"source"`
	Fingerprint string       `json:"fingerprint"`
	LoadedAt    time.Time    `json:"loaded_at"`
	Skipped     int          `json:"skipped"`
}

func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Records)
}

// Selection holds the allowed values per filter dimension. A nil slice means
// the dimension was not specified; an empty non-nil slice selects nothing.
type Selection struct {
	Cities        []string `json:"cities"`
	CustomerTypes []string `json:"customerTypes"`
	Genders       []string `json:"genders"`
}

// WithDefaults fills unspecified dimensions with every available option.
func (s Selection) WithDefaults(opts FilterOptions) Selection {
	if s.Cities == nil {
		s.Cities = opts.Cities
	}
	if s.CustomerTypes == nil {
		s.CustomerTypes = opts.CustomerTypes
	}
	if s.Genders == nil {
		s.Genders = opts.Genders
	}
	return s
}

// FilterOptions are the distinct values per dimension, in first-seen order.
type FilterOptions struct {
	Cities        []string `json:"cities"`
	CustomerTypes []string `json:"customerTypes"`
	Genders       []string `json:"genders"`
}

func (o FilterOptions) Selection() Selection {
	return Selection{
		Cities:        o.Cities,
		CustomerTypes: o.CustomerTypes,
		Genders:       o.Genders,
	}
}

// KPISummary holds the headline figures. Means over zero records are zero;
// Count tells callers whether the figures describe any rows at all.
type KPISummary struct {
	Total         decimal.Decimal `json:"total"`
	AverageRating decimal.Decimal `json:"average_rating"`
	AverageTicket decimal.Decimal `json:"average_ticket"`
	Count         int             `json:"count"`
}

// Stars is the number of rating glyphs shown next to the average rating.
func (k KPISummary) Stars() int {
	return int(k.AverageRating.Round(0).IntPart())
}

type SeriesPoint struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// AggregateSeries is a sum of Total grouped by one dimension.
type AggregateSeries struct {
	Dimension string        `json:"dimension"`
	Points    []SeriesPoint `json:"points"`
}

func (s AggregateSeries) Keys() []string {
	keys := make([]string, len(s.Points))
	for i, p := range s.Points {
		keys[i] = p.Key
	}
	return keys
}

func (s AggregateSeries) Values() []float64 {
	values := make([]float64, len(s.Points))
	for i, p := range s.Points {
		values[i] = p.Value
	}
	return values
}

type AxisSpec struct {
	Title    string `json:"title,omitempty"`
	ShowGrid bool   `json:"showgrid"`
	TickMode string `json:"tickmode,omitempty"`
}

// ChartSpec describes a single-series bar chart for the client renderer.
type ChartSpec struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Orientation string    `json:"orientation"`
	Categories  []string  `json:"categories"`
	Values      []float64 `json:"values"`
	Color       string    `json:"color"`
	Background  string    `json:"background"`
	XAxis       AxisSpec  `json:"xaxis"`
	YAxis       AxisSpec  `json:"yaxis"`
}

// DashboardView is everything one render pass shows for a selection.
type DashboardView struct {
	Selection    Selection       `json:"selection"`
	Summary      KPISummary      `json:"summary"`
	ProductLine  AggregateSeries `json:"product_line"`
	Hourly       AggregateSeries `json:"hourly"`
	ProductChart ChartSpec       `json:"product_chart"`
	HourlyChart  ChartSpec       `json:"hourly_chart"`
	Matched      int             `json:"matched"`
	TotalRecords int             `json:"total_records"`
}
