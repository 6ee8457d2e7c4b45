package services

import (
	"context"
	"slices"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func parsedSample(t *testing.T) []models.SaleRecord {
	t.Helper()
	records, _, err := ParseRecords(append([][]string{testHeader}, sampleRows()...), false)
	require.NoError(t, err)
	return records
}

func TestFilter_MembershipAndSubset(t *testing.T) {
	records := parsedSample(t)
	opts := Options(records)

	tests := []struct {
		name string
		sel  models.Selection
		want int
	}{
		{name: "everything", sel: opts.Selection(), want: 5},
		{name: "one city", sel: models.Selection{Cities: []string{"Yangon"}}.WithDefaults(opts), want: 3},
		{name: "city and type", sel: models.Selection{Cities: []string{"Yangon"}, CustomerTypes: []string{"Normal"}}.WithDefaults(opts), want: 2},
		{name: "duplicates and order irrelevant", sel: models.Selection{Cities: []string{"Mandalay", "Yangon", "Yangon"}}.WithDefaults(opts), want: 4},
		{name: "unknown value", sel: models.Selection{Genders: []string{"Other"}}.WithDefaults(opts), want: 0},
		{name: "case sensitive", sel: models.Selection{Cities: []string{"yangon"}}.WithDefaults(opts), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(records, tt.sel)
			assert.Len(t, got, tt.want)
			for _, r := range got {
				assert.Contains(t, records, r)
				assert.Contains(t, tt.sel.Cities, r.City)
				assert.Contains(t, tt.sel.CustomerTypes, r.CustomerType)
				assert.Contains(t, tt.sel.Genders, r.Gender)
			}
		})
	}
}

func TestFilter_EmptyDimensionMatchesNothing(t *testing.T) {
	records := parsedSample(t)
	all := Options(records).Selection()

	for _, sel := range []models.Selection{
		{Cities: []string{}, CustomerTypes: all.CustomerTypes, Genders: all.Genders},
		{Cities: all.Cities, CustomerTypes: nil, Genders: all.Genders},
		{Cities: all.Cities, CustomerTypes: all.CustomerTypes, Genders: []string{}},
	} {
		got := Filter(records, sel)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestFilter_DoesNotMutateInput(t *testing.T) {
	records := parsedSample(t)
	before := slices.Clone(records)

	got := Filter(records, models.Selection{Cities: []string{"Yangon"}, CustomerTypes: []string{"Member"}, Genders: []string{"Female"}})
	require.Len(t, got, 1)
	got[0].City = "changed"

	assert.Equal(t, before, records)
}

func TestOptions_FirstSeenOrder(t *testing.T) {
	opts := Options(parsedSample(t))

	assert.Equal(t, []string{"Yangon", "Naypyitaw", "Mandalay"}, opts.Cities)
	assert.Equal(t, []string{"Member", "Normal"}, opts.CustomerTypes)
	assert.Equal(t, []string{"Female", "Male"}, opts.Genders)

	empty := Options(nil)
	assert.Empty(t, empty.Cities)
}

func TestSummarize(t *testing.T) {
	records := parsedSample(t)
	summary := Summarize(records)

	assert.Equal(t, 5, summary.Count)
	assert.True(t, summary.Total.Equal(decimal.RequireFromString("2093.1435")), "total %s", summary.Total)
	assert.InDelta(t, sumTotals(records), summary.Total.InexactFloat64(), 1e-9)
	// (9.1 + 9.6 + 7.4 + 8.4 + 5.3) / 5 = 7.96
	assert.Equal(t, "8.0", summary.AverageRating.StringFixed(1))
	// 2093.1435 / 5 = 418.6287
	assert.Equal(t, "418.63", summary.AverageTicket.StringFixed(2))
	assert.Equal(t, 8, summary.Stars())
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.Count)
	assert.True(t, summary.Total.IsZero())
	assert.True(t, summary.AverageRating.IsZero())
	assert.True(t, summary.AverageTicket.IsZero())
	assert.Equal(t, 0, summary.Stars())
}

func TestSummarize_RoundsHalfAwayFromZero(t *testing.T) {
	records := []models.SaleRecord{
		{Total: 10.005, Rating: 6.25},
		{Total: 10.005, Rating: 6.25},
	}
	summary := Summarize(records)

	assert.Equal(t, "6.3", summary.AverageRating.String())
	assert.Equal(t, "10.01", summary.AverageTicket.String())
	assert.Equal(t, 6, summary.Stars())
}

func TestProductLineSeries_SortedAscendingByValue(t *testing.T) {
	series := ProductLineSeries(parsedSample(t))

	require.Len(t, series.Points, 4)
	assert.Equal(t, []string{"Electronic accessories", "Home and lifestyle", "Sports and travel", "Health and beauty"}, series.Keys())
	assert.InDelta(t, 548.9715+489.048, series.Points[3].Value, 1e-9)
	assert.True(t, slices.IsSorted(series.Values()))
}

func TestHourlySeries_SortedByHour(t *testing.T) {
	series := HourlySeries(parsedSample(t))

	assert.Equal(t, []string{"10", "13", "20"}, series.Keys())
	assert.InDelta(t, 80.22+634.3785, series.Points[0].Value, 1e-9)
	assert.InDelta(t, 548.9715+340.5255, series.Points[1].Value, 1e-9)

	hours := make([]int, len(series.Points))
	for i, p := range series.Points {
		h, err := strconv.Atoi(p.Key)
		require.NoError(t, err)
		hours[i] = h
	}
	assert.True(t, slices.IsSorted(hours))
}

func TestSeries_Empty(t *testing.T) {
	assert.Empty(t, ProductLineSeries(nil).Points)
	assert.Empty(t, HourlySeries(nil).Points)
	assert.Empty(t, ProductLineChart(ProductLineSeries(nil)).Categories)
}

func TestCharts(t *testing.T) {
	records := parsedSample(t)

	product := ProductLineChart(ProductLineSeries(records))
	assert.Equal(t, ProductChartID, product.ID)
	assert.Equal(t, "h", product.Orientation)
	assert.Equal(t, "#C8C8C8", product.Color)
	assert.False(t, product.XAxis.ShowGrid)
	assert.Len(t, product.Categories, len(product.Values))

	hourly := HourlyChart(HourlySeries(records))
	assert.Equal(t, "v", hourly.Orientation)
	assert.Equal(t, "linear", hourly.XAxis.TickMode)
	assert.False(t, hourly.YAxis.ShowGrid)
}

func TestDashboard_Scenario_FilterByCity(t *testing.T) {
	d, _ := newTestDashboard([][]string{
		row("A", "Member", "Female", "Food and beverages", 10, "09:00:00", 5),
		row("B", "Member", "Female", "Food and beverages", 20, "10:00:00", 6),
		row("A", "Member", "Female", "Food and beverages", 5, "11:00:00", 7),
	})

	view, err := d.Build(context.Background(), models.Selection{Cities: []string{"A"}})
	require.NoError(t, err)

	assert.Equal(t, 2, view.Matched)
	assert.Equal(t, 3, view.TotalRecords)
	assert.True(t, view.Summary.Total.Equal(decimal.NewFromInt(15)))
	assert.Equal(t, []string{"A"}, view.Selection.Cities)
	assert.Equal(t, []string{"Member"}, view.Selection.CustomerTypes)
	assert.Equal(t, []string{"9", "11"}, view.Hourly.Keys())
}

func TestDashboard_Scenario_EmptyRecordSet(t *testing.T) {
	d, _ := newTestDashboard(nil)

	view, err := d.Build(context.Background(), models.Selection{})
	require.NoError(t, err)

	assert.Equal(t, 0, view.TotalRecords)
	assert.True(t, view.Summary.Total.IsZero())
	assert.True(t, view.Summary.AverageRating.IsZero())
	assert.True(t, view.Summary.AverageTicket.IsZero())
	assert.Empty(t, view.ProductLine.Points)
	assert.Empty(t, view.Hourly.Points)
}

func TestDashboard_EmptySelectionRendersZeros(t *testing.T) {
	d, _ := newTestDashboard(sampleRows())

	view, err := d.Build(context.Background(), models.Selection{Genders: []string{}})
	require.NoError(t, err)

	assert.Equal(t, 0, view.Matched)
	assert.Equal(t, 5, view.TotalRecords)
	assert.True(t, view.Summary.Total.IsZero())
	assert.Empty(t, view.ProductChart.Categories)
	assert.Empty(t, view.HourlyChart.Values)
}

func TestDashboard_OptionsAndStats(t *testing.T) {
	d, src := newTestDashboard(sampleRows())

	opts, err := d.Options(context.Background())
	require.NoError(t, err)
	assert.Len(t, opts.Cities, 3)

	_, err = d.Build(context.Background(), models.Selection{})
	require.NoError(t, err)

	stats := d.Stats()
	assert.Equal(t, "memory", stats["source"])
	assert.Equal(t, 5, stats["record_count"])
	assert.Equal(t, int64(1), stats["cache_hits"])
	assert.Equal(t, int64(1), src.Reads())

	d.Invalidate()
	_, err = d.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), src.Reads())
}
