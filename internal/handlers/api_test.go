package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source/memory"
)

var testHeader = []string{"Invoice ID", "Branch", "City", "Customer_type", "Gender", "Product line", "Total", "Time", "Rating"}

func testRows() [][]string {
	return [][]string{
		{"750-67-8428", "A", "Yangon", "Member", "Female", "Health and beauty", "548.9715", "13:08:00", "9.1"},
		{"226-31-3081", "C", "Naypyitaw", "Normal", "Female", "Electronic accessories", "80.22", "10:29:00", "9.6"},
		{"631-41-3108", "A", "Yangon", "Normal", "Male", "Home and lifestyle", "340.5255", "13:23:00", "7.4"},
		{"123-19-1176", "A", "Mandalay", "Member", "Male", "Health and beauty", "489.048", "20:33:00", "8.4"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestDashboard(t *testing.T) (*services.Dashboard, *memory.Source) {
	t.Helper()
	src := memory.New("memory", testHeader, testRows())
	loader := services.NewLoader(src, services.WithLogger(testLogger()))
	return services.NewDashboard(loader, testLogger()), src
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Error   map[string]any  `json:"error"`
	Success bool            `json:"success"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func TestSelectionFromQuery(t *testing.T) {
	q := url.Values{
		"city":          {"Yangon", " Mandalay "},
		"customer_type": {""},
	}

	sel := selectionFromQuery(q)
	assert.Equal(t, []string{"Yangon", "Mandalay"}, sel.Cities)
	assert.NotNil(t, sel.CustomerTypes)
	assert.Empty(t, sel.CustomerTypes)
	assert.Nil(t, sel.Genders)
}

func TestAPIHandlers_HandleOptions(t *testing.T) {
	dashboard, _ := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())

	w := httptest.NewRecorder()
	h.HandleOptions(w, httptest.NewRequest(http.MethodGet, "/api/options", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"))

	env := decode(t, w)
	assert.True(t, env.Success)

	var opts map[string][]string
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.Equal(t, []string{"Yangon", "Naypyitaw", "Mandalay"}, opts["cities"])
	assert.Equal(t, []string{"Member", "Normal"}, opts["customerTypes"])
}

func TestAPIHandlers_HandleSummary(t *testing.T) {
	dashboard, _ := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())

	tests := []struct {
		name    string
		query   string
		matched int
		total   string
	}{
		{name: "defaults", query: "", matched: 4, total: "1458.765"},
		{name: "one city", query: "?city=Yangon", matched: 2, total: "889.497"},
		{name: "city and gender", query: "?city=Yangon&city=Mandalay&gender=Male", matched: 2, total: "829.5735"},
		{name: "blank dimension", query: "?gender=", matched: 0, total: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary"+tt.query, nil))

			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

			var view struct {
				Matched int `json:"matched"`
				Summary struct {
					Total string `json:"total"`
				} `json:"summary"`
			}
			require.NoError(t, json.Unmarshal(decode(t, w).Data, &view))
			assert.Equal(t, tt.matched, view.Matched)
			assert.Equal(t, tt.total, view.Summary.Total)
		})
	}
}

func TestAPIHandlers_HandleCharts(t *testing.T) {
	dashboard, _ := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())

	var resp struct {
		Series struct {
			Points []struct {
				Key   string  `json:"key"`
				Value float64 `json:"value"`
			} `json:"points"`
		} `json:"series"`
		Chart struct {
			ID          string   `json:"id"`
			Orientation string   `json:"orientation"`
			Categories  []string `json:"categories"`
		} `json:"chart"`
	}

	w := httptest.NewRecorder()
	h.HandleProductLine(w, httptest.NewRequest(http.MethodGet, "/api/charts/product-line", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, "product-line-chart", resp.Chart.ID)
	assert.Equal(t, "h", resp.Chart.Orientation)
	assert.Equal(t, []string{"Electronic accessories", "Home and lifestyle", "Health and beauty"}, resp.Chart.Categories)

	w = httptest.NewRecorder()
	h.HandleHourly(w, httptest.NewRequest(http.MethodGet, "/api/charts/hourly?city=Yangon", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
	assert.Equal(t, "hourly-chart", resp.Chart.ID)
	require.Len(t, resp.Series.Points, 1)
	assert.Equal(t, "13", resp.Series.Points[0].Key)
	assert.InDelta(t, 889.497, resp.Series.Points[0].Value, 1e-9)
}

func TestAPIHandlers_HandleHealth(t *testing.T) {
	dashboard, src := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var health map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &health))
	assert.Equal(t, "healthy", health["status"])
	assert.EqualValues(t, 4, health["records"])

	src.Fail(apperrors.SourceNotFound("memory", errors.New("gone")))

	w = httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "SERVICE_UNAVAILABLE", env.Error["code"])
}

func TestAPIHandlers_SourceErrors(t *testing.T) {
	dashboard, src := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())
	src.Fail(apperrors.SourceNotFound("memory", errors.New("gone")))

	w := httptest.NewRecorder()
	h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "SOURCE_NOT_FOUND", decode(t, w).Error["code"])
}

func TestAPIHandlers_HandleStatsAndInvalidate(t *testing.T) {
	dashboard, src := newTestDashboard(t)
	h := NewAPIHandlers(dashboard, testLogger())

	w := httptest.NewRecorder()
	h.HandleSummary(w, httptest.NewRequest(http.MethodGet, "/api/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]any
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, "memory", stats["source"])
	assert.EqualValues(t, 4, stats["record_count"])

	w = httptest.NewRecorder()
	h.HandleInvalidate(w, httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", nil))
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.EqualValues(t, 1, stats["invalidations"])
	assert.Equal(t, int64(2), src.Reads())
}
