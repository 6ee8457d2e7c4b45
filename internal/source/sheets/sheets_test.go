package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/source"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := New(context.Background(), "sheet-123", "Sales", "",
		goption.WithEndpoint(ts.URL+"/"),
		goption.WithoutAuthentication(),
	)
	require.NoError(t, err)
	return c
}

func TestClient_ReadRows(t *testing.T) {
	var gotPath string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"range":          "Sales!B4:R1004",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"Invoice ID", "Branch", "City"},
				{"750-67-8428", "A", "Yangon", "Member"},
			},
		})
	})

	rows, err := c.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Contains(t, gotPath, "/spreadsheets/sheet-123/values/")
	assert.Len(t, rows[0], source.Width)
	assert.Equal(t, "City", rows[0][2])
	assert.Equal(t, "Member", rows[1][3])
	assert.Equal(t, "", rows[1][source.Width-1])
}

func TestClient_ReadRows_RawValues(t *testing.T) {
	var query map[string][]string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"range":          "Sales!B4:R1004",
			"majorDimension": "ROWS",
			"values": [][]any{
				{"Invoice ID", "Branch", "City"},
				{"750-67-8428", "A", "Yangon", "Member", "Female", "Health and beauty", 74.69, 7, 26.1415, 1042.9715, 43470, 0.5472222222222223, "Ewallet", 522.83, 4.761904762, 26.1415, 9.1},
			},
		})
	})

	rows, err := c.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"UNFORMATTED_VALUE"}, query["valueRenderOption"])
	assert.Equal(t, []string{"SERIAL_NUMBER"}, query["dateTimeRenderOption"])

	assert.Equal(t, "1042.9715", rows[1][9])
	assert.Equal(t, "43470", rows[1][10])
	assert.Equal(t, "0.5472222222222223", rows[1][11])
	assert.Equal(t, "7", rows[1][7])
	assert.Equal(t, "9.1", rows[1][source.Width-1])
}

func TestClient_ReadRows_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantCode apperrors.ErrorCode
	}{
		{name: "spreadsheet not found", status: http.StatusNotFound, message: "Requested entity was not found.", wantCode: apperrors.CodeSourceNotFound},
		{name: "no access", status: http.StatusForbidden, message: "The caller does not have permission", wantCode: apperrors.CodeSourceNotFound},
		{name: "unknown sheet", status: http.StatusBadRequest, message: "Unable to parse range: Sales!B4:R1004", wantCode: apperrors.CodeSchema},
		{name: "other bad request", status: http.StatusBadRequest, message: "Invalid value at 'value_render_option'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tt.status, "message": tt.message},
				})
			})

			_, err := c.ReadRows(context.Background())
			require.Error(t, err)
			if tt.wantCode == "" {
				assert.False(t, apperrors.HasCode(err, apperrors.CodeSchema), "got %v", err)
				assert.Contains(t, err.Error(), "Invalid value")
				return
			}
			assert.True(t, apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
}

func TestClient_Fingerprint(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	fp, err := c.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sheets:sheet-123/Sales", fp)
	assert.Equal(t, fp, c.Name())
}

func TestNew_RequiresSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), " ", "Sales", "", goption.WithoutAuthentication())
	assert.Error(t, err)
}
