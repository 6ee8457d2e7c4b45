// Package sheets reads the sales window from a Google Sheets spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/source"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheet         string
}

var _ source.Reader = (*Client)(nil)

// New creates a client for the given spreadsheet. With no options it reads
// service account credentials from credentialsFile, falling back to
// application default credentials when the path is empty.
func New(ctx context.Context, spreadsheetID, sheet, credentialsFile string, opts ...goption.ClientOption) (*Client, error) {
	spreadsheetID = strings.TrimSpace(spreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if sheet == "" {
		sheet = source.DefaultSheet
	}

	if len(opts) == 0 {
		opts = append(opts, goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
		if credentialsFile != "" {
			credentialsJSON, err := os.ReadFile(credentialsFile)
			if err != nil {
				return nil, fmt.Errorf("read credentials file: %w", err)
			}
			slog.InfoContext(ctx, "using service account credentials", "path", credentialsFile)
			opts = append(opts, goption.WithCredentialsJSON(credentialsJSON))
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{svc: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

func (c *Client) Name() string {
	return fmt.Sprintf("sheets:%s/%s", c.spreadsheetID, c.sheet)
}

// Fingerprint is constant for a spreadsheet: the Sheets API exposes no cheap
// modification stamp, so a remote sheet is reloaded only on invalidation.
func (c *Client) Fingerprint(ctx context.Context) (string, error) {
	return c.Name(), nil
}

func (c *Client) ReadRows(ctx context.Context) ([][]string, error) {
	rng := source.A1Range(c.sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		MajorDimension("ROWS").
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case http.StatusNotFound, http.StatusForbidden, http.StatusUnauthorized:
				return nil, apperrors.SourceNotFound(c.Name(), err)
			case http.StatusBadRequest:
				// Sheets answers 400 "Unable to parse range" for an unknown tab.
				if strings.Contains(strings.ToLower(apiErr.Message), "range") {
					return nil, apperrors.Schema(fmt.Sprintf("spreadsheet %s has no sheet named %q", c.spreadsheetID, c.sheet))
				}
			}
		}
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		rows = append(rows, source.Pad(toStrings(row)))
	}
	return rows, nil
}

// toStrings renders unformatted cell values. Numbers keep every digit so
// currency sums and time serials survive the round trip.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch v := v.(type) {
		case nil:
		case string:
			out[i] = v
		case float64:
			out[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[i] = strconv.FormatBool(v)
		default:
			out[i] = fmt.Sprint(v)
		}
	}
	return out
}
