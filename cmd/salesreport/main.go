package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/source"
	"sales-dashboard/internal/source/xlsx"
)

const usage = `salesreport prints the KPI summary and sales series of a workbook.

Usage:
  salesreport --file supermarkt_sales.xlsx
  salesreport --file sales.xlsx --city Yangon --city Mandalay --gender Female
  salesreport --file sales.xlsx --customer-type Member --format json

Flags:
`

// multiFlag collects a repeatable string flag. It stays nil until the flag
// is given so an absent filter keeps its default of every option.
type multiFlag struct {
	values []string
}

func (m *multiFlag) set(v string) error {
	if m.values == nil {
		m.values = []string{}
	}
	if v = strings.TrimSpace(v); v != "" {
		m.values = append(m.values, v)
	}
	return nil
}

type report struct {
	Source      string                 `json:"source"`
	Records     int                    `json:"records"`
	Skipped     int                    `json:"skipped"`
	Matched     int                    `json:"matched"`
	Selection   models.Selection       `json:"selection"`
	Summary     models.KPISummary      `json:"summary"`
	ProductLine models.AggregateSeries `json:"product_line"`
	Hourly      models.AggregateSeries `json:"hourly"`
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salesreport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var cities, customerTypes, genders multiFlag
	file := fs.String("file", "", "Path to the sales workbook (required)")
	sheet := fs.String("sheet", source.DefaultSheet, "Worksheet holding the sales table")
	format := fs.String("format", "text", "Output format: text, json")
	skipInvalid := fs.Bool("skip-invalid", false, "Skip malformed rows instead of failing")
	logLevel := fs.String("log-level", "warn", "Log level: debug, info, warn, error")
	fs.Func("city", "Keep only this city (repeatable)", cities.set)
	fs.Func("customer-type", "Keep only this customer type (repeatable)", customerTypes.set)
	fs.Func("gender", "Keep only this gender (repeatable)", genders.set)

	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *file == "" {
		fmt.Fprintln(stderr, "Error: --file is required")
		fs.Usage()
		return 2
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "Error: unknown format %q\n", *format)
		return 2
	}

	logger := observability.NewLogger(config.LoggerConfig{Level: *logLevel, Format: "text"}, stderr)

	loader := services.NewLoader(xlsx.New(*file, *sheet),
		services.WithSkipInvalidRows(*skipInvalid),
		services.WithLogger(logger),
	)
	dashboard := services.NewDashboard(loader, logger)

	rs, err := dashboard.Warm(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	view, err := dashboard.Build(ctx, models.Selection{
		Cities:        cities.values,
		CustomerTypes: customerTypes.values,
		Genders:       genders.values,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	out := report{
		Source:      rs.Source,
		Records:     rs.Len(),
		Skipped:     rs.Skipped,
		Matched:     view.Matched,
		Selection:   view.Selection,
		Summary:     view.Summary,
		ProductLine: view.ProductLine,
		Hourly:      view.Hourly,
	}

	switch *format {
	case "json":
		err = writeJSON(stdout, out)
	default:
		err = writeText(stdout, out)
	}
	if err != nil {
		slog.Error("write report", "error", err)
		return 1
	}
	return 0
}

func writeJSON(w io.Writer, r report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func writeText(w io.Writer, r report) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "Source:\t%s\n", r.Source)
	fmt.Fprintf(tw, "Records:\t%d matched of %d (%d skipped)\n", r.Matched, r.Records, r.Skipped)
	fmt.Fprintf(tw, "Ventas totales:\tUS $ %s\n", r.Summary.Total.StringFixed(2))
	fmt.Fprintf(tw, "Promedio de opiniones:\t%s %s\n", r.Summary.AverageRating.StringFixed(1), strings.Repeat("*", max(r.Summary.Stars(), 0)))
	fmt.Fprintf(tw, "Valor promedio por transaccion:\tUS $ %s\n", r.Summary.AverageTicket.StringFixed(2))

	fmt.Fprintln(tw, "\nVentas por linea de producto")
	for _, p := range r.ProductLine.Points {
		fmt.Fprintf(tw, "  %s\t%.2f\n", p.Key, p.Value)
	}

	fmt.Fprintln(tw, "\nVentas por hora")
	for _, p := range r.Hourly.Points {
		fmt.Fprintf(tw, "  %s:00\t%.2f\n", p.Key, p.Value)
	}

	return tw.Flush()
}
