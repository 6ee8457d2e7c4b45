package services

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
)

// Dashboard runs the load → filter → aggregate → chart pipeline. Every call
// recomputes from the cached RecordSet; nothing derived is kept.
type Dashboard struct {
	loader *Loader
	logger *slog.Logger
}

func NewDashboard(loader *Loader, logger *slog.Logger) *Dashboard {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dashboard{loader: loader, logger: logger}
}

// Warm loads the source once so load failures surface at startup.
func (d *Dashboard) Warm(ctx context.Context) (*models.RecordSet, error) {
	return d.loader.Load(ctx)
}

func (d *Dashboard) Options(ctx context.Context) (models.FilterOptions, error) {
	rs, err := d.loader.Load(ctx)
	if err != nil {
		return models.FilterOptions{}, err
	}
	return Options(rs.Records), nil
}

// Build renders one pass for sel. Dimensions left nil in sel default to
// every available value.
func (d *Dashboard) Build(ctx context.Context, sel models.Selection) (*models.DashboardView, error) {
	ctx, span := observability.StartSpan(ctx, "dashboard.build")
	defer span.Finish(d.logger)

	rs, err := d.loader.Load(ctx)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	sel = sel.WithDefaults(Options(rs.Records))
	filtered := Filter(rs.Records, sel)

	view := &models.DashboardView{
		Selection:    sel,
		Matched:      len(filtered),
		TotalRecords: rs.Len(),
	}

	// The aggregations only read filtered, so they run side by side.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		view.Summary = Summarize(filtered)
		return gctx.Err()
	})
	g.Go(func() error {
		view.ProductLine = ProductLineSeries(filtered)
		view.ProductChart = ProductLineChart(view.ProductLine)
		return gctx.Err()
	})
	g.Go(func() error {
		view.Hourly = HourlySeries(filtered)
		view.HourlyChart = HourlyChart(view.Hourly)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		span.SetError(err)
		return nil, err
	}

	span.SetTag("records", strconv.Itoa(rs.Len()))
	span.SetTag("matched", strconv.Itoa(len(filtered)))

	if len(filtered) == 0 {
		d.logger.Debug("selection matched no records",
			"cities", len(sel.Cities),
			"customer_types", len(sel.CustomerTypes),
			"genders", len(sel.Genders),
		)
	}

	return view, nil
}

func (d *Dashboard) Invalidate() {
	d.loader.Invalidate()
}

// Stats is used for monitoring.
func (d *Dashboard) Stats() map[string]any {
	cache := d.loader.CacheStats()
	return map[string]any{
		"source":        d.loader.Source(),
		"record_count":  cache.Records,
		"loaded_at":     cache.LoadedAt,
		"fingerprint":   cache.Fingerprint,
		"cache_hits":    cache.Hits,
		"cache_misses":  cache.Misses,
		"invalidations": cache.Invalidations,
	}
}
