package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source"
)

const (
	timeLayout = "15:04:05"

	// DefaultLoadTimeout bounds one shared source read.
	DefaultLoadTimeout = 30 * time.Second
)

type LoaderOption func(*Loader)

// WithSkipInvalidRows makes the loader drop rows with malformed cells
// instead of failing the whole load.
func WithSkipInvalidRows(skip bool) LoaderOption {
	return func(l *Loader) {
		l.skipInvalid = skip
	}
}

func WithLoadTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) {
		if d > 0 {
			l.timeout = d
		}
	}
}

func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// Loader turns a spreadsheet source into a typed RecordSet and keeps the
// result for as long as the source fingerprint is unchanged.
type Loader struct {
	src         source.Reader
	logger      *slog.Logger
	skipInvalid bool
	timeout     time.Duration
	cache       *datasetCache
}

func NewLoader(src source.Reader, opts ...LoaderOption) *Loader {
	l := &Loader{
		src:     src,
		logger:  slog.Default(),
		timeout: DefaultLoadTimeout,
		cache:   newDatasetCache(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Loader) Source() string {
	return l.src.Name()
}

// Load returns the cached RecordSet, reading the source only when nothing
// is cached or the source fingerprint moved.
func (l *Loader) Load(ctx context.Context) (*models.RecordSet, error) {
	fingerprint, err := l.src.Fingerprint(ctx)
	if err != nil {
		return nil, err
	}

	if rs, ok := l.cache.lookup(fingerprint); ok {
		l.logger.Debug("record set cache hit", "source", l.src.Name(), "records", rs.Len())
		return rs, nil
	}

	v, err, shared := l.cache.group.Do(fingerprint, func() (any, error) {
		if rs, ok := l.cache.peek(fingerprint); ok {
			return rs, nil
		}
		// Joined callers must not inherit the cancellation of whoever
		// started the read.
		readCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()

		rs, err := l.read(readCtx, fingerprint)
		if err != nil {
			return nil, err
		}
		l.cache.store(rs)
		return rs, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		l.logger.Debug("joined in-flight load", "source", l.src.Name())
	}
	return v.(*models.RecordSet), nil
}

// Invalidate drops the cached RecordSet; the next Load reads the source.
func (l *Loader) Invalidate() {
	l.cache.invalidate()
	l.logger.Info("record set cache invalidated", "source", l.src.Name())
}

func (l *Loader) CacheStats() CacheStats {
	return l.cache.stats()
}

func (l *Loader) read(ctx context.Context, fingerprint string) (*models.RecordSet, error) {
	start := time.Now()

	rows, err := l.src.ReadRows(ctx)
	if err != nil {
		return nil, err
	}

	records, skipped, err := ParseRecords(rows, l.skipInvalid)
	if err != nil {
		return nil, err
	}
	for _, rowErr := range skipped {
		l.logger.Warn("skipped invalid row", "source", l.src.Name(), "error", rowErr)
	}

	l.logger.Info("sales source loaded",
		"source", l.src.Name(),
		"records", len(records),
		"skipped", len(skipped),
		"duration", time.Since(start),
	)

	return &models.RecordSet{
		Records:     records,
		Source:      l.src.Name(),
		Fingerprint: fingerprint,
		LoadedAt:    time.Now(),
		Skipped:     len(skipped),
	}, nil
}

// ParseRecords converts a header row plus data rows into typed records.
// Fully blank rows are ignored. With skipInvalid unset the first malformed
// cell fails the whole parse; otherwise the offending rows are returned as
// errors alongside the good records.
func ParseRecords(rows [][]string, skipInvalid bool) ([]models.SaleRecord, []error, error) {
	if len(rows) == 0 {
		return nil, nil, apperrors.Schema("sales sheet has no header row")
	}

	columns, err := locateColumns(rows[0])
	if err != nil {
		return nil, nil, err
	}

	matrix := [][]string{models.RequiredColumns}
	sheetRows := make([]int, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if source.IsBlank(row) {
			continue
		}
		cells := make([]string, len(columns))
		for j, col := range columns {
			if col < len(row) {
				cells[j] = strings.TrimSpace(row[col])
			}
		}
		matrix = append(matrix, cells)
		sheetRows = append(sheetRows, source.SkipRows+2+i)
	}

	if len(sheetRows) == 0 {
		return []models.SaleRecord{}, nil, nil
	}

	df := dataframe.LoadRecords(matrix,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{
			models.ColumnTotal:  series.Float,
			models.ColumnRating: series.Float,
		}),
	)
	if df.Err != nil {
		return nil, nil, fmt.Errorf("build sales table: %w", df.Err)
	}

	cities := df.Col(models.ColumnCity).Records()
	customerTypes := df.Col(models.ColumnCustomerType).Records()
	genders := df.Col(models.ColumnGender).Records()
	productLines := df.Col(models.ColumnProductLine).Records()
	totals := df.Col(models.ColumnTotal).Float()
	ratings := df.Col(models.ColumnRating).Float()
	times := df.Col(models.ColumnTime).Records()

	records := make([]models.SaleRecord, 0, df.Nrow())
	var skipped []error
	for i := 0; i < df.Nrow(); i++ {
		raw := matrix[i+1]
		rec, err := buildRecord(sheetRows[i], raw, cities[i], customerTypes[i], genders[i], productLines[i], totals[i], ratings[i], times[i])
		if err != nil {
			if !skipInvalid {
				return nil, nil, err
			}
			skipped = append(skipped, err)
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}

func buildRecord(sheetRow int, raw []string, city, customerType, gender, productLine string, total, rating float64, clock string) (models.SaleRecord, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return models.SaleRecord{}, apperrors.Parse(sheetRow, models.ColumnTotal, raw[columnPosition(models.ColumnTotal)], nil)
	}
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return models.SaleRecord{}, apperrors.Parse(sheetRow, models.ColumnRating, raw[columnPosition(models.ColumnRating)], nil)
	}

	at, err := parseClock(clock)
	if err != nil {
		return models.SaleRecord{}, apperrors.Parse(sheetRow, models.ColumnTime, clock, err)
	}

	return models.SaleRecord{
		City:         city,
		CustomerType: customerType,
		Gender:       gender,
		ProductLine:  productLine,
		Total:        total,
		Rating:       rating,
		Time:         at.Format(timeLayout),
		Hour:         at.Hour(),
	}, nil
}

// ParseHour extracts the hour from a Time cell.
func ParseHour(cell string) (int, error) {
	at, err := parseClock(cell)
	if err != nil {
		return 0, err
	}
	return at.Hour(), nil
}

// parseClock reads the time of day held in a Time cell. Text cells must be
// "HH:MM:SS". Numeric cells are spreadsheet serials (days since 1899-12-30)
// whose fraction is the time of day, which is how Excel and Google Sheets
// store a time-typed cell.
func parseClock(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)

	if serial, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(serial) || math.IsInf(serial, 0) {
			return time.Time{}, fmt.Errorf("invalid time serial %q", cell)
		}
		at, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time serial %q: %w", cell, err)
		}
		return at.Round(time.Second), nil
	}

	at, err := time.Parse(timeLayout, cell)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected HH:MM:SS: %w", err)
	}
	return at, nil
}

// locateColumns maps each required column to its index in the header.
func locateColumns(header []string) ([]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}

	columns := make([]int, len(models.RequiredColumns))
	var missing []string
	for i, name := range models.RequiredColumns {
		col, ok := index[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		columns[i] = col
	}
	if len(missing) > 0 {
		return nil, apperrors.Schema(fmt.Sprintf("sales sheet is missing required column(s): %s", strings.Join(missing, ", ")))
	}
	return columns, nil
}

func columnPosition(name string) int {
	for i, col := range models.RequiredColumns {
		if col == name {
			return i
		}
	}
	return -1
}
