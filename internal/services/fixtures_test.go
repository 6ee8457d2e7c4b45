package services

import (
	"io"
	"log/slog"
	"strconv"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/source/memory"
)

var testHeader = []string{"Invoice ID", "Branch", "City", "Customer_type", "Gender", "Product line", "Total", "Time", "Rating"}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func row(city, customerType, gender, productLine string, total float64, clock string, rating float64) []string {
	return []string{"", "A", city, customerType, gender, productLine,
		strconv.FormatFloat(total, 'f', -1, 64), clock, strconv.FormatFloat(rating, 'f', -1, 64)}
}

func sampleRows() [][]string {
	return [][]string{
		row("Yangon", "Member", "Female", "Health and beauty", 548.9715, "13:08:00", 9.1),
		row("Naypyitaw", "Normal", "Female", "Electronic accessories", 80.22, "10:29:00", 9.6),
		row("Yangon", "Normal", "Male", "Home and lifestyle", 340.5255, "13:23:00", 7.4),
		row("Mandalay", "Member", "Male", "Health and beauty", 489.048, "20:33:00", 8.4),
		row("Yangon", "Normal", "Male", "Sports and travel", 634.3785, "10:37:00", 5.3),
	}
}

func newMemorySource(rows [][]string) *memory.Source {
	return memory.New("memory", testHeader, rows)
}

func newTestDashboard(rows [][]string) (*Dashboard, *memory.Source) {
	src := newMemorySource(rows)
	loader := NewLoader(src, WithLogger(quietLogger()))
	return NewDashboard(loader, quietLogger()), src
}

func sumTotals(records []models.SaleRecord) float64 {
	var sum float64
	for _, r := range records {
		sum += r.Total
	}
	return sum
}
