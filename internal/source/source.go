// Package source reads the sales table out of a spreadsheet.
//
// Every source exposes the same window of the "Sales" sheet: the first three
// rows are banner rows and skipped, the fourth row is the header, columns B
// through R are kept, and at most MaxRows data rows follow the header.
package source

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultSheet = "Sales"
	SkipRows     = 3
	FirstColumn  = "B"
	LastColumn   = "R"
	MaxRows      = 1000

	firstColumnIndex = 1  // B
	lastColumnIndex  = 17 // R
	Width            = lastColumnIndex - firstColumnIndex + 1
)

// Reader is a spreadsheet holding the sales table.
type Reader interface {
	// ReadRows returns the header row followed by the data rows of the window.
	// Every returned row has exactly Width cells.
	ReadRows(ctx context.Context) ([][]string, error)

	// Fingerprint identifies the current version of the source. It changes
	// when the underlying data may have changed.
	Fingerprint(ctx context.Context) (string, error)

	// Name is a human-readable label used in logs and error messages.
	Name() string
}

// A1Range is the sheet range covering the window, e.g. "Sales!B4:R1004".
func A1Range(sheet string) string {
	first := SkipRows + 1
	last := first + MaxRows
	return fmt.Sprintf("%s!%s%d:%s%d", quoteSheet(sheet), FirstColumn, first, LastColumn, last)
}

func quoteSheet(sheet string) string {
	if strings.ContainsAny(sheet, " '!") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet
}

// Window cuts the header and data rows out of a whole sheet, as read from
// cell A1 onwards.
func Window(sheetRows [][]string) [][]string {
	if len(sheetRows) <= SkipRows {
		return nil
	}
	rows := sheetRows[SkipRows:]
	if len(rows) > MaxRows+1 {
		rows = rows[:MaxRows+1]
	}

	out := make([][]string, len(rows))
	for i, row := range rows {
		var cells []string
		if len(row) > firstColumnIndex {
			cells = row[firstColumnIndex:min(len(row), lastColumnIndex+1)]
		}
		out[i] = Pad(cells)
	}
	return out
}

// Pad returns a copy of row with exactly Width cells. Spreadsheet APIs drop
// trailing empty cells, so short rows are common.
func Pad(row []string) []string {
	out := make([]string, Width)
	copy(out, row)
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}

// IsBlank reports whether every cell of row is empty.
func IsBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
