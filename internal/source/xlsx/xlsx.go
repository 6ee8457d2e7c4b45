// Package xlsx reads the sales window from a local Excel workbook.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "sales-dashboard/internal/errors"
	"sales-dashboard/internal/source"
)

type Reader struct {
	path  string
	sheet string
}

var _ source.Reader = (*Reader)(nil)

func New(path, sheet string) *Reader {
	if sheet == "" {
		sheet = source.DefaultSheet
	}
	return &Reader{path: path, sheet: sheet}
}

func (r *Reader) Name() string {
	return r.path
}

// Fingerprint combines the absolute path with the file's modification time.
func (r *Reader) Fingerprint(ctx context.Context) (string, error) {
	info, err := os.Stat(r.path)
	if err != nil {
		return "", apperrors.SourceNotFound(r.path, err)
	}
	if info.IsDir() {
		return "", apperrors.SourceNotFound(r.path, fmt.Errorf("%s is a directory", r.path))
	}

	abs, err := filepath.Abs(r.path)
	if err != nil {
		abs = r.path
	}
	return fmt.Sprintf("%s@%d", abs, info.ModTime().UnixNano()), nil
}

func (r *Reader) ReadRows(ctx context.Context) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, apperrors.SourceNotFound(r.path, err)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(r.sheet)
	if err != nil || idx < 0 {
		return nil, apperrors.Schema(fmt.Sprintf("workbook %s has no sheet named %q", r.path, r.sheet))
	}

	// Raw values: number formats would turn a time serial into "13:08" or
	// "1:08:00 PM" and round currency to the displayed decimals.
	rows, err := f.GetRows(r.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", r.sheet, err)
	}

	return source.Window(rows), nil
}
