package sheet

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoValidSheet is returned when a workbook carries no sheet the transform can use.
var ErrNoValidSheet = errors.New("no valid sheet")

// Grid is a headerless block of cell text as read from one sheet.
// Rows may have different lengths; missing cells read as "".
type Grid [][]string

// Cell returns the trimmed value at (row, col) or "" when out of range.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g) || col < 0 || col >= len(g[row]) {
		return ""
	}
	return strings.TrimSpace(g[row][col])
}

// Workbook wraps an opened spreadsheet file.
type Workbook struct {
	Path string
	f    *excelize.File
}

// OpenWorkbook opens a spreadsheet and reads cells as raw values, so dates
// come back as serial numbers and times as day fractions.
func OpenWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{Path: path, f: f}, nil
}

func (w *Workbook) Close() error {
	if w == nil || w.f == nil {
		return nil
	}
	return w.f.Close()
}

func (w *Workbook) Sheets() []string {
	return w.f.GetSheetList()
}

func (w *Workbook) Rows(sheet string) (Grid, error) {
	rows, err := w.f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return Grid(rows), nil
}

// First returns the grid of the first sheet in the workbook.
func (w *Workbook) First() (Grid, error) {
	sheets := w.Sheets()
	if len(sheets) == 0 {
		return nil, ErrNoValidSheet
	}
	return w.Rows(sheets[0])
}
