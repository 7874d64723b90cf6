package warehouse

import (
	"errors"
	"fmt"
	"os"

	"road-warehouse/sheet"
)

// NormalizeOutcome is the result of turning one workbook into a clean file.
type NormalizeOutcome struct {
	Category string
	Source   string
	Output   string
	Rows     int
	// Skipped is set when the clean file already existed.
	Skipped bool
	// SchemaErr is set when the workbook could not be read or has no usable
	// layout. The file is rejected; the run goes on.
	SchemaErr   error
	Quarantined string
}

// IsSchemaError reports whether err means the workbook itself is unusable.
func IsSchemaError(err error) bool {
	var snf *sheet.SchemaNotFoundError
	return errors.As(err, &snf) || errors.Is(err, sheet.ErrNoValidSheet)
}

// Normalize writes the clean file of the workbook at path. An existing clean
// file is never rewritten. Only a failure to write the output is returned as
// an error; problems with the workbook end up in SchemaErr.
func Normalize(src Source, path string, plazas []string, q *sheet.Quality) (NormalizeOutcome, error) {
	out := NormalizeOutcome{Category: src.Category, Source: path, Output: sheet.CleanPath(src.CleanDir, path)}
	if _, err := os.Stat(out.Output); err == nil {
		out.Skipped = true
		return out, nil
	}

	t, err := transformWorkbook(src.Category, path, plazas, q)
	if err != nil {
		out.SchemaErr = err
		if src.ErrorDir != "" {
			dst, mvErr := Quarantine(path, src.ErrorDir)
			if mvErr != nil {
				return out, fmt.Errorf("quarantine %s: %w", path, mvErr)
			}
			out.Quarantined = dst
		}
		return out, nil
	}
	out.Rows = t.Len()
	if out.Rows == 0 {
		return out, nil
	}
	if err := sheet.WriteDelimited(out.Output, t); err != nil {
		return out, fmt.Errorf("write %s: %w", out.Output, err)
	}
	return out, nil
}

func transformWorkbook(category, path string, plazas []string, q *sheet.Quality) (sheet.Table, error) {
	wb, err := sheet.OpenWorkbook(path)
	if err != nil {
		return sheet.Table{}, err
	}
	defer wb.Close()

	switch category {
	case CategoryTraffic:
		return sheet.TransformTraffic(wb, path, plazas, q)
	case CategoryAccidents, CategoryVehicles:
		g, err := wb.First()
		if err != nil {
			return sheet.Table{}, err
		}
		if category == CategoryAccidents {
			return sheet.TransformAccidents(g, path, q)
		}
		return sheet.TransformVehicles(g, path, q)
	default:
		return sheet.Table{}, fmt.Errorf("unknown category %q", category)
	}
}
