package sheet

import "fmt"

// SchemaNotFoundError reports a sheet whose header marker could not be found.
// Callers treat the file as unprocessable; it is not fatal to the run.
type SchemaNotFoundError struct {
	Marker string
}

func (e *SchemaNotFoundError) Error() string {
	return fmt.Sprintf("header marker %q not found", e.Marker)
}

// LocateHeader scans the first column for marker (case and accent
// insensitive, whole cell) and returns the rows that follow it. The marker
// row and everything above it are discarded.
func LocateHeader(g Grid, marker string) (Grid, error) {
	i, err := HeaderIndex(g, marker)
	if err != nil {
		return nil, err
	}
	return g[i+1:], nil
}

// HeaderIndex returns the index of the row whose first cell matches marker.
func HeaderIndex(g Grid, marker string) (int, error) {
	want := Fold(marker)
	for i := range g {
		if Fold(g.Cell(i, 0)) == want {
			return i, nil
		}
	}
	return -1, &SchemaNotFoundError{Marker: marker}
}

// Rename maps positional cells onto names. Cells beyond len(names) are
// dropped, missing cells read as "", and fully blank rows are skipped.
func Rename(g Grid, names []string) Table {
	t := Table{Columns: append([]string(nil), names...)}
	for i := range g {
		r := make(Row, len(names))
		for j, n := range names {
			r[n] = g.Cell(i, j)
		}
		if isBlankRow(r) {
			continue
		}
		t.Rows = append(t.Rows, r)
	}
	return t
}
