package sheet

import "strings"

// Row is one record keyed by column name.
type Row map[string]string

// Table is an ordered set of rows sharing a column list.
type Table struct {
	Columns []string
	Rows    []Row
}

func (t Table) Len() int { return len(t.Rows) }

func (r Row) clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (t Table) hasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Filter keeps rows for which keep returns true.
func (t Table) Filter(keep func(Row) bool) Table {
	out := Table{Columns: t.Columns}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// Select projects the table onto cols, keeping only the first row per key.
func (t Table) Select(key string, cols []string) Table {
	out := Table{Columns: append([]string(nil), cols...)}
	seen := make(map[string]struct{}, len(t.Rows))
	for _, r := range t.Rows {
		k := r[key]
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		nr := make(Row, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Rename returns a copy with columns renamed per names. Columns missing from
// names keep their name.
func (t Table) Rename(names map[string]string) Table {
	out := Table{Columns: make([]string, len(t.Columns))}
	for i, c := range t.Columns {
		if n, ok := names[c]; ok {
			out.Columns[i] = n
		} else {
			out.Columns[i] = c
		}
	}
	for _, r := range t.Rows {
		nr := make(Row, len(r))
		for k, v := range r {
			if n, ok := names[k]; ok {
				k = n
			}
			nr[k] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Project returns a copy restricted to cols, in that order.
func (t Table) Project(cols []string) Table {
	out := Table{Columns: append([]string(nil), cols...)}
	for _, r := range t.Rows {
		nr := make(Row, len(cols))
		for _, c := range cols {
			nr[c] = r[c]
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

func isBlankRow(r Row) bool {
	for _, v := range r {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
