package sheet

import (
	"strconv"
	"strings"
)

// AxisSeparator joins the axes of two-axis attribute names such as
// "Graves - Peatones".
const AxisSeparator = " - "

// Group describes one repeated attribute group of a wide row.
type Group struct {
	// Prefix selects the group's columns by name.
	Prefix string
	// Label turns a column name into the attribute name. When nil the
	// prefix and a following AxisSeparator are stripped.
	Label func(column string) string
	// Attribute and Value name the long-format output columns.
	Attribute string
	Value     string
	// Axes, when set, splits the attribute name on AxisSeparator into these
	// columns instead of writing Attribute.
	Axes []string
}

func (g Group) label(col string) string {
	if g.Label != nil {
		return g.Label(col)
	}
	s := strings.TrimSpace(strings.TrimPrefix(col, g.Prefix))
	return strings.TrimSpace(strings.TrimPrefix(s, strings.TrimSpace(AxisSeparator)))
}

func (g Group) outputColumns() []string {
	if len(g.Axes) > 0 {
		return append(append([]string{}, g.Axes...), g.Value)
	}
	return []string{g.Attribute, g.Value}
}

// KeepValue reports whether a group cell carries information: absent values,
// "false" and numeric zero are dropped; range-like values such as "3-5" and
// any non-numeric text are kept.
func KeepValue(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return false
	}
	if strings.Contains(v, "-") {
		return true
	}
	if strings.EqualFold(v, "false") {
		return false
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64)
	if err != nil {
		return true
	}
	return f != 0
}

// Unpivot turns the group's columns into one row per (key, attribute, value).
// A key whose cells were all dropped gets a single placeholder row carrying
// only the key so the recombination step still sees it.
func Unpivot(t Table, key string, g Group) Table {
	var cols []string
	for _, c := range t.Columns {
		if c != key && strings.HasPrefix(c, g.Prefix) {
			cols = append(cols, c)
		}
	}
	out := Table{Columns: append([]string{key}, g.outputColumns()...)}
	var order []string
	byKey := make(map[string][]Row)
	seen := make(map[string]bool)
	for _, r := range t.Rows {
		k := r[key]
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
		}
		for _, c := range cols {
			v := strings.TrimSpace(r[c])
			if !KeepValue(v) {
				continue
			}
			nr := Row{key: r[key], g.Value: v}
			name := g.label(c)
			if len(g.Axes) > 0 {
				parts := strings.SplitN(name, AxisSeparator, len(g.Axes))
				for i, axis := range g.Axes {
					if i < len(parts) {
						nr[axis] = strings.TrimSpace(parts[i])
					} else {
						nr[axis] = ""
					}
				}
			} else {
				nr[g.Attribute] = name
			}
			byKey[k] = append(byKey[k], nr)
		}
	}
	for _, k := range order {
		rows := byKey[k]
		if len(rows) == 0 {
			nr := Row{key: k}
			for _, c := range g.outputColumns() {
				nr[c] = ""
			}
			rows = []Row{nr}
		}
		out.Rows = append(out.Rows, rows...)
	}
	return out
}

// Recombine left-joins each long table onto base, in order, on key. The
// result holds one row per combination of the groups' values for each key,
// and every row carries the key's base columns unchanged.
func Recombine(base Table, key string, groups ...Table) Table {
	acc := base
	for _, g := range groups {
		index := make(map[string][]Row, g.Len())
		var extra []string
		for _, c := range g.Columns {
			if c != key {
				extra = append(extra, c)
			}
		}
		for _, r := range g.Rows {
			index[r[key]] = append(index[r[key]], r)
		}
		next := Table{Columns: append(append([]string{}, acc.Columns...), extra...)}
		for _, r := range acc.Rows {
			matches := index[r[key]]
			if len(matches) == 0 {
				nr := r.clone()
				for _, c := range extra {
					nr[c] = ""
				}
				next.Rows = append(next.Rows, nr)
				continue
			}
			for _, m := range matches {
				nr := r.clone()
				for _, c := range extra {
					nr[c] = m[c]
				}
				next.Rows = append(next.Rows, nr)
			}
		}
		acc = next
	}
	return acc
}

// Impute fills defaults into rows where when is empty.
func Impute(t Table, when string, defaults map[string]string) Table {
	out := Table{Columns: t.Columns}
	for _, r := range t.Rows {
		if strings.TrimSpace(r[when]) != "" {
			out.Rows = append(out.Rows, r)
			continue
		}
		nr := r.clone()
		for c, v := range defaults {
			nr[c] = v
		}
		out.Rows = append(out.Rows, nr)
	}
	return out
}

// Explode splits col on sep and emits one row per non-empty part. "FALSE"
// is read as code 0 and an empty cell passes through unchanged.
func Explode(t Table, col, sep string) Table {
	out := Table{Columns: t.Columns}
	for _, r := range t.Rows {
		v := strings.TrimSpace(r[col])
		if strings.EqualFold(v, "false") {
			v = "0"
		}
		var parts []string
		for _, p := range strings.Split(v, sep) {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			nr := r.clone()
			nr[col] = v
			out.Rows = append(out.Rows, nr)
			continue
		}
		for _, p := range parts {
			nr := r.clone()
			nr[col] = p
			out.Rows = append(out.Rows, nr)
		}
	}
	return out
}
