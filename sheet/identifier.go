package sheet

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	dayMonthYearRe = regexp.MustCompile(`(\d{2})\s+\w+\s+(\d{4})`)
	yearMonthRe    = regexp.MustCompile(`(\d{4})-(\d{2})`)
	yearFolderRe   = regexp.MustCompile(`^\d{4}$`)
)

// Period is the year-month a source file reports on.
// Fallback is set when the month could not be taken from the file name.
type Period struct {
	Year     int
	Month    int
	Fallback bool
}

// String renders YYYYMM. A folder-only period renders month 00 and the
// sentinel period renders 000000.
func (p Period) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, p.Month)
}

// PeriodFromPath derives the period from the file name ("03 Marzo 2024",
// "2024-03"), then from the nearest four digit ancestor folder, then falls
// back to the zero sentinel. Both fallbacks set Fallback. A folder-only
// period renders as YYYY00 and the sentinel as 000000, so identifiers built
// from them read ACC-202400-NNN and ACC-000000-NNN. Callers that need to
// tell these apart from a real month check Fallback, never the rendering.
func PeriodFromPath(path string) Period {
	base := filepath.Base(path)
	if m := dayMonthYearRe.FindStringSubmatch(base); m != nil {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return Period{Year: year, Month: month}
		}
	}
	if m := yearMonthRe.FindStringSubmatch(base); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			return Period{Year: year, Month: month}
		}
	}
	if year, ok := yearFolder(path); ok {
		return Period{Year: year, Fallback: true}
	}
	return Period{Fallback: true}
}

func yearFolder(path string) (int, bool) {
	dir := filepath.Dir(path)
	for {
		base := filepath.Base(dir)
		if yearFolderRe.MatchString(base) {
			y, _ := strconv.Atoi(base)
			return y, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return 0, false
		}
		dir = parent
	}
}

// YearFolder returns the nearest four digit ancestor directory name of path,
// or "" when there is none.
func YearFolder(path string) string {
	if y, ok := yearFolder(path); ok {
		return fmt.Sprintf("%04d", y)
	}
	return ""
}

// ParseSequence accepts "12", "12.0" and " 12 " and rejects anything that
// is not a positive whole number.
func ParseSequence(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, n > 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f <= 0 {
		return 0, false
	}
	return int(f), true
}

// FilterSequence drops rows without a positive sequence in col. These are
// trailing blank rows of the form, so the count is an observation only.
func FilterSequence(t Table, col, source string, q *Quality) Table {
	out := t.Filter(func(r Row) bool {
		_, ok := ParseSequence(r[col])
		return ok
	})
	if dropped := t.Len() - out.Len(); dropped > 0 {
		q.Note(ObsMissingSequence, source, dropped, "dropped %d rows without a valid sequence number", dropped)
	}
	return out
}

// Dedup keeps the first row per distinct combination of keys.
func Dedup(t Table, keys []string, source string, q *Quality) Table {
	seen := make(map[string]struct{}, t.Len())
	out := t.Filter(func(r Row) bool {
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = strings.TrimSpace(r[k])
		}
		k := strings.Join(parts, "\x00")
		if _, ok := seen[k]; ok {
			return false
		}
		seen[k] = struct{}{}
		return true
	})
	if dup := t.Len() - out.Len(); dup > 0 {
		q.Note(ObsDuplicate, source, dup, "removed %d duplicate rows", dup)
	}
	return out
}

// DistinctIDs keeps the first row per value of idCol. Two form rows that
// share a sequence but differ elsewhere would otherwise be merged into one
// accident; the later row is dropped and noted instead.
func DistinctIDs(t Table, idCol, source string, q *Quality) Table {
	seen := make(map[string]struct{}, t.Len())
	out := t.Filter(func(r Row) bool {
		id := r[idCol]
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		return true
	})
	if n := t.Len() - out.Len(); n > 0 {
		q.Note(ObsDuplicateID, source, n, "dropped %d rows whose identifier was already taken", n)
	}
	return out
}

// AccidentID builds ACC-YYYYMM-NNN.
func AccidentID(p Period, seq int) string {
	return fmt.Sprintf("ACC-%s-%03d", p, seq)
}

// AssignIDs writes AccidentID(p, seq) into idCol for every row. Rows must
// already have passed FilterSequence.
func AssignIDs(t Table, p Period, seqCol, idCol string) Table {
	out := Table{Columns: t.Columns}
	if !t.hasColumn(idCol) {
		out.Columns = append([]string{idCol}, t.Columns...)
	}
	for _, r := range t.Rows {
		nr := r.clone()
		seq, _ := ParseSequence(r[seqCol])
		nr[idCol] = AccidentID(p, seq)
		out.Rows = append(out.Rows, nr)
	}
	return out
}
