package sheet

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Columns of the clean traffic file.
const (
	ColPlaza     = "plaza"
	ColDirection = "direction"
	ColCategory  = "category"
	ColHour      = "hour"
	ColCount     = "count"
)

// UnknownPlaza is used when no plaza name appears in the file path.
const UnknownPlaza = "Desconocido"

var TrafficColumns = []string{ColPlaza, ColDirection, ColCategory, ColDate, ColHour, ColCount}

// traffic sheets start their data after a fixed preamble
const (
	trafficSkipRows = 5
	trafficDayCol   = 1
	trafficDirCol   = 2
	trafficHourCol  = 3
)

var trafficDirections = map[string]bool{"ASCENDENTE": true, "DESCENDENTE": true}

var trafficCategories = map[string]string{
	"1 MOTO":                 "Moto",
	"2 AUTOCMTA":             "Auto/Camioneta",
	"3 CAMION 2 EJES CTA RD": "Camión 2 Ejes Cta/Rd",
	"4 BUS 2 EJES":           "Bus 2 Ejes",
	"5 CAMION +2 EJES":       "Camión +2 Ejes",
	"6 BUS +2 EJES":          "Bus +2 Ejes",
	"12 SOBREDIMEN.":         "Sobredimensionado",
}

var titleCaser = cases.Title(language.Spanish)

var trafficPeriodRe = regexp.MustCompile(`(\d{4})-(\d{2})`)

// SheetSource is a workbook with named sheets.
type SheetSource interface {
	Sheets() []string
	Rows(sheet string) (Grid, error)
}

// TrafficCategory maps a sheet name to its vehicle category.
func TrafficCategory(sheetName string) string {
	name := strings.ToUpper(strings.TrimSpace(sheetName))
	if c, ok := trafficCategories[name]; ok {
		return c
	}
	return titleCaser.String(strings.TrimSpace(sheetName))
}

func isTrafficSheet(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsDigit(r)
}

// PlazaFromPath returns the first of plazas named in the path, matched
// after Fold, or UnknownPlaza.
func PlazaFromPath(path string, plazas []string) string {
	p := Fold(filepath.ToSlash(path))
	for _, name := range plazas {
		if n := Fold(name); n != "" && strings.Contains(p, n) {
			return name
		}
	}
	return UnknownPlaza
}

// TransformTraffic melts each vehicle-class sheet of a monthly toll count
// workbook into one row per (day, direction, hour).
func TransformTraffic(src SheetSource, source string, plazas []string, q *Quality) (Table, error) {
	var sheets []string
	for _, s := range src.Sheets() {
		if isTrafficSheet(s) {
			sheets = append(sheets, s)
		}
	}
	if len(sheets) == 0 {
		return Table{}, ErrNoValidSheet
	}

	year, month := trafficPeriod(source)
	plaza := PlazaFromPath(source, plazas)
	out := Table{Columns: append([]string(nil), TrafficColumns...)}
	for _, name := range sheets {
		g, err := src.Rows(name)
		if err != nil {
			return Table{}, err
		}
		category := TrafficCategory(name)
		invalid := 0
		var day string
		for i := trafficSkipRows; i < len(g); i++ {
			if d := g.Cell(i, trafficDayCol); d != "" {
				day = d
			}
			dir := strings.ToUpper(g.Cell(i, trafficDirCol))
			if !trafficDirections[dir] {
				continue
			}
			date, ok := trafficDate(year, month, day)
			for h := 0; h < 24; h++ {
				if !ok {
					invalid++
					continue
				}
				out.Rows = append(out.Rows, Row{
					ColPlaza:     plaza,
					ColDirection: dir,
					ColCategory:  category,
					ColDate:      date,
					ColHour:      strconv.Itoa(h),
					ColCount:     strconv.Itoa(CleanCount(g.Cell(i, trafficHourCol+h))),
				})
			}
		}
		if invalid > 0 {
			q.Note(ObsInvalidDate, source+" - "+name, invalid, "excluded %d rows with invalid dates", invalid)
		}
	}
	return out, nil
}

func trafficPeriod(source string) (int, int) {
	if m := trafficPeriodRe.FindStringSubmatch(filepath.Base(source)); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		return y, mo
	}
	p := PeriodFromPath(source)
	return p.Year, p.Month
}

// trafficDate validates the calendar date; time.Date would normalise
// 31 February into March.
func trafficDate(year, month int, day string) (string, bool) {
	d := CleanCount(day)
	if year == 0 || month < 1 || month > 12 || d < 1 {
		return "", false
	}
	t := time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != month {
		return "", false
	}
	return t.Format("2006-01-02"), true
}
