package sheet

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// CleanKm parses a road kilometre. "473+500" reads as 473.5 (only the first
// digit after the plus counts); otherwise dashes and commas are decimal
// points. It returns "" when nothing numeric is left.
func CleanKm(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if whole, frac, ok := strings.Cut(s, "+"); ok {
		whole = strings.TrimSpace(whole)
		frac = strings.TrimSpace(frac)
		if frac == "" {
			frac = "0"
		}
		s = whole + "." + frac[:1]
	} else {
		s = strings.ReplaceAll(s, "–", "-")
		s = strings.ReplaceAll(s, "-", ".")
		s = strings.ReplaceAll(s, ",", ".")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// CleanTime returns HH:MM. Accepted inputs are clock strings ("14:30",
// "14:30:00"), day fractions as stored by spreadsheets ("0.6041666") and
// typed decimals where the fraction is minutes ("14.30", "9.5").
func CleanTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04:05 PM"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04")
		}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if decimals(s) > 2 {
		_, frac := math.Modf(f)
		mins := int(math.Round(frac * 24 * 60))
		return fmt.Sprintf("%02d:%02d", (mins/60)%24, mins%60)
	}
	hours := int(f)
	mins := int(math.Round((f - float64(hours)) * 100))
	if mins >= 60 {
		mins %= 60
	}
	return fmt.Sprintf("%02d:%02d", hours%24, mins)
}

func decimals(s string) int {
	s = strings.ReplaceAll(s, ",", ".")
	if strings.ContainsAny(s, "eE") {
		return 99
	}
	_, frac, ok := strings.Cut(s, ".")
	if !ok {
		return 0
	}
	return len(frac)
}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006",
	"2/1/2006",
	"02-01-2006",
	"2-1-2006",
	"02/01/06",
	"02.01.2006",
}

// CleanDate returns yyyy-mm-dd from a spreadsheet serial or a day-first
// date string, or "" when the value is not a date.
func CleanDate(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01-02")
}

func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f < 1 || f > 2958465 {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(f, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CleanCount parses a whole, non-negative count. Anything else reads as 0.
func CleanCount(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}
