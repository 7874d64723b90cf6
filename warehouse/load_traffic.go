package warehouse

import (
	"fmt"
	"strings"

	"road-warehouse/sheet"

	"gorm.io/gorm"
)

// Traffic rows without a plaza or direction fall back to these rows.
const (
	defaultPlaza     = sheet.UnknownPlaza
	defaultDirection = "Sin dato"
)

type trafficLoader struct {
	cache *Cache
	facts []FactTraffic
}

func (l *trafficLoader) Columns() []string { return sheet.TrafficColumns }

// trafficKey is the dim_DateTime key of a traffic row: the hour's first
// minute.
func trafficKey(r sheet.Row) string {
	date := strings.TrimSpace(r[sheet.ColDate])
	if date == "" {
		return ""
	}
	return fmt.Sprintf("%s %02d:00:00", date, safeInt(r[sheet.ColHour]))
}

func (l *trafficLoader) Validate(db *gorm.DB, t sheet.Table) ([]RowError, error) {
	keys := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		keys[i] = trafficKey(r)
	}
	if err := l.cache.LoadDateTimes(db, keys); err != nil {
		return nil, err
	}

	var rejected []RowError
	for i, r := range t.Rows {
		c := check(r)
		idDT, err := l.cache.DateTime.Get(keys[i])
		if err != nil {
			c.fail(sheet.ColDate, keys[i], "", err)
		}
		f := FactTraffic{
			IDDateTime:    idDT,
			IDPlaza:       c.name(sheet.ColPlaza, l.cache.Plaza, defaultPlaza),
			IDDirection:   c.name(sheet.ColDirection, l.cache.Direction, defaultDirection),
			IDCategory:    c.name(sheet.ColCategory, l.cache.Category, ""),
			TrafficVolume: sheet.CleanCount(r[sheet.ColCount]),
		}
		if err := c.Err(); err != nil {
			rejected = append(rejected, RowError{Record: trafficRecord(r), Err: err})
			continue
		}
		l.facts = append(l.facts, f)
	}
	return rejected, nil
}

func trafficRecord(r sheet.Row) string {
	return fmt.Sprintf("%s %s h%s %s %s", r[sheet.ColPlaza], r[sheet.ColDate], r[sheet.ColHour], r[sheet.ColDirection], r[sheet.ColCategory])
}

func (l *trafficLoader) Insert(tx *gorm.DB) (int, error) {
	if err := createAll(tx, l.facts, false); err != nil {
		return 0, err
	}
	return len(l.facts), nil
}
