package warehouse

import (
	"strconv"
	"strings"

	"road-warehouse/sheet"

	"gorm.io/gorm"
)

var accidentRequired = []string{
	sheet.ColAccidentID, sheet.ColDateTime, sheet.ColKm,
	sheet.ColSection, sheet.ColAccidentType, sheet.ColRelativeLocation,
	sheet.ColSurface, sheet.ColWeather, sheet.ColLuminosity, sheet.ColArtificialLight,
	sheet.ColDamage, sheet.ColDescription, sheet.ColPeriodFallback,
	sheet.ColEnvironment, sheet.ColEnvironmentValue, sheet.ColResponse, sheet.ColResponseValue,
	sheet.ColConsequence, sheet.ColAffected, sheet.ColAffectedCount, sheet.ColCause, sheet.ColCauseValue,
}

// accidentLoader loads a long-format accident file: many rows per accident,
// one factAccident per id plus its dependents from every row.
type accidentLoader struct {
	cache   *Cache
	quality *sheet.Quality

	facts       []FactAccident
	affected    []FactAccidentAffected
	lanes       []BridgeAccidentLane
	causes      []BridgeAccidentProbableCause
	responses   []BridgeAccidentResponse
	environment []BridgeAccidentEnvironment
	kms         []BridgeAccidentKm
}

func (l *accidentLoader) Columns() []string {
	cols := append([]string{}, accidentRequired...)
	for i := 1; i <= 6; i++ {
		cols = append(cols, sheet.LaneColumn(i))
	}
	return cols
}

func (l *accidentLoader) Validate(db *gorm.DB, t sheet.Table) ([]RowError, error) {
	keys := make([]string, 0, t.Len())
	for _, r := range t.Rows {
		keys = append(keys, r[sheet.ColDateTime])
	}
	if err := l.cache.LoadDateTimes(db, keys); err != nil {
		return nil, err
	}

	var order []string
	groups := make(map[string][]sheet.Row)
	for _, r := range t.Rows {
		id := strings.TrimSpace(r[sheet.ColAccidentID])
		if _, ok := groups[id]; !ok {
			order = append(order, id)
		}
		groups[id] = append(groups[id], r)
	}

	var rejected []RowError
	fallback := 0
	for _, id := range order {
		rows := groups[id]
		fact, err := l.resolve(id, rows[0])
		if err != nil {
			rejected = append(rejected, RowError{Record: id, Err: err})
			continue
		}
		if rows[0][sheet.ColPeriodFallback] == "true" {
			fallback++
		}
		l.facts = append(l.facts, fact)
		l.dependents(id, rows)
	}
	if fallback > 0 {
		l.quality.Note(sheet.ObsFallbackPeriod, "", fallback, "%d accidents loaded with a fallback period", fallback)
	}
	return rejected, nil
}

// resolve runs the accident checks in order: date and time first, then each
// catalog code.
func (l *accidentLoader) resolve(id string, r sheet.Row) (FactAccident, error) {
	if id == "" {
		return FactAccident{}, &Rejection{Field: sheet.ColAccidentID, Message: "required value is empty"}
	}
	c := check(r)
	f := FactAccident{
		IDAccident:           id,
		IDDateTime:           c.key(sheet.ColDateTime, l.cache.DateTime),
		IDAccidentType:       c.code(sheet.ColAccidentType, l.cache.AccidentType),
		IDRelativeLocation:   c.code(sheet.ColRelativeLocation, l.cache.RelativeLocation),
		IDSection:            c.code(sheet.ColSection, l.cache.Section),
		IDSurfaceCondition:   c.code(sheet.ColSurface, l.cache.Surface),
		IDWeather:            c.code(sheet.ColWeather, l.cache.Weather),
		IDLuminosity:         c.code(sheet.ColLuminosity, l.cache.Luminosity),
		IDArtificialLight:    c.code(sheet.ColArtificialLight, l.cache.ArtificialLight),
		InfrastructureDamage: r[sheet.ColDamage],
		Description:          r[sheet.ColDescription],
	}
	return f, c.Err()
}

// dependents collects bridge and affected rows of an accepted accident.
// Values with no catalog row are skipped.
func (l *accidentLoader) dependents(id string, rows []sheet.Row) {
	first := rows[0]
	for i := 1; i <= 6; i++ {
		if safeInt(first[sheet.LaneColumn(i)]) <= 0 {
			continue
		}
		if lane, err := l.cache.Lane.Get(i); err == nil {
			l.lanes = append(l.lanes, BridgeAccidentLane{IDAccident: id, IDLane: lane})
		}
	}
	if km, err := strconv.ParseFloat(strings.TrimSpace(first[sheet.ColKm]), 64); err == nil {
		if idKm, err := l.cache.Km.Get(kmMetres(km)); err == nil {
			l.kms = append(l.kms, BridgeAccidentKm{IDAccident: id, IDKm: idKm})
		}
	}

	seen := make(map[any]bool)
	once := func(k any) bool {
		if seen[k] {
			return false
		}
		seen[k] = true
		return true
	}
	for _, r := range rows {
		if p, ok := pairOf(r, sheet.ColCause, sheet.ColCauseValue); ok {
			if cid, err := l.cache.Cause.Get(p); err == nil && once(BridgeAccidentProbableCause{id, cid}) {
				l.causes = append(l.causes, BridgeAccidentProbableCause{IDAccident: id, IDProbableCause: cid})
			}
		}
		if p, ok := pairOf(r, sheet.ColResponse, sheet.ColResponseValue); ok {
			if rid, err := l.cache.Response.Get(p); err == nil && once(BridgeAccidentResponse{id, rid}) {
				l.responses = append(l.responses, BridgeAccidentResponse{IDAccident: id, IDResponse: rid})
			}
		}
		if p, ok := pairOf(r, sheet.ColEnvironment, sheet.ColEnvironmentValue); ok {
			if eid, err := l.cache.Environment.Get(p); err == nil && once(BridgeAccidentEnvironment{id, eid}) {
				l.environment = append(l.environment, BridgeAccidentEnvironment{IDAccident: id, IDEnvironment: eid})
			}
		}

		cons, cerr := l.cache.Consequence.Get(sheet.Fold(r[sheet.ColConsequence]))
		aff, aerr := l.cache.Affected.Get(sheet.Fold(r[sheet.ColAffected]))
		if cerr != nil || aerr != nil {
			continue
		}
		if once([3]any{id, cons, aff}) {
			l.affected = append(l.affected, FactAccidentAffected{
				IDAccident:    id,
				IDConsequence: cons,
				IDAffected:    aff,
				AffectedCount: safeInt(r[sheet.ColAffectedCount]),
			})
		}
	}
}

func pairOf(r sheet.Row, nameCol, valueCol string) (Pair, bool) {
	name := strings.TrimSpace(r[nameCol])
	if name == "" {
		return Pair{}, false
	}
	return Pair{Name: sheet.Fold(name), Value: safeInt(r[valueCol])}, true
}

func (l *accidentLoader) Insert(tx *gorm.DB) (int, error) {
	// a duplicate id must fail the file, so facts are not conflict-tolerant
	if err := createAll(tx, l.facts, false); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.affected, true); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.lanes, true); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.causes, true); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.responses, true); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.environment, true); err != nil {
		return 0, err
	}
	if err := createAll(tx, l.kms, true); err != nil {
		return 0, err
	}
	return len(l.facts), nil
}
