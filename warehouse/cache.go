package warehouse

import (
	"fmt"

	"road-warehouse/sheet"

	"gorm.io/gorm"
)

// MissError reports a value with no row in a dimension.
type MissError struct {
	Table string
	Field string
	Value any
}

func (e *MissError) Error() string {
	return fmt.Sprintf("%s: no %s %v", e.Table, e.Field, e.Value)
}

// Lookup maps a dimension's natural key to its surrogate id.
type Lookup[K comparable] struct {
	Table string
	Field string
	ids   map[K]int
}

func newLookup[K comparable](table, field string) *Lookup[K] {
	return &Lookup[K]{Table: table, Field: field, ids: make(map[K]int)}
}

func (l *Lookup[K]) Put(k K, id int) { l.ids[k] = id }

// Get returns the id of k or a *MissError.
func (l *Lookup[K]) Get(k K) (int, error) {
	if id, ok := l.ids[k]; ok {
		return id, nil
	}
	return 0, &MissError{Table: l.Table, Field: l.Field, Value: k}
}

func (l *Lookup[K]) Has(k K) bool {
	_, ok := l.ids[k]
	return ok
}

func (l *Lookup[K]) Len() int { return len(l.ids) }

// Pair is the key of a two-column dimension such as (cause type, value).
type Pair struct {
	Name  string
	Value int
}

func (p Pair) String() string { return fmt.Sprintf("(%s, %d)", p.Name, p.Value) }

// Cache holds every lookup the loaders resolve against. Name keyed lookups
// are matched after sheet.Fold.
type Cache struct {
	DateTime *Lookup[string]

	Section          *Lookup[int]
	AccidentType     *Lookup[int]
	RelativeLocation *Lookup[int]
	Surface          *Lookup[int]
	Weather          *Lookup[int]
	Luminosity       *Lookup[int]
	ArtificialLight  *Lookup[int]
	Lane             *Lookup[int]
	Km               *Lookup[int64]

	Cause       *Lookup[Pair]
	Response    *Lookup[Pair]
	Environment *Lookup[Pair]
	Consequence *Lookup[string]
	Affected    *Lookup[string]

	Service          *Lookup[int]
	VehicleTypeValue *Lookup[int]
	Maneuver         *Lookup[int]
	ConsequenceType  *Lookup[int]
	Accident         *Lookup[string]

	Plaza     *Lookup[string]
	Direction *Lookup[string]
	Category  *Lookup[string]
}

// codeRow is the shape every code-keyed catalog is scanned into.
type codeRow struct {
	ID   int
	Code int
}

type nameRow struct {
	ID   int
	Name string
}

type pairRow struct {
	ID    int
	Name  string
	Value int
}

func loadCodes(db *gorm.DB, table, id, code string) (*Lookup[int], error) {
	var rows []codeRow
	if err := db.Table(table).Select(id + " AS id, " + code + " AS code").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	l := newLookup[int](table, code)
	for _, r := range rows {
		l.Put(r.Code, r.ID)
	}
	return l, nil
}

func loadNames(db *gorm.DB, table, id, name string) (*Lookup[string], error) {
	var rows []nameRow
	if err := db.Table(table).Select(id + " AS id, " + name + " AS name").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	l := newLookup[string](table, name)
	for _, r := range rows {
		l.Put(sheet.Fold(r.Name), r.ID)
	}
	return l, nil
}

func loadPairs(db *gorm.DB, table, id, name, value string) (*Lookup[Pair], error) {
	var rows []pairRow
	if err := db.Table(table).Select(id + " AS id, " + name + " AS name, " + value + " AS value").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s: %w", table, err)
	}
	l := newLookup[Pair](table, name+"/"+value)
	for _, r := range rows {
		l.Put(Pair{Name: sheet.Fold(r.Name), Value: r.Value}, r.ID)
	}
	return l, nil
}

// LoadCache reads every catalog into memory. dim_DateTime is too large to
// load whole and starts empty; see LoadDateTimes.
func LoadCache(db *gorm.DB) (*Cache, error) {
	c := &Cache{DateTime: newLookup[string]("dim_DateTime", "DateTime")}
	var err error

	codes := []struct {
		dst             **Lookup[int]
		table, id, code string
	}{
		{&c.Section, "dim_Section", "idSection", "idSection"},
		{&c.AccidentType, "dim_AccidentType", "idAccidentType", "idAccidentType"},
		{&c.RelativeLocation, "dim_RelativeLocation", "idRelativeLocation", "idRelativeLocation"},
		{&c.Surface, "dim_SurfaceCondition", "idSurfaceCondition", "idSurfaceCondition"},
		{&c.Weather, "dim_Weather", "idWeather", "idWeather"},
		{&c.Luminosity, "dim_Luminosity", "idLuminosity", "idLuminosity"},
		{&c.ArtificialLight, "dim_ArtificialLight", "idArtificialLight", "idArtificialLight"},
		{&c.Lane, "dim_Lane", "idLane", "LaneValue"},
		{&c.Service, "dim_ServiceType", "idServiceType", "idServiceType"},
		{&c.VehicleTypeValue, "dim_VehicleTypeValue", "idVehicleTypeValue", "idVehicleTypeValue"},
		{&c.Maneuver, "dim_ManeuverType", "idManeuverType", "idManeuverType"},
		{&c.ConsequenceType, "dim_ConsequenceType", "idConsequenceType", "idConsequenceType"},
	}
	for _, t := range codes {
		if *t.dst, err = loadCodes(db, t.table, t.id, t.code); err != nil {
			return nil, err
		}
	}

	names := []struct {
		dst             **Lookup[string]
		table, id, name string
	}{
		{&c.Consequence, "dim_Consequence", "idConsequence", "ConsequenceType"},
		{&c.Affected, "dim_Affected", "idAffected", "AffectedType"},
		{&c.Plaza, "dim_Plaza", "idPlaza", "PlazaName"},
		{&c.Direction, "dim_Direction", "idDirection", "DirectionName"},
		{&c.Category, "dim_Category", "idCategory", "CategoryName"},
	}
	for _, t := range names {
		if *t.dst, err = loadNames(db, t.table, t.id, t.name); err != nil {
			return nil, err
		}
	}

	pairs := []struct {
		dst                    **Lookup[Pair]
		table, id, name, value string
	}{
		{&c.Cause, "dim_ProbableCause", "idProbableCause", "ProbableCauseType", "CauseValue"},
		{&c.Response, "dim_Response", "idResponse", "ResponseType", "ResponseValue"},
		{&c.Environment, "dim_Environment", "idEnvironment", "EnvironmentCondition", "EnvironmentValue"},
	}
	for _, t := range pairs {
		if *t.dst, err = loadPairs(db, t.table, t.id, t.name, t.value); err != nil {
			return nil, err
		}
	}

	var kms []DimKm
	if err := db.Select("idKm", "Km").Find(&kms).Error; err != nil {
		return nil, fmt.Errorf("load dim_Km: %w", err)
	}
	c.Km = newLookup[int64]("dim_Km", "Km")
	for _, k := range kms {
		c.Km.Put(kmMetres(k.Km), k.IDKm)
	}

	if err := c.RefreshAccidents(db); err != nil {
		return nil, err
	}
	return c, nil
}

// RefreshAccidents reloads the set of loaded accident ids. Vehicles are
// checked against it, so it must follow the accident phase.
func (c *Cache) RefreshAccidents(db *gorm.DB) error {
	var ids []string
	if err := db.Model(&FactAccident{}).Pluck("idAccident", &ids).Error; err != nil {
		return fmt.Errorf("load factAccident: %w", err)
	}
	c.Accident = newLookup[string]("factAccident", "idAccident")
	for i, id := range ids {
		c.Accident.Put(id, i+1)
	}
	return nil
}

// dateTimeChunk stays under SQLite's bound parameter limit.
const dateTimeChunk = 900

// LoadDateTimes resolves keys ('YYYY-MM-DD HH:MM:SS') not yet cached.
// Keys outside the dimension simply stay missing.
func (c *Cache) LoadDateTimes(db *gorm.DB, keys []string) error {
	var want []string
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" || c.DateTime.Has(k) {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		want = append(want, k)
	}
	for start := 0; start < len(want); start += dateTimeChunk {
		end := min(start+dateTimeChunk, len(want))
		var rows []DimDateTime
		if err := db.Select("idDateTime", "DateTime").Where("DateTime IN ?", want[start:end]).Find(&rows).Error; err != nil {
			return fmt.Errorf("load dim_DateTime: %w", err)
		}
		for _, r := range rows {
			c.DateTime.Put(r.DateTime, r.IDDateTime)
		}
	}
	return nil
}
