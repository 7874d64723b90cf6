package warehouse

import (
	"errors"
	"strings"

	"road-warehouse/sheet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// vehicle is one involved vehicle. The transform writes one row per lane,
// so consecutive rows that differ only in lane are folded back together.
type vehicle struct {
	accident     string
	registration string
	brand        string
	service      int
	typeValue    int
	maneuver     int
	consequence  int
	lanes        []int
}

type vehicleLoader struct {
	cache    *Cache
	vehicles []vehicle
}

func (l *vehicleLoader) Columns() []string { return sheet.VehicleColumns }

// sameVehicle reports whether b is a lane split of a.
func sameVehicle(a, b sheet.Row) bool {
	for _, c := range sheet.VehicleColumns {
		if c != sheet.ColLane && a[c] != b[c] {
			return false
		}
	}
	return true
}

// vehicleGroups splits rows into runs of lane splits of the same vehicle.
func vehicleGroups(rows []sheet.Row) [][]sheet.Row {
	var groups [][]sheet.Row
	for _, r := range rows {
		if n := len(groups); n > 0 && sameVehicle(groups[n-1][0], r) {
			groups[n-1] = append(groups[n-1], r)
			continue
		}
		groups = append(groups, []sheet.Row{r})
	}
	return groups
}

// Validate resolves each vehicle once. A vehicle that fails is reported
// with its first row; a bad lane only drops that lane row.
func (l *vehicleLoader) Validate(_ *gorm.DB, t sheet.Table) ([]RowError, error) {
	var rejected []RowError
	for _, rows := range vehicleGroups(t.Rows) {
		v, err := l.resolve(rows[0])
		if err != nil {
			rejected = append(rejected, RowError{Record: sheet.VehicleKey(rows[0]), Err: err})
			continue
		}
		for _, r := range rows {
			c := check(r)
			if lane, ok := c.optionalCode(sheet.ColLane, l.cache.Lane); ok {
				v.lanes = append(v.lanes, lane)
			}
			if err := c.Err(); err != nil {
				rejected = append(rejected, RowError{Record: sheet.VehicleKey(r), Err: err})
			}
		}
		l.vehicles = append(l.vehicles, v)
	}
	return rejected, nil
}

// resolve runs the vehicle checks in order: required fields, the accident,
// then each catalog code. Lanes are checked per row by Validate.
func (l *vehicleLoader) resolve(r sheet.Row) (vehicle, error) {
	c := check(r)
	c.require(sheet.ColAccidentID, sheet.ColPlate)
	c.key(sheet.ColAccidentID, l.cache.Accident)
	v := vehicle{
		accident:     strings.TrimSpace(r[sheet.ColAccidentID]),
		registration: sheet.NormalizeText(r[sheet.ColPlate]),
		brand:        sheet.NormalizeText(r[sheet.ColBrand]),
		service:      c.code(sheet.ColService, l.cache.Service),
		typeValue:    c.code(sheet.ColVehicleType, l.cache.VehicleTypeValue),
		maneuver:     c.code(sheet.ColManeuver, l.cache.Maneuver),
		consequence:  c.code(sheet.ColVehicleCons, l.cache.ConsequenceType),
	}
	if v.brand == "" {
		v.brand = sheet.UnknownVehicle
	}
	return v, c.Err()
}

func (l *vehicleLoader) Insert(tx *gorm.DB) (int, error) {
	descriptions := make(map[string]int)
	for _, v := range l.vehicles {
		idVD, ok := descriptions[v.registration]
		if !ok {
			var err error
			if idVD, err = vehicleDescription(tx, v.registration, v.brand); err != nil {
				return 0, err
			}
			descriptions[v.registration] = idVD
		}

		fact := FactVehicleAccident{IDAccident: v.accident, IDVehicleDescription: idVD}
		if err := tx.Create(&fact).Error; err != nil {
			return 0, err
		}
		id := fact.IDVehicleAccident
		bridges := []any{
			&BridgeVehicleServiceType{IDVehicleAccident: id, IDServiceType: v.service},
			&BridgeVehicleTypeValue{IDVehicleAccident: id, IDVehicleTypeValue: v.typeValue},
			&BridgeVehicleManeuverType{IDVehicleAccident: id, IDManeuverType: v.maneuver},
			&BridgeVehicleConsequenceType{IDVehicleAccident: id, IDConsequenceType: v.consequence},
		}
		for _, b := range bridges {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error; err != nil {
				return 0, err
			}
		}
		lanes := make([]BridgeVehicleLane, 0, len(v.lanes))
		for _, lane := range v.lanes {
			lanes = append(lanes, BridgeVehicleLane{IDVehicleAccident: id, IDLane: lane})
		}
		if err := createAll(tx, lanes, true); err != nil {
			return 0, err
		}
	}
	return len(l.vehicles), nil
}

// vehicleDescription returns the id of registration, creating the row the
// first time the plate is seen.
func vehicleDescription(tx *gorm.DB, registration, brand string) (int, error) {
	var d DimVehicleDescription
	err := tx.Where("Registration = ?", registration).First(&d).Error
	if err == nil {
		return d.IDVehicleDescription, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	d = DimVehicleDescription{Registration: registration, Brand: brand}
	if err := tx.Create(&d).Error; err != nil {
		return 0, err
	}
	return d.IDVehicleDescription, nil
}
