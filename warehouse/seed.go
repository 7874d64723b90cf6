package warehouse

import (
	"context"
	"fmt"
	"math"
	"time"

	"road-warehouse/sheet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const seedBatch = 500

// Catalog rows keyed by business code.
var (
	vehicleTypes = []DimVehicleType{{1, "Ligero"}, {2, "Pesado"}}

	categories = []DimCategory{
		{IDCategory: 1, CategoryName: "Moto", IDVehicleType: 1},
		{IDCategory: 2, CategoryName: "Auto/Camioneta", IDVehicleType: 1},
		{IDCategory: 3, CategoryName: "Camión 2 Ejes Cta/Rd", IDVehicleType: 2},
		{IDCategory: 4, CategoryName: "Bus 2 Ejes", IDVehicleType: 2},
		{IDCategory: 5, CategoryName: "Camión +2 Ejes", IDVehicleType: 2},
		{IDCategory: 6, CategoryName: "Bus +2 Ejes", IDVehicleType: 2},
		{IDCategory: 12, CategoryName: "Sobredimensionado", IDVehicleType: 2},
	}

	vehicleTypeValues = []struct {
		code     int
		name     string
		category int
	}{
		{0, "Sin datos", 0}, {1, "Bus/Taxibus", 4}, {2, "Minibus", 4}, {4, "Automóvil", 2},
		{5, "Camioneta", 2}, {6, "Jeep", 2}, {7, "Camión simple", 3}, {8, "Camión c/remolque", 5},
		{9, "Tracto-Camión", 3}, {10, "Tracto-Camión c/semirremolque", 5}, {11, "Furgón", 2},
		{12, "Ambulancia", 2}, {13, "Carro Bomba", 3}, {14, "Motocicleta", 1}, {15, "Bicicleta", 0},
		{16, "Tracción Animal", 0}, {17, "Maq. Agrícola", 12}, {18, "Maq. Mov. Tierra", 12}, {20, "Camión Pluma", 5},
	}

	// Code 0 catches traffic rows whose plaza or direction is not named.
	plazas     = map[int]string{0: sheet.UnknownPlaza, 1: "Cachiyuyo", 2: "Punta Colorada"}
	directions = map[int]string{0: "Sin dato", 1: "ASCENDENTE", 2: "DESCENDENTE"}

	accidentTypes = map[int]string{
		0: "Atropello", 10: "Atropello", 20: "Caida", 31: "Colisión Frontal", 32: "Colisión Lateral",
		33: "Colisión por Alcance", 34: "Colisión Perpendicular", 40: "Impacto con Animal",
		51: "Choque con objeto Frontal", 52: "Choque con objeto Lateral", 53: "Choque con objeto Posterior",
		61: "Choque con otro vehículo detenido Frenet/Frente", 62: "Choque con otro vehículo detenido Frenet/Lado",
		63: "Choque con otro vehículo detenido Frenet/Posterior", 64: "Choque con otro vehículo detenido Lado/Frente",
		65: "Choque con otro vehículo detenido Lado/Lado", 66: "Choque con otro vehículo detenido Lado/Posterior",
		67: "Choque con otro vehículo detenido Posterior/Frente", 68: "Choque con otro vehículo detenido Posterior/Lado",
		69: "Choque con otro vehículo detenido Posterior/Posterior", 70: "Volcadura", 80: "Incendio",
		90: "Descarrilamiento", 99: "Otro Tipo",
	}

	relativeLocations = map[int]string{
		0: "Sin dato", 1: "Tramo de vía recta", 2: "Tramo de vía curva horizontal", 3: "Tramo de vía curva vertical",
		4: "Acera o berma", 5: "Puente", 6: "Túnel", 11: "Cruce con semáforo funcionando",
		12: "Cruce con semáforo apagado", 13: "Cruce regulado por carabinero", 14: "Cruce con señal PARE",
		15: "Cruce con señal CEDA EL PASO", 16: "Cruce sin señalización", 21: "Enlace a nivel",
		22: "Enlace a desnivel", 23: "Acceso no habilitado", 24: "Rotonda", 25: "Plaza de peaje",
		99: "Otros no considerados",
	}

	surfaceConditions = map[int]string{
		0: "Sin dato", 1: "Seca", 2: "Húmeda", 3: "Mojada", 4: "Con Barro",
		5: "Con Nieve", 6: "Con Aceite", 7: "Escarcha", 8: "Gravilla", 99: "Otros",
	}
	luminosities     = map[int]string{0: "Sin dato", 1: "Diurna", 2: "Nocturna", 3: "Amanecer", 4: "Atardecer"}
	weathers         = map[int]string{0: "Sin dato", 1: "Despejado", 2: "Nublado", 3: "Lluvia", 4: "Llovizna", 5: "Neblina", 6: "Nieve"}
	artificialLights = map[int]string{0: "Sin dato", 1: "Apagada", 2: "Encendida suficiente", 3: "Encendida insuficiente", 4: "No existe"}
	sections         = map[int]string{0: "Sin dato", 1: "Troncal", 2: "Ramal", 3: "Calle de Servicio", 4: "Corredor", 5: "Mixta"}

	// idLane is assigned in this order.
	lanes = []string{"Sin dato", "Pista 1", "Pista 2", "Pista 3", "Pista 4", "Pista 5", "Pista 6"}

	serviceTypes = map[int]string{
		0: "Sin datos", 1: "Carabineros", 2: "Fiscal", 3: "Particular", 4: "Trans.Escolar", 5: "Taxi Básico",
		6: "Taxi Colectivo", 7: "Bomberos", 8: "Ambulancia", 9: "L.Colectiva Urbana", 10: "L. Colectiva Rural",
		11: "L. Interprovincial", 12: "L. Internacional", 13: "Carga Normal", 14: "Carga Peligrosa", 99: "Otros",
	}
	maneuverTypes = map[int]string{
		0: "Sin datos", 1: "Viaja derecho por vía", 2: "Vira Derecha hacia Vía", 3: "Vira Izquierda hacia Vía",
		4: "Adelanta en Vía", 5: "Detenido/deteniéndose en Vía", 6: "Retrocede en Vía", 7: "Vira en U en Vía",
		8: "Entra a Vía", 9: "Sale a Vía", 10: "Estacionado en Calzada", 11: "Estacionado en Berma",
		12: "Cambia de pista en Vía", 13: "Reinicia marcha", 14: "Cruzando la vía", 15: "Frena en vía", 99: "Otras",
	}
	consequenceTypes = map[int]string{0: "Sin datos", 1: "Con daños", 2: "Sin daños"}
)

// pairValue is one (attribute, value) row of a composite catalog.
type pairValue struct {
	value int
	name  string
}

var (
	environmentValues = map[string][]pairValue{
		"Punto Duro":                  {{10, "con defensa"}, {11, "Sin defensa"}, {12, "No existe"}},
		"Defensas Camineras":          {{20, "Mediana"}, {21, "Lateral izquierda"}, {22, "Lateral derecha"}, {23, "No existe"}},
		"Desnivel en la Faja":         {{30, "Existe con Protecciones"}, {31, "Existe sin Protecciones"}, {32, "No Existe"}},
		"Estado cerco":                {{40, "Bueno"}, {41, "Regular"}, {42, "Malo"}, {43, "N/A"}},
		"Trabajos en la Vía":          {{50, "si"}, {51, "no"}},
		"Banderero":                   {{60, "si"}, {61, "no"}},
		"Velocidad máxima del sector": {{70, "0-50"}, {71, "50-80"}, {72, "80-100"}, {73, "100-120"}},
	}

	urbanCauseValues = []pairValue{
		{1, "conducción bajo influencia del alcohol"}, {4, "conducción en condiciones físicas deficientes (cansancio, sueño)"},
		{5, "fuga por hecho delictual"}, {8, "velocidad mayor que la máxima permitida"},
		{11, "detención o disminución de velocidad intempestiva"}, {19, "no respetar el derecho a paso del peatón"},
		{26, "no respetar señalización"}, {28, "conducción no atenta a las condiciones de tránsito del momento"},
		{31, "conducción contra sentido del tránsito"}, {32, "virajes indebidos"}, {38, "cruce de peatón en zona no habilitada"},
		{39, "peatón bajo la influencia del alcohol o en estado de ebriedad"}, {40, "semáforo apagado"}, {41, "Otra"},
	}

	yesNo = []pairValue{{1, "si"}, {2, "no"}}
)

const (
	notInformed = "Sin dato/No informado"
	noData      = "Sin dato"
)

// The date dimension's season periods, southern hemisphere.
var (
	monthNames = []string{"", "Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio", "Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre"}
	dayNames   = map[time.Weekday]string{
		time.Monday: "Lunes", time.Tuesday: "Martes", time.Wednesday: "Miércoles", time.Thursday: "Jueves",
		time.Friday: "Viernes", time.Saturday: "Sábado", time.Sunday: "Domingo",
	}
)

// pointOfInterest labels the 15 metres that follow Km.
type pointOfInterest struct {
	Km      float64
	Element string
	Place   string
}

var pointsOfInterest = []pointOfInterest{
	{473.600, "Inicio Tramo", "Inicio Tramo"},
	{473.900, "Puente", "Paso Superior FFCC"},
	{474.000, "Puente", "Puente Fiscal"},
	{474.640, "Enlace", "Enlace Compañías"},
	{475.920, "Enlace", "Enlace San Pedro"},
	{481.300, "Carabineros", "Plaza Pesaje"},
	{482.270, "Enlace", "Enlace Jardín"},
	{482.780, "Enlace", "Enlace El Romeral"},
	{503.000, "Puente", "Puente Juan Soldado"},
	{508.400, "Enlace", "Enlace Caleta Hornos"},
	{515.000, "Cuesta", "Cuesta Buenos Aires"},
	{529.900, "Enlace", "Enlace La Higuera"},
	{540.000, "Carabineros", "Área de Control Poniente"},
	{545.000, "Variente", "Variente Global Hunter"},
	{547.400, "Enlace", "Enlace Punta Choros"},
	{549.160, "Enlace", "Enlace Trapiche Sur"},
	{551.740, "Enlace", "Enlace Trapiche Norte"},
	{554.000, "Peaje", "Peaje IV Región"},
	{555.000, "Acceso", "Acceso Barrick/Punta Colorada Sur"},
	{559.600, "Servicios", "Área de Servicios y Descanso"},
	{572.000, "Variente", "Variente Incahuasi"},
	{572.940, "Enlace", "Enlace Incahuasi"},
	{583.000, "Cuesta", "Cuesta Pajonales"},
	{595.300, "Peaje", "Peaje III Región"},
	{604.520, "Enlace", "Enlace Cachiyuyo"},
	{613.680, "Enlace", "Enlace Domeyko"},
	{652.000, "Puente", "Paso Superior FFCC"},
	{656.000, "Carabineros", "Área de Control Oriente"},
}

// poiSpanMetres is how far past a point of interest its label extends.
const poiSpanMetres = 15

// Seed prepares an empty or partially seeded warehouse: catalogs first, then
// the date and road dimensions when their tables are empty.
func Seed(ctx context.Context, db *gorm.DB, cfg Config) (SeedResult, error) {
	var res SeedResult
	if err := SeedCatalogs(db.WithContext(ctx)); err != nil {
		return res, fmt.Errorf("seed catalogs: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}
	n, err := SeedDateTimes(db.WithContext(ctx), cfg.DateTime)
	if err != nil {
		return res, fmt.Errorf("seed dim_DateTime: %w", err)
	}
	res.DateTimes = n
	if err := ctx.Err(); err != nil {
		return res, err
	}
	n, err = SeedKm(db.WithContext(ctx), cfg.Km)
	if err != nil {
		return res, fmt.Errorf("seed dim_Km: %w", err)
	}
	res.Km = n
	return res, nil
}

// SeedResult counts the rows the growing dimensions received. Zero means the
// table was already populated.
type SeedResult struct {
	DateTimes int
	Km        int
}

// SeedCatalogs inserts every fixed catalog row. Rows already present are
// left untouched, so seeding is repeatable.
func SeedCatalogs(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		vtv := make([]DimVehicleTypeValue, 0, len(vehicleTypeValues))
		for _, v := range vehicleTypeValues {
			row := DimVehicleTypeValue{IDVehicleTypeValue: v.code, VehicleTypeName: v.name}
			if v.category != 0 {
				c := v.category
				row.IDCategory = &c
			}
			vtv = append(vtv, row)
		}

		var sec []DimSection
		for code, name := range sections {
			sec = append(sec, DimSection{IDSection: code, SectionName: name})
		}
		var ln []DimLane
		for v, name := range lanes {
			ln = append(ln, DimLane{LaneValue: v, LaneName: name})
		}
		vt := append([]DimVehicleType(nil), vehicleTypes...)
		cat := append([]DimCategory(nil), categories...)
		var at []DimAccidentType
		for code, name := range accidentTypes {
			at = append(at, DimAccidentType{IDAccidentType: code, AccidentTypeName: name})
		}
		var rl []DimRelativeLocation
		for code, name := range relativeLocations {
			rl = append(rl, DimRelativeLocation{IDRelativeLocation: code, RelativeLocationName: name})
		}
		var sc []DimSurfaceCondition
		for code, name := range surfaceConditions {
			sc = append(sc, DimSurfaceCondition{IDSurfaceCondition: code, SurfaceConditionName: name})
		}
		var lum []DimLuminosity
		for code, name := range luminosities {
			lum = append(lum, DimLuminosity{IDLuminosity: code, LuminosityName: name})
		}
		var wt []DimWeather
		for code, name := range weathers {
			wt = append(wt, DimWeather{IDWeather: code, WeatherName: name})
		}
		var al []DimArtificialLight
		for code, name := range artificialLights {
			al = append(al, DimArtificialLight{IDArtificialLight: code, ArtificialLightCondition: name})
		}
		var st []DimServiceType
		for code, name := range serviceTypes {
			st = append(st, DimServiceType{IDServiceType: code, ServiceName: name})
		}
		var mt []DimManeuverType
		for code, name := range maneuverTypes {
			mt = append(mt, DimManeuverType{IDManeuverType: code, ManeuverType: name})
		}
		var ct []DimConsequenceType
		for code, name := range consequenceTypes {
			ct = append(ct, DimConsequenceType{IDConsequenceType: code, ConsequenceType: name})
		}
		var pl []DimPlaza
		for code, name := range plazas {
			pl = append(pl, DimPlaza{IDPlaza: code, PlazaName: name})
		}
		var dr []DimDirection
		for code, name := range directions {
			dr = append(dr, DimDirection{IDDirection: code, DirectionName: name})
		}

		var env []DimEnvironment
		for _, cond := range sheet.EnvironmentConditions {
			env = append(env, DimEnvironment{EnvironmentCondition: cond, EnvironmentValue: 0, EnvironmentValueName: notInformed})
			for _, v := range environmentValues[cond] {
				env = append(env, DimEnvironment{EnvironmentCondition: cond, EnvironmentValue: v.value, EnvironmentValueName: v.name})
			}
		}
		var resp []DimResponse
		for _, r := range sheet.Responders {
			resp = append(resp, DimResponse{ResponseType: r, ResponseValue: 0, ResponseValueName: notInformed})
			for _, v := range yesNo {
				resp = append(resp, DimResponse{ResponseType: r, ResponseValue: v.value, ResponseValueName: v.name})
			}
		}
		causes := []DimProbableCause{{ProbableCauseType: sheet.CauseUrban, CauseValue: 0, CauseValueName: noData}}
		for _, v := range urbanCauseValues {
			causes = append(causes, DimProbableCause{ProbableCauseType: sheet.CauseUrban, CauseValue: v.value, CauseValueName: v.name})
		}
		for _, c := range sheet.InterurbanCauses {
			causes = append(causes, DimProbableCause{ProbableCauseType: c, CauseValue: 0, CauseValueName: noData})
			for _, v := range yesNo {
				causes = append(causes, DimProbableCause{ProbableCauseType: c, CauseValue: v.value, CauseValueName: v.name})
			}
		}
		var cons []DimConsequence
		for _, s := range append(append([]string{}, sheet.Severities...), sheet.NoConsequence) {
			cons = append(cons, DimConsequence{ConsequenceType: s})
		}
		var aff []DimAffected
		for _, r := range append(append([]string{}, sheet.Roles...), sheet.NoAffected) {
			aff = append(aff, DimAffected{AffectedType: r})
		}

		// parents before children
		for _, rows := range []any{
			&vt, &cat, &vtv,
			&sec, &ln, &at, &rl, &sc, &lum, &wt, &al,
			&st, &mt, &ct, &pl, &dr,
			&env, &resp, &causes, &cons, &aff,
		} {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, seedBatch).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SeedDateTimes fills dim_DateTime with one row per minute from the first
// minute of start to the last minute of end. It does nothing when the table
// already has rows. Rows are written one day per statement batch.
func SeedDateTimes(db *gorm.DB, r DateRange) (int, error) {
	var count int64
	if err := db.Model(&DimDateTime{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	start, err := time.Parse(time.DateOnly, r.Start)
	if err != nil {
		return 0, fmt.Errorf("datetime start: %w", err)
	}
	end, err := time.Parse(time.DateOnly, r.End)
	if err != nil {
		return 0, fmt.Errorf("datetime end: %w", err)
	}

	id := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		day := make([]DimDateTime, 0, 24*60)
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			day = day[:0]
			for m := 0; m < 24*60; m++ {
				id++
				day = append(day, dateTimeRow(id, d.Add(time.Duration(m)*time.Minute)))
			}
			if err := tx.CreateInBatches(day, seedBatch).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

func dateTimeRow(id int, t time.Time) DimDateTime {
	_, week := t.ISOWeek()
	return DimDateTime{
		IDDateTime: id,
		DateTime:   t.Format(time.DateTime),
		Date:       t.Format(time.DateOnly),
		Year:       t.Year(),
		Month:      int(t.Month()),
		Day:        t.Day(),
		Hour:       t.Hour(),
		Minute:     t.Minute(),
		MonthName:  monthNames[t.Month()],
		WeekDay:    dayNames[t.Weekday()],
		WeekNumber: week,
		Period:     season(t),
	}
}

// season returns the southern hemisphere season of t.
func season(t time.Time) string {
	md := int(t.Month())*100 + t.Day()
	switch {
	case md >= 321 && md <= 620:
		return "Otoño"
	case md >= 621 && md <= 920:
		return "Invierno"
	case md >= 921 && md <= 1220:
		return "Primavera"
	default:
		return "Verano"
	}
}

// kmMetres keys a kilometre mark by whole metres so float noise never
// splits a lookup.
func kmMetres(km float64) int64 {
	return int64(math.Round(km * 1000))
}

// SeedKm fills dim_Km with one row per metre of r. It does nothing when the
// table already has rows.
func SeedKm(db *gorm.DB, r KmRange) (int, error) {
	var count int64
	if err := db.Model(&DimKm{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	first, last := kmMetres(r.Start), kmMetres(r.End)
	labels := make(map[int64]pointOfInterest)
	for _, p := range pointsOfInterest {
		from := kmMetres(p.Km)
		for m := from; m <= from+poiSpanMetres; m++ {
			labels[m] = p
		}
	}

	id := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		batch := make([]DimKm, 0, seedBatch)
		flush := func() error {
			if len(batch) == 0 {
				return nil
			}
			err := tx.Create(&batch).Error
			batch = batch[:0]
			return err
		}
		for m := first; m <= last; m++ {
			id++
			row := DimKm{IDKm: id, Km: float64(m) / 1000}
			if p, ok := labels[m]; ok {
				element, place := p.Element, p.Place
				row.Element, row.Place = &element, &place
			}
			batch = append(batch, row)
			if len(batch) == seedBatch {
				if err := flush(); err != nil {
					return err
				}
			}
		}
		return flush()
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}
