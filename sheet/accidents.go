package sheet

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AccidentMarker is the first-column label of the accident form header row.
const AccidentMarker = "Correlativo"

// Columns of the clean accident file.
const (
	ColAccidentID       = "accident_id"
	ColSequence         = "sequence"
	ColDate             = "date"
	ColTime             = "time"
	ColDateTime         = "datetime"
	ColKm               = "km"
	ColSection          = "section"
	ColAccidentType     = "accident_type"
	ColRelativeLocation = "relative_location"
	ColSurface          = "surface_condition"
	ColWeather          = "weather"
	ColLuminosity       = "luminosity"
	ColArtificialLight  = "artificial_light"
	ColDamage           = "infrastructure_damage"
	ColDescription      = "description"
	ColPeriodFallback   = "period_fallback"
	ColEnvironment      = "environment"
	ColEnvironmentValue = "environment_value"
	ColResponse         = "response"
	ColResponseValue    = "response_value"
	ColConsequence      = "consequence"
	ColAffected         = "affected"
	ColAffectedCount    = "affected_count"
	ColCause            = "cause"
	ColCauseValue       = "cause_value"
)

// LaneColumn names the lane flag column for lane n (1..6).
func LaneColumn(n int) string { return "lane_p" + strconv.Itoa(n) }

// Imputed consequence for accidents with no recorded injuries.
const (
	NoConsequence = "Ninguna"
	NoAffected    = "N/A"
)

const (
	envPrefix         = "Condiciones del Entorno"
	responsePrefix    = "Concurrencia"
	consequencePrefix = "Consecuencias"
	causePrefix       = "Causa Probable"
	causeUrbanColumn  = "Causa Probable (Contratos de Corredores urbanos)"
	causeInterPrefix  = "Causa Probable (Contratos de Interurbanos y Urbanos) - "

	// CauseUrban is the cause type of the urban corridor contract column.
	CauseUrban = "Corredores urbanos"
)

var (
	EnvironmentConditions = []string{"Punto Duro", "Defensas Camineras", "Desnivel en la Faja", "Estado cerco", "Trabajos en la Vía", "Banderero", "Velocidad máxima del sector"}
	Responders            = []string{"Carabineros", "Ambulancia", "Bomberos", "Operadora", "ITE"}
	Severities            = []string{"Muertos", "Graves", "Menos Graves", "Leves", "Ilesos"}
	Roles                 = []string{"Conductores", "Pasajeros", "Peatones", "Sin identificar"}
	InterurbanCauses      = []string{"Falla humana", "Falla mecánica", "Reventón neumático", "Peatón en la vía", "Ciclista en la vía", "Animal u obstáculo en la vía", "Pavimento resbaladizo", "Carga mal estibada", "Condición climática", "No definida"}
)

// the form labels the unidentified role with an abbreviation
const rawUnidentifiedRole = "S/ identificar"

// accidentLayout is the ordinal column mapping of the accident form.
var accidentLayout = func() []string {
	cols := []string{
		ColSequence, "contract_id", "section_id", "administrator", "administrator_name",
		"accident_code", ColDate, ColTime, ColKm,
		LaneColumn(6), LaneColumn(4), LaneColumn(2), LaneColumn(1), LaneColumn(3), LaneColumn(5),
		ColSection, ColAccidentType, ColRelativeLocation,
	}
	for _, c := range EnvironmentConditions {
		cols = append(cols, envPrefix+AxisSeparator+c)
	}
	for _, r := range Responders {
		cols = append(cols, responsePrefix+AxisSeparator+r)
	}
	for _, s := range Severities {
		for _, r := range Roles {
			if r == "Sin identificar" {
				r = rawUnidentifiedRole
			}
			cols = append(cols, consequencePrefix+AxisSeparator+s+AxisSeparator+r)
		}
	}
	cols = append(cols, ColSurface, ColWeather, ColLuminosity, ColArtificialLight, causeUrbanColumn)
	for _, c := range InterurbanCauses {
		cols = append(cols, causeInterPrefix+c)
	}
	return append(cols, ColDamage, ColDescription)
}()

// AccidentColumns is the column order of the clean accident file.
var AccidentColumns = []string{
	ColAccidentID, ColSequence, ColDate, ColTime, ColDateTime, ColKm,
	LaneColumn(1), LaneColumn(2), LaneColumn(3), LaneColumn(4), LaneColumn(5), LaneColumn(6),
	ColSection, ColAccidentType, ColRelativeLocation, ColSurface, ColWeather, ColLuminosity, ColArtificialLight,
	ColDamage, ColDescription, ColPeriodFallback,
	ColEnvironment, ColEnvironmentValue, ColResponse, ColResponseValue,
	ColConsequence, ColAffected, ColAffectedCount, ColCause, ColCauseValue,
}

var accidentContext = AccidentColumns[:22]

var accidentGroups = []Group{
	{Prefix: envPrefix, Attribute: ColEnvironment, Value: ColEnvironmentValue},
	{Prefix: responsePrefix, Attribute: ColResponse, Value: ColResponseValue},
	{
		Prefix: consequencePrefix,
		Axes:   []string{ColConsequence, ColAffected},
		Value:  ColAffectedCount,
		Label: func(col string) string {
			s := strings.TrimPrefix(col, consequencePrefix+AxisSeparator)
			return strings.Replace(s, rawUnidentifiedRole, "Sin identificar", 1)
		},
	},
	{
		Prefix:    causePrefix,
		Attribute: ColCause,
		Value:     ColCauseValue,
		Label: func(col string) string {
			if col == causeUrbanColumn {
				return CauseUrban
			}
			return strings.TrimPrefix(col, causeInterPrefix)
		},
	},
}

// columns that may carry several codes joined by "-"
var accidentMultiCode = []string{ColEnvironmentValue, ColAccidentType, ColRelativeLocation, ColSurface, ColLuminosity, ColWeather, ColArtificialLight}

// swappedDescriptionLen is the rune length above which a non-numeric
// accident type cell is taken to be a misplaced description.
const swappedDescriptionLen = 40

// TransformAccidents turns an accident form grid into long-format rows, one
// per combination of environment, response, consequence and cause values.
// source is the workbook path; it supplies the identifier period.
func TransformAccidents(g Grid, source string, q *Quality) (Table, error) {
	body, err := LocateHeader(g, AccidentMarker)
	if err != nil {
		return Table{}, err
	}
	t := Rename(body, accidentLayout)
	t = fixColumnSwap(t, source, q)
	for _, r := range t.Rows {
		r[ColDescription] = NormalizeText(r[ColDescription])
	}

	t = FilterSequence(t, ColSequence, source, q)
	t = Dedup(t, []string{ColSequence, ColDescription}, source, q)

	period := PeriodFromPath(source)
	if period.Fallback {
		q.Note(ObsFallbackPeriod, source, 1, "period %s not found in file name", period)
	}
	t = AssignIDs(t, period, ColSequence, ColAccidentID)

	before := t.Len()
	t = t.Filter(func(r Row) bool { return strings.TrimSpace(r[ColDescription]) != "" })
	if n := before - t.Len(); n > 0 {
		q.Note(ObsEmptyDescription, source, n, "dropped %d rows without a description", n)
	}
	t = DistinctIDs(t, ColAccidentID, source, q)

	fallback := strconv.FormatBool(period.Fallback)
	for _, r := range t.Rows {
		r[ColKm] = CleanKm(r[ColKm])
		r[ColDate] = CleanDate(r[ColDate])
		r[ColTime] = CleanTime(r[ColTime])
		r[ColDateTime] = ""
		if r[ColDate] != "" && r[ColTime] != "" {
			r[ColDateTime] = fmt.Sprintf("%s %s:00", r[ColDate], r[ColTime])
		}
		r[ColPeriodFallback] = fallback
	}
	t.Columns = append(append([]string{}, t.Columns...), ColDateTime, ColPeriodFallback)

	base := t.Select(ColAccidentID, accidentContext)
	longs := make([]Table, 0, len(accidentGroups))
	for _, grp := range accidentGroups {
		longs = append(longs, Unpivot(t, ColAccidentID, grp))
	}
	out := Recombine(base, ColAccidentID, longs...)
	out = Impute(out, ColConsequence, map[string]string{
		ColConsequence:   NoConsequence,
		ColAffected:      NoAffected,
		ColAffectedCount: "0",
	})
	for _, col := range accidentMultiCode {
		out = Explode(out, col, "-")
	}
	return out.Project(AccidentColumns), nil
}

// fixColumnSwap moves a description that landed in the accident type cell
// back into the description column.
func fixColumnSwap(t Table, source string, q *Quality) Table {
	swapped := 0
	for _, r := range t.Rows {
		typ := strings.TrimSpace(r[ColAccidentType])
		if strings.TrimSpace(r[ColDescription]) != "" || utf8.RuneCountInString(typ) <= swappedDescriptionLen {
			continue
		}
		if _, err := strconv.ParseFloat(typ, 64); err == nil {
			continue
		}
		r[ColDescription] = typ
		r[ColAccidentType] = ""
		swapped++
	}
	if swapped > 0 {
		q.Note(ObsColumnSwap, source, swapped, "moved %d descriptions out of the accident type column", swapped)
	}
	return t
}
