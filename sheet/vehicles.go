package sheet

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// VehicleMarker is the first header cell of the vehicles form.
const VehicleMarker = "Código Accidente"

// Columns of the clean vehicle file.
const (
	ColAccidentCode = "accident_code"
	ColVehicleType  = "vehicle_type"
	ColService      = "service"
	ColManeuver     = "maneuver"
	ColVehicleCons  = "consequence"
	ColLane         = "lane"
	ColPlate        = "plate"
	ColBrand        = "brand"
)

// UnknownVehicle replaces missing plates and brands.
const UnknownVehicle = "SIN-ANTECEDENTES"

var VehicleColumns = []string{ColAccidentID, ColAccidentCode, ColVehicleType, ColService, ColManeuver, ColVehicleCons, ColLane, ColPlate, ColBrand}

// form header labels, matched after Fold
var vehicleHeaders = map[string]string{
	"codigo accidente": ColAccidentCode,
	"tipo vehiculo":    ColVehicleType,
	"servicio":         ColService,
	"maniobra":         ColManeuver,
	"consecuencia":     ColVehicleCons,
	"pista/via":        ColLane,
	"patente":          ColPlate,
	"marca":            ColBrand,
}

var vehicleCodeColumns = []string{ColVehicleType, ColService, ColManeuver, ColVehicleCons, ColLane}

var nullTokens = map[string]bool{
	"SINPATENTE": true, "SIN PATENTE": true, "NO REGISTRA": true, "NOREGISTRA": true,
	"SIN DATOS": true, "SINDATOS": true, "SIN ANTECEDENTES": true, "SINANTECEDENTES": true,
	"NAN": true, "NONE": true, "S/I": true, "": true,
}

var unknownVehicleTokens = map[string]bool{"0": true, "S/PPU": true, "S/I": true}

var firstNumberRe = regexp.MustCompile(`\d+`)

var brandCorrections = map[string]string{
	"SINANTECEDENTES": UnknownVehicle, "SINMARCA": UnknownVehicle,
	"RANDON(REMOLQUE)": "REMOLQUE", "MACK(CAMABAJA)": "MACK",
	"MITSUBICHI": "MITSUBISHI", "MITSUVISHI": "MITSUBISHI", "MITZUBISHI": "MITSUBISHI", "MITSUBI": "MITSUBISHI",
	"MITSUBICHIMONTERO": "MITSUBISHI-MONTERO",
	"KIAMOTORS": "KIA", "KIAMOTOR": "KIA", "KÍAMOTORS": "KIA", "KIAFRONTIER": "KIA-FRONTIER", "KIA.": "KIA",
	"CHEBROLET": "CHEVROLET", "CHEVROLE": "CHEVROLET", "CHEVORLET": "CHEVROLET", "CHEVROLETE": "CHEVROLET",
	"CHEVROLET.": "CHEVROLET", "CHEVROLETSAIL": "CHEVROLET-SAIL",
	"CARROHECHIZO": "REMOLQUE", "CARRODEREMOLQUE": "REMOLQUE",
	"CHEROKEE": "JEEP", "JEEP.": "JEEP", "JPE": "JEEP", "JEEPCHEROKEE": "JEEP-CHEROKEE",
	"INTER": "INTERNATIONAL", "MASDA": "MAZDA", "DAFCL": "DAF", "MAC": "MACK", "BWW": "BMW",
	"FOR": "FORD", "FOD": "FORD", "FORDMOTOR": "FORD", "FORD.": "FORD",
	"SAMGUN": "SAMSUNG", "TOYTA": "TOYOTA", "TOYOTTA": "TOYOTA", "TOYOTAYARIS": "TOYOTA-YARIS",
	"HYUNDAY": "HYUNDAI", "HYUNDAI.": "HYUNDAI", "HYNDAI": "HYUNDAI", "HYUDAI": "HYUNDAI", "HYUDAHI": "HYUNDAI",
	"HYUNDAIACCENT": "HYUNDAI-ACCENT",
	"SUSUKI.": "SUZUKI", "SUZUKI.": "SUZUKI", "SUZUK": "SUZUKI", "SUSUKI": "SUZUKI", "SUZIKI": "SUZUKI",
	"VW": "VOLKSWAGEN", "WOLKSWAGEN": "VOLKSWAGEN", "VOLSWAGEN": "VOLKSWAGEN", "VOLKS": "VOLKSWAGEN",
	"CAWASAKI": "KAWASAKI",
	"GREALWALL": "GREAT-WALL", "GREATWALL": "GREAT-WALL", "GREATWAL": "GREAT-WALL", "GREATWALT": "GREAT-WALL",
	"THERMOKINGRAMPLA": "THERMO-KING-RAMPLA", "TERMOKINGRAMPLA": "THERMO-KING-RAMPLA", "TERMOKINRAMPLA": "THERMO-KING-RAMPLA",
	"MERCEDEZ": "MERCEDES-BENZ", "MERCEDES": "MERCEDES-BENZ", "MERCEDESBENZ": "MERCEDES-BENZ", "MERCEDEZBENZ": "MERCEDES-BENZ",
	"PEUGEOTPARTNER": "PEUGEOT-PARTNER", "PEUGEOT.": "PEUGEOT", "PEUJEOT": "PEUGEOT",
	"HARLEYDAVIDSON": "HARLEY-DAVIDSON", "MORRISGARAGE": "MORRIS-GARAGE",
	"NISSAM": "NISSAN", "NISAN": "NISSAN", "NISSNA": "NISSAN", "NISSSAN": "NISSAN",
	"HONDA.": "HONDA", "HODA": "HONDA", "ISUZU.": "ISUZU", "DAIHATSU.": "DAIHATSU",
	"DAEWOO.": "DAEWOO", "DAEWU": "DAEWOO", "DODGE.": "DODGE", "JAC.": "JAC",
	"RENAULT.": "RENAULT", "RENO": "RENAULT", "RENAUL": "RENAULT", "REANULT": "RENAULT",
	"FIAT.": "FIAT", "FIA": "FIAT", "VOLV": "VOLVO", "VOLV.": "VOLVO", "VOLVO.": "VOLVO",
}

// TransformVehicles turns the vehicles-involved form into one row per
// vehicle and lane. Accident identifiers use the same period rule as the
// accident form so both files key the same accidents.
func TransformVehicles(g Grid, source string, q *Quality) (Table, error) {
	hi, err := HeaderIndex(g, VehicleMarker)
	if err != nil {
		return Table{}, err
	}
	positions := make(map[string]int)
	for j := range g[hi] {
		if col, ok := vehicleHeaders[Fold(g.Cell(hi, j))]; ok {
			positions[col] = j
		}
	}

	t := Table{Columns: VehicleColumns}
	var lastCode string
	for i := hi + 1; i < len(g); i++ {
		r := make(Row, len(VehicleColumns))
		for col, j := range positions {
			r[col] = g.Cell(i, j)
		}
		if r[ColAccidentCode] == "" && r[ColPlate] == "" && r[ColBrand] == "" {
			continue
		}
		if r[ColAccidentCode] == "" {
			r[ColAccidentCode] = lastCode
		}
		lastCode = r[ColAccidentCode]
		for _, col := range vehicleCodeColumns {
			if EqualFold(r[col], "SIN ANTECEDENTES") {
				r[col] = ""
			}
		}
		r[ColPlate] = strings.NewReplacer("-", "", " ", "").Replace(r[ColPlate])
		t.Rows = append(t.Rows, r)
	}

	t = explodeLanes(t)

	period := PeriodFromPath(source)
	if period.Fallback {
		q.Note(ObsFallbackPeriod, source, 1, "period %s not found in file name", period)
	}
	ids := vehicleIDs(t, period)
	for _, r := range t.Rows {
		r[ColAccidentID] = ids[r[ColAccidentCode]]
		for _, col := range append([]string{ColPlate, ColBrand}, vehicleCodeColumns...) {
			if nullTokens[strings.ToUpper(strings.TrimSpace(r[col]))] {
				r[col] = "0"
			}
		}
		r[ColPlate] = vehicleLabel(r[ColPlate])
		r[ColBrand] = cleanBrand(vehicleLabel(r[ColBrand]))
	}
	return t, nil
}

// explodeLanes splits "1 y 2" and "1-2" lane cells into one row per lane.
func explodeLanes(t Table) Table {
	for _, r := range t.Rows {
		r[ColLane] = strings.ReplaceAll(strings.ToLower(r[ColLane]), " y ", "-")
	}
	out := Explode(t, ColLane, "-")
	for _, r := range out.Rows {
		if v := r[ColLane]; v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				r[ColLane] = strconv.Itoa(int(f))
			} else {
				r[ColLane] = ""
			}
		}
	}
	return out
}

// vehicleIDs numbers distinct accident codes: the first number inside the
// code when present, else the code's ordinal.
func vehicleIDs(t Table, p Period) map[string]string {
	ids := make(map[string]string)
	n := 0
	for _, r := range t.Rows {
		code := r[ColAccidentCode]
		if code == "" {
			continue
		}
		if _, ok := ids[code]; ok {
			continue
		}
		n++
		seq := n
		if m := firstNumberRe.FindString(code); m != "" {
			if v, err := strconv.Atoi(m); err == nil {
				seq = v
			}
		}
		ids[code] = AccidentID(p, seq)
	}
	return ids
}

func vehicleLabel(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if unknownVehicleTokens[s] {
		return UnknownVehicle
	}
	return s
}

func cleanBrand(s string) string {
	s = strings.ReplaceAll(s, " ", "")
	if c, ok := brandCorrections[s]; ok {
		return c
	}
	return s
}

// VehicleKey identifies a vehicle row in reports.
func VehicleKey(r Row) string {
	return fmt.Sprintf("%s/%s", r[ColAccidentID], r[ColPlate])
}
