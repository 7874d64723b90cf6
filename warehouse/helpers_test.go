package warehouse

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"road-warehouse/sheet"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, 4, 2, 10, 0, 0, 0, time.UTC)

// testConfig covers two days and 600 m so seeding stays fast.
func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := Config{
		Database: filepath.Join(dir, "warehouse.db"),
		DateTime: DateRange{Start: "2024-03-01", End: "2024-03-02"},
		Km:       KmRange{Start: 473.5, End: 474.1},
	}
	for _, c := range Categories {
		cfg.Sources.Items = append(cfg.Sources.Items, Source{
			Category: c,
			RawDir:   filepath.Join(dir, "raw", c),
			CleanDir: filepath.Join(dir, "clean", c),
			ErrorDir: filepath.Join(dir, "error", c),
		})
	}
	cfg.ApplyDefaults()
	return cfg
}

// newSeededRunner opens a runner on cfg and runs the structure phase.
func newSeededRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	r, err := NewRunner(RunnerConfig{Config: cfg, Now: func() time.Time { return fixedNow }})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	_, err = r.Init(context.Background(), nil)
	require.NoError(t, err)
	return r
}

func cleanDir(t *testing.T, cfg Config, category string) string {
	t.Helper()
	src, ok := cfg.Sources.Get(category)
	require.True(t, ok)
	return src.CleanDir
}

// writeClean writes a clean file under category's clean directory and
// returns its path.
func writeClean(t *testing.T, cfg Config, category, name string, cols []string, rows ...sheet.Row) string {
	t.Helper()
	p := filepath.Join(cleanDir(t, cfg, category), "2024", name)
	require.NoError(t, sheet.WriteDelimited(p, sheet.Table{Columns: cols, Rows: rows}))
	return p
}

// accidentRow is one long-format row of a valid accident at 2024-03-01 08:15.
func accidentRow(id string, with map[string]string) sheet.Row {
	r := sheet.Row{
		sheet.ColAccidentID:       id,
		sheet.ColSequence:         "1",
		sheet.ColDate:             "2024-03-01",
		sheet.ColTime:             "08:15",
		sheet.ColDateTime:         "2024-03-01 08:15:00",
		sheet.ColKm:               "473.6",
		sheet.ColSection:          "1",
		sheet.ColAccidentType:     "31",
		sheet.ColRelativeLocation: "1",
		sheet.ColSurface:          "1",
		sheet.ColWeather:          "1",
		sheet.ColLuminosity:       "1",
		sheet.ColArtificialLight:  "0",
		sheet.ColDamage:           "no",
		sheet.ColDescription:      "colisión frontal",
		sheet.ColPeriodFallback:   "false",
		sheet.ColConsequence:      sheet.NoConsequence,
		sheet.ColAffected:         sheet.NoAffected,
		sheet.ColAffectedCount:    "0",
	}
	for i := 1; i <= 6; i++ {
		r[sheet.LaneColumn(i)] = ""
	}
	for k, v := range with {
		r[k] = v
	}
	return r
}

func vehicleRow(id, plate, lane string) sheet.Row {
	return sheet.Row{
		sheet.ColAccidentID:   id,
		sheet.ColAccidentCode: "A-1",
		sheet.ColVehicleType:  "4",
		sheet.ColService:      "3",
		sheet.ColManeuver:     "1",
		sheet.ColVehicleCons:  "1",
		sheet.ColLane:         lane,
		sheet.ColPlate:        plate,
		sheet.ColBrand:        "TOYOTA",
	}
}

func trafficRowOf(plaza, dir, category, date, hour, count string) sheet.Row {
	return sheet.Row{
		sheet.ColPlaza:     plaza,
		sheet.ColDirection: dir,
		sheet.ColCategory:  category,
		sheet.ColDate:      date,
		sheet.ColHour:      hour,
		sheet.ColCount:     count,
	}
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func ledgerCount(t *testing.T, db *gorm.DB, category string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(LedgerTable(category)).Count(&n).Error)
	return n
}

func outcomeOf(t *testing.T, res Result, file string) FileOutcome {
	t.Helper()
	for _, o := range res.Loaded {
		if o.File == file {
			return o
		}
	}
	t.Fatalf("no outcome for %s", file)
	return FileOutcome{}
}
