package warehouse

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves a workbook whose sheets hold the given rows, in order.
// The default first sheet is renamed to the first name.
func writeWorkbook(t *testing.T, path string, names []string, sheets map[string][][]any) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range names {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for j, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, j+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(name, cell, &r))
		}
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, f.SaveAs(path))
}

func countRow(day any, dir string, base int) []any {
	row := []any{"", day, dir}
	for h := 0; h < 24; h++ {
		row = append(row, base+h)
	}
	return row
}

type progressLog struct {
	mu    sync.Mutex
	lines []string
	steps [][2]int
}

func (p *progressLog) fn(msg string, completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if msg != "" {
		p.lines = append(p.lines, msg)
	}
	if completed >= 0 {
		p.steps = append(p.steps, [2]int{completed, total})
	}
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	cfg.MetricsFile = filepath.Join(t.TempDir(), "roadwh.prom")
	traffic, _ := cfg.Sources.Get(CategoryTraffic)
	accidents, _ := cfg.Sources.Get(CategoryAccidents)

	preamble := [][]any{{"PEAJE"}, {"-"}, {"-"}, {"-"}, {"", "DIA", "SENTIDO"}}
	moto := append(append([][]any{}, preamble...),
		countRow(1, "ASCENDENTE", 0),
		countRow("", "DESCENDENTE", 100),
	)
	trafficBook := filepath.Join(traffic.RawDir, "2024", "Cachiyuyo 2024-03.xlsx")
	writeWorkbook(t, trafficBook, []string{"Resumen", "1 MOTO"}, map[string][][]any{
		"Resumen": {{"total"}},
		"1 MOTO":  moto,
	})
	badBook := filepath.Join(accidents.RawDir, "2024", "Ficha 0 2024-03.xlsx")
	writeWorkbook(t, badBook, []string{"Hoja1"}, map[string][][]any{"Hoja1": {{"sin encabezado"}}})

	r, err := NewRunner(RunnerConfig{Config: cfg})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	p := &progressLog{}
	res, err := r.Run(context.Background(), p.fn)
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	want := make([][2]int, 0, 8)
	for i := 1; i <= 8; i++ {
		want = append(want, [2]int{i, 8})
	}
	assert.Equal(t, want, p.steps)

	require.Len(t, res.Normalized, 2)
	var clean, rejected NormalizeOutcome
	for _, o := range res.Normalized {
		if o.Category == CategoryTraffic {
			clean = o
		} else {
			rejected = o
		}
	}
	assert.Equal(t, 48, clean.Rows)
	assert.FileExists(t, filepath.Join(traffic.CleanDir, "2024", "Cachiyuyo 2024-03_clean.csv"))
	assert.True(t, IsSchemaError(rejected.SchemaErr))
	assert.NoFileExists(t, badBook)
	assert.FileExists(t, rejected.Quarantined)

	assert.EqualValues(t, 48, count(t, r.db, &FactTraffic{}))
	var total int64
	require.NoError(t, r.db.Model(&FactTraffic{}).Select("SUM(trafficVolume)").Scan(&total).Error)
	assert.EqualValues(t, 276+2676, total)
	assert.Equal(t, []string{"Ficha 0 2024-03.xlsx"}, res.Report.Rejected)
	assert.Contains(t, p.lines, "=== Executive report ===")
	assert.Contains(t, p.lines, "  Loaded Cachiyuyo 2024-03_clean.csv: 48 rows, 0 rejected")

	b, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), `roadwh_rows_inserted_total{category="traffic"} 48`)

	// nothing new the second time
	res, err = r.Run(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Normalized, 1)
	assert.True(t, res.Normalized[0].Skipped)
	assert.Empty(t, res.Loaded)
	assert.True(t, res.Report.Empty())
	assert.EqualValues(t, 48, count(t, r.db, &FactTraffic{}))
}
