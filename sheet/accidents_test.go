package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// accidentRow lays out values by form column name.
func accidentRow(t *testing.T, values map[string]string) []string {
	t.Helper()
	row := make([]string, len(accidentLayout))
	for name, v := range values {
		idx := -1
		for i, c := range accidentLayout {
			if c == name {
				idx = i
				break
			}
		}
		require.GreaterOrEqualf(t, idx, 0, "unknown column %q", name)
		row[idx] = v
	}
	return row
}

func accidentGrid(t *testing.T, rows ...map[string]string) Grid {
	g := Grid{{"Ficha de accidentes"}, {}, {"Correlativo", "ID Contrato"}}
	for _, r := range rows {
		g = append(g, accidentRow(t, r))
	}
	return g
}

func baseAccident(seq, desc string) map[string]string {
	return map[string]string{
		ColSequence:                                 seq,
		ColDate:                                     "15/03/2024",
		ColTime:                                     "14.30",
		ColKm:                                       "554+300",
		ColSection:                                  "1",
		ColAccidentType:                             "31",
		ColRelativeLocation:                         "1",
		ColSurface:                                  "1",
		ColWeather:                                  "1",
		ColLuminosity:                               "1",
		ColArtificialLight:                          "4",
		ColDescription:                              desc,
		LaneColumn(1):                               "1",
		"Concurrencia - Carabineros":                "1",
		"Concurrencia - Ambulancia":                 "2",
		"Causa Probable (Contratos de Corredores urbanos)": "4",
		causeInterPrefix + "Falla humana":           "1",
		causeInterPrefix + "Condición climática":    "2",
	}
}

func TestTransformAccidents_CartesianRows(t *testing.T) {
	src := filepath.Join("raw", "2024", "Ficha 0 03 Marzo 2024.xlsx")
	q := &Quality{}
	out, err := TransformAccidents(accidentGrid(t, baseAccident("1", "Colisión frontal en km 554")), src, q)
	require.NoError(t, err)

	// 1 environment placeholder x 2 responses x 1 imputed consequence x 3 causes
	require.Len(t, out.Rows, 6)
	assert.Equal(t, AccidentColumns, out.Columns)

	causes := map[string]bool{}
	responses := map[string]bool{}
	for _, r := range out.Rows {
		assert.Equal(t, "ACC-202403-001", r[ColAccidentID])
		assert.Equal(t, "2024-03-15 14:30:00", r[ColDateTime])
		assert.Equal(t, "554.3", r[ColKm])
		assert.Equal(t, "Colisión frontal en km 554", r[ColDescription])
		assert.Equal(t, NoConsequence, r[ColConsequence])
		assert.Equal(t, NoAffected, r[ColAffected])
		assert.Equal(t, "0", r[ColAffectedCount])
		assert.Equal(t, "", r[ColEnvironment])
		assert.Equal(t, "false", r[ColPeriodFallback])
		causes[r[ColCause]+"="+r[ColCauseValue]] = true
		responses[r[ColResponse]+"="+r[ColResponseValue]] = true
	}
	assert.Equal(t, map[string]bool{
		CauseUrban + "=4":         true,
		"Falla humana=1":          true,
		"Condición climática=2":   true,
	}, causes)
	assert.Equal(t, map[string]bool{"Carabineros=1": true, "Ambulancia=2": true}, responses)
	assert.Empty(t, q.Observations)
}

func TestTransformAccidents_ConsequencesAndExplode(t *testing.T) {
	row := baseAccident("4", "Atropello")
	delete(row, "Concurrencia - Ambulancia")
	delete(row, causeInterPrefix+"Falla humana")
	delete(row, causeInterPrefix+"Condición climática")
	row["Consecuencias - Graves - Peatones"] = "2"
	row["Consecuencias - Leves - S/ identificar"] = "1"
	row["Condiciones del Entorno - Punto Duro"] = "10-11"
	row[ColAccidentType] = "10-31"

	out, err := TransformAccidents(accidentGrid(t, row), "03 Marzo 2024.xlsx", nil)
	require.NoError(t, err)

	// 2 environment codes x 1 response x 2 consequences x 1 cause x 2 accident types
	require.Len(t, out.Rows, 8)
	affected := map[string]string{}
	for _, r := range out.Rows {
		assert.Equal(t, "Punto Duro", r[ColEnvironment])
		assert.Contains(t, []string{"10", "11"}, r[ColEnvironmentValue])
		assert.Contains(t, []string{"10", "31"}, r[ColAccidentType])
		affected[r[ColConsequence]+"/"+r[ColAffected]] = r[ColAffectedCount]
	}
	assert.Equal(t, map[string]string{"Graves/Peatones": "2", "Leves/Sin identificar": "1"}, affected)
}

func TestTransformAccidents_DedupAndQuality(t *testing.T) {
	src := filepath.Join("raw", "2023", "ficha sin fecha.xlsx")
	q := &Quality{}
	g := accidentGrid(t,
		baseAccident("1", "Choque frontal"),
		baseAccident("1", " Choque  frontal"),
		baseAccident("total", "fila de totales"),
		baseAccident("2", ""),
		baseAccident("3", "Volcamiento"),
	)
	out, err := TransformAccidents(g, src, q)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, r := range out.Rows {
		ids[r[ColAccidentID]] = true
		assert.Equal(t, "true", r[ColPeriodFallback])
	}
	assert.Equal(t, map[string]bool{"ACC-202300-001": true, "ACC-202300-003": true}, ids)
	assert.Equal(t, 1, q.Count(ObsMissingSequence))
	assert.Equal(t, 1, q.Count(ObsDuplicate))
	assert.Equal(t, 1, q.Count(ObsEmptyDescription))
	assert.Equal(t, 1, q.Count(ObsFallbackPeriod))
}

func TestTransformAccidents_SequenceCollision(t *testing.T) {
	src := filepath.Join("raw", "2024", "Ficha 0 03 Marzo 2024.xlsx")
	q := &Quality{}
	out, err := TransformAccidents(accidentGrid(t,
		baseAccident("5", "Colisión A"),
		baseAccident("5", "Atropello B"),
	), src, q)
	require.NoError(t, err)

	// same shape as a single accident: the second row is not folded in
	require.Len(t, out.Rows, 6)
	for _, r := range out.Rows {
		assert.Equal(t, "ACC-202403-005", r[ColAccidentID])
		assert.Equal(t, "Colisión A", r[ColDescription])
	}
	assert.Equal(t, 1, q.Count(ObsDuplicateID))
	assert.Equal(t, 0, q.Count(ObsDuplicate))
}

func TestTransformAccidents_ColumnSwap(t *testing.T) {
	row := baseAccident("5", "")
	row[ColAccidentType] = "Vehículo pierde el control y sale de la calzada por el costado derecho"
	q := &Quality{}
	out, err := TransformAccidents(accidentGrid(t, row), "03 Marzo 2024.xlsx", q)
	require.NoError(t, err)
	require.NotEmpty(t, out.Rows)
	assert.Equal(t, "Vehículo pierde el control y sale de la calzada por el costado derecho", out.Rows[0][ColDescription])
	assert.Equal(t, "", out.Rows[0][ColAccidentType])
	assert.Equal(t, 1, q.Count(ObsColumnSwap))
}

func TestTransformAccidents_SchemaNotFound(t *testing.T) {
	_, err := TransformAccidents(Grid{{"otra planilla"}, {"1", "2"}}, "x.xlsx", nil)
	var schemaErr *SchemaNotFoundError
	require.ErrorAs(t, err, &schemaErr)
}
