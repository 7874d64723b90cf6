package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vehicleGrid(rows ...[]string) Grid {
	g := Grid{{"FICHA 1"}, {}, {"Concesión"}, {}, {}, {}}
	g = append(g, []string{"Código Accidente", "Tipo Vehículo", "Servicio", "Maniobra", "Consecuencia", "Pista/Vía", "Patente", "Marca"})
	return append(g, rows...)
}

func TestTransformVehicles(t *testing.T) {
	g := vehicleGrid(
		[]string{"Acc 7", "4", "1", "2", "1", "1 y 2", "AB-CD 12", "mitsubichi"},
		[]string{"", "14", "Sin  antecedentes", "", "", "", "S/PPU", "honda"},
		[]string{"", "", "", "", "", "", "", ""},
		[]string{"12", "7", "3", "1", "2", "3", "", "Mercedes Benz"},
	)
	q := &Quality{}
	out, err := TransformVehicles(g, "Ficha 1 05 Mayo 2024.xlsx", q)
	require.NoError(t, err)
	require.Len(t, out.Rows, 4)
	assert.Equal(t, VehicleColumns, out.Columns)

	first := out.Rows[0]
	assert.Equal(t, "ACC-202405-007", first[ColAccidentID])
	assert.Equal(t, "ABCD12", first[ColPlate])
	assert.Equal(t, "MITSUBISHI", first[ColBrand])
	assert.Equal(t, "1", first[ColLane])
	assert.Equal(t, "2", out.Rows[1][ColLane])
	assert.Equal(t, first[ColAccidentID], out.Rows[1][ColAccidentID])

	moto := out.Rows[2]
	assert.Equal(t, "ACC-202405-007", moto[ColAccidentID], "code is forward filled")
	assert.Equal(t, "0", moto[ColService])
	assert.Equal(t, "0", moto[ColLane])
	assert.Equal(t, UnknownVehicle, moto[ColPlate])
	assert.Equal(t, "HONDA", moto[ColBrand])

	truck := out.Rows[3]
	assert.Equal(t, "ACC-202405-012", truck[ColAccidentID])
	assert.Equal(t, UnknownVehicle, truck[ColPlate])
	assert.Equal(t, "MERCEDES-BENZ", truck[ColBrand])
	assert.Empty(t, q.Observations)
}

func TestTransformVehicles_CodeWithoutDigitsUsesOrdinal(t *testing.T) {
	g := vehicleGrid(
		[]string{"A1", "4", "1", "1", "1", "1", "XX11", "KIA"},
		[]string{"sin codigo", "4", "1", "1", "1", "1", "YY22", "KIA"},
	)
	out, err := TransformVehicles(g, "2024-05 vehiculos.xlsx", nil)
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "ACC-202405-001", out.Rows[0][ColAccidentID])
	assert.Equal(t, "ACC-202405-002", out.Rows[1][ColAccidentID])
}

func TestTransformVehicles_MissingHeader(t *testing.T) {
	_, err := TransformVehicles(Grid{{"nada"}}, "x.xlsx", nil)
	var schemaErr *SchemaNotFoundError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, VehicleMarker, schemaErr.Marker)
}
