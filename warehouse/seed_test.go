package warehouse

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeason(t *testing.T) {
	cases := map[string]string{
		"2024-03-20": "Verano",
		"2024-03-21": "Otoño",
		"2024-06-20": "Otoño",
		"2024-06-21": "Invierno",
		"2024-09-21": "Primavera",
		"2024-12-20": "Primavera",
		"2024-12-21": "Verano",
		"2024-01-15": "Verano",
	}
	for day, want := range cases {
		d, err := time.Parse(time.DateOnly, day)
		require.NoError(t, err)
		assert.Equal(t, want, season(d), day)
	}
}

func TestDateTimeRow(t *testing.T) {
	row := dateTimeRow(7, time.Date(2024, 3, 4, 13, 5, 0, 0, time.UTC))
	assert.Equal(t, DimDateTime{
		IDDateTime: 7,
		DateTime:   "2024-03-04 13:05:00",
		Date:       "2024-03-04",
		Year:       2024,
		Month:      3,
		Day:        4,
		Hour:       13,
		Minute:     5,
		MonthName:  "Marzo",
		WeekDay:    "Lunes",
		WeekNumber: 10,
		Period:     "Verano",
	}, row)
}

func TestSeed_IsRepeatable(t *testing.T) {
	cfg := testConfig(t)
	r := newSeededRunner(t, cfg)

	assert.EqualValues(t, 2*24*60, count(t, r.db, &DimDateTime{}))
	assert.EqualValues(t, 601, count(t, r.db, &DimKm{}))
	lanes := count(t, r.db, &DimLane{})
	causes := count(t, r.db, &DimProbableCause{})
	assert.EqualValues(t, 7, lanes)
	assert.EqualValues(t, 15+10*3, causes)

	res, err := Seed(context.Background(), r.db, cfg)
	require.NoError(t, err)
	assert.Zero(t, res.DateTimes)
	assert.Zero(t, res.Km)
	assert.Equal(t, lanes, count(t, r.db, &DimLane{}))
	assert.Equal(t, causes, count(t, r.db, &DimProbableCause{}))

	var lane DimLane
	require.NoError(t, r.db.First(&lane, "LaneValue = ?", 0).Error)
	assert.Equal(t, 1, lane.IDLane)
}

func TestSeedKm_LabelsPointsOfInterest(t *testing.T) {
	cfg := testConfig(t)
	r := newSeededRunner(t, cfg)

	var labelled []DimKm
	require.NoError(t, r.db.Where("Place IS NOT NULL").Order("Km").Find(&labelled).Error)
	require.NotEmpty(t, labelled)
	assert.InDelta(t, 473.6, labelled[0].Km, 1e-9)
	assert.Equal(t, "Inicio Tramo", *labelled[0].Element)

	var km DimKm
	require.NoError(t, r.db.First(&km, "Km = ?", 473.615).Error)
	require.NotNil(t, km.Place)
	var next DimKm
	require.NoError(t, r.db.First(&next, "Km = ?", 473.616).Error)
	assert.Nil(t, next.Place)
}
