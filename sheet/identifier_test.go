package sheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodFromPath(t *testing.T) {
	cases := []struct {
		path string
		want Period
	}{
		{path: filepath.Join("raw", "2024", "Ficha 0 03 Marzo 2024.xlsx"), want: Period{Year: 2024, Month: 3}},
		{path: filepath.Join("raw", "trafico 2023-11.xlsx"), want: Period{Year: 2023, Month: 11}},
		{path: filepath.Join("raw", "2022", "sin fecha.xlsx"), want: Period{Year: 2022, Fallback: true}},
		{path: filepath.Join("raw", "2021", "sub", "informe.xlsx"), want: Period{Year: 2021, Fallback: true}},
		{path: filepath.Join("raw", "informe.xlsx"), want: Period{Fallback: true}},
		{path: filepath.Join("raw", "2020", "13 Foo 2024.xlsx"), want: Period{Year: 2020, Fallback: true}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, PeriodFromPath(tc.path), tc.path)
	}
	assert.Equal(t, "202403", Period{Year: 2024, Month: 3}.String())
	assert.Equal(t, "202200", Period{Year: 2022, Fallback: true}.String())
	assert.Equal(t, "000000", Period{Fallback: true}.String())
}

func TestAccidentID_ZeroPadded(t *testing.T) {
	p := Period{Year: 2024, Month: 3}
	assert.Equal(t, "ACC-202403-001", AccidentID(p, 1))
	assert.Equal(t, "ACC-202403-042", AccidentID(p, 42))
	assert.Equal(t, "ACC-202403-1234", AccidentID(p, 1234))
	assert.Equal(t, "ACC-202200-007", AccidentID(Period{Year: 2022, Fallback: true}, 7))
	assert.Equal(t, "ACC-000000-007", AccidentID(Period{Fallback: true}, 7))
}

func TestAssignIDs_Stable(t *testing.T) {
	in := Table{
		Columns: []string{"seq"},
		Rows:    []Row{{"seq": "3"}, {"seq": "1.0"}, {"seq": "12"}},
	}
	p := Period{Year: 2023, Month: 7}
	first := AssignIDs(in, p, "seq", "id")
	second := AssignIDs(in, p, "seq", "id")

	var ids []string
	for i := range first.Rows {
		ids = append(ids, first.Rows[i]["id"])
		assert.Equal(t, first.Rows[i]["id"], second.Rows[i]["id"])
	}
	assert.Equal(t, []string{"ACC-202307-003", "ACC-202307-001", "ACC-202307-012"}, ids)
	assert.Equal(t, []string{"id", "seq"}, first.Columns)
	assert.NotContains(t, in.Rows[0], "id")
}

func TestFilterSequenceAndDedup(t *testing.T) {
	in := Table{
		Columns: []string{"seq", "desc"},
		Rows: []Row{
			{"seq": "1", "desc": "choque"},
			{"seq": "1", "desc": "choque"},
			{"seq": "1", "desc": "otro"},
			{"seq": "x", "desc": "basura"},
			{"seq": "0", "desc": "cero"},
			{"seq": "-2", "desc": "negativo"},
			{"seq": "", "desc": ""},
			{"seq": "2", "desc": "volcamiento"},
		},
	}
	q := &Quality{}
	out := FilterSequence(in, "seq", "f.xlsx", q)
	require.Equal(t, 4, out.Len())
	assert.Equal(t, 4, q.Count(ObsMissingSequence))

	out = Dedup(out, []string{"seq", "desc"}, "f.xlsx", q)
	require.Equal(t, 3, out.Len())
	assert.Equal(t, 1, q.Count(ObsDuplicate))
	assert.Equal(t, "choque", out.Rows[0]["desc"])
	assert.Equal(t, "otro", out.Rows[1]["desc"])
}

func TestDistinctIDs_KeepsFirst(t *testing.T) {
	in := Table{
		Columns: []string{"id", "desc"},
		Rows: []Row{
			{"id": "ACC-202403-001", "desc": "choque"},
			{"id": "ACC-202403-001", "desc": "otro"},
			{"id": "ACC-202403-002", "desc": "volcamiento"},
		},
	}
	q := &Quality{}
	out := DistinctIDs(in, "id", "f.xlsx", q)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "choque", out.Rows[0]["desc"])
	assert.Equal(t, "volcamiento", out.Rows[1]["desc"])
	assert.Equal(t, 1, q.Count(ObsDuplicateID))
}

func TestParseSequence(t *testing.T) {
	for in, want := range map[string]int{"7": 7, " 8 ": 8, "9.0": 9} {
		got, ok := ParseSequence(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", "0", "-1", "1.5", "abc", "NaN"} {
		_, ok := ParseSequence(in)
		assert.False(t, ok, in)
	}
}
