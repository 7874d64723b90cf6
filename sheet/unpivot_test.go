package sheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeepValue(t *testing.T) {
	cases := map[string]bool{
		"":      false,
		"  ":    false,
		"0":     false,
		"0.0":   false,
		"false": false,
		"FALSE": false,
		"1":     true,
		"2.5":   true,
		"3-5":   true,
		"0-50":  true,
		"x":     true,
		"TRUE":  true,
	}
	for in, want := range cases {
		assert.Equalf(t, want, KeepValue(in), "KeepValue(%q)", in)
	}
}

func TestUnpivot_PlaceholderWhenGroupEmpty(t *testing.T) {
	in := Table{
		Columns: []string{"id", "G - a", "G - b"},
		Rows: []Row{
			{"id": "1", "G - a": "0", "G - b": "FALSE"},
			{"id": "2", "G - a": "3", "G - b": ""},
		},
	}
	got := Unpivot(in, "id", Group{Prefix: "G", Attribute: "attr", Value: "val"})
	want := []Row{
		{"id": "1", "attr": "", "val": ""},
		{"id": "2", "attr": "a", "val": "3"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestUnpivot_SplitsTwoAxes(t *testing.T) {
	in := Table{
		Columns: []string{"id", "C - Graves - Peatones", "C - Leves - Conductores"},
		Rows:    []Row{{"id": "1", "C - Graves - Peatones": "2", "C - Leves - Conductores": "1"}},
	}
	got := Unpivot(in, "id", Group{Prefix: "C", Axes: []string{"sev", "role"}, Value: "n"})
	want := []Row{
		{"id": "1", "sev": "Graves", "role": "Peatones", "n": "2"},
		{"id": "1", "sev": "Leves", "role": "Conductores", "n": "1"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}

func TestRecombine_CartesianProductWithSentinel(t *testing.T) {
	wide := Table{
		Columns: []string{"id", "ctx", "A - x", "A - y", "B - p", "B - q", "B - r", "C - Graves - Peatones"},
		Rows: []Row{{
			"id": "K", "ctx": "same",
			"A - x": "1", "A - y": "1",
			"B - p": "1", "B - q": "2", "B - r": "3",
			"C - Graves - Peatones": "0",
		}},
	}
	base := wide.Select("id", []string{"id", "ctx"})
	a := Unpivot(wide, "id", Group{Prefix: "A", Attribute: "a", Value: "av"})
	b := Unpivot(wide, "id", Group{Prefix: "B", Attribute: "b", Value: "bv"})
	c := Unpivot(wide, "id", Group{Prefix: "C", Axes: []string{"cons", "aff"}, Value: "n"})

	out := Recombine(base, "id", a, b, c)
	out = Impute(out, "cons", map[string]string{"cons": NoConsequence, "aff": NoAffected, "n": "0"})

	require.Len(t, out.Rows, 6)
	pairs := map[string]bool{}
	for _, r := range out.Rows {
		assert.Equal(t, "same", r["ctx"])
		assert.Equal(t, NoConsequence, r["cons"])
		assert.Equal(t, NoAffected, r["aff"])
		assert.Equal(t, "0", r["n"])
		pairs[r["a"]+"/"+r["b"]] = true
	}
	assert.Len(t, pairs, 6)
	assert.Equal(t, []string{"id", "ctx", "a", "av", "b", "bv", "cons", "aff", "n"}, out.Columns)
}

func TestRecombine_KeepsBaseRowWithoutMatches(t *testing.T) {
	base := Table{Columns: []string{"id"}, Rows: []Row{{"id": "1"}}}
	long := Table{Columns: []string{"id", "v"}, Rows: []Row{{"id": "2", "v": "x"}}}
	out := Recombine(base, "id", long)
	require.Len(t, out.Rows, 1)
	assert.Equal(t, Row{"id": "1", "v": ""}, out.Rows[0])
}

func TestExplode(t *testing.T) {
	in := Table{
		Columns: []string{"id", "codes"},
		Rows: []Row{
			{"id": "1", "codes": "2-5"},
			{"id": "2", "codes": "FALSE"},
			{"id": "3", "codes": ""},
			{"id": "4", "codes": " 7 - "},
		},
	}
	got := Explode(in, "codes", "-")
	want := []Row{
		{"id": "1", "codes": "2"},
		{"id": "1", "codes": "5"},
		{"id": "2", "codes": "0"},
		{"id": "3", "codes": ""},
		{"id": "4", "codes": "7"},
	}
	if diff := cmp.Diff(want, got.Rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
}
