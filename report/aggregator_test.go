package report

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type captured struct {
	mu       sync.Mutex
	lines    []string
	progress [][2]int
}

func (c *captured) fn(msg string, completed, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if msg != "" {
		c.lines = append(c.lines, msg)
	}
	if completed >= 0 {
		c.progress = append(c.progress, [2]int{completed, total})
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		line string
		want Event
	}{
		{"Connecting to database x.db", Noise{Text: "Connecting to database x.db"}},
		{"   ", Noise{Text: "   "}},
		{"--- Load error report (accidents) ---", BlockStarted{Title: "Load error report (accidents)"}},
		{">>> Loading traffic", StageStarted{Name: "Loading traffic"}},
		{"  - File: a.csv", Detail{Text: "- File: a.csv"}},
		{"- Record: ACC-202403-001", Detail{Text: "- Record: ACC-202403-001"}},
		{"Error: bad date", Detail{Text: "Error: bad date"}},
		{"WARNING: 2 files not ledgered", Warning{Text: "WARNING: 2 files not ledgered"}},
		{"Loaded 3 files", Info{Text: "Loaded 3 files"}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.line), tc.line)
	}
}

func TestReduce_ReportOrder(t *testing.T) {
	events := []Event{
		StageStarted{Name: "facts"},
		FileRejected{Category: "traffic", File: "z.csv", Reason: "rollback"},
		BlockStarted{Title: "Load error report (traffic)"},
		Detail{Text: "- File: z.csv"},
		Info{Text: "dropped while recording"},
		Detail{Text: "Error: unknown plaza"},
		FileRejected{Category: "accidents", File: "a.csv"},
		FileRejected{Category: "accidents", File: "a.csv"},
		StageStarted{Name: "post-load"},
		Detail{Text: "- Record: shown live"},
	}
	r := Reduce(events, nil)
	assert.Equal(t, []string{"a.csv", "z.csv"}, r.Rejected)

	want := []string{
		"=== Executive report ===",
		"Rejected files (2):",
		"  a.csv",
		"  z.csv",
		"--- Load error report (traffic) ---",
		"- File: z.csv",
		"Error: unknown plaza",
	}
	if diff := cmp.Diff(want, r.Lines()); diff != "" {
		t.Fatalf("unexpected report (-want +got):\n%s", diff)
	}
}

func TestReduce_EmptyReport(t *testing.T) {
	r := Reduce([]Event{StageStarted{Name: "x"}, Info{Text: "ok"}, BlockStarted{Title: "nothing"}}, nil)
	assert.True(t, r.Empty())
	assert.Nil(t, r.Lines())
}

func TestReduce_BlockLimit(t *testing.T) {
	events := []Event{BlockStarted{Title: "Load error report (vehicles)"}}
	for i := 0; i < 13; i++ {
		events = append(events, Detail{Text: "Error: x"})
	}
	r := Reduce(events, map[string]int{"Load error report (vehicles)": 10})
	require.Len(t, r.Blocks, 1)
	assert.Len(t, r.Blocks[0].Lines, 10)
	assert.Equal(t, 3, r.Blocks[0].Overflow)
	assert.Equal(t, "... and 3 more", r.Lines()[len(r.Lines())-1])

	r = Reduce([]Event{BlockStarted{Title: "t", Limit: 1}, Detail{Text: "Error: a"}, Detail{Text: "Error: b"}}, nil)
	assert.Equal(t, []string{"Error: a"}, r.Blocks[0].Lines)
}

func TestAggregator_LiveAndFlush(t *testing.T) {
	c := &captured{}
	agg := New(c.fn, nil)

	agg.Line(">>> Loading accidents")
	agg.Line("Building lookup maps")
	agg.Infof("Loaded %s: %d rows", "a.csv", 4)
	agg.Emit(Progress{Completed: 1, Total: 5})
	agg.Emit(FileRejected{File: "b.csv"})
	agg.Line("--- Load error report (accidents) ---")
	agg.Line("- File: b.csv")
	agg.Line("not a detail")

	assert.Equal(t, []string{">>> Loading accidents", "  Loaded a.csv: 4 rows"}, c.lines)
	assert.Equal(t, [][2]int{{1, 5}}, c.progress)

	r := agg.Flush()
	assert.Equal(t, []string{"b.csv"}, r.Rejected)
	assert.Equal(t, []string{
		">>> Loading accidents",
		"  Loaded a.csv: 4 rows",
		"=== Executive report ===",
		"Rejected files (1):",
		"  b.csv",
		"--- Load error report (accidents) ---",
		"- File: b.csv",
	}, c.lines)
}

func TestAggregator_ConcurrentEmit(t *testing.T) {
	c := &captured{}
	agg := New(c.fn, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			agg.Emit(FileRejected{File: "same.csv"})
			agg.Infof("tick")
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"same.csv"}, agg.Report().Rejected)
	assert.Len(t, c.lines, 8)
}
