package report

import (
	"fmt"
	"sort"
	"sync"
)

// ProgressFunc receives live lines and coarse progress. completed and total
// are -1 when the call carries only a message, and message is "" when it
// carries only progress.
type ProgressFunc func(message string, completed, total int)

// DefaultLimit caps the details kept per block when no limit is configured.
const DefaultLimit = 20

// Block is the buffered content of one capture block.
type Block struct {
	Title    string
	Lines    []string
	Overflow int
}

// Report is the executive summary of a run.
type Report struct {
	Rejected []string
	Blocks   []Block
}

// Empty reports whether there is nothing to show.
func (r Report) Empty() bool {
	if len(r.Rejected) > 0 {
		return false
	}
	for _, b := range r.Blocks {
		if len(b.Lines) > 0 || b.Overflow > 0 {
			return false
		}
	}
	return true
}

// Lines renders the report: rejected files sorted, then each non-empty block
// in arrival order. It returns nil for an empty report.
func (r Report) Lines() []string {
	if r.Empty() {
		return nil
	}
	var out []string
	out = append(out, "=== Executive report ===")
	if len(r.Rejected) > 0 {
		out = append(out, fmt.Sprintf("Rejected files (%d):", len(r.Rejected)))
		for _, f := range r.Rejected {
			out = append(out, "  "+f)
		}
	}
	for _, b := range r.Blocks {
		if len(b.Lines) == 0 && b.Overflow == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("--- %s ---", b.Title))
		out = append(out, b.Lines...)
		if b.Overflow > 0 {
			out = append(out, fmt.Sprintf("... and %d more", b.Overflow))
		}
	}
	return out
}

// reducer is the state machine shared by Aggregator and Reduce.
type reducer struct {
	limits    map[string]int
	rejected  map[string]struct{}
	blocks    []Block
	limit     int
	recording bool
}

func newReducer(limits map[string]int) *reducer {
	return &reducer{limits: limits, rejected: make(map[string]struct{})}
}

// apply folds ev into the state and returns the live line it produces, if any.
func (s *reducer) apply(ev Event) (string, bool) {
	switch e := ev.(type) {
	case Noise, Progress:
		return "", false
	case StageStarted:
		s.recording = false
		return ">>> " + e.Name, true
	case BlockStarted:
		s.recording = true
		s.limit = e.Limit
		if s.limit <= 0 {
			s.limit = s.limits[e.Title]
		}
		if s.limit <= 0 {
			s.limit = DefaultLimit
		}
		s.blocks = append(s.blocks, Block{Title: e.Title})
		return "", false
	case FileRejected:
		s.rejected[e.File] = struct{}{}
		return "", false
	case Detail:
		if !s.recording {
			return "    " + e.Text, true
		}
		b := &s.blocks[len(s.blocks)-1]
		if len(b.Lines) < s.limit {
			b.Lines = append(b.Lines, e.Text)
		} else {
			b.Overflow++
		}
		return "", false
	case Warning:
		if s.recording {
			return "", false
		}
		return "  WARNING: " + e.Text, true
	case Info:
		if s.recording {
			return "", false
		}
		return "  " + e.Text, true
	default:
		return "", false
	}
}

func (s *reducer) report() Report {
	r := Report{Rejected: make([]string, 0, len(s.rejected))}
	for f := range s.rejected {
		r.Rejected = append(r.Rejected, f)
	}
	sort.Strings(r.Rejected)
	r.Blocks = make([]Block, len(s.blocks))
	for i, b := range s.blocks {
		r.Blocks[i] = Block{Title: b.Title, Lines: append([]string(nil), b.Lines...), Overflow: b.Overflow}
	}
	return r
}

// Reduce folds a complete event sequence into its report.
func Reduce(events []Event, limits map[string]int) Report {
	s := newReducer(limits)
	for _, ev := range events {
		s.apply(ev)
	}
	return s.report()
}

// Aggregator is a live sink: it forwards pass-through lines and progress to
// the wrapped callback as they arrive and keeps the state for the final
// report. It is safe for concurrent use.
type Aggregator struct {
	mu    sync.Mutex
	out   ProgressFunc
	state *reducer
}

// New wraps out. limits caps the details kept per block title.
func New(out ProgressFunc, limits map[string]int) *Aggregator {
	if out == nil {
		out = func(string, int, int) {}
	}
	return &Aggregator{out: out, state: newReducer(limits)}
}

// Emit records ev and forwards whatever it shows live.
func (a *Aggregator) Emit(ev Event) {
	a.mu.Lock()
	line, show := a.state.apply(ev)
	a.mu.Unlock()
	if p, ok := ev.(Progress); ok {
		a.out("", p.Completed, p.Total)
		return
	}
	if show {
		a.out(line, -1, -1)
	}
}

// Line classifies a free-text line and emits it.
func (a *Aggregator) Line(text string) {
	a.Emit(Classify(text))
}

func (a *Aggregator) Infof(format string, args ...any) {
	a.Emit(Info{Text: fmt.Sprintf(format, args...)})
}

func (a *Aggregator) Warnf(format string, args ...any) {
	a.Emit(Warning{Text: fmt.Sprintf(format, args...)})
}

// Report returns the summary built so far.
func (a *Aggregator) Report() Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state.report()
}

// Flush sends the final report through the wrapped callback, one line per
// call. Nothing is sent when the report is empty.
func (a *Aggregator) Flush() Report {
	r := a.Report()
	for _, l := range r.Lines() {
		a.out(l, -1, -1)
	}
	return r
}
