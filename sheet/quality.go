package sheet

import "fmt"

// Observation kinds recorded while transforming a sheet.
const (
	ObsMissingSequence  = "missing-sequence"
	ObsDuplicate        = "duplicate"
	ObsFallbackPeriod   = "fallback-period"
	ObsColumnSwap       = "column-swap"
	ObsInvalidDate      = "invalid-date"
	ObsEmptyDescription = "empty-description"
	ObsDuplicateID      = "duplicate-id"
)

// Observation is a data quality note. It is reported, never persisted.
type Observation struct {
	Kind    string
	Source  string
	Count   int
	Message string
}

func (o Observation) String() string {
	if o.Source == "" {
		return o.Message
	}
	return fmt.Sprintf("%s: %s", o.Source, o.Message)
}

// Quality accumulates observations across pipeline stages. A nil *Quality
// discards everything.
type Quality struct {
	Observations []Observation
}

func (q *Quality) Note(kind, source string, count int, format string, args ...any) {
	if q == nil {
		return
	}
	q.Observations = append(q.Observations, Observation{
		Kind:    kind,
		Source:  source,
		Count:   count,
		Message: fmt.Sprintf(format, args...),
	})
}

// Count sums the counts of all observations of kind.
func (q *Quality) Count(kind string) int {
	if q == nil {
		return 0
	}
	n := 0
	for _, o := range q.Observations {
		if o.Kind == kind {
			n += o.Count
		}
	}
	return n
}
