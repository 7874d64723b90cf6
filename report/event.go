// Package report turns the message stream of a warehouse run into live
// progress lines and one executive summary.
package report

// Event is one typed message emitted during a run.
type Event interface {
	event()
}

// StageStarted opens a pipeline stage. It ends any capture block.
type StageStarted struct {
	Name string
}

// BlockStarted opens a capture block. Until the next block or stage only
// Detail lines are kept, and only up to Limit of them (0 means the
// aggregator's limit for Title).
type BlockStarted struct {
	Title string
	Limit int
}

// Detail is one line of a rejection detail ("- File:", "- Record:", "Error:").
type Detail struct {
	Text string
}

// FileRejected marks a source file that was not fully loaded.
type FileRejected struct {
	Category string
	File     string
	Reason   string
}

// Info is a pass-through line.
type Info struct {
	Text string
}

// Warning is a pass-through line shown with a marker.
type Warning struct {
	Text string
}

// Noise is technical chatter that is never shown.
type Noise struct {
	Text string
}

// Progress moves the coarse progress indicator.
type Progress struct {
	Completed int
	Total     int
}

func (StageStarted) event() {}
func (BlockStarted) event() {}
func (Detail) event()       {}
func (FileRejected) event() {}
func (Info) event()         {}
func (Warning) event()      {}
func (Noise) event()        {}
func (Progress) event()     {}
