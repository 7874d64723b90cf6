package report

import (
	"regexp"
	"strings"
)

// NoisePhrases mark diagnostic lines that are dropped entirely.
var NoisePhrases = []string{
	"Connecting to database",
	"Building lookup maps",
	"Bridge maps",
	"Validation maps",
	"Reading ledger",
	"Searching for clean files",
	"Inserting rows",
	"Commit",
	"Tables created",
	"PRAGMA foreign_keys",
	"DEBUG:",
	"Elapsed:",
	"Finished:",
	"Connection closed",
	"Found 0 files",
	"Optimizing",
	"Clean files read",
}

// DetailMarkers are the only line prefixes kept inside a capture block.
var DetailMarkers = []string{"- File:", "- Record:", "Error:"}

var (
	blockRe = regexp.MustCompile(`^-{3}\s*(.+?)\s*-{3}$`)
	stageRe = regexp.MustCompile(`^>{3}\s*(.+)$`)
)

// Classify maps a free-text line from a collaborator onto an Event.
// Typed producers emit events directly; this is for lines that arrive as
// text.
func Classify(line string) Event {
	text := strings.TrimSpace(line)
	if text == "" {
		return Noise{Text: line}
	}
	for _, p := range NoisePhrases {
		if strings.Contains(text, p) {
			return Noise{Text: text}
		}
	}
	if m := blockRe.FindStringSubmatch(text); m != nil {
		return BlockStarted{Title: m[1]}
	}
	if m := stageRe.FindStringSubmatch(text); m != nil {
		return StageStarted{Name: m[1]}
	}
	if IsDetail(text) {
		return Detail{Text: text}
	}
	if strings.Contains(text, "WARNING") || strings.HasPrefix(strings.ToLower(text), "warning") {
		return Warning{Text: text}
	}
	return Info{Text: text}
}

// IsDetail reports whether text starts with one of DetailMarkers.
func IsDetail(text string) bool {
	text = strings.TrimSpace(text)
	for _, m := range DetailMarkers {
		if strings.HasPrefix(text, m) {
			return true
		}
	}
	return false
}
