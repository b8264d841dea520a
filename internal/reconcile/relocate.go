// Package reconcile re-attaches persisted highlights to freshly rendered page text.
//
// Matching is content based: a highlight is located by the run whose text contains the
// captured text. Offsets recorded at selection time are not used, since run boundaries
// change with zoom, scale and the layout engine. Results must not be cached across renders.
package reconcile

import (
	"errors"
	"strings"

	"docmark/internal/model"
)

// ErrNotFound means no run on the page contains the anchor text. Callers leave the
// anchor unhighlighted for this render pass.
var ErrNotFound = errors.New("anchor text not found on page")

// Run is one positioned text run as produced by the renderer, in render order.
type Run struct {
	Text   string  `json:"text"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Anchor is the part of a highlight needed to locate it.
type Anchor struct {
	Text       string
	Page       int
	Occurrence int
}

// AnchorOf extracts the locating fields of h.
func AnchorOf(h model.Highlight) Anchor {
	return Anchor{Text: h.Text, Page: h.Page, Occurrence: h.Occurrence}
}

// RunHandle identifies the matched run on a page.
type RunHandle struct {
	Page  int `json:"page"`
	Index int `json:"index"`
	Run   Run `json:"run"`
}

// Relocate scans runs in render order and returns the first run containing a.Text.
// When a.Occurrence is n > 0 the n-th (0-based) matching run is preferred; with fewer
// matches the first one is used.
func Relocate(a Anchor, runs []Run) (RunHandle, error) {
	needle := strings.TrimSpace(a.Text)
	if needle == "" {
		return RunHandle{}, ErrNotFound
	}

	first, seen := -1, 0
	for i, r := range runs {
		if !strings.Contains(r.Text, needle) {
			continue
		}
		if first < 0 {
			first = i
		}
		if seen == a.Occurrence {
			return RunHandle{Page: a.Page, Index: i, Run: r}, nil
		}
		seen++
	}
	if first < 0 {
		return RunHandle{}, ErrNotFound
	}
	return RunHandle{Page: a.Page, Index: first, Run: runs[first]}, nil
}

// OccurrenceOf returns the ordinal of the run at index among the runs containing text,
// for persisting alongside a new selection. It returns 0 when the run does not match.
func OccurrenceOf(runs []Run, text string, index int) int {
	needle := strings.TrimSpace(text)
	if needle == "" || index < 0 || index >= len(runs) || !strings.Contains(runs[index].Text, needle) {
		return 0
	}
	n := 0
	for i := 0; i < index; i++ {
		if strings.Contains(runs[i].Text, needle) {
			n++
		}
	}
	return n
}
