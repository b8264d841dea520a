package reconcile

import (
	"sync"

	"docmark/internal/model"
)

// Selection is the text the reader has selected but not yet saved.
type Selection struct {
	Text  string
	Page  int
	Start int
	End   int
	// Occurrence is the ordinal of the selected run among runs containing Text.
	Occurrence int
}

// Placement is the outcome of locating one highlight in a render pass.
type Placement struct {
	HighlightID string      `json:"highlight_id"`
	Color       model.Color `json:"color"`
	Found       bool        `json:"found"`
	Handle      *RunHandle  `json:"handle,omitempty"`
}

// Session holds one viewer's state for one document: the highlight list as last known
// and the current selection. It replaces ambient view state so reconciliation can run
// without a rendering environment.
type Session struct {
	mu         sync.Mutex
	documentID string
	highlights []model.Highlight
	selection  *Selection
}

// NewSession starts a session with the persisted highlights of a document.
func NewSession(documentID string, highlights []model.Highlight) *Session {
	s := &Session{documentID: documentID}
	s.Load(highlights)
	return s
}

// DocumentID returns the document the session is bound to.
func (s *Session) DocumentID() string {
	return s.documentID
}

// Load replaces the highlight list, typically after a fetch.
func (s *Session) Load(highlights []model.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = append([]model.Highlight(nil), highlights...)
}

// Highlights returns a copy of the current list in creation order.
func (s *Session) Highlights() []model.Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Highlight(nil), s.highlights...)
}

// Select records a new selection on page, computing its occurrence from the rendered runs
// and the index of the run that holds it.
func (s *Session) Select(text string, page, start, end int, runs []Run, runIndex int) Selection {
	sel := Selection{
		Text:       text,
		Page:       page,
		Start:      start,
		End:        end,
		Occurrence: OccurrenceOf(runs, text, runIndex),
	}
	s.mu.Lock()
	s.selection = &sel
	s.mu.Unlock()
	return sel
}

// Selection returns the pending selection, if any.
func (s *Session) Selection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// ClearSelection drops the pending selection.
func (s *Session) ClearSelection() {
	s.mu.Lock()
	s.selection = nil
	s.mu.Unlock()
}

// Added appends a highlight confirmed by the server and clears the selection.
func (s *Session) Added(h model.Highlight) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.highlights = append(s.highlights, h)
	s.selection = nil
}

// Updated replaces the stored copy of h. It reports false if h is unknown to the session.
func (s *Session) Updated(h model.Highlight) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(h.ID); i >= 0 {
		s.highlights[i] = h
		return true
	}
	return false
}

// AddOptimistic appends h before the server confirms it. The returned rollback removes h
// again and touches nothing else.
func (s *Session) AddOptimistic(h model.Highlight) (rollback func()) {
	s.mu.Lock()
	s.highlights = append(s.highlights, h)
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if i := s.indexOf(h.ID); i >= 0 {
			s.highlights = append(s.highlights[:i], s.highlights[i+1:]...)
		}
	}
}

// UpdateOptimistic replaces the stored copy of h before the server confirms it. It reports
// false, with a no-op rollback, if h is unknown. The rollback restores the previous copy only
// while the optimistic value is still in place, so a later confirmed Updated wins.
func (s *Session) UpdateOptimistic(h model.Highlight) (rollback func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(h.ID)
	if i < 0 {
		return func() {}, false
	}
	prev := s.highlights[i]
	s.highlights[i] = h

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if j := s.indexOf(h.ID); j >= 0 && s.highlights[j] == h {
			s.highlights[j] = prev
		}
	}, true
}

// RemoveOptimistic drops the highlight immediately and returns a function putting it back,
// to be called if the server rejects the removal. The rollback re-inserts only the removed
// highlight at its former position; additions and updates made in between are kept.
func (s *Session) RemoveOptimistic(id string) (rollback func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return func() {}
	}
	removed := s.highlights[i]
	next := ""
	if i+1 < len(s.highlights) {
		next = s.highlights[i+1].ID
	}
	s.highlights = append(s.highlights[:i:i], s.highlights[i+1:]...)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.indexOf(removed.ID) >= 0 {
			return
		}
		at := s.insertionPoint(removed, next)
		s.highlights = append(s.highlights, model.Highlight{})
		copy(s.highlights[at+1:], s.highlights[at:])
		s.highlights[at] = removed
	}
}

// insertionPoint places h before its former successor if that is still present, else by Seq,
// else at the end.
func (s *Session) insertionPoint(h model.Highlight, next string) int {
	if next != "" {
		if i := s.indexOf(next); i >= 0 {
			return i
		}
	}
	if h.Seq > 0 {
		for i, other := range s.highlights {
			if other.Seq > h.Seq {
				return i
			}
		}
	}
	return len(s.highlights)
}

func (s *Session) indexOf(id string) int {
	for i := range s.highlights {
		if s.highlights[i].ID == id {
			return i
		}
	}
	return -1
}

// Reconcile locates every highlight of page in runs. It must be called after each render
// of the page. Highlights that cannot be located are reported with Found false.
func (s *Session) Reconcile(page int, runs []Run) []Placement {
	return Place(s.Highlights(), page, runs)
}

// Place locates each highlight of page in runs, in the order of highlights.
func Place(highlights []model.Highlight, page int, runs []Run) []Placement {
	out := make([]Placement, 0)
	for _, h := range highlights {
		if h.Page != page {
			continue
		}
		p := Placement{HighlightID: h.ID, Color: h.Color}
		if handle, err := Relocate(AnchorOf(h), runs); err == nil {
			p.Found = true
			p.Handle = &handle
		}
		out = append(out, p)
	}
	return out
}
