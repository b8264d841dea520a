package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docmark/internal/model"
)

func TestSession_Reconcile(t *testing.T) {
	s := NewSession("doc-1", []model.Highlight{
		{ID: "h1", Text: "world", Page: 1, Color: model.ColorBlue},
		{ID: "h2", Text: "missing", Page: 1, Color: model.ColorYellow},
		{ID: "h3", Text: "world", Page: 2, Color: model.ColorPink},
	})

	got := s.Reconcile(1, runsOf("Hello ", "world", " today"))

	require.Len(t, got, 2)
	assert.Equal(t, "h1", got[0].HighlightID)
	assert.True(t, got[0].Found)
	assert.Equal(t, 1, got[0].Handle.Index)
	assert.Equal(t, model.ColorBlue, got[0].Color)

	assert.Equal(t, "h2", got[1].HighlightID)
	assert.False(t, got[1].Found)
	assert.Nil(t, got[1].Handle)

	// A re-render with different run boundaries is matched again from scratch.
	got = s.Reconcile(1, runsOf("Hello world today"))
	require.Len(t, got, 2)
	assert.True(t, got[0].Found)
	assert.Equal(t, 0, got[0].Handle.Index)
}

func TestSession_Reconcile_EmptyPage(t *testing.T) {
	s := NewSession("doc-1", nil)
	got := s.Reconcile(4, runsOf("anything"))
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSession_Selection(t *testing.T) {
	s := NewSession("doc-1", nil)
	_, ok := s.Selection()
	assert.False(t, ok)

	runs := runsOf("the cat", "the mat")
	sel := s.Select("the", 2, 0, 3, runs, 1)
	assert.Equal(t, 1, sel.Occurrence)

	got, ok := s.Selection()
	require.True(t, ok)
	assert.Equal(t, sel, got)

	s.Added(model.Highlight{ID: "h1", Text: "the", Page: 2, Occurrence: sel.Occurrence})
	_, ok = s.Selection()
	assert.False(t, ok, "adding a highlight consumes the selection")
	assert.Len(t, s.Highlights(), 1)

	s.Select("cat", 2, 4, 7, runs, 0)
	s.ClearSelection()
	_, ok = s.Selection()
	assert.False(t, ok)
}

func TestSession_Updated(t *testing.T) {
	s := NewSession("doc-1", []model.Highlight{{ID: "h1", Color: model.ColorYellow, Comment: "a"}})

	assert.True(t, s.Updated(model.Highlight{ID: "h1", Color: model.ColorGreen, Comment: "a"}))
	assert.Equal(t, model.ColorGreen, s.Highlights()[0].Color)

	assert.False(t, s.Updated(model.Highlight{ID: "nope"}))
}

func TestSession_RemoveOptimistic(t *testing.T) {
	initial := []model.Highlight{{ID: "h1"}, {ID: "h2"}, {ID: "h3"}}
	s := NewSession("doc-1", initial)

	rollback := s.RemoveOptimistic("h2")
	assert.Equal(t, []string{"h1", "h3"}, ids(s.Highlights()))

	rollback()
	assert.Equal(t, []string{"h1", "h2", "h3"}, ids(s.Highlights()))

	s.RemoveOptimistic("unknown")
	assert.Equal(t, []string{"h1", "h2", "h3"}, ids(s.Highlights()))
}

func TestSession_RemoveRollbackKeepsLaterChanges(t *testing.T) {
	t.Run("add after remove", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1"}})

		rollback := s.RemoveOptimistic("h1")
		s.Added(model.Highlight{ID: "h2"})
		rollback()

		assert.Equal(t, []string{"h1", "h2"}, ids(s.Highlights()))
	})

	t.Run("update after remove", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1"}, {ID: "h2", Comment: "old"}})

		rollback := s.RemoveOptimistic("h1")
		require.True(t, s.Updated(model.Highlight{ID: "h2", Comment: "new"}))
		rollback()

		got := s.Highlights()
		assert.Equal(t, []string{"h1", "h2"}, ids(got))
		assert.Equal(t, "new", got[1].Comment)
	})

	t.Run("successor gone falls back to seq", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1", Seq: 1}, {ID: "h2", Seq: 2}, {ID: "h3", Seq: 3}})

		rollback := s.RemoveOptimistic("h2")
		s.RemoveOptimistic("h3")
		s.Added(model.Highlight{ID: "h4", Seq: 4})
		rollback()

		assert.Equal(t, []string{"h1", "h2", "h4"}, ids(s.Highlights()))
	})

	t.Run("already restored", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1"}})

		rollback := s.RemoveOptimistic("h1")
		s.Load([]model.Highlight{{ID: "h1"}})
		rollback()

		assert.Equal(t, []string{"h1"}, ids(s.Highlights()))
	})
}

func TestSession_AddOptimistic(t *testing.T) {
	s := NewSession("doc-1", []model.Highlight{{ID: "h1"}})

	rollback := s.AddOptimistic(model.Highlight{ID: "tmp"})
	assert.Equal(t, []string{"h1", "tmp"}, ids(s.Highlights()))

	s.Added(model.Highlight{ID: "h2"})
	rollback()
	assert.Equal(t, []string{"h1", "h2"}, ids(s.Highlights()))
}

func TestSession_UpdateOptimistic(t *testing.T) {
	t.Run("rollback restores previous copy", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1", Color: model.ColorYellow}})

		rollback, ok := s.UpdateOptimistic(model.Highlight{ID: "h1", Color: model.ColorPink})
		require.True(t, ok)
		assert.Equal(t, model.ColorPink, s.Highlights()[0].Color)

		rollback()
		assert.Equal(t, model.ColorYellow, s.Highlights()[0].Color)
	})

	t.Run("later confirmed update wins", func(t *testing.T) {
		s := NewSession("doc-1", []model.Highlight{{ID: "h1", Color: model.ColorYellow}})

		rollback, _ := s.UpdateOptimistic(model.Highlight{ID: "h1", Color: model.ColorPink})
		s.Updated(model.Highlight{ID: "h1", Color: model.ColorBlue})
		rollback()
		assert.Equal(t, model.ColorBlue, s.Highlights()[0].Color)
	})

	t.Run("unknown highlight", func(t *testing.T) {
		s := NewSession("doc-1", nil)

		rollback, ok := s.UpdateOptimistic(model.Highlight{ID: "nope"})
		assert.False(t, ok)
		rollback()
		assert.Empty(t, s.Highlights())
	})
}

func TestSession_LoadCopies(t *testing.T) {
	hs := []model.Highlight{{ID: "h1"}}
	s := NewSession("doc-1", hs)
	hs[0].ID = "mutated"

	assert.Equal(t, "h1", s.Highlights()[0].ID)
	assert.Equal(t, "doc-1", s.DocumentID())
}

func ids(hs []model.Highlight) []string {
	out := make([]string, len(hs))
	for i, h := range hs {
		out[i] = h.ID
	}
	return out
}
