package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"docmark/internal/model"
	"docmark/internal/repository"
)

// Anchors live in the documents.highlights JSONB object keyed by anchor id. Every structural change
// is a single UPDATE on the owning row so concurrent mutations of one document never lose each other.

// highlightRecord is the stored shape of an anchor inside the JSONB object.
type highlightRecord struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Color      model.Color `json:"color"`
	Comment    string      `json:"comment"`
	Page       int         `json:"page"`
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Occurrence int         `json:"occurrence"`
	Seq        int64       `json:"seq"`
	CreatedAt  time.Time   `json:"created_at"`
}

func toRecord(h *model.Highlight) highlightRecord {
	return highlightRecord{
		ID:         h.ID,
		Text:       h.Text,
		Color:      h.Color,
		Comment:    h.Comment,
		Page:       h.Page,
		Start:      h.Start,
		End:        h.End,
		Occurrence: h.Occurrence,
		Seq:        h.Seq,
		CreatedAt:  h.CreatedAt,
	}
}

func (rec highlightRecord) model() model.Highlight {
	return model.Highlight{
		ID:         rec.ID,
		Text:       rec.Text,
		Color:      rec.Color,
		Comment:    rec.Comment,
		Page:       rec.Page,
		Start:      rec.Start,
		End:        rec.End,
		Occurrence: rec.Occurrence,
		Seq:        rec.Seq,
		CreatedAt:  rec.CreatedAt,
	}
}

func decodeHighlight(raw []byte) (*model.Highlight, error) {
	var rec highlightRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode highlight: %w", err)
	}
	h := rec.model()
	return &h, nil
}

// decodeHighlights turns the stored object into a slice ordered by seq, i.e. creation order.
func decodeHighlights(raw []byte) ([]model.Highlight, error) {
	out := make([]model.Highlight, 0)
	if len(raw) == 0 {
		return out, nil
	}
	var arena map[string]highlightRecord
	if err := json.Unmarshal(raw, &arena); err != nil {
		return nil, fmt.Errorf("decode highlights: %w", err)
	}
	for _, rec := range arena {
		out = append(out, rec.model())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Seq != out[j].Seq {
			return out[i].Seq < out[j].Seq
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// PushHighlight inserts h under its id and stamps it with the next per-document sequence number.
func (r *DocumentPostgres) PushHighlight(ctx context.Context, ownerID, docID string, h *model.Highlight) (*model.Highlight, error) {
	body, err := json.Marshal(toRecord(h))
	if err != nil {
		return nil, fmt.Errorf("encode highlight: %w", err)
	}

	const q = `
		UPDATE documents
		SET highlights = highlights || jsonb_build_object($3::text, $4::jsonb || jsonb_build_object('seq', highlight_seq + 1)),
		    highlight_seq = highlight_seq + 1
		WHERE id = $1 AND owner_id = $2 AND (highlights->$3::text) IS NULL
		RETURNING highlight_seq
	`
	var seq int64
	if err := r.db.QueryRowContext(ctx, q, docID, ownerID, h.ID, body).Scan(&seq); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	out := *h
	out.Seq = seq
	return &out, nil
}

// UpdateHighlight merges the present patch fields into the stored anchor and returns the result.
func (r *DocumentPostgres) UpdateHighlight(ctx context.Context, ownerID, docID, highlightID string, patch repository.HighlightPatch) (*model.Highlight, error) {
	body, err := json.Marshal(patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	const q = `
		UPDATE documents
		SET highlights = jsonb_set(highlights, ARRAY[$3::text], (highlights->$3::text) || $4::jsonb)
		WHERE id = $1 AND owner_id = $2 AND (highlights->$3::text) IS NOT NULL
		RETURNING highlights->$3::text
	`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, docID, ownerID, highlightID, body).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decodeHighlight(raw)
}

// PullHighlight removes the anchor in one statement scoped by document, owner and anchor presence.
func (r *DocumentPostgres) PullHighlight(ctx context.Context, ownerID, docID, highlightID string) error {
	const q = `
		UPDATE documents
		SET highlights = highlights - $3::text
		WHERE id = $1 AND owner_id = $2 AND (highlights->$3::text) IS NOT NULL
	`
	res, err := r.db.ExecContext(ctx, q, docID, ownerID, highlightID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// HighlightExists returns ErrNotFound when the document itself is missing or not owned.
func (r *DocumentPostgres) HighlightExists(ctx context.Context, ownerID, docID, highlightID string) (bool, error) {
	const q = `SELECT (highlights->$3::text) IS NOT NULL FROM documents WHERE id = $1 AND owner_id = $2`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, docID, ownerID, highlightID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, repository.ErrNotFound
		}
		return false, err
	}
	return exists, nil
}

// ListHighlights returns the anchors of one owned document ordered by creation.
func (r *DocumentPostgres) ListHighlights(ctx context.Context, ownerID, docID string) ([]model.Highlight, error) {
	const q = `SELECT highlights FROM documents WHERE id = $1 AND owner_id = $2`
	var raw []byte
	if err := r.db.QueryRowContext(ctx, q, docID, ownerID).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decodeHighlights(raw)
}
