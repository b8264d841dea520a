// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., postgres) inside this directory.
package repository

import (
	"errors"

	"docmark/internal/model"
)

// ErrNotFound is returned when no row owned by the caller matches.
var ErrNotFound = errors.New("record not found")

// HighlightPatch carries the mutable fields of an anchor. A nil field is left untouched;
// a non-nil empty Comment clears it.
type HighlightPatch struct {
	Color   *model.Color
	Comment *string
}

// Empty reports whether the patch changes nothing.
func (p HighlightPatch) Empty() bool {
	return p.Color == nil && p.Comment == nil
}

// Fields returns the present fields keyed by their stored name.
func (p HighlightPatch) Fields() map[string]any {
	out := make(map[string]any, 2)
	if p.Color != nil {
		out["color"] = *p.Color
	}
	if p.Comment != nil {
		out["comment"] = *p.Comment
	}
	return out
}
