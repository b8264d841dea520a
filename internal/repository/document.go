package repository

import (
	"context"

	"docmark/internal/model"
)

// DocumentRepository defines data access for documents and their highlight anchors using SQL queries only.
// Every read and write is scoped by owner id; rows of other owners behave as if they did not exist.
// No business logic here, strictly persistence operations.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByOwner returns a document with its highlights in creation order, or ErrNotFound.
	FindByOwner(ctx context.Context, ownerID, id string) (*model.Document, error)

	// ListByOwner returns a page of the owner's documents in creation order and the total count.
	// Highlights are not loaded.
	ListByOwner(ctx context.Context, ownerID string, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes the document record. It returns ErrNotFound if no owned row matched.
	Delete(ctx context.Context, ownerID, id string) error

	// PushHighlight atomically appends h to the document's anchor collection and returns it with its
	// sequence number set.
	PushHighlight(ctx context.Context, ownerID, docID string, h *model.Highlight) (*model.Highlight, error)

	// UpdateHighlight atomically merges the present fields of patch into one anchor.
	UpdateHighlight(ctx context.Context, ownerID, docID, highlightID string, patch HighlightPatch) (*model.Highlight, error)

	// PullHighlight atomically removes one anchor. It returns ErrNotFound and changes nothing when the
	// document is not owned or holds no such anchor.
	PullHighlight(ctx context.Context, ownerID, docID, highlightID string) error

	// HighlightExists reports whether the owned document currently holds the anchor.
	HighlightExists(ctx context.Context, ownerID, docID, highlightID string) (bool, error)

	// ListHighlights returns the anchors of an owned document in creation order.
	ListHighlights(ctx context.Context, ownerID, docID string) ([]model.Highlight, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
