package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"docmark/internal/model"
	"docmark/internal/reconcile"
	"docmark/internal/repository"
)

const maxRunsPerPage = 20000

// AddHighlightInput is the payload of a new anchor. Pointer fields distinguish absent from zero.
type AddHighlightInput struct {
	Text       string  `json:"text" validate:"required,notblank,max=10000"`
	Color      *string `json:"color,omitempty" validate:"omitempty,palette"`
	Comment    *string `json:"comment,omitempty" validate:"omitempty,max=5000"`
	Page       *int    `json:"page" validate:"required,min=1"`
	Start      *int    `json:"start" validate:"required,min=0"`
	End        *int    `json:"end" validate:"required,min=0"`
	Occurrence *int    `json:"occurrence,omitempty" validate:"omitempty,min=0"`
}

// UpdateHighlightInput is a partial update. A nil field is left untouched; an empty comment clears it.
type UpdateHighlightInput struct {
	Color   *string `json:"color,omitempty" validate:"omitempty,palette"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=5000"`
}

// HighlightService manages the anchors of owned documents.
type HighlightService interface {
	Add(ctx context.Context, ownerID, docID string, in AddHighlightInput) (*model.Highlight, error)
	Update(ctx context.Context, ownerID, docID, highlightID string, in UpdateHighlightInput) (*model.Highlight, error)
	// Remove pulls the anchor atomically and confirms it is gone before returning nil.
	Remove(ctx context.Context, ownerID, docID, highlightID string) error
	// List returns anchors in creation order, not page order.
	List(ctx context.Context, ownerID, docID string) ([]model.Highlight, error)
	// Locate re-attaches the document's anchors on page to the given rendered runs.
	Locate(ctx context.Context, ownerID, docID string, page int, runs []reconcile.Run) ([]reconcile.Placement, error)
}

type highlightService struct {
	repo repository.DocumentRepository
	settings
}

// NewHighlightService constructs a new HighlightService.
func NewHighlightService(repo repository.DocumentRepository, opts ...Option) HighlightService {
	return &highlightService{repo: repo, settings: newSettings(opts)}
}

func checkScope(ownerID, docID string) error {
	if ownerID == "" {
		return ErrOwnerRequired
	}
	if docID == "" {
		return ErrIDRequired
	}
	return nil
}

func (s *highlightService) Add(ctx context.Context, ownerID, docID string, in AddHighlightInput) (*model.Highlight, error) {
	ctx, span := tracer.Start(ctx, "HighlightService.Add")
	defer span.End()

	if err := checkScope(ownerID, docID); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	h := &model.Highlight{
		ID:        uuid.NewString(),
		Text:      in.Text,
		Color:     model.DefaultColor,
		Page:      *in.Page,
		Start:     *in.Start,
		End:       *in.End,
		CreatedAt: s.now().UTC(),
	}
	if in.Color != nil {
		h.Color = model.Color(*in.Color)
	}
	if in.Comment != nil {
		h.Comment = *in.Comment
	}
	if in.Occurrence != nil {
		h.Occurrence = *in.Occurrence
	}
	span.SetAttributes(attribute.String("highlight.id", h.ID))

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	stored, err := s.repo.PushHighlight(ctx, ownerID, docID, h)
	if err != nil {
		return nil, upstream("push highlight", err, ErrDocumentNotFound)
	}

	s.log.Debug().Str("component", "service").Str("document_id", docID).Str("highlight_id", stored.ID).Msg("highlight_added")
	return stored, nil
}

func (s *highlightService) Update(ctx context.Context, ownerID, docID, highlightID string, in UpdateHighlightInput) (*model.Highlight, error) {
	ctx, span := tracer.Start(ctx, "HighlightService.Update")
	defer span.End()

	if err := checkScope(ownerID, docID); err != nil {
		return nil, err
	}
	if highlightID == "" {
		return nil, ErrIDRequired
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	patch := repository.HighlightPatch{Comment: in.Comment}
	if in.Color != nil {
		c := model.Color(*in.Color)
		patch.Color = &c
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if patch.Empty() {
		list, err := s.repo.ListHighlights(ctx, ownerID, docID)
		if err != nil {
			return nil, upstream("list highlights", err, ErrHighlightNotFound)
		}
		for i := range list {
			if list[i].ID == highlightID {
				return &list[i], nil
			}
		}
		return nil, ErrHighlightNotFound
	}

	h, err := s.repo.UpdateHighlight(ctx, ownerID, docID, highlightID, patch)
	if err != nil {
		return nil, upstream("update highlight", err, ErrHighlightNotFound)
	}
	return h, nil
}

func (s *highlightService) Remove(ctx context.Context, ownerID, docID, highlightID string) error {
	ctx, span := tracer.Start(ctx, "HighlightService.Remove")
	defer span.End()

	if err := checkScope(ownerID, docID); err != nil {
		return err
	}
	if highlightID == "" {
		return ErrIDRequired
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()

	if err := s.repo.PullHighlight(ctx, ownerID, docID, highlightID); err != nil {
		return upstream("pull highlight", err, ErrHighlightNotFound)
	}

	still, err := s.repo.HighlightExists(ctx, ownerID, docID, highlightID)
	if err != nil {
		// The document vanished concurrently, taking the anchor with it.
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return upstream("confirm removal", err, ErrHighlightNotFound)
	}
	if still {
		s.log.Error().Str("component", "service").Str("document_id", docID).Str("highlight_id", highlightID).Msg("highlight_removal_unconfirmed")
		return fmt.Errorf("%w: removal of highlight %s not confirmed", ErrUpstreamUnavailable, highlightID)
	}
	return nil
}

func (s *highlightService) List(ctx context.Context, ownerID, docID string) ([]model.Highlight, error) {
	ctx, span := tracer.Start(ctx, "HighlightService.List")
	defer span.End()

	if err := checkScope(ownerID, docID); err != nil {
		return nil, err
	}

	ctx, cancel := s.bounded(ctx)
	defer cancel()
	list, err := s.repo.ListHighlights(ctx, ownerID, docID)
	if err != nil {
		return nil, upstream("list highlights", err, ErrDocumentNotFound)
	}
	return list, nil
}

func (s *highlightService) Locate(ctx context.Context, ownerID, docID string, page int, runs []reconcile.Run) ([]reconcile.Placement, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", ErrValidation)
	}
	if len(runs) > maxRunsPerPage {
		return nil, fmt.Errorf("%w: at most %d runs per page", ErrValidation, maxRunsPerPage)
	}
	list, err := s.List(ctx, ownerID, docID)
	if err != nil {
		return nil, err
	}
	return reconcile.Place(list, page, runs), nil
}
