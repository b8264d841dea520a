package mocks

import (
	"context"

	"docmark/internal/model"
	"docmark/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindByOwner(ctx context.Context, ownerID, id string) (*model.Document, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByOwner(ctx context.Context, ownerID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, ownerID, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockDocumentRepository) PushHighlight(ctx context.Context, ownerID, docID string, h *model.Highlight) (*model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID, h)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Highlight), args.Error(1)
}

func (m *MockDocumentRepository) UpdateHighlight(ctx context.Context, ownerID, docID, highlightID string, patch repository.HighlightPatch) (*model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID, highlightID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Highlight), args.Error(1)
}

func (m *MockDocumentRepository) PullHighlight(ctx context.Context, ownerID, docID, highlightID string) error {
	args := m.Called(ctx, ownerID, docID, highlightID)
	return args.Error(0)
}

func (m *MockDocumentRepository) HighlightExists(ctx context.Context, ownerID, docID, highlightID string) (bool, error) {
	args := m.Called(ctx, ownerID, docID, highlightID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) ListHighlights(ctx context.Context, ownerID, docID string) ([]model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Highlight), args.Error(1)
}
