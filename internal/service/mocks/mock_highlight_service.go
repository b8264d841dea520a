package mocks

import (
	"context"

	"docmark/internal/model"
	"docmark/internal/reconcile"
	"docmark/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockHighlightService struct {
	mock.Mock
}

var _ service.HighlightService = (*MockHighlightService)(nil)

func (m *MockHighlightService) Add(ctx context.Context, ownerID, docID string, in service.AddHighlightInput) (*model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Highlight), args.Error(1)
}

func (m *MockHighlightService) Update(ctx context.Context, ownerID, docID, highlightID string, in service.UpdateHighlightInput) (*model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID, highlightID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Highlight), args.Error(1)
}

func (m *MockHighlightService) Remove(ctx context.Context, ownerID, docID, highlightID string) error {
	args := m.Called(ctx, ownerID, docID, highlightID)
	return args.Error(0)
}

func (m *MockHighlightService) List(ctx context.Context, ownerID, docID string) ([]model.Highlight, error) {
	args := m.Called(ctx, ownerID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Highlight), args.Error(1)
}

func (m *MockHighlightService) Locate(ctx context.Context, ownerID, docID string, page int, runs []reconcile.Run) ([]reconcile.Placement, error) {
	args := m.Called(ctx, ownerID, docID, page, runs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reconcile.Placement), args.Error(1)
}
