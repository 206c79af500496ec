package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xclues/xclues/internal/models"
)

// MockPuzzleRepository is a mock implementation of repository.PuzzleRepository
type MockPuzzleRepository struct {
	mock.Mock
}

func (m *MockPuzzleRepository) GetByDate(ctx context.Context, date, genre string) (*models.Puzzle, error) {
	args := m.Called(ctx, date, genre)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) Get(ctx context.Context, id string) (*models.Puzzle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) Insert(ctx context.Context, puzzle models.Puzzle) error {
	args := m.Called(ctx, puzzle)
	return args.Error(0)
}

func (m *MockPuzzleRepository) List(ctx context.Context, filter models.PuzzleFilter) ([]models.Puzzle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Puzzle), args.Error(1)
}

func (m *MockPuzzleRepository) Count(ctx context.Context, filter models.PuzzleFilter) (int, error) {
	args := m.Called(ctx, filter)
	return args.Int(0), args.Error(1)
}

func (m *MockPuzzleRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
