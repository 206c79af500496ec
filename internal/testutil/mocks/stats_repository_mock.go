package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/xclues/xclues/internal/models"
)

// MockStatsRepository is a mock implementation of repository.StatsRepository
type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Get(ctx context.Context, deviceID string) (*models.UserStats, error) {
	args := m.Called(ctx, deviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *MockStatsRepository) Save(ctx context.Context, deviceID string, stats models.UserStats) error {
	args := m.Called(ctx, deviceID, stats)
	return args.Error(0)
}

func (m *MockStatsRepository) AppendResult(ctx context.Context, deviceID string, result models.GameResult) error {
	args := m.Called(ctx, deviceID, result)
	return args.Error(0)
}

func (m *MockStatsRepository) HasResultForDate(ctx context.Context, deviceID, date string) (bool, error) {
	args := m.Called(ctx, deviceID, date)
	return args.Bool(0), args.Error(1)
}

func (m *MockStatsRepository) ResultForDate(ctx context.Context, deviceID, date string) (*models.GameResult, error) {
	args := m.Called(ctx, deviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GameResult), args.Error(1)
}

func (m *MockStatsRepository) Reset(ctx context.Context, deviceID string) error {
	args := m.Called(ctx, deviceID)
	return args.Error(0)
}
