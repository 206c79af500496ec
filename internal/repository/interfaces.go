package repository

import (
	"context"

	"github.com/xclues/xclues/internal/models"
)

// PuzzleRepository handles puzzle data access
type PuzzleRepository interface {
	// GetByDate returns the puzzle published for a date+genre, or nil when
	// none exists.
	GetByDate(ctx context.Context, date, genre string) (*models.Puzzle, error)
	Get(ctx context.Context, id string) (*models.Puzzle, error)
	Insert(ctx context.Context, puzzle models.Puzzle) error
	List(ctx context.Context, filter models.PuzzleFilter) ([]models.Puzzle, error)
	Count(ctx context.Context, filter models.PuzzleFilter) (int, error)
	Delete(ctx context.Context, id string) error
}

// StatsRepository handles per-device statistics data access
type StatsRepository interface {
	// Get returns the stored stats for a device, or a zeroed default when
	// the device has never completed a game.
	Get(ctx context.Context, deviceID string) (*models.UserStats, error)
	Save(ctx context.Context, deviceID string, stats models.UserStats) error
	AppendResult(ctx context.Context, deviceID string, result models.GameResult) error
	HasResultForDate(ctx context.Context, deviceID, date string) (bool, error)
	ResultForDate(ctx context.Context, deviceID, date string) (*models.GameResult, error)
	Reset(ctx context.Context, deviceID string) error
}
