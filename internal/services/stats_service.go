package services

import (
	"context"

	"github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/repository"
	"github.com/xclues/xclues/internal/streak"
)

// StatsService handles statistics-related business logic
type StatsService interface {
	GetStats(ctx context.Context, deviceID string) (*models.UserStats, error)
	// RecordCompletion records a finished game. Recording the same day twice
	// is a no-op returning current stats.
	RecordCompletion(ctx context.Context, deviceID string, result models.GameResult) (*models.UserStats, error)
	ResultForDate(ctx context.Context, deviceID, date string) (*models.GameResult, error)
	ResetStats(ctx context.Context, deviceID string) error
}

type statsService struct {
	statsRepo repository.StatsRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(statsRepo repository.StatsRepository) StatsService {
	return &statsService{statsRepo: statsRepo}
}

func (s *statsService) GetStats(ctx context.Context, deviceID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting stats: device_id=%s", deviceID)

	stats, err := s.statsRepo.Get(ctx, deviceID)
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return stats, nil
}

func (s *statsService) RecordCompletion(ctx context.Context, deviceID string, result models.GameResult) (*models.UserStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("recording completion: device_id=%s, date=%s, won=%v, mistakes=%d",
		deviceID, result.Date, result.Won, result.Mistakes)

	recorded, err := s.statsRepo.HasResultForDate(ctx, deviceID, result.Date)
	if err != nil {
		log.Error("failed to check for existing result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if recorded {
		log.Warn("game already recorded for %s, skipping", result.Date)
		return s.GetStats(ctx, deviceID)
	}

	stats, err := s.statsRepo.Get(ctx, deviceID)
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats.GamesPlayed++
	if result.Won {
		stats.GamesWon++
	}
	stats.CurrentStreak = streak.Calculate(stats.LastPlayedDate, stats.CurrentStreak, result.Won)
	if stats.CurrentStreak > stats.MaxStreak {
		stats.MaxStreak = stats.CurrentStreak
	}
	stats.LastPlayedDate = result.Date

	if err := s.statsRepo.AppendResult(ctx, deviceID, result); err != nil {
		log.Error("failed to append result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.statsRepo.Save(ctx, deviceID, *stats); err != nil {
		log.Error("failed to save stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("completion recorded: device_id=%s, date=%s, streak=%d", deviceID, result.Date, stats.CurrentStreak)
	return s.GetStats(ctx, deviceID)
}

func (s *statsService) ResultForDate(ctx context.Context, deviceID, date string) (*models.GameResult, error) {
	log := logger.FromContext(ctx)

	result, err := s.statsRepo.ResultForDate(ctx, deviceID, date)
	if err != nil {
		log.Error("failed to get result for date: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return result, nil
}

func (s *statsService) ResetStats(ctx context.Context, deviceID string) error {
	log := logger.FromContext(ctx)
	log.Info("resetting stats: device_id=%s", deviceID)

	if err := s.statsRepo.Reset(ctx, deviceID); err != nil {
		log.Error("failed to reset stats: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}
