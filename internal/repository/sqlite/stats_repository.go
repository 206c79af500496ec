package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/repository"
)

type statsRepository struct {
	db *sql.DB
}

// NewStatsRepository creates a new StatsRepository implementation
func NewStatsRepository(db *sql.DB) repository.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Get(ctx context.Context, deviceID string) (*models.UserStats, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("getting stats: device_id=%s", deviceID)

	stats := &models.UserStats{GameHistory: []models.GameResult{}}

	var lastPlayed sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT games_played, games_won, current_streak, max_streak, last_played_date
FROM user_stats
WHERE device_id = ?
`, deviceID).Scan(&stats.GamesPlayed, &stats.GamesWon, &stats.CurrentStreak, &stats.MaxStreak, &lastPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("no stats recorded yet: device_id=%s", deviceID)
		return stats, nil
	}
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, err
	}
	if lastPlayed.Valid {
		stats.LastPlayedDate = lastPlayed.String
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT result_date, won, mistakes, completed_at, guess_history
FROM game_results
WHERE device_id = ?
ORDER BY result_date
`, deviceID)
	if err != nil {
		log.Error("failed to query game results: %v", err)
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		result, err := scanResult(rows.Scan)
		if err != nil {
			log.Error("failed to scan game result: %v", err)
			return nil, err
		}
		stats.GameHistory = append(stats.GameHistory, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.GamesPlayed > 0 {
		stats.WinRate = winRate(stats.GamesWon, stats.GamesPlayed)
	}
	log.Debug("stats found: played=%d, won=%d, streak=%d", stats.GamesPlayed, stats.GamesWon, stats.CurrentStreak)
	return stats, nil
}

func (r *statsRepository) Save(ctx context.Context, deviceID string, stats models.UserStats) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("saving stats: device_id=%s, played=%d, streak=%d", deviceID, stats.GamesPlayed, stats.CurrentStreak)

	var lastPlayed any
	if stats.LastPlayedDate != "" {
		lastPlayed = stats.LastPlayedDate
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO user_stats (device_id, games_played, games_won, current_streak, max_streak, last_played_date, updated_at)
VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (device_id) DO UPDATE SET
    games_played = excluded.games_played,
    games_won = excluded.games_won,
    current_streak = excluded.current_streak,
    max_streak = excluded.max_streak,
    last_played_date = excluded.last_played_date,
    updated_at = CURRENT_TIMESTAMP
`, deviceID, stats.GamesPlayed, stats.GamesWon, stats.CurrentStreak, stats.MaxStreak, lastPlayed)
	if err != nil {
		log.Error("failed to save stats: %v", err)
	}
	return err
}

func (r *statsRepository) AppendResult(ctx context.Context, deviceID string, result models.GameResult) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("appending result: device_id=%s, date=%s, won=%v", deviceID, result.Date, result.Won)

	var history any
	if len(result.GuessHistory) > 0 {
		encoded, err := json.Marshal(result.GuessHistory)
		if err != nil {
			return err
		}
		history = string(encoded)
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO game_results (device_id, result_date, won, mistakes, completed_at, guess_history)
VALUES (?, ?, ?, ?, ?, ?)
`, deviceID, result.Date, result.Won, result.Mistakes, result.CompletedAt, history)
	if err != nil {
		log.Error("failed to append game result: %v", err)
	}
	return err
}

func (r *statsRepository) HasResultForDate(ctx context.Context, deviceID, date string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
SELECT 1 FROM game_results WHERE device_id = ? AND result_date = ?
`, deviceID, date).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

func (r *statsRepository) ResultForDate(ctx context.Context, deviceID, date string) (*models.GameResult, error) {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")

	row := r.db.QueryRowContext(ctx, `
SELECT result_date, won, mistakes, completed_at, guess_history
FROM game_results
WHERE device_id = ? AND result_date = ?
`, deviceID, date)
	result, err := scanResult(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get result for date: %v", err)
		return nil, err
	}
	return result, nil
}

func (r *statsRepository) Reset(ctx context.Context, deviceID string) error {
	log := logger.FromContext(ctx).WithPrefix("stats_repo")
	log.Debug("resetting stats: device_id=%s", deviceID)

	return tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `DELETE FROM game_results WHERE device_id = ?`, deviceID); err != nil {
			return err
		}
		_, err := t.ExecContext(ctx, `DELETE FROM user_stats WHERE device_id = ?`, deviceID)
		return err
	})
}

func scanResult(scan func(dest ...any) error) (*models.GameResult, error) {
	var result models.GameResult
	var history sql.NullString
	if err := scan(&result.Date, &result.Won, &result.Mistakes, &result.CompletedAt, &history); err != nil {
		return nil, err
	}
	if history.Valid && history.String != "" {
		// Corrupt history degrades to none rather than failing the read.
		if err := json.Unmarshal([]byte(history.String), &result.GuessHistory); err != nil {
			result.GuessHistory = nil
		}
	}
	return &result, nil
}

func winRate(won, played int) int {
	// Rounded integer percentage.
	return (won*100 + played/2) / played
}
