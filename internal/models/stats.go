package models

import "time"

// GameResult is one completed game. Immutable once appended.
type GameResult struct {
	Date         string    `json:"date"` // YYYY-MM-DD
	Won          bool      `json:"won"`
	Mistakes     int       `json:"mistakes"`
	CompletedAt  time.Time `json:"completed_at"`
	GuessHistory [][]Color `json:"guess_history,omitempty"`
}

// UserStats aggregates a device's win/loss history and streaks.
type UserStats struct {
	GamesPlayed    int          `json:"games_played"`
	GamesWon       int          `json:"games_won"`
	WinRate        int          `json:"win_rate"` // rounded percentage, derived
	CurrentStreak  int          `json:"current_streak"`
	MaxStreak      int          `json:"max_streak"`
	LastPlayedDate string       `json:"last_played_date,omitempty"`
	GameHistory    []GameResult `json:"game_history"`
}
