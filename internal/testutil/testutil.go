package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xclues/xclues/internal/db"
	"github.com/xclues/xclues/internal/models"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.Open("file::memory:")
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, database.Close())
	})
	return database
}

// FixturePuzzle builds a valid 16-item puzzle with groups over ids 1-4, 5-8,
// 9-12 and 13-16, in difficulty order.
func FixturePuzzle(date, genre string) models.Puzzle {
	difficulties := []models.Difficulty{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
		models.DifficultyHardest,
	}
	groupIDs := []string{"g-easy", "g-medium", "g-hard", "g-hardest"}

	var puzzle models.Puzzle
	puzzle.ID = "fixture-" + date + "-" + genre
	puzzle.Date = date
	puzzle.Genre = genre

	next := 1
	for i, difficulty := range difficulties {
		color, _ := models.ColorForDifficulty(difficulty)
		group := models.Group{
			ID:         groupIDs[i],
			Connection: "connection " + groupIDs[i],
			Difficulty: difficulty,
			Color:      color,
		}
		for j := 0; j < 4; j++ {
			item := models.Item{ID: next, Title: "item " + groupIDs[i]}
			group.Items = append(group.Items, item)
			puzzle.Items = append(puzzle.Items, item)
			next++
		}
		puzzle.Groups = append(puzzle.Groups, group)
	}
	return puzzle
}
