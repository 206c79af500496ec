package streak

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name           string
		lastPlayedDate string
		currentStreak  int
		won            bool
		expected       int
	}{
		{
			name:           "loss breaks streak",
			lastPlayedDate: Yesterday(),
			currentStreak:  7,
			won:            false,
			expected:       0,
		},
		{
			name:           "first win starts streak",
			lastPlayedDate: "",
			currentStreak:  0,
			won:            true,
			expected:       1,
		},
		{
			name:           "win after yesterday extends",
			lastPlayedDate: Yesterday(),
			currentStreak:  3,
			won:            true,
			expected:       4,
		},
		{
			name:           "win already recorded today is unchanged",
			lastPlayedDate: Today(),
			currentStreak:  5,
			won:            true,
			expected:       5,
		},
		{
			name:           "gap restarts at one",
			lastPlayedDate: DayBefore(Yesterday()),
			currentStreak:  9,
			won:            true,
			expected:       1,
		},
		{
			name:           "long gap restarts at one",
			lastPlayedDate: "2025-01-15",
			currentStreak:  30,
			won:            true,
			expected:       1,
		},
		{
			name:           "loss with no history stays zero",
			lastPlayedDate: "",
			currentStreak:  0,
			won:            false,
			expected:       0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.lastPlayedDate, tt.currentStreak, tt.won)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDay(t *testing.T) {
	// The day boundary is UTC regardless of the time's zone.
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, time.December, 4, 23, 30, 0, 0, loc)
	assert.Equal(t, "2025-12-05", Day(late))

	midnight := time.Date(2025, time.December, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2025-12-04", Day(midnight))
}

func TestYesterday(t *testing.T) {
	assert.Equal(t, Day(time.Now().AddDate(0, 0, -1)), Yesterday())
}

func TestDayBefore(t *testing.T) {
	assert.Equal(t, "2025-12-03", DayBefore("2025-12-04"))
	assert.Equal(t, "2025-11-30", DayBefore("2025-12-01"))
	assert.Equal(t, "2024-12-31", DayBefore("2025-01-01"))
	assert.Equal(t, "2024-02-29", DayBefore("2024-03-01"))
	assert.Equal(t, "garbage", DayBefore("garbage"))
}

func TestFormatDisplay(t *testing.T) {
	assert.Equal(t, "December 4, 2025", FormatDisplay("2025-12-04"))
	assert.Equal(t, "January 1, 2026", FormatDisplay("2026-01-01"))
	assert.Equal(t, "not-a-date", FormatDisplay("not-a-date"))
}

func TestPuzzleNumber(t *testing.T) {
	assert.Equal(t, 1, PuzzleNumber("2025-01-01"))
	assert.Equal(t, 2, PuzzleNumber("2025-01-02"))
	assert.Equal(t, 32, PuzzleNumber("2025-02-01"))
	assert.Equal(t, 0, PuzzleNumber("bad"))
}
