package streak

import "time"

// DayFormat is the calendar-day key used throughout: YYYY-MM-DD.
const DayFormat = "2006-01-02"

// Day renders a time as a UTC calendar day.
func Day(t time.Time) string {
	return t.UTC().Format(DayFormat)
}

// Today returns the current UTC calendar day.
func Today() string {
	return Day(time.Now())
}

// Yesterday returns the previous UTC calendar day.
func Yesterday() string {
	return DayBefore(Today())
}

// DayBefore returns the calendar day preceding the given YYYY-MM-DD day.
// Malformed input is returned unchanged.
func DayBefore(day string) string {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return day
	}
	return Day(t.AddDate(0, 0, -1))
}

// FormatDisplay renders a YYYY-MM-DD day for humans, e.g. "December 4, 2025".
// Malformed input is returned unchanged.
func FormatDisplay(day string) string {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return day
	}
	return t.Format("January 2, 2006")
}

// puzzleEpoch is the day of puzzle #1.
var puzzleEpoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// PuzzleNumber returns the 1-based puzzle number for a YYYY-MM-DD day.
func PuzzleNumber(day string) int {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return 0
	}
	return int(t.Sub(puzzleEpoch).Hours()/24) + 1
}
