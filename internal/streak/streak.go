// Package streak computes daily win streaks at UTC calendar-day granularity.
package streak

// Calculate returns the streak after recording today's outcome.
//
// A loss always breaks the streak. A win extends it only when the previous
// game was played yesterday; a gap of a day or more starts a new streak of 1.
// A win recorded twice on the same day leaves the streak unchanged.
func Calculate(lastPlayedDate string, currentStreak int, won bool) int {
	if !won {
		return 0
	}

	if lastPlayedDate == "" {
		return 1
	}

	switch lastPlayedDate {
	case Today():
		return currentStreak
	case Yesterday():
		return currentStreak + 1
	}

	return 1
}
