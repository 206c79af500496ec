package models

import "time"

// Difficulty is the ordinal difficulty of a group, easy < medium < hard < hardest.
type Difficulty string

const (
	DifficultyEasy    Difficulty = "easy"
	DifficultyMedium  Difficulty = "medium"
	DifficultyHard    Difficulty = "hard"
	DifficultyHardest Difficulty = "hardest"
)

// Color identifies a group on the board and in share grids. Within a puzzle
// colors are bijective with difficulties.
type Color string

const (
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
)

// ColorForDifficulty returns the canonical color for a difficulty level.
func ColorForDifficulty(d Difficulty) (Color, bool) {
	switch d {
	case DifficultyEasy:
		return ColorYellow, true
	case DifficultyMedium:
		return ColorGreen, true
	case DifficultyHard:
		return ColorBlue, true
	case DifficultyHardest:
		return ColorPurple, true
	}
	return "", false
}

// Item is a single entry to classify: a film, song, athlete or book depending
// on the deployment genre. Immutable once loaded.
type Item struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Year   int    `json:"year,omitempty"`
	Artist string `json:"artist,omitempty"`
	Author string `json:"author,omitempty"`
}

// Group is one hidden category of exactly four items.
type Group struct {
	ID         string     `json:"id"`
	Items      []Item     `json:"items"`
	Connection string     `json:"connection"`
	Difficulty Difficulty `json:"difficulty"`
	Color      Color      `json:"color"`
}

// ItemIDs returns the ids of the group's items in declaration order.
func (g Group) ItemIDs() []int {
	ids := make([]int, len(g.Items))
	for i, it := range g.Items {
		ids[i] = it.ID
	}
	return ids
}

// Contains reports whether the group holds the item with the given id.
func (g Group) Contains(itemID int) bool {
	for _, it := range g.Items {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// Puzzle is one day's board: 16 items partitioned into 4 groups of 4.
// Keyed externally by (date, genre).
type Puzzle struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Genre     string    `json:"genre"`
	Items     []Item    `json:"items"`
	Groups    []Group   `json:"groups"`
	CreatedAt time.Time `json:"created_at"`
}

// PuzzleFilter narrows puzzle listing.
type PuzzleFilter struct {
	Genre    string
	DateFrom string
	DateTo   string
	Limit    int
	Offset   int
}
