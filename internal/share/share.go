// Package share converts a session's guess log into the color grid shown on
// the results screen and the emoji block users copy to share.
package share

import (
	"fmt"
	"strings"

	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/streak"
)

var emojiMap = map[models.Color]string{
	models.ColorYellow: "🟨",
	models.ColorGreen:  "🟩",
	models.ColorBlue:   "🟦",
	models.ColorPurple: "🟪",
}

// GuessToColors maps each guessed item id to the color of the group that
// contains it. Ids outside the puzzle fall back to yellow rather than
// erroring; the puzzle partition invariant makes that unreachable in practice.
func GuessToColors(itemIDs []int, groups []models.Group) []models.Color {
	colors := make([]models.Color, len(itemIDs))
	for i, id := range itemIDs {
		colors[i] = models.ColorYellow
		for _, g := range groups {
			if g.Contains(id) {
				colors[i] = g.Color
				break
			}
		}
	}
	return colors
}

// GuessesToColorHistory maps GuessToColors over an ordered guess log,
// preserving order. The result is the Wordle-style grid of colored squares.
func GuessesToColorHistory(guesses [][]int, groups []models.Group) [][]models.Color {
	history := make([][]models.Color, len(guesses))
	for i, guess := range guesses {
		history[i] = GuessToColors(guess, groups)
	}
	return history
}

// Options describes one shareable result.
type Options struct {
	SiteName     string
	PuzzleDate   string // YYYY-MM-DD
	GuessHistory [][]models.Color
	Domain       string
}

// Text renders the shareable block. Output is deterministic: identical
// options produce byte-identical text.
//
//	Filmclues - December 4, 2025
//	🟨🟩🟦🟪
//	🟩🟩🟩🟩
//	Play: https://filmclues.space
func Text(opts Options) string {
	var rows []string
	for _, row := range opts.GuessHistory {
		var sb strings.Builder
		for _, color := range row {
			sb.WriteString(emojiMap[color])
		}
		rows = append(rows, sb.String())
	}

	return fmt.Sprintf("%s - %s\n%s\nPlay: https://%s",
		opts.SiteName,
		streak.FormatDisplay(opts.PuzzleDate),
		strings.Join(rows, "\n"),
		opts.Domain,
	)
}
