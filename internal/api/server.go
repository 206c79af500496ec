package api

import (
	"encoding/json"
	"net/http"

	"github.com/xclues/xclues/internal/config"
	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/services"
	"github.com/xclues/xclues/internal/share"
	"github.com/xclues/xclues/internal/streak"
)

type Server struct {
	PuzzleService services.PuzzleService
	StatsService  services.StatsService
	GameService   services.GameService
	Config        config.Config
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode response: %v", err)
	}
}

// sessionView is the JSON shape of a game session.
type sessionView struct {
	PuzzleDate        string           `json:"puzzle_date"`
	PuzzleNumber      int              `json:"puzzle_number"`
	Status            game.Status      `json:"status"`
	Items             []models.Item    `json:"items"`
	SelectedItemIDs   []int            `json:"selected_item_ids"`
	FoundGroups       []models.Group   `json:"found_groups"`
	Mistakes          int              `json:"mistakes"`
	MistakesRemaining int              `json:"mistakes_remaining"`
	Notification      string           `json:"notification,omitempty"`
	IsShaking         bool             `json:"is_shaking"`
	JumpingItemIDs    []int            `json:"jumping_item_ids,omitempty"`
	GuessHistory      [][]models.Color `json:"guess_history"`
}

// viewSession renders a session, preferring the persisted result's color
// history when the session itself has no guess log (restored games).
func viewSession(session *game.Session, result *models.GameResult) sessionView {
	history := share.GuessesToColorHistory(session.PreviousGuesses(), session.Groups())
	if len(history) == 0 && result != nil {
		history = result.GuessHistory
	}
	if history == nil {
		history = [][]models.Color{}
	}

	view := sessionView{
		PuzzleDate:        session.PuzzleDate(),
		PuzzleNumber:      streak.PuzzleNumber(session.PuzzleDate()),
		Status:            session.Status(),
		Items:             session.Items(),
		SelectedItemIDs:   session.SelectedItemIDs(),
		FoundGroups:       session.FoundGroups(),
		Mistakes:          session.Mistakes(),
		MistakesRemaining: game.MaxMistakes - session.Mistakes(),
		IsShaking:         session.IsShaking(),
		JumpingItemIDs:    session.JumpingItemIDs(),
		GuessHistory:      history,
	}
	if view.SelectedItemIDs == nil {
		view.SelectedItemIDs = []int{}
	}
	if view.FoundGroups == nil {
		view.FoundGroups = []models.Group{}
	}
	if view.Items == nil {
		view.Items = []models.Item{}
	}
	if msg, ok := session.Notification(); ok {
		view.Notification = msg
	}
	return view
}
