package api

import (
	"encoding/json"
	"net/http"

	"github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/game"
	"github.com/xclues/xclues/internal/logger"
)

func (s *Server) handleGame(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	session, result, err := s.GameService.Session(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewSession(session, result))
}

func (s *Server) handleSelectItem(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	var req struct {
		ItemID *int `json:"item_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == nil {
		handleError(w, r, errors.NewBadRequestError("item_id required"))
		return
	}

	session, result, err := s.GameService.SelectItem(r.Context(), deviceID, *req.ItemID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewSession(session, result))
}

func (s *Server) handleDeselectAll(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	session, result, err := s.GameService.DeselectAll(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewSession(session, result))
}

func (s *Server) handleSubmitGuess(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	deviceID := deviceFromContext(r.Context())

	session, result, outcome, err := s.GameService.SubmitGuess(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	log.Debug("guess submitted: result=%s, mistakes=%d", outcome.Result, outcome.Mistakes)

	response := struct {
		Result  game.GuessResult `json:"result"`
		OneAway bool             `json:"one_away"`
		Reveal  *revealView      `json:"reveal,omitempty"`
		Session sessionView      `json:"session"`
	}{
		Result:  outcome.Result,
		OneAway: outcome.OneAway,
		Reveal:  viewReveal(outcome.Reveal),
		Session: viewSession(session, result),
	}
	respondJSON(w, r, http.StatusOK, response)
}

type itemJumpView struct {
	ItemID  int   `json:"item_id"`
	AfterMs int64 `json:"after_ms"`
}

type revealView struct {
	GroupID         string         `json:"group_id"`
	ItemJumps       []itemJumpView `json:"item_jumps"`
	FinalizeAfterMs int64          `json:"finalize_after_ms"`
}

func viewReveal(plan *game.RevealPlan) *revealView {
	if plan == nil {
		return nil
	}
	view := &revealView{
		GroupID:         plan.GroupID,
		FinalizeAfterMs: plan.FinalizeAfter.Milliseconds(),
	}
	for _, jump := range plan.ItemJumps {
		view.ItemJumps = append(view.ItemJumps, itemJumpView{
			ItemID:  jump.ItemID,
			AfterMs: jump.After.Milliseconds(),
		})
	}
	return view
}

func (s *Server) handleShuffleItems(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	session, result, err := s.GameService.ShuffleItems(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, viewSession(session, result))
}

func (s *Server) handleShareText(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	text, err := s.GameService.ShareText(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"text": text})
}
