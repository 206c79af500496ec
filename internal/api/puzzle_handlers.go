package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/xclues/xclues/internal/errors"
	"github.com/xclues/xclues/internal/logger"
	"github.com/xclues/xclues/internal/models"
	"github.com/xclues/xclues/internal/streak"
)

func (s *Server) handleDailyPuzzle(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	date := r.URL.Query().Get("date")
	if date == "" {
		date = streak.Today()
	}
	genre := r.URL.Query().Get("genre")
	if genre == "" {
		genre = s.Config.Genre
	}

	puzzle, err := s.PuzzleService.GetDailyPuzzle(r.Context(), date, genre)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if puzzle == nil {
		log.Debug("no puzzle for %s/%s", date, genre)
		handleError(w, r, errors.NewNotFoundError("puzzle", date))
		return
	}
	respondJSON(w, r, http.StatusOK, puzzle)
}

func (s *Server) handleCreatePuzzle(w http.ResponseWriter, r *http.Request) {
	var puzzle models.Puzzle
	if err := json.NewDecoder(r.Body).Decode(&puzzle); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid puzzle payload"))
		return
	}

	created, err := s.PuzzleService.CreatePuzzle(r.Context(), puzzle)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleListPuzzles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.PuzzleFilter{
		Genre:    q.Get("genre"),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	puzzles, total, err := s.PuzzleService.ListPuzzles(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if puzzles == nil {
		puzzles = []models.Puzzle{}
	}
	respondJSON(w, r, http.StatusOK, map[string]any{
		"puzzles": puzzles,
		"total":   total,
	})
}

func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	puzzle, err := s.PuzzleService.GetPuzzle(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, puzzle)
}

func (s *Server) handleDeletePuzzle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.PuzzleService.DeletePuzzle(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
