package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)
	r.Use(deviceMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/puzzle/today", s.handleDailyPuzzle)

		r.Post("/puzzles", s.handleCreatePuzzle)
		r.Get("/puzzles", s.handleListPuzzles)
		r.Get("/puzzles/{id}", s.handleGetPuzzle)
		r.Post("/puzzles/{id}/delete", s.handleDeletePuzzle)

		r.Get("/game", s.handleGame)
		r.Post("/game/select", s.handleSelectItem)
		r.Post("/game/deselect", s.handleDeselectAll)
		r.Post("/game/submit", s.handleSubmitGuess)
		r.Post("/game/shuffle", s.handleShuffleItems)
		r.Get("/game/share", s.handleShareText)

		r.Get("/stats", s.handleStats)
		r.Post("/stats/reset", s.handleResetStats)
	})

	return r
}
