package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	stats, err := s.StatsService.GetStats(r.Context(), deviceID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, stats)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	deviceID := deviceFromContext(r.Context())

	if err := s.StatsService.ResetStats(r.Context(), deviceID); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "reset"})
}
