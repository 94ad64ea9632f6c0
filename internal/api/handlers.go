package api

import (
	"net/http"
)

func (s *Server) handleGetVersion(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, map[string]string{"version": s.app.Version()})
}

// handleGetConfig exposes the lab identity so clients can label saved
// reports. Port and database settings stay server-side.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg := s.app.Config()
	RespondWithJSON(w, http.StatusOK, map[string]string{
		"lab_name":    cfg.Lab.Name,
		"lab_address": cfg.Lab.Address,
	})
}
