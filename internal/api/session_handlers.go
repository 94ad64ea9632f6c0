package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/agrilab/agrilab-go/internal/models"
)

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.store.ListSessions()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve sessions")
		return
	}
	RespondWithJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string `json:"name"`
		SampleType string `json:"sample_type"`
		ProjectID  *int64 `json:"project_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Name == "" {
		RespondWithError(w, http.StatusBadRequest, "Session name is required")
		return
	}
	switch payload.SampleType {
	case models.SampleTypeSoil, models.SampleTypeWater, models.SampleTypeFertilizer:
	default:
		RespondWithError(w, http.StatusBadRequest, "A valid sample type is required")
		return
	}

	session, err := s.store.CreateSession(payload.Name, payload.SampleType, payload.ProjectID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}
	RespondWithJSON(w, http.StatusCreated, session)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	session, err := s.store.GetSession(sessionID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if err := s.store.DeleteSession(sessionID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessionSamples(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if _, err := s.store.GetSession(sessionID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	samples, err := s.store.GetSamplesBySession(sessionID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve samples")
		return
	}
	RespondWithJSON(w, http.StatusOK, samples)
}

func (s *Server) handleCreateSample(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	if _, err := s.store.GetSession(sessionID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	var sample models.Sample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if sample.Code == "" || sample.FarmerName == "" {
		RespondWithError(w, http.StatusBadRequest, "Sample code and farmer name are required")
		return
	}
	sample.SessionID = sessionID

	created, err := s.store.CreateSample(&sample)
	if err != nil {
		// Most likely a duplicate sample code.
		RespondWithError(w, http.StatusConflict, "Sample code already exists")
		return
	}
	RespondWithJSON(w, http.StatusCreated, created)
}
