package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/agrilab/agrilab-go/internal/models"
)

func sampleIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "sampleID"), 10, 64)
}

func (s *Server) handleGetSample(w http.ResponseWriter, r *http.Request) {
	sampleID, err := sampleIDParam(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid sample ID")
		return
	}

	sample, err := s.store.GetSample(sampleID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Sample not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, sample)
}

func (s *Server) handleUpdateSample(w http.ResponseWriter, r *http.Request) {
	sampleID, err := sampleIDParam(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid sample ID")
		return
	}

	existing, err := s.store.GetSample(sampleID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Sample not found")
		return
	}

	var payload models.Sample
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	// Identity fields are immutable; only measured values and metadata move.
	payload.ID = existing.ID
	payload.SessionID = existing.SessionID
	payload.Code = existing.Code

	if err := s.store.UpdateSample(&payload); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to update sample")
		return
	}

	updated, err := s.store.GetSample(sampleID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to reload sample")
		return
	}
	RespondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteSample(w http.ResponseWriter, r *http.Request) {
	sampleID, err := sampleIDParam(r)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid sample ID")
		return
	}

	if err := s.store.DeleteSample(sampleID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete sample")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
