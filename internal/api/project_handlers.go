package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/agrilab/agrilab-go/internal/models"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.ListProjects()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve projects")
		return
	}
	RespondWithJSON(w, http.StatusOK, projects)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name         string `json:"name"`
		CustomerName string `json:"customer_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Name == "" {
		RespondWithError(w, http.StatusBadRequest, "Project name is required")
		return
	}

	project, err := s.store.CreateProject(payload.Name, payload.CustomerName)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}
	RespondWithJSON(w, http.StatusCreated, project)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := s.store.GetProject(projectID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Project not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, project)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if err := s.store.DeleteProject(projectID); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := s.store.ListInvoices()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to retrieve invoices")
		return
	}
	RespondWithJSON(w, http.StatusOK, invoices)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProjectID int64     `json:"project_id"`
		Amount    float64   `json:"amount"`
		DueDate   time.Time `json:"due_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if payload.Amount <= 0 {
		RespondWithError(w, http.StatusBadRequest, "Invoice amount must be positive")
		return
	}
	if _, err := s.store.GetProject(payload.ProjectID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Project not found")
		return
	}

	invoice, err := s.store.CreateInvoice(payload.ProjectID, payload.Amount, payload.DueDate)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to create invoice")
		return
	}
	RespondWithJSON(w, http.StatusCreated, invoice)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	invoice, err := s.store.GetInvoice(invoiceID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	RespondWithJSON(w, http.StatusOK, invoice)
}

func (s *Server) handleUpdateInvoiceStatus(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := strconv.ParseInt(chi.URLParam(r, "invoiceID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid invoice ID")
		return
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	switch payload.Status {
	case models.InvoiceStatusUnpaid, models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
	default:
		RespondWithError(w, http.StatusBadRequest, "A valid invoice status is required")
		return
	}

	if _, err := s.store.GetInvoice(invoiceID); err != nil {
		RespondWithError(w, http.StatusNotFound, "Invoice not found")
		return
	}
	if err := s.store.UpdateInvoiceStatus(invoiceID, payload.Status); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to update invoice")
		return
	}
	w.WriteHeader(http.StatusOK)
}
