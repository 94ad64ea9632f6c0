package api

// Handlers for report rendering and bulk report delivery. The stream
// endpoint is the primary path: it frames one PDF per multipart part
// and writes them as they finish rendering. The bundle endpoint buffers
// the whole job into a single JSON response for clients that cannot
// consume a multipart stream.

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/report"
	"github.com/agrilab/agrilab-go/internal/stream"
	"github.com/agrilab/agrilab-go/internal/util"
)

// streamDeadline bounds one bulk job. Generous because a large session
// renders for minutes; refreshed per job, not per part.
const streamDeadline = 10 * time.Minute

// sessionReportJob assembles the ordered unit of work for one session's
// bulk report run. Order is the samples' insertion order.
func (s *Server) sessionReportJob(sessionID int64) (*models.Session, stream.Job, stream.RenderFunc, error) {
	session, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, stream.Job{}, nil, err
	}

	samples, err := s.store.GetSamplesBySession(sessionID)
	if err != nil {
		return nil, stream.Job{}, nil, err
	}

	byID := make(map[string]*models.Sample, len(samples))
	job := stream.Job{Total: len(samples)}
	for _, sm := range samples {
		id := strconv.FormatInt(sm.ID, 10)
		byID[id] = sm
		job.Items = append(job.Items, stream.RecordRef{ID: id, DisplayName: sm.FarmerName})
	}

	cfg := s.app.Config()
	renderer := report.New(cfg.Lab.Name, cfg.Lab.Address)
	render := func(ref stream.RecordRef) ([]byte, error) {
		sm, ok := byID[ref.ID]
		if !ok {
			return nil, fmt.Errorf("unknown sample id %s", ref.ID)
		}
		return renderer.Render(sm, session.SampleType)
	}
	return session, job, render, nil
}

func (s *Server) handleStreamSessionReports(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	_, job, render, err := s.sessionReportJob(sessionID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	ctx := r.Context()
	producer := stream.NewProducer(job, render)
	parts, err := producer.Parts(ctx)
	if err != nil {
		if errors.Is(err, stream.ErrNoWork) {
			// An empty session never opens a stream.
			RespondWithError(w, http.StatusNotFound, "Session has no samples to report")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to start report job")
		return
	}

	// Long-running response: push both connection deadlines out past
	// the per-request defaults. Best effort; a transport that cannot
	// set deadlines (tests) still streams.
	rc := http.NewResponseController(w)
	deadline := time.Now().Add(streamDeadline)
	rc.SetReadDeadline(deadline)
	rc.SetWriteDeadline(deadline)

	boundary := stream.NewBoundary()
	stream.SetResponseHeaders(w.Header(), boundary, job.Total)
	w.WriteHeader(http.StatusOK)

	jobID := fmt.Sprintf("session-%d-reports", sessionID)
	enc := stream.NewEncoder(w, boundary, job.Total)

	// Same drain loop as the encoder's EncodeAll, plus a progress
	// broadcast after each delivered part.
	clean := false
loop:
	for {
		select {
		case <-ctx.Done():
			// Client went away. Stop at item granularity; the absent
			// terminator tells the other side the stream was cut.
			log.Printf("Report stream for session %d cancelled after %d/%d parts", sessionID, enc.Sent(), job.Total)
			break loop
		case part, ok := <-parts:
			if !ok {
				if err := enc.Close(); err != nil {
					log.Printf("Failed to terminate report stream for session %d: %v", sessionID, err)
					break loop
				}
				clean = true
				break loop
			}
			if err := enc.WritePart(part); err != nil {
				log.Printf("Report stream for session %d aborted on part %d: %v", sessionID, part.Index, err)
				break loop
			}
			s.app.WsHub().BroadcastJSON(models.ProgressUpdate{
				JobID:    jobID,
				Message:  fmt.Sprintf("Delivered report for %s", part.DisplayName),
				Progress: float64(enc.Sent()) / float64(job.Total) * 100,
				ItemID:   part.ID,
				Status:   "in_progress",
				Current:  enc.Sent(),
				Total:    job.Total,
			})
		}
	}

	skipped := producer.Skipped()
	for _, item := range skipped {
		log.Printf("Report for sample %s (%q) was skipped: %v", item.Ref.ID, item.Ref.DisplayName, item.Err)
	}

	status := "completed"
	message := fmt.Sprintf("Delivered %d of %d reports", enc.Sent(), job.Total)
	if !clean {
		status = "failed"
		message = fmt.Sprintf("Stream ended early after %d of %d reports", enc.Sent(), job.Total)
	} else if len(skipped) > 0 {
		message = fmt.Sprintf("Delivered %d of %d reports (%d failed to render)", enc.Sent(), job.Total, len(skipped))
	}
	s.app.WsHub().BroadcastJSON(models.ProgressUpdate{
		JobID:    jobID,
		Message:  message,
		Progress: 100,
		Status:   status,
		Current:  enc.Sent(),
		Total:    job.Total,
		Done:     true,
	})
}

// bundleItem is one rendered report in the JSON fallback response.
// Data is base64 in the JSON encoding.
type bundleItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Data        []byte `json:"data"`
}

func (s *Server) handleBundleSessionReports(w http.ResponseWriter, r *http.Request) {
	sessionID, err := strconv.ParseInt(chi.URLParam(r, "sessionID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid session ID")
		return
	}

	_, job, render, err := s.sessionReportJob(sessionID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Session not found")
		return
	}

	producer := stream.NewProducer(job, render)
	parts, err := producer.Parts(r.Context())
	if err != nil {
		if errors.Is(err, stream.ErrNoWork) {
			RespondWithError(w, http.StatusNotFound, "Session has no samples to report")
			return
		}
		RespondWithError(w, http.StatusInternalServerError, "Failed to start report job")
		return
	}

	var items []bundleItem
	for part := range parts {
		items = append(items, bundleItem{ID: part.ID, DisplayName: part.DisplayName, Data: part.Data})
	}

	RespondWithJSON(w, http.StatusOK, map[string]any{
		"count":   len(items),
		"total":   job.Total,
		"skipped": len(producer.Skipped()),
		"items":   items,
	})
}

func (s *Server) handleGetSampleReport(w http.ResponseWriter, r *http.Request) {
	sample, session, ok := s.sampleWithSession(w, r)
	if !ok {
		return
	}

	cfg := s.app.Config()
	data, err := report.New(cfg.Lab.Name, cfg.Lab.Address).Render(sample, session.SampleType)
	if err != nil {
		log.Printf("Failed to render report for sample %d: %v", sample.ID, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	filename := util.SanitizeFilename(sample.FarmerName) + ".pdf"
	w.Header().Set("Content-Type", stream.PartContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *Server) handleGetSampleReportPreview(w http.ResponseWriter, r *http.Request) {
	sample, session, ok := s.sampleWithSession(w, r)
	if !ok {
		return
	}

	cfg := s.app.Config()
	data, err := report.New(cfg.Lab.Name, cfg.Lab.Address).Render(sample, session.SampleType)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	preview, err := report.GeneratePreview(data)
	if err != nil {
		log.Printf("Failed to generate preview for sample %d: %v", sample.ID, err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to generate preview")
		return
	}
	RespondWithJSON(w, http.StatusOK, map[string]string{"preview": preview})
}

// sampleWithSession loads a sample and its owning session, writing the
// error response itself when either lookup fails.
func (s *Server) sampleWithSession(w http.ResponseWriter, r *http.Request) (*models.Sample, *models.Session, bool) {
	sampleID, err := strconv.ParseInt(chi.URLParam(r, "sampleID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid sample ID")
		return nil, nil, false
	}

	sample, err := s.store.GetSample(sampleID)
	if err != nil {
		RespondWithError(w, http.StatusNotFound, "Sample not found")
		return nil, nil, false
	}
	session, err := s.store.GetSession(sample.SessionID)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to load sample's session")
		return nil, nil, false
	}
	return sample, session, true
}
