package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/agrilab/agrilab-go/internal/api"
	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/stream"
	"github.com/agrilab/agrilab-go/internal/testutil"
)

// seedReportSession creates a soil session with samples for the given
// farmers and returns the session ID.
func seedReportSession(t *testing.T, server *api.Server, farmers ...string) int64 {
	t.Helper()
	session, err := server.Store().CreateSession("Rabi drive", models.SampleTypeSoil, nil)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	for i, farmer := range farmers {
		_, err := server.Store().CreateSample(&models.Sample{
			SessionID:  session.ID,
			Code:       fmt.Sprintf("RS-%d-%04d", session.ID, i+1),
			FarmerName: farmer,
			Village:    "Rampur",
			PH:         6.5,
			Nitrogen:   280,
		})
		if err != nil {
			t.Fatalf("CreateSample() failed: %v", err)
		}
	}
	return session.ID
}

func TestStreamSessionReports(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "stream_user", "password", models.RoleTechnician)

	sessionID := seedReportSession(t, server, "Ram", "Shyam")

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/sessions/%d/reports/stream", sessionID), nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	contentType := rr.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "multipart/mixed") {
		t.Fatalf("unexpected Content-Type %q", contentType)
	}
	if got := rr.Header().Get(stream.HeaderTotalCount); got != "2" {
		t.Errorf("total count header: got %q, want 2", got)
	}

	boundary, err := stream.BoundaryFromContentType(contentType)
	if err != nil {
		t.Fatalf("BoundaryFromContentType() failed: %v", err)
	}
	parts, diags, err := stream.Decode(rr.Body.Bytes(), boundary)
	if err != nil {
		t.Fatalf("Decode() failed: %v", err)
	}
	if len(diags) != 0 {
		t.Errorf("expected no part diagnostics, got %v", diags)
	}
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if parts[0].DisplayName != "Ram" || parts[1].DisplayName != "Shyam" {
		t.Errorf("parts out of order: %q, %q", parts[0].DisplayName, parts[1].DisplayName)
	}
	for _, part := range parts {
		if !bytes.HasPrefix(part.Data, []byte("%PDF")) {
			t.Errorf("part %q does not look like a PDF", part.DisplayName)
		}
	}

	// Clean completion carries the terminating boundary.
	if !bytes.Contains(rr.Body.Bytes(), []byte("--"+boundary+"--")) {
		t.Error("stream is missing the terminating boundary")
	}
}

func TestStreamSessionReportsEmpty(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "empty_user", "password", models.RoleTechnician)

	sessionID := seedReportSession(t, server) // no samples

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/sessions/%d/reports/stream", sessionID), nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("empty session should 404 before streaming, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); strings.HasPrefix(ct, "multipart/mixed") {
		t.Error("no multipart response should be started for an empty session")
	}
}

func TestStreamSessionReportsMissingSession(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "missing_user", "password", models.RoleTechnician)

	req, _ := http.NewRequest("GET", "/api/sessions/31337/reports/stream", nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestBundleSessionReports(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "bundle_user", "password", models.RoleTechnician)

	sessionID := seedReportSession(t, server, "Ram", "Shyam", "Gita")

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/sessions/%d/reports/bundle", sessionID), nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	var payload struct {
		Count int `json:"count"`
		Total int `json:"total"`
		Items []struct {
			ID          string `json:"id"`
			DisplayName string `json:"display_name"`
			Data        []byte `json:"data"`
		} `json:"items"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("Could not unmarshal response body: %v", err)
	}
	if payload.Count != 3 || payload.Total != 3 {
		t.Errorf("expected 3/3 reports, got %d/%d", payload.Count, payload.Total)
	}
	for _, item := range payload.Items {
		if !bytes.HasPrefix(item.Data, []byte("%PDF")) {
			t.Errorf("bundle item %q does not look like a PDF", item.DisplayName)
		}
	}
}

func TestGetSampleReport(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	cookie := testutil.GetAuthCookie(t, server, "report_user", "password", models.RoleTechnician)

	sessionID := seedReportSession(t, server, "Ram")
	samples, err := server.Store().GetSamplesBySession(sessionID)
	if err != nil {
		t.Fatalf("GetSamplesBySession() failed: %v", err)
	}

	req, _ := http.NewRequest("GET", fmt.Sprintf("/api/samples/%d/report", samples[0].ID), nil)
	req.AddCookie(cookie)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected Content-Type %q", ct)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("response does not look like a PDF")
	}
	if cl := rr.Header().Get("Content-Length"); cl != strconv.Itoa(rr.Body.Len()) {
		t.Errorf("Content-Length %s does not match body length %d", cl, rr.Body.Len())
	}
}
