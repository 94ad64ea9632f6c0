package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/agrilab/agrilab-go/internal/jobs"
	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/testutil"
)

func TestAdminHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()

	adminCookie := testutil.GetAuthCookie(t, server, "testadmin", "password", models.RoleAdmin)
	techCookie := testutil.GetAuthCookie(t, server, "testtech", "password", models.RoleTechnician)

	t.Run("Run Job", func(t *testing.T) {
		payload := `{"job_name":"` + jobs.JobSessionPurge + `"}`
		req, _ := http.NewRequest("POST", "/api/admin/jobs/run", bytes.NewBufferString(payload))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusAccepted {
			t.Errorf("handler returned wrong status code: got %v want %v %s", status, http.StatusAccepted, rr.Body.String())
		}
	})

	t.Run("Jobs Status", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/jobs/status", nil)
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Fatalf("handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var statuses []jobs.JobStatus
		if err := json.Unmarshal(rr.Body.Bytes(), &statuses); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if len(statuses) == 0 {
			t.Error("expected registered jobs in status list")
		}
	})

	t.Run("Unauthorized Access", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/admin/jobs/status", nil)
		req.AddCookie(techCookie) // Use a technician cookie
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusForbidden {
			t.Errorf("handler returned wrong status code: got %v want %v", status, http.StatusForbidden)
		}
	})

	t.Run("Get Version", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/version", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		if status := rr.Code; status != http.StatusOK {
			t.Errorf("handler returned wrong status code: got %v want %v %s", status, http.StatusOK, rr.Body.String())
		}
	})
}

func TestAdminUserHandlers(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	router := server.Router()
	adminCookie := testutil.GetAuthCookie(t, server, "rootadmin", "password", models.RoleAdmin)

	doJSON := func(method, url, body string) *httptest.ResponseRecorder {
		req, _ := http.NewRequest(method, url, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(adminCookie)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Create User", func(t *testing.T) {
		rr := doJSON("POST", "/api/admin/users", `{"username":"newtech", "password":"secret", "role":"technician"}`)
		if rr.Code != http.StatusCreated {
			t.Fatalf("got status %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
		}
	})

	t.Run("Create User with Bad Role", func(t *testing.T) {
		rr := doJSON("POST", "/api/admin/users", `{"username":"x", "password":"y", "role":"superuser"}`)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})

	t.Run("Duplicate Username Conflicts", func(t *testing.T) {
		rr := doJSON("POST", "/api/admin/users", `{"username":"newtech", "password":"secret", "role":"technician"}`)
		if rr.Code != http.StatusConflict {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusConflict)
		}
	})

	t.Run("List Users", func(t *testing.T) {
		rr := doJSON("GET", "/api/admin/users", "")
		if rr.Code != http.StatusOK {
			t.Fatalf("got status %d, want %d", rr.Code, http.StatusOK)
		}
		var users []models.User
		if err := json.Unmarshal(rr.Body.Bytes(), &users); err != nil {
			t.Fatalf("Could not unmarshal response body: %v", err)
		}
		if len(users) < 2 {
			t.Errorf("expected at least 2 users, got %d", len(users))
		}
	})

	t.Run("Cannot Delete Own Account", func(t *testing.T) {
		admin, err := server.Store().GetUserByUsername("rootadmin")
		if err != nil {
			t.Fatalf("GetUserByUsername() failed: %v", err)
		}
		rr := doJSON("DELETE", "/api/admin/users/"+strconv.FormatInt(admin.ID, 10), "")
		if rr.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want %d", rr.Code, http.StatusBadRequest)
		}
	})
}
