package client_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agrilab/agrilab-go/internal/client"
	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/testutil"
)

func TestConnectVersionGate(t *testing.T) {
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"version":"2.1.0"}`))
	}))
	defer fake.Close()

	t.Run("Incompatible Major Version", func(t *testing.T) {
		c, err := client.New(fake.URL, "1.0.0")
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		err = c.Connect(context.Background())
		if err == nil {
			t.Fatal("expected version incompatibility error")
		}
		if !strings.Contains(err.Error(), "incompatible") {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Same Major Version", func(t *testing.T) {
		c, _ := client.New(fake.URL, "2.0.3")
		if err := c.Connect(context.Background()); err != nil {
			t.Errorf("Connect() failed: %v", err)
		}
	})

	t.Run("Dev Build Skips Gate", func(t *testing.T) {
		c, _ := client.New(fake.URL, "dev")
		if err := c.Connect(context.Background()); err != nil {
			t.Errorf("Connect() failed: %v", err)
		}
	})
}

func TestDownloadSessionReports(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	testutil.GetAuthCookie(t, server, "clientuser", "password", models.RoleTechnician)

	session, err := server.Store().CreateSession("Rabi drive", models.SampleTypeSoil, nil)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	for i, farmer := range []string{"Ram", "Shyam"} {
		_, err := server.Store().CreateSample(&models.Sample{
			SessionID:  session.ID,
			Code:       "DL-" + string(rune('A'+i)),
			FarmerName: farmer,
			PH:         6.9,
		})
		if err != nil {
			t.Fatalf("CreateSample() failed: %v", err)
		}
	}

	c, err := client.New(ts.URL, "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	c.Tracker().SetResetDelay(time.Minute)
	if err := c.Login(context.Background(), "clientuser", "password"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	outDir := t.TempDir()
	result, err := c.DownloadSessionReports(context.Background(), session.ID, outDir)
	if err != nil {
		t.Fatalf("DownloadSessionReports() failed: %v", err)
	}

	if result.Requested != 2 || result.Received != 2 || result.Saved != 2 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Dropped != 0 || result.Truncated {
		t.Errorf("stream should be clean: %+v", result)
	}

	for _, name := range []string{"Ram.pdf", "Shyam.pdf"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Fatalf("expected saved report %s: %v", name, err)
		}
		if !strings.HasPrefix(string(data), "%PDF") {
			t.Errorf("%s does not look like a PDF", name)
		}
	}

	snap := c.Tracker().Snapshot()
	if !snap.Completed || snap.Errored {
		t.Errorf("tracker should be completed: %+v", snap)
	}
	if snap.Current != 2 || snap.Total != 2 {
		t.Errorf("tracker counters wrong: %+v", snap)
	}
}

func TestDownloadSessionReportsEmpty(t *testing.T) {
	server, _ := testutil.SetupTestServer(t)
	ts := httptest.NewServer(server.Router())
	defer ts.Close()

	testutil.GetAuthCookie(t, server, "emptyuser", "password", models.RoleTechnician)

	session, err := server.Store().CreateSession("Empty drive", models.SampleTypeSoil, nil)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	c, _ := client.New(ts.URL, "test")
	if err := c.Login(context.Background(), "emptyuser", "password"); err != nil {
		t.Fatalf("Login() failed: %v", err)
	}

	_, err = c.DownloadSessionReports(context.Background(), session.ID, t.TempDir())
	if !errors.Is(err, client.ErrNoReports) {
		t.Errorf("expected ErrNoReports, got %v", err)
	}
}
