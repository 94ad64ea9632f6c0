package jobs_test

import (
	"testing"
	"time"

	"github.com/agrilab/agrilab-go/internal/config"
	"github.com/agrilab/agrilab-go/internal/jobs"
	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/store"
	"github.com/agrilab/agrilab-go/internal/testutil"
	"github.com/agrilab/agrilab-go/internal/websocket"
)

func setupJobContext(t *testing.T) (*fakeJobContext, *store.Store) {
	t.Helper()
	hub := websocket.NewHub()
	go hub.Run()

	db := testutil.SetupTestDB(t)
	ctx := &fakeJobContext{db: db, cfg: &config.Config{}, ws: hub}
	mgr := jobs.NewManager(ctx)
	jobs.RegisterAll(mgr)
	ctx.jobMgr = mgr
	return ctx, store.New(db)
}

func TestSessionPurgeJob(t *testing.T) {
	ctx, st := setupJobContext(t)

	user, err := st.CreateUser("asha", "hash", models.RoleTechnician)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	// One expired and one live session.
	if _, err := ctx.DB().Exec(
		"INSERT INTO auth_sessions (token, user_id, expires_at) VALUES (?, ?, ?)",
		"expired-token", user.ID, time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("failed to insert expired session: %v", err)
	}
	liveToken, err := st.CreateAuthSession(user.ID)
	if err != nil {
		t.Fatalf("CreateAuthSession() failed: %v", err)
	}

	if err := ctx.JobManager().RunJob(jobs.JobSessionPurge, ctx); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	var count int
	ctx.DB().QueryRow("SELECT COUNT(*) FROM auth_sessions").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 remaining session, got %d", count)
	}
	if _, err := st.GetUserFromSession(liveToken); err != nil {
		t.Errorf("live session should survive the purge: %v", err)
	}
}

func TestInvoiceOverdueJob(t *testing.T) {
	ctx, st := setupJobContext(t)

	project, err := st.CreateProject("Drive", "KVK")
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	pastDue, err := st.CreateInvoice(project.ID, 900, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("CreateInvoice() failed: %v", err)
	}

	if err := ctx.JobManager().RunJob(jobs.JobInvoiceOverdue, ctx); err != nil {
		t.Fatalf("RunJob() failed: %v", err)
	}
	time.Sleep(100 * time.Millisecond)

	inv, err := st.GetInvoice(pastDue.ID)
	if err != nil {
		t.Fatalf("GetInvoice() failed: %v", err)
	}
	if inv.Status != models.InvoiceStatusOverdue {
		t.Errorf("expected overdue, got %s", inv.Status)
	}
}
