package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/agrilab/agrilab-go/internal/models"
	"github.com/agrilab/agrilab-go/internal/store"
)

const (
	JobSessionPurge   = "session-purge"
	JobInvoiceOverdue = "invoice-overdue"
)

// RegisterAll registers the lab's maintenance jobs with the manager.
func RegisterAll(jm *JobManager) {
	jm.Register(JobSessionPurge, "Purge expired login sessions", runSessionPurge)
	jm.Register(JobInvoiceOverdue, "Mark overdue invoices", runInvoiceOverdue)
}

// StartJobs starts the background job scheduler.
func StartJobs(app JobContext) {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	interval := app.Config().CleanupInterval
	if interval == 0 {
		log.Println("Cleanup interval is 0, scheduled maintenance is disabled.")
		return
	}
	log.Printf("Scheduling maintenance jobs to run every %d minutes.", interval)

	for _, jobID := range []string{JobSessionPurge, JobInvoiceOverdue} {
		jobID := jobID
		_, err := s.Every(interval).Minutes().Do(func() {
			log.Println("Scheduler is triggering job:", jobID)
			// Submit the job to the manager instead of running it directly.
			// This prevents conflicts with manually triggered jobs.
			if err := app.JobManager().RunJob(jobID, app); err != nil {
				log.Printf("Scheduled job '%s' could not start: %v", jobID, err)
			}
		})
		if err != nil {
			log.Printf("Error scheduling '%s' job: %v", jobID, err)
		}
	}

	log.Println("Starting background job scheduler...")
	s.StartAsync()
}

func runSessionPurge(ctx JobContext) {
	st := store.New(ctx.DB())
	n, err := st.PurgeExpiredAuthSessions(time.Now())
	if err != nil {
		log.Printf("Session purge failed: %v", err)
		sendProgress(ctx, JobSessionPurge, fmt.Sprintf("Purge failed: %v", err), 100, true)
		return
	}
	log.Printf("Purged %d expired login sessions", n)
	sendProgress(ctx, JobSessionPurge, fmt.Sprintf("Removed %d expired sessions", n), 100, true)
}

func runInvoiceOverdue(ctx JobContext) {
	st := store.New(ctx.DB())
	n, err := st.MarkOverdueInvoices(time.Now())
	if err != nil {
		log.Printf("Overdue invoice check failed: %v", err)
		sendProgress(ctx, JobInvoiceOverdue, fmt.Sprintf("Check failed: %v", err), 100, true)
		return
	}
	if n > 0 {
		log.Printf("Marked %d invoices overdue", n)
	}
	sendProgress(ctx, JobInvoiceOverdue, fmt.Sprintf("Marked %d invoices overdue", n), 100, true)
}

// sendProgress broadcasts a job progress update to connected clients.
func sendProgress(ctx JobContext, jobID, message string, progress float64, done bool) {
	ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
		JobID:    jobID,
		Message:  message,
		Progress: progress,
		Done:     done,
	})
}
