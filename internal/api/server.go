// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/agrilab/agrilab-go/internal/core"
	"github.com/agrilab/agrilab-go/internal/store"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	db    *sql.DB
	store *store.Store
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		db:    app.DB(),
		store: store.New(app.DB()),
	}
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics

	// API routes
	r.Post("/api/users/login", s.handleLogin)
	r.Get("/api/version", s.handleGetVersion)
	r.Get("/api/config", s.handleGetConfig)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Post("/api/users/logout", s.handleLogout)
		r.Get("/api/users/me", s.handleGetMe)

		r.Route("/api", func(r chi.Router) {
			// Bulk report delivery. The stream endpoint holds the
			// connection open for the whole job, so it sits outside the
			// request timeout applied to the rest of the API and
			// manages its own deadlines.
			r.Get("/sessions/{sessionID}/reports/stream", s.handleStreamSessionReports)
			r.Get("/sessions/{sessionID}/reports/bundle", s.handleBundleSessionReports)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(60 * time.Second))

				// Session Routes
				r.Get("/sessions", s.handleListSessions)
				r.Post("/sessions", s.handleCreateSession)
				r.Get("/sessions/{sessionID}", s.handleGetSession)
				r.Delete("/sessions/{sessionID}", s.handleDeleteSession)
				r.Get("/sessions/{sessionID}/samples", s.handleListSessionSamples)
				r.Post("/sessions/{sessionID}/samples", s.handleCreateSample)

				// Sample Routes
				r.Get("/samples/{sampleID}", s.handleGetSample)
				r.Put("/samples/{sampleID}", s.handleUpdateSample)
				r.Delete("/samples/{sampleID}", s.handleDeleteSample)
				r.Get("/samples/{sampleID}/report", s.handleGetSampleReport)
				r.Get("/samples/{sampleID}/report/preview", s.handleGetSampleReportPreview)

				// Project Routes
				r.Get("/projects", s.handleListProjects)
				r.Post("/projects", s.handleCreateProject)
				r.Get("/projects/{projectID}", s.handleGetProject)
				r.Delete("/projects/{projectID}", s.handleDeleteProject)

				// Invoice Routes
				r.Get("/invoices", s.handleListInvoices)
				r.Post("/invoices", s.handleCreateInvoice)
				r.Get("/invoices/{invoiceID}", s.handleGetInvoice)
				r.Put("/invoices/{invoiceID}/status", s.handleUpdateInvoiceStatus)

				// Admin Routes
				r.Route("/admin", func(r chi.Router) {
					r.Use(s.AdminOnlyMiddleware)

					r.Get("/jobs/status", s.handleGetAdminJobsStatus)
					r.Post("/jobs/run", s.handleRunAdminJob)

					// User Management Routes
					r.Get("/users", s.handleAdminListUsers)
					r.Post("/users", s.handleAdminCreateUser)
					r.Put("/users/{userID}", s.handleAdminUpdateUser)
					r.Delete("/users/{userID}", s.handleAdminDeleteUser)
				})
			})
		})
	})

	// WebSocket route
	r.Get("/ws/progress", func(w http.ResponseWriter, r *http.Request) {
		s.app.WsHub().ServeWs(w, r)
	})

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(); err != nil {
			RespondWithError(w, http.StatusServiceUnavailable, "Database connection failed")
			return
		}
		RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
