package core

import (
	"database/sql"
	"fmt"
	"log"
	"sync"

	"github.com/agrilab/agrilab-go/internal/config"
	"github.com/agrilab/agrilab-go/internal/db"
	"github.com/agrilab/agrilab-go/internal/jobs"
	"github.com/agrilab/agrilab-go/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI.
type App struct {
	mu         sync.RWMutex
	cfg        *config.Config
	database   *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
	version    string
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, and running migrations.
func New(version string) (*App, error) {
	// Load configuration from config.yml
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize the database connection
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		// We can't proceed without a valid database schema.
		// Close the DB connection before failing.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	app := &App{cfg: cfg, database: database, wsHub: hub, version: version}
	app.jobManager = jobs.NewManager(app)
	jobs.RegisterAll(app.jobManager)

	// Pick up lab identity edits without a restart.
	config.Watch(app.setConfig)

	log.Println("Core application setup complete.")
	return app, nil
}

// NewWithDeps wires an App from pre-built dependencies. Used by tests
// and anywhere the config/database lifecycle is managed externally.
func NewWithDeps(cfg *config.Config, database *sql.DB, hub *websocket.Hub, version string) *App {
	app := &App{cfg: cfg, database: database, wsHub: hub, version: version}
	app.jobManager = jobs.NewManager(app)
	jobs.RegisterAll(app.jobManager)
	return app
}

func (a *App) DB() *sql.DB { return a.database }

func (a *App) Config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) WsHub() *websocket.Hub { return a.wsHub }

func (a *App) JobManager() *jobs.JobManager { return a.jobManager }

func (a *App) Version() string { return a.version }

func (a *App) setConfig(cfg *config.Config) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
}

// Close gracefully closes the application's resources, like the DB connection.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}
