// Shared test server setup utilities, used by the API and client tests.

package testutil

import (
	"database/sql"
	"testing"

	"github.com/agrilab/agrilab-go/internal/api"
	"github.com/agrilab/agrilab-go/internal/config"
	"github.com/agrilab/agrilab-go/internal/core"
	"github.com/agrilab/agrilab-go/internal/websocket"
)

func SetupTestApp(t *testing.T) *core.App {
	t.Helper()
	db := SetupTestDB(t)

	cfg := &config.Config{}
	cfg.Lab.Name = "Test Agri Lab"
	hub := websocket.NewHub()
	go hub.Run()
	return core.NewWithDeps(cfg, db, hub, "test")
}

// SetupTestServer initializes a full core.App and api.Server for integration testing.
func SetupTestServer(t *testing.T) (*api.Server, *sql.DB) {
	t.Helper()
	app := SetupTestApp(t)
	server := api.NewServer(app)
	return server, app.DB()
}
