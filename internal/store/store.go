// To handle all database interactions. This is our
// data access layer, keeping SQL queries separate from business logic.

package store

import (
	"database/sql"
	"time"

	"github.com/agrilab/agrilab-go/internal/models"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateSession records a new sample collection session.
func (s *Store) CreateSession(name, sampleType string, projectID *int64) (*models.Session, error) {
	res, err := s.db.Exec(
		"INSERT INTO sessions (project_id, name, sample_type, created_at) VALUES (?, ?, ?, ?)",
		projectID, name, sampleType, time.Now())
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetSession(id)
}

// GetSession retrieves a single session by its primary key.
func (s *Store) GetSession(id int64) (*models.Session, error) {
	var sess models.Session
	err := s.db.QueryRow(
		"SELECT id, project_id, name, sample_type, created_at FROM sessions WHERE id = ?", id).
		Scan(&sess.ID, &sess.ProjectID, &sess.Name, &sess.SampleType, &sess.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// ListSessions returns all sessions, newest first.
func (s *Store) ListSessions() ([]*models.Session, error) {
	rows, err := s.db.Query(
		"SELECT id, project_id, name, sample_type, created_at FROM sessions ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*models.Session
	for rows.Next() {
		var sess models.Session
		if err := rows.Scan(&sess.ID, &sess.ProjectID, &sess.Name, &sess.SampleType, &sess.CreatedAt); err != nil {
			return nil, err
		}
		sessions = append(sessions, &sess)
	}
	return sessions, rows.Err()
}

// DeleteSession removes a session; its samples go with it via the
// foreign key cascade.
func (s *Store) DeleteSession(id int64) error {
	_, err := s.db.Exec("DELETE FROM sessions WHERE id = ?", id)
	return err
}

const sampleColumns = `id, session_id, code, farmer_name, village, crop,
	ph, ec, organic_carbon, nitrogen, phosphorus, potassium, remarks,
	collected_at, created_at, updated_at`

func scanSample(row interface{ Scan(...any) error }) (*models.Sample, error) {
	var sm models.Sample
	err := row.Scan(&sm.ID, &sm.SessionID, &sm.Code, &sm.FarmerName, &sm.Village, &sm.Crop,
		&sm.PH, &sm.EC, &sm.OrganicCarbon, &sm.Nitrogen, &sm.Phosphorus, &sm.Potassium, &sm.Remarks,
		&sm.CollectedAt, &sm.CreatedAt, &sm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sm, nil
}

// CreateSample adds a sample to a session.
func (s *Store) CreateSample(sm *models.Sample) (*models.Sample, error) {
	now := time.Now()
	if sm.CollectedAt.IsZero() {
		sm.CollectedAt = now
	}
	res, err := s.db.Exec(`INSERT INTO samples
		(session_id, code, farmer_name, village, crop, ph, ec, organic_carbon,
		 nitrogen, phosphorus, potassium, remarks, collected_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sm.SessionID, sm.Code, sm.FarmerName, sm.Village, sm.Crop, sm.PH, sm.EC, sm.OrganicCarbon,
		sm.Nitrogen, sm.Phosphorus, sm.Potassium, sm.Remarks, sm.CollectedAt, now, now)
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetSample(id)
}

// UpdateSample rewrites a sample's measured values and metadata.
func (s *Store) UpdateSample(sm *models.Sample) error {
	_, err := s.db.Exec(`UPDATE samples SET
		farmer_name = ?, village = ?, crop = ?, ph = ?, ec = ?, organic_carbon = ?,
		nitrogen = ?, phosphorus = ?, potassium = ?, remarks = ?, collected_at = ?, updated_at = ?
		WHERE id = ?`,
		sm.FarmerName, sm.Village, sm.Crop, sm.PH, sm.EC, sm.OrganicCarbon,
		sm.Nitrogen, sm.Phosphorus, sm.Potassium, sm.Remarks, sm.CollectedAt, time.Now(), sm.ID)
	return err
}

// GetSample retrieves a single sample by its primary key.
func (s *Store) GetSample(id int64) (*models.Sample, error) {
	return scanSample(s.db.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE id = ?", id))
}

// GetSampleByCode retrieves a sample by its unique lab code.
func (s *Store) GetSampleByCode(code string) (*models.Sample, error) {
	return scanSample(s.db.QueryRow("SELECT "+sampleColumns+" FROM samples WHERE code = ?", code))
}

// GetSamplesBySession returns a session's samples in insertion order.
// This order defines the wire order of a bulk report job.
func (s *Store) GetSamplesBySession(sessionID int64) ([]*models.Sample, error) {
	rows, err := s.db.Query("SELECT "+sampleColumns+" FROM samples WHERE session_id = ? ORDER BY id ASC", sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []*models.Sample
	for rows.Next() {
		sm, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

// DeleteSample removes one sample.
func (s *Store) DeleteSample(id int64) error {
	_, err := s.db.Exec("DELETE FROM samples WHERE id = ?", id)
	return err
}
