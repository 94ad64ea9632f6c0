package store

import (
	"time"

	"github.com/agrilab/agrilab-go/internal/models"
)

// CreateProject adds a new customer project.
func (s *Store) CreateProject(name, customerName string) (*models.Project, error) {
	res, err := s.db.Exec(
		"INSERT INTO projects (name, customer_name, created_at) VALUES (?, ?, ?)",
		name, customerName, time.Now())
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetProject(id)
}

// GetProject retrieves a single project by its primary key.
func (s *Store) GetProject(id int64) (*models.Project, error) {
	var p models.Project
	err := s.db.QueryRow(
		"SELECT id, name, customer_name, created_at FROM projects WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.CustomerName, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects() ([]*models.Project, error) {
	rows, err := s.db.Query("SELECT id, name, customer_name, created_at FROM projects ORDER BY name ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.CustomerName, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// DeleteProject removes a project. Sessions keep existing with a null
// project reference; invoices are deleted by the cascade.
func (s *Store) DeleteProject(id int64) error {
	_, err := s.db.Exec("DELETE FROM projects WHERE id = ?", id)
	return err
}
