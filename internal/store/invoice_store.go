package store

import (
	"time"

	"github.com/agrilab/agrilab-go/internal/models"
)

// CreateInvoice bills a project.
func (s *Store) CreateInvoice(projectID int64, amount float64, dueDate time.Time) (*models.Invoice, error) {
	res, err := s.db.Exec(
		"INSERT INTO invoices (project_id, amount, status, due_date, created_at) VALUES (?, ?, ?, ?, ?)",
		projectID, amount, models.InvoiceStatusUnpaid, dueDate, time.Now())
	if err != nil {
		return nil, err
	}
	id, _ := res.LastInsertId()
	return s.GetInvoice(id)
}

// GetInvoice retrieves a single invoice by its primary key.
func (s *Store) GetInvoice(id int64) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.QueryRow(
		"SELECT id, project_id, amount, status, due_date, created_at FROM invoices WHERE id = ?", id).
		Scan(&inv.ID, &inv.ProjectID, &inv.Amount, &inv.Status, &inv.DueDate, &inv.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListInvoices returns all invoices, most recent first.
func (s *Store) ListInvoices() ([]*models.Invoice, error) {
	rows, err := s.db.Query(
		"SELECT id, project_id, amount, status, due_date, created_at FROM invoices ORDER BY created_at DESC, id DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.ProjectID, &inv.Amount, &inv.Status, &inv.DueDate, &inv.CreatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, &inv)
	}
	return invoices, rows.Err()
}

// UpdateInvoiceStatus sets an invoice's payment status.
func (s *Store) UpdateInvoiceStatus(id int64, status string) error {
	_, err := s.db.Exec("UPDATE invoices SET status = ? WHERE id = ?", status, id)
	return err
}

// MarkOverdueInvoices flips unpaid invoices past their due date to
// overdue. Returns how many were updated; run periodically by the job
// scheduler.
func (s *Store) MarkOverdueInvoices(now time.Time) (int64, error) {
	res, err := s.db.Exec(
		"UPDATE invoices SET status = ? WHERE status = ? AND due_date < ?",
		models.InvoiceStatusOverdue, models.InvoiceStatusUnpaid, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
