// Core domain types for the lab: sessions, samples, projects and invoices.
// These map directly to the database schema in the migrations.

package models

import "time"

// SampleType enumerates the kinds of tests the lab runs.
const (
	SampleTypeSoil       = "soil"
	SampleTypeWater      = "water"
	SampleTypeFertilizer = "fertilizer"
)

// Session groups an ordered batch of samples received together,
// usually from a single collection drive.
type Session struct {
	ID         int64     `json:"id"`
	ProjectID  *int64    `json:"project_id,omitempty"`
	Name       string    `json:"name"`
	SampleType string    `json:"sample_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// Sample is one unit of lab work. The farmer name doubles as the
// display name on the rendered report. Analyte values and the
// classification remarks are stored as entered by the technician;
// the thresholds behind the remarks are not computed here.
type Sample struct {
	ID         int64     `json:"id"`
	SessionID  int64     `json:"session_id"`
	Code       string    `json:"code"` // lab sample code, e.g. "S-2024-0113"
	FarmerName string    `json:"farmer_name"`
	Village    string    `json:"village"`
	Crop       string    `json:"crop"`
	PH         float64   `json:"ph"`
	EC         float64   `json:"ec"` // dS/m
	OrganicCarbon float64 `json:"organic_carbon"` // percent
	Nitrogen   float64   `json:"nitrogen"`   // kg/ha
	Phosphorus float64   `json:"phosphorus"` // kg/ha
	Potassium  float64   `json:"potassium"`  // kg/ha
	Remarks    string    `json:"remarks"`
	CollectedAt time.Time `json:"collected_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Project groups sessions for one customer engagement.
type Project struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	CustomerName string    `json:"customer_name"`
	CreatedAt    time.Time `json:"created_at"`
}

// Invoice statuses.
const (
	InvoiceStatusUnpaid  = "unpaid"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

type Invoice struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"project_id"`
	Amount    float64   `json:"amount"`
	Status    string    `json:"status"`
	DueDate   time.Time `json:"due_date"`
	CreatedAt time.Time `json:"created_at"`
}
