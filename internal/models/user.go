package models

import "time"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}
