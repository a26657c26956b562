package domain

import "time"

// Customer owns service tickets and authenticates with email and password.
type Customer struct {
	ID           int64
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
