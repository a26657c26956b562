package domain

import "time"

// Mechanic works on service tickets.
type Mechanic struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Address   string
	Salary    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MechanicWorkload pairs a mechanic with the number of tickets they are assigned to.
type MechanicWorkload struct {
	Mechanic
	TicketCount int
}
