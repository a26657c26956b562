package domain

import "time"

// Part is an inventory item that can be used on service tickets.
type Part struct {
	ID        int64
	Name      string
	Price     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}
