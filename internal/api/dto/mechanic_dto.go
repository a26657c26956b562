package dto

import "time"

// CreateMechanicRequest payload.
type CreateMechanicRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Salary  float64 `json:"salary"`
}

// UpdateMechanicRequest payload; omitted fields keep their value.
type UpdateMechanicRequest struct {
	Name    *string  `json:"name"`
	Email   *string  `json:"email"`
	Phone   *string  `json:"phone"`
	Address *string  `json:"address"`
	Salary  *float64 `json:"salary"`
}

// MechanicResponse response.
type MechanicResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Salary    float64   `json:"salary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MechanicRankingResponse is one row of the workload ranking.
type MechanicRankingResponse struct {
	MechanicResponse
	TicketCount int `json:"ticket_count"`
}
