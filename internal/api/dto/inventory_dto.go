package dto

import "time"

// CreatePartRequest payload.
type CreatePartRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// UpdatePartRequest payload; omitted fields keep their value.
type UpdatePartRequest struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// PartResponse response.
type PartResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
