package dto

import "time"

// CreateServiceTicketRequest payload. service_date is YYYY-MM-DD.
type CreateServiceTicketRequest struct {
	VIN         string  `json:"vin"`
	Description string  `json:"description"`
	ServiceDate string  `json:"service_date"`
	CustomerID  int64   `json:"customer_id"`
	MechanicIDs []int64 `json:"mechanic_ids"`
	PartIDs     []int64 `json:"part_ids"`
}

// EditMechanicsRequest batch-edits a ticket's mechanics; removals apply first.
type EditMechanicsRequest struct {
	AddIDs    []int64 `json:"add_ids"`
	RemoveIDs []int64 `json:"remove_ids"`
}

// ServiceTicketResponse response.
type ServiceTicketResponse struct {
	ID          int64     `json:"id"`
	VIN         string    `json:"vin"`
	Description string    `json:"description"`
	ServiceDate string    `json:"service_date"`
	CustomerID  int64     `json:"customer_id"`
	MechanicIDs []int64   `json:"mechanic_ids"`
	PartIDs     []int64   `json:"part_ids"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TicketMutationResponse wraps a ticket after a relationship change.
type TicketMutationResponse struct {
	Message       string                `json:"message"`
	ServiceTicket ServiceTicketResponse `json:"service_ticket"`
}

// EditMechanicsResponse reports the net effect of a batch edit.
type EditMechanicsResponse struct {
	Message       string                `json:"message"`
	Added         []int64               `json:"added"`
	Removed       []int64               `json:"removed"`
	ServiceTicket ServiceTicketResponse `json:"service_ticket"`
}
