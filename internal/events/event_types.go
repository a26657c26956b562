package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated    EventType = "ticket_created"
	EventTicketDeleted    EventType = "ticket_deleted"
	EventMechanicAssigned EventType = "mechanic_assigned"
	EventMechanicRemoved  EventType = "mechanic_removed"
	EventMechanicsEdited  EventType = "mechanics_edited"
	EventPartAdded        EventType = "part_added"
	EventPartRemoved      EventType = "part_removed"
)

// Event represents a domain event emitted by services after a commit.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	TicketID   int64     `json:"ticket_id"`
	CustomerID int64     `json:"customer_id"`
	Timestamp  time.Time `json:"timestamp"`
	Payload    any       `json:"payload"`
}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(eventType EventType, ticketID, customerID int64, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		TicketID:   ticketID,
		CustomerID: customerID,
		Timestamp:  time.Now().UTC(),
		Payload:    payload,
	}
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	VIN         string  `json:"vin"`
	ServiceDate string  `json:"service_date"`
	MechanicIDs []int64 `json:"mechanic_ids"`
	PartIDs     []int64 `json:"part_ids"`
}

// AssociationChangedPayload is published for a single mechanic or part link change.
type AssociationChangedPayload struct {
	EntityID int64 `json:"entity_id"`
}

// MechanicsEditedPayload lists the net membership change of a batch edit.
type MechanicsEditedPayload struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
}
