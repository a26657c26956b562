package domain

import "time"

// ServiceDateLayout is the wire format of ServiceTicket.ServiceDate.
const ServiceDateLayout = "2006-01-02"

// VINLength is the fixed length of a vehicle identification number.
const VINLength = 17

// ServiceTicket is the aggregate for a vehicle repair job.
type ServiceTicket struct {
	ID          int64
	VIN         string
	Description string
	ServiceDate time.Time
	CustomerID  int64
	Mechanics   *Association
	Parts       *Association
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// MechanicIDs returns the assigned mechanic ids in ascending order.
func (t *ServiceTicket) MechanicIDs() []int64 {
	return t.Mechanics.IDs()
}

// PartIDs returns the attached part ids in ascending order.
func (t *ServiceTicket) PartIDs() []int64 {
	return t.Parts.IDs()
}
