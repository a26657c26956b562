package handlers

import (
	"github.com/spec-kit/mechanic-shop/internal/api/dto"
	"github.com/spec-kit/mechanic-shop/internal/domain"
)

func customerResponse(c *domain.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func mechanicResponse(m *domain.Mechanic) dto.MechanicResponse {
	return dto.MechanicResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Address:   m.Address,
		Salary:    m.Salary,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func partResponse(p *domain.Part) dto.PartResponse {
	return dto.PartResponse{
		ID:        p.ID,
		Name:      p.Name,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func ticketResponse(t *domain.ServiceTicket) dto.ServiceTicketResponse {
	return dto.ServiceTicketResponse{
		ID:          t.ID,
		VIN:         t.VIN,
		Description: t.Description,
		ServiceDate: t.ServiceDate.Format(domain.ServiceDateLayout),
		CustomerID:  t.CustomerID,
		MechanicIDs: t.MechanicIDs(),
		PartIDs:     t.PartIDs(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ticketResponses(tickets []domain.ServiceTicket) []dto.ServiceTicketResponse {
	items := make([]dto.ServiceTicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return items
}

// nonNil keeps empty id lists rendering as [] rather than null.
func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
