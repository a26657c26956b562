package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/api/dto"
	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/service"
)

const ticketResource = "Service ticket"

// ServiceTicketsHandler serves /service-tickets and the relationship edits.
type ServiceTicketsHandler struct {
	service *service.ServiceTicketService
}

// NewServiceTicketsHandler constructs handler.
func NewServiceTicketsHandler(ticketService *service.ServiceTicketService) *ServiceTicketsHandler {
	return &ServiceTicketsHandler{service: ticketService}
}

// Create POST /service-tickets.
func (h *ServiceTicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateServiceTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.service.Create(c.UserContext(), service.TicketCreateInput{
		VIN:         req.VIN,
		Description: req.Description,
		ServiceDate: req.ServiceDate,
		CustomerID:  req.CustomerID,
		MechanicIDs: req.MechanicIDs,
		PartIDs:     req.PartIDs,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(ticketResponse(ticket))
}

// List GET /service-tickets.
func (h *ServiceTicketsHandler) List(c *fiber.Ctx) error {
	tickets, err := h.service.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	return c.JSON(ticketResponses(tickets))
}

// Get GET /service-tickets/:id.
func (h *ServiceTicketsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id", ticketResource)
	if err != nil {
		return err
	}
	ticket, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponse(ticket))
}

// Delete DELETE /service-tickets/:id.
func (h *ServiceTicketsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id", ticketResource)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Service Ticket %d deleted successfully", id)})
}

type ticketMutation func(svc *service.ServiceTicketService, c *fiber.Ctx, ticketID, entityID int64) (*domain.ServiceTicket, error)

// mutation builds a handler for PUT /service-tickets/:ticket_id/<verb>/:<param>.
// format receives the entity id and the ticket id.
func (h *ServiceTicketsHandler) mutation(param, resource, format string, apply ticketMutation) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ticketID, err := idParam(c, "ticket_id", ticketResource)
		if err != nil {
			return err
		}
		entityID, err := idParam(c, param, resource)
		if err != nil {
			return err
		}
		ticket, err := apply(h.service, c, ticketID, entityID)
		if err != nil {
			return err
		}
		return c.JSON(dto.TicketMutationResponse{
			Message:       fmt.Sprintf(format, entityID, ticketID),
			ServiceTicket: ticketResponse(ticket),
		})
	}
}

// AssignMechanic PUT /service-tickets/:ticket_id/assign-mechanic/:mechanic_id.
func (h *ServiceTicketsHandler) AssignMechanic() fiber.Handler {
	return h.mutation("mechanic_id", "Mechanic", "Mechanic %d assigned to Service Ticket %d",
		func(svc *service.ServiceTicketService, c *fiber.Ctx, ticketID, id int64) (*domain.ServiceTicket, error) {
			return svc.AssignMechanic(c.UserContext(), ticketID, id)
		})
}

// RemoveMechanic PUT /service-tickets/:ticket_id/remove-mechanic/:mechanic_id.
func (h *ServiceTicketsHandler) RemoveMechanic() fiber.Handler {
	return h.mutation("mechanic_id", "Mechanic", "Mechanic %d removed from Service Ticket %d",
		func(svc *service.ServiceTicketService, c *fiber.Ctx, ticketID, id int64) (*domain.ServiceTicket, error) {
			return svc.RemoveMechanic(c.UserContext(), ticketID, id)
		})
}

// AddPart PUT /service-tickets/:ticket_id/add-part/:part_id.
func (h *ServiceTicketsHandler) AddPart() fiber.Handler {
	return h.mutation("part_id", partResource, "Part %d added to Service Ticket %d",
		func(svc *service.ServiceTicketService, c *fiber.Ctx, ticketID, id int64) (*domain.ServiceTicket, error) {
			return svc.AddPart(c.UserContext(), ticketID, id)
		})
}

// RemovePart PUT /service-tickets/:ticket_id/remove-part/:part_id.
func (h *ServiceTicketsHandler) RemovePart() fiber.Handler {
	return h.mutation("part_id", partResource, "Part %d removed from Service Ticket %d",
		func(svc *service.ServiceTicketService, c *fiber.Ctx, ticketID, id int64) (*domain.ServiceTicket, error) {
			return svc.RemovePart(c.UserContext(), ticketID, id)
		})
}

// EditMechanics PUT /service-tickets/:ticket_id/edit.
func (h *ServiceTicketsHandler) EditMechanics(c *fiber.Ctx) error {
	ticketID, err := idParam(c, "ticket_id", ticketResource)
	if err != nil {
		return err
	}
	var req dto.EditMechanicsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.EditMechanics(c.UserContext(), ticketID, req.RemoveIDs, req.AddIDs)
	if err != nil {
		return err
	}
	return c.JSON(dto.EditMechanicsResponse{
		Message:       fmt.Sprintf("Service Ticket %d mechanics updated", ticketID),
		Added:         nonNil(res.Added),
		Removed:       nonNil(res.Removed),
		ServiceTicket: ticketResponse(res.Ticket),
	})
}
