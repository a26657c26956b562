package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/api/dto"
	"github.com/spec-kit/mechanic-shop/internal/service"
)

// MechanicsHandler serves /mechanics.
type MechanicsHandler struct {
	service *service.MechanicService
}

// NewMechanicsHandler constructs handler.
func NewMechanicsHandler(mechanicService *service.MechanicService) *MechanicsHandler {
	return &MechanicsHandler{service: mechanicService}
}

// Create POST /mechanics.
func (h *MechanicsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateMechanicRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	mechanic, err := h.service.Create(c.UserContext(), service.MechanicInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Salary:  req.Salary,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(mechanicResponse(mechanic))
}

// List GET /mechanics.
func (h *MechanicsHandler) List(c *fiber.Ctx) error {
	mechanics, err := h.service.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.MechanicResponse, 0, len(mechanics))
	for i := range mechanics {
		items = append(items, mechanicResponse(&mechanics[i]))
	}
	return c.JSON(items)
}

// Ranking GET /mechanics/ranking.
func (h *MechanicsHandler) Ranking(c *fiber.Ctx) error {
	ranking, err := h.service.Ranking(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.MechanicRankingResponse, 0, len(ranking))
	for i := range ranking {
		items = append(items, dto.MechanicRankingResponse{
			MechanicResponse: mechanicResponse(&ranking[i].Mechanic),
			TicketCount:      ranking[i].TicketCount,
		})
	}
	return c.JSON(items)
}

// Get GET /mechanics/:id.
func (h *MechanicsHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Mechanic")
	if err != nil {
		return err
	}
	mechanic, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(mechanicResponse(mechanic))
}

// Update PUT /mechanics/:id.
func (h *MechanicsHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Mechanic")
	if err != nil {
		return err
	}
	var req dto.UpdateMechanicRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	mechanic, err := h.service.Update(c.UserContext(), id, service.MechanicUpdateInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Salary:  req.Salary,
	})
	if err != nil {
		return err
	}
	return c.JSON(mechanicResponse(mechanic))
}

// Delete DELETE /mechanics/:id.
func (h *MechanicsHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Mechanic")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Mechanic %d deleted successfully", id)})
}
