package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/api/dto"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	"github.com/spec-kit/mechanic-shop/internal/service"
)

const partResource = "Inventory part"

// InventoryHandler serves /inventory.
type InventoryHandler struct {
	service *service.InventoryService
}

// NewInventoryHandler constructs handler.
func NewInventoryHandler(inventoryService *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: inventoryService}
}

// Create POST /inventory.
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var req dto.CreatePartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	part, err := h.service.Create(c.UserContext(), service.PartInput{Name: req.Name, Price: req.Price})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(partResponse(part))
}

// List GET /inventory?name=.
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	parts, err := h.service.List(c.UserContext(), repository.InventoryFilter{
		Name: c.Query("name"),
		Page: pageFromQuery(c),
	})
	if err != nil {
		return err
	}
	items := make([]dto.PartResponse, 0, len(parts))
	for i := range parts {
		items = append(items, partResponse(&parts[i]))
	}
	return c.JSON(items)
}

// Get GET /inventory/:id.
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id", partResource)
	if err != nil {
		return err
	}
	part, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(partResponse(part))
}

// Update PUT /inventory/:id.
func (h *InventoryHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id", partResource)
	if err != nil {
		return err
	}
	var req dto.UpdatePartRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	part, err := h.service.Update(c.UserContext(), id, service.PartUpdateInput{Name: req.Name, Price: req.Price})
	if err != nil {
		return err
	}
	return c.JSON(partResponse(part))
}

// Delete DELETE /inventory/:id.
func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id", partResource)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Inventory part %d deleted successfully", id)})
}
