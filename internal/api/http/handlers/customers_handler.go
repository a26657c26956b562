package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/api/dto"
	"github.com/spec-kit/mechanic-shop/internal/auth"
	"github.com/spec-kit/mechanic-shop/internal/service"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// CustomersHandler serves /customers, including login and self-service.
type CustomersHandler struct {
	service *service.CustomerService
}

// NewCustomersHandler constructs handler.
func NewCustomersHandler(customerService *service.CustomerService) *CustomersHandler {
	return &CustomersHandler{service: customerService}
}

// Create POST /customers.
func (h *CustomersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.service.Create(c.UserContext(), service.CustomerInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(customerResponse(customer))
}

// Login POST /customers/login.
func (h *CustomersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	res, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.LoginResponse{
		Message:    "Login successful",
		Token:      res.Token,
		CustomerID: res.CustomerID,
		ExpiresAt:  res.ExpiresAt,
	})
}

// List GET /customers.
func (h *CustomersHandler) List(c *fiber.Ctx) error {
	customers, err := h.service.List(c.UserContext(), pageFromQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, customerResponse(&customers[i]))
	}
	return c.JSON(items)
}

// Get GET /customers/:id.
func (h *CustomersHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Customer")
	if err != nil {
		return err
	}
	customer, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(customerResponse(customer))
}

// MyTickets GET /customers/my-tickets. Runs behind AuthMiddleware.Handle and
// uses the customer it loaded.
func (h *CustomersHandler) MyTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized(auth.MsgMissingToken)
	}
	tickets, err := h.service.TicketsOf(c.UserContext(), principal.Customer)
	if err != nil {
		return err
	}
	return c.JSON(ticketResponses(tickets))
}

// Update PUT /customers/:id.
func (h *CustomersHandler) Update(customerID int64, c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Customer")
	if err != nil {
		return err
	}
	var req dto.UpdateCustomerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	customer, err := h.service.Update(c.UserContext(), customerID, id, service.CustomerUpdateInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(customerResponse(customer))
}

// Delete DELETE /customers/:id.
func (h *CustomersHandler) Delete(customerID int64, c *fiber.Ctx) error {
	id, err := idParam(c, "id", "Customer")
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), customerID, id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Customer %d deleted successfully", id)})
}
