package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/api/http/handlers"
	"github.com/spec-kit/mechanic-shop/internal/auth"
)

// RouteConfig bundles dependencies for route registration. Nil middlewares
// are skipped.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Customers      *handlers.CustomersHandler
	Mechanics      *handlers.MechanicsHandler
	Inventory      *handlers.InventoryHandler
	ServiceTickets *handlers.ServiceTicketsHandler
	AuthMiddleware *auth.AuthMiddleware

	LoginLimiter  fiber.Handler
	CreateLimiter fiber.Handler
	ListCache     fiber.Handler
}

func orPassthrough(h fiber.Handler) fiber.Handler {
	if h == nil {
		return passthrough
	}
	return h
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	login := orPassthrough(cfg.LoginLimiter)
	create := orPassthrough(cfg.CreateLimiter)
	listCache := orPassthrough(cfg.ListCache)
	protect := cfg.AuthMiddleware.Protect

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	customers := app.Group("/customers")
	customers.Post("/", create, cfg.Customers.Create)
	customers.Post("/login", login, cfg.Customers.Login)
	customers.Get("/", listCache, cfg.Customers.List)
	customers.Get("/my-tickets", cfg.AuthMiddleware.Handle, cfg.Customers.MyTickets)
	customers.Get("/:id", cfg.Customers.Get)
	customers.Put("/:id", protect(cfg.Customers.Update))
	customers.Delete("/:id", protect(cfg.Customers.Delete))

	mechanics := app.Group("/mechanics")
	mechanics.Post("/", create, cfg.Mechanics.Create)
	mechanics.Get("/", listCache, cfg.Mechanics.List)
	mechanics.Get("/ranking", listCache, cfg.Mechanics.Ranking)
	mechanics.Get("/:id", cfg.Mechanics.Get)
	mechanics.Put("/:id", cfg.Mechanics.Update)
	mechanics.Delete("/:id", cfg.Mechanics.Delete)

	inventory := app.Group("/inventory")
	inventory.Post("/", create, cfg.Inventory.Create)
	inventory.Get("/", listCache, cfg.Inventory.List)
	inventory.Get("/:id", cfg.Inventory.Get)
	inventory.Put("/:id", cfg.Inventory.Update)
	inventory.Delete("/:id", cfg.Inventory.Delete)

	tickets := app.Group("/service-tickets")
	tickets.Post("/", create, cfg.ServiceTickets.Create)
	tickets.Get("/", listCache, cfg.ServiceTickets.List)
	tickets.Get("/:id", cfg.ServiceTickets.Get)
	tickets.Delete("/:id", cfg.ServiceTickets.Delete)
	tickets.Put("/:ticket_id/assign-mechanic/:mechanic_id", cfg.ServiceTickets.AssignMechanic())
	tickets.Put("/:ticket_id/remove-mechanic/:mechanic_id", cfg.ServiceTickets.RemoveMechanic())
	tickets.Put("/:ticket_id/edit", cfg.ServiceTickets.EditMechanics)
	tickets.Put("/:ticket_id/add-part/:part_id", cfg.ServiceTickets.AddPart())
	tickets.Put("/:ticket_id/remove-part/:part_id", cfg.ServiceTickets.RemovePart())
}
