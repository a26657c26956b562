// Package seed loads the demo data set: three customers, three mechanics,
// ten parts and five service tickets with their assignments.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/mechanic-shop/internal/service"
)

// DemoPassword is the password of every seeded customer.
const DemoPassword = "password123"

// Services are the write paths used to seed, so every row passes validation.
type Services struct {
	Customers      *service.CustomerService
	Mechanics      *service.MechanicService
	Inventory      *service.InventoryService
	ServiceTickets *service.ServiceTicketService
}

// Summary counts the seeded rows.
type Summary struct {
	Customers int
	Mechanics int
	Parts     int
	Tickets   int
}

var customers = []service.CustomerInput{
	{Name: "John Doe", Email: "john@example.com", Phone: "555-0101", Address: "123 Main St, City, ST 12345", Password: DemoPassword},
	{Name: "Jane Smith", Email: "jane@example.com", Phone: "555-0102", Address: "456 Oak Ave, City, ST 12345", Password: DemoPassword},
	{Name: "Bob Johnson", Email: "bob@example.com", Phone: "555-0103", Address: "789 Pine Rd, City, ST 12345", Password: DemoPassword},
}

var mechanics = []service.MechanicInput{
	{Name: "Mike Mechanic", Email: "mike@mechanicshop.com", Phone: "555-0201", Address: "100 Shop St, City, ST 12345", Salary: 65000},
	{Name: "Sarah Wrench", Email: "sarah@mechanicshop.com", Phone: "555-0202", Address: "101 Shop St, City, ST 12345", Salary: 72000},
	{Name: "Tom Tools", Email: "tom@mechanicshop.com", Phone: "555-0203", Address: "102 Shop St, City, ST 12345", Salary: 68000},
}

var parts = []service.PartInput{
	{Name: "Oil Filter", Price: 12.99},
	{Name: "Air Filter", Price: 15.99},
	{Name: "Spark Plugs (set of 4)", Price: 24.99},
	{Name: "Brake Pads (front)", Price: 89.99},
	{Name: "Brake Pads (rear)", Price: 79.99},
	{Name: "Wiper Blades (pair)", Price: 19.99},
	{Name: "Serpentine Belt", Price: 34.99},
	{Name: "Battery", Price: 149.99},
	{Name: "Transmission Fluid (quart)", Price: 8.99},
	{Name: "Coolant (gallon)", Price: 12.99},
}

// ticketSeed references customers, mechanics and parts by slice index.
type ticketSeed struct {
	vin, description, date string
	customer               int
	mechanics, parts       []int
}

var tickets = []ticketSeed{
	{"1HGBH41JXMN109186", "Oil change and filter replacement", "2026-02-01", 0, []int{0}, []int{0}},
	{"1HGBH41JXMN109186", "Brake pad replacement (front and rear)", "2026-02-05", 0, []int{0, 1}, []int{3, 4}},
	{"2HGFC2F59KH542891", "Battery replacement and diagnostic", "2026-02-10", 1, []int{2}, []int{7}},
	{"3VWFE21C04M000001", "Spark plug replacement and tune-up", "2026-02-12", 2, []int{1}, []int{2}},
	{"2HGFC2F59KH542891", "Transmission fluid change", "2026-02-14", 1, []int{0, 2}, []int{8}},
}

// Run inserts the demo data. It expects an empty store; a repeated run fails
// on the first duplicate customer email.
func Run(ctx context.Context, svc Services, logger *zap.Logger) (*Summary, error) {
	customerIDs := make([]int64, 0, len(customers))
	for _, in := range customers {
		c, err := svc.Customers.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed customer %s: %w", in.Email, err)
		}
		customerIDs = append(customerIDs, c.ID)
	}
	logger.Info("seeded customers", zap.Int("count", len(customerIDs)))

	mechanicIDs := make([]int64, 0, len(mechanics))
	for _, in := range mechanics {
		m, err := svc.Mechanics.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed mechanic %s: %w", in.Email, err)
		}
		mechanicIDs = append(mechanicIDs, m.ID)
	}
	logger.Info("seeded mechanics", zap.Int("count", len(mechanicIDs)))

	partIDs := make([]int64, 0, len(parts))
	for _, in := range parts {
		p, err := svc.Inventory.Create(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("seed part %s: %w", in.Name, err)
		}
		partIDs = append(partIDs, p.ID)
	}
	logger.Info("seeded inventory", zap.Int("count", len(partIDs)))

	for i, ts := range tickets {
		_, err := svc.ServiceTickets.Create(ctx, service.TicketCreateInput{
			VIN:         ts.vin,
			Description: ts.description,
			ServiceDate: ts.date,
			CustomerID:  customerIDs[ts.customer],
			MechanicIDs: pick(mechanicIDs, ts.mechanics),
			PartIDs:     pick(partIDs, ts.parts),
		})
		if err != nil {
			return nil, fmt.Errorf("seed ticket %d: %w", i+1, err)
		}
	}
	logger.Info("seeded service tickets", zap.Int("count", len(tickets)))

	return &Summary{
		Customers: len(customerIDs),
		Mechanics: len(mechanicIDs),
		Parts:     len(partIDs),
		Tickets:   len(tickets),
	}, nil
}

func pick(ids []int64, idx []int) []int64 {
	out := make([]int64, 0, len(idx))
	for _, i := range idx {
		out = append(out, ids[i])
	}
	return out
}
