package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/mechanic-shop/internal/auth"
	"github.com/spec-kit/mechanic-shop/internal/events"
	"github.com/spec-kit/mechanic-shop/internal/repository/memory"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, e events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) types() []events.EventType {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]events.EventType, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store      *memory.Store
	tokens     *auth.TokenManager
	dispatcher *recordingDispatcher
	customers  *CustomerService
	mechanics  *MechanicService
	inventory  *InventoryService
	tickets    *ServiceTicketService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens := auth.NewTokenManager("service-test-secret", time.Hour)
	dispatcher := &recordingDispatcher{}
	return &fixture{
		store:      store,
		tokens:     tokens,
		dispatcher: dispatcher,
		customers: NewCustomerService(CustomerDependencies{
			Store:  store,
			Hasher: auth.NewPasswordHasher(bcrypt.MinCost),
			Tokens: tokens,
		}),
		mechanics: NewMechanicService(store),
		inventory: NewInventoryService(store),
		tickets:   NewServiceTicketService(ServiceTicketDependencies{Store: store, Dispatcher: dispatcher}),
	}
}

func (f *fixture) customer(t *testing.T, email string) int64 {
	t.Helper()
	c, err := f.customers.Create(context.Background(), CustomerInput{
		Name: "Customer", Email: email, Phone: "555-0101", Address: "123 Main St", Password: "password123",
	})
	require.NoError(t, err)
	return c.ID
}

func (f *fixture) mechanic(t *testing.T, email string) int64 {
	t.Helper()
	m, err := f.mechanics.Create(context.Background(), MechanicInput{
		Name: "Mechanic", Email: email, Phone: "555-0201", Address: "100 Shop St", Salary: 65000,
	})
	require.NoError(t, err)
	return m.ID
}

func (f *fixture) part(t *testing.T, name string, price float64) int64 {
	t.Helper()
	p, err := f.inventory.Create(context.Background(), PartInput{Name: name, Price: price})
	require.NoError(t, err)
	return p.ID
}

func (f *fixture) ticket(t *testing.T, customerID int64, mechanicIDs ...int64) int64 {
	t.Helper()
	tk, err := f.tickets.Create(context.Background(), TicketCreateInput{
		VIN: "1HGBH41JXMN109186", Description: "Oil change", ServiceDate: "2026-02-01",
		CustomerID: customerID, MechanicIDs: mechanicIDs,
	})
	require.NoError(t, err)
	return tk.ID
}

func requireDomainError(t *testing.T, err error, status int, message string) *apperrors.DomainError {
	t.Helper()
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	require.Equal(t, status, de.HTTPStatus)
	if message != "" {
		require.Equal(t, message, de.Message)
	}
	return de
}
