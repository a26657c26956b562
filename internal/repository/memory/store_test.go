package memory

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

func seedTicket(t *testing.T, s *Store) (customer *domain.Customer, mechanic *domain.Mechanic, ticket *domain.ServiceTicket) {
	t.Helper()
	ctx := context.Background()
	repos := s.Repositories()

	customer = &domain.Customer{Name: "John", Email: "john@example.com"}
	require.NoError(t, repos.Customers.Create(ctx, customer))
	mechanic = &domain.Mechanic{Name: "Mike", Email: "mike@shop.com"}
	require.NoError(t, repos.Mechanics.Create(ctx, mechanic))
	ticket = &domain.ServiceTicket{VIN: "1HGCM82633A004352", CustomerID: customer.ID, Mechanics: domain.NewAssociation(mechanic.ID)}
	require.NoError(t, repos.ServiceTickets.Create(ctx, ticket))
	return customer, mechanic, ticket
}

func TestStore_DuplicateEmail(t *testing.T) {
	s := NewStore()
	repos := s.Repositories()
	ctx := context.Background()

	require.NoError(t, repos.Customers.Create(ctx, &domain.Customer{Email: "john@example.com"}))
	err := repos.Customers.Create(ctx, &domain.Customer{Email: "JOHN@example.com"})
	assert.True(t, apperrors.IsUniqueViolation(err))

	got, err := repos.Customers.GetByEmail(ctx, "John@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
}

func TestStore_NotFoundUsesNoRows(t *testing.T) {
	s := NewStore()
	_, err := s.Repositories().ServiceTickets.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.ErrorIs(t, s.Repositories().Mechanics.Delete(context.Background(), 42), sql.ErrNoRows)
}

func TestStore_AddMechanicIsSetLike(t *testing.T) {
	s := NewStore()
	_, mechanic, ticket := seedTicket(t, s)
	repo := s.Repositories().ServiceTickets
	ctx := context.Background()

	added, err := repo.AddMechanic(ctx, ticket.ID, mechanic.ID)
	require.NoError(t, err)
	assert.False(t, added)

	removed, err := repo.RemoveMechanic(ctx, ticket.ID, mechanic.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveMechanic(ctx, ticket.ID, mechanic.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = repo.AddMechanic(ctx, ticket.ID, 999)
	assert.Error(t, err)
}

func TestStore_ReadsAreCopies(t *testing.T) {
	s := NewStore()
	_, _, ticket := seedTicket(t, s)

	got, err := s.Repositories().ServiceTickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	got.Mechanics.Add(77)

	again, err := s.Repositories().ServiceTickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, again.Mechanics.Has(77))
}

func TestStore_WithinTxRollsBack(t *testing.T) {
	s := NewStore()
	_, mechanic, ticket := seedTicket(t, s)
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.ServiceTickets.RemoveMechanic(ctx, ticket.ID, mechanic.ID); err != nil {
			return err
		}
		if err := repos.Inventory.Create(ctx, &domain.Part{Name: "Filter"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Repositories().ServiceTickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{mechanic.ID}, got.MechanicIDs())

	parts, err := s.Repositories().Inventory.List(context.Background(), repository.InventoryFilter{})
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestStore_WithinTxPanicRestores(t *testing.T) {
	s := NewStore()
	_, mechanic, ticket := seedTicket(t, s)

	assert.Panics(t, func() {
		_ = s.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			_, _ = repos.ServiceTickets.RemoveMechanic(ctx, ticket.ID, mechanic.ID)
			panic("boom")
		})
	})

	got, err := s.Repositories().ServiceTickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.True(t, got.Mechanics.Has(mechanic.ID))
}

func TestStore_DeleteCascades(t *testing.T) {
	s := NewStore()
	customer, mechanic, ticket := seedTicket(t, s)
	ctx := context.Background()
	repos := s.Repositories()

	require.NoError(t, repos.Mechanics.Delete(ctx, mechanic.ID))
	got, err := repos.ServiceTickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, got.MechanicIDs())

	require.NoError(t, repos.Customers.Delete(ctx, customer.ID))
	_, err = repos.ServiceTickets.GetByID(ctx, ticket.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestStore_RankAndSearch(t *testing.T) {
	s := NewStore()
	_, busy, _ := seedTicket(t, s)
	ctx := context.Background()
	repos := s.Repositories()

	idle := &domain.Mechanic{Name: "Ida", Email: "ida@shop.com"}
	require.NoError(t, repos.Mechanics.Create(ctx, idle))

	ranking, err := repos.Mechanics.RankByTicketCount(ctx, repository.Page{})
	require.NoError(t, err)
	require.Len(t, ranking, 2)
	assert.Equal(t, busy.ID, ranking[0].ID)
	assert.Equal(t, 1, ranking[0].TicketCount)
	assert.Equal(t, 0, ranking[1].TicketCount)

	require.NoError(t, repos.Inventory.Create(ctx, &domain.Part{Name: "Brake Pad"}))
	require.NoError(t, repos.Inventory.Create(ctx, &domain.Part{Name: "Oil Filter"}))
	parts, err := repos.Inventory.List(ctx, repository.InventoryFilter{Name: "brake"})
	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, "Brake Pad", parts[0].Name)

	page2, err := repos.Inventory.List(ctx, repository.InventoryFilter{Page: repository.Page{Limit: 1, Offset: 1}})
	require.NoError(t, err)
	require.Len(t, page2, 1)
	assert.Equal(t, "Oil Filter", page2[0].Name)
}
