package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mechanic-shop/internal/domain"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func TestCustomerRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)INSERT\s+INTO\s+customers\s*\(name, email, phone, address, password_hash\).*RETURNING\s+id, created_at, updated_at`).
		WithArgs("John", "john@example.com", "555-0100", "1 Main St", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	c := &domain.Customer{Name: "John", Email: "john@example.com", Phone: "555-0100", Address: "1 Main St", PasswordHash: "hash"}
	require.NoError(t, NewCustomerRepository(db).Create(context.Background(), c))
	assert.Equal(t, int64(7), c.ID)
	assert.Equal(t, now, c.CreatedAt)
}

func TestCustomerRepository_GetByEmailNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM customers WHERE LOWER\(email\)=LOWER\(\$1\)`).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	_, err := NewCustomerRepository(db).GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCustomerRepository_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM customers WHERE id=\$1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewCustomerRepository(db).Delete(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestCustomerRepository_List(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "password_hash", "created_at", "updated_at"}).
		AddRow(int64(1), "John", "john@example.com", "1", "a", "h1", now, now).
		AddRow(int64(2), "Jane", "jane@example.com", "2", "b", "h2", now, now)
	mock.ExpectQuery(`FROM customers ORDER BY id LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 0).
		WillReturnRows(rows)

	got, err := NewCustomerRepository(db).List(context.Background(), Page{})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "jane@example.com", got[1].Email)
}

func TestMechanicRepository_RankByTicketCount(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "phone", "address", "salary", "created_at", "updated_at", "ticket_count"}).
		AddRow(int64(3), "Mike", "mike@shop.com", "1", "a", 50000.0, now, now, 4).
		AddRow(int64(1), "Sara", "sara@shop.com", "2", "b", 52000.0, now, now, 0)
	mock.ExpectQuery(`(?s)LEFT JOIN service_mechanic sm.*ORDER BY ticket_count DESC, m.id`).
		WithArgs(5, 0).
		WillReturnRows(rows)

	got, err := NewMechanicRepository(db).RankByTicketCount(context.Background(), Page{Limit: 5})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, 4, got[0].TicketCount)
	assert.Equal(t, 0, got[1].TicketCount)
}

func TestInventoryRepository_ListByName(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`WHERE 1=1 AND LOWER\(name\) LIKE \$1 ORDER BY id LIMIT \$2 OFFSET \$3`).
		WithArgs("%brake%", 10, 20).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "created_at", "updated_at"}).
			AddRow(int64(4), "Brake Pad", 39.99, now, now))

	got, err := NewInventoryRepository(db).List(context.Background(), InventoryFilter{Name: " Brake ", Page: Page{Limit: 10, Offset: 20}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Brake Pad", got[0].Name)
}

func TestServiceTicketRepository_GetByIDLoadsLinks(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM service_tickets WHERE id=\$1$`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "vin", "description", "service_date", "customer_id", "created_at", "updated_at"}).
			AddRow(int64(1), "1HGCM82633A004352", "Oil change", date, int64(7), now, now))
	mock.ExpectQuery(`SELECT mechanic_id FROM service_mechanic WHERE service_ticket_id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"mechanic_id"}).AddRow(int64(3)).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT inventory_id FROM service_inventory WHERE service_ticket_id=\$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"inventory_id"}))

	got, err := NewServiceTicketRepository(db).GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, got.MechanicIDs())
	assert.Empty(t, got.PartIDs())
	assert.Equal(t, date, got.ServiceDate)
}

func TestServiceTicketRepository_LockByIDUsesRowLock(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(`FROM service_tickets WHERE id=\$1 FOR UPDATE`).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewServiceTicketRepository(db).LockByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestServiceTicketRepository_AddMechanicReportsDuplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := NewServiceTicketRepository(db)

	insert := `(?s)INSERT INTO service_mechanic \(service_ticket_id, mechanic_id\).*ON CONFLICT DO NOTHING`
	mock.ExpectExec(insert).WithArgs(int64(1), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(insert).WithArgs(int64(1), int64(1)).WillReturnResult(sqlmock.NewResult(0, 0))

	added, err := repo.AddMechanic(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMechanic(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.False(t, added)
}

func TestServiceTicketRepository_RemovePart(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM service_inventory WHERE service_ticket_id=\$1 AND inventory_id=\$2`).
		WithArgs(int64(2), int64(8)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := NewServiceTicketRepository(db).RemovePart(context.Background(), 2, 8)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPostgresStore_CreateTicketInTransaction(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO service_tickets`).
		WithArgs("1HGCM82633A004352", "Brakes", date, int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(11), now, now))
	mock.ExpectExec(`INSERT INTO service_mechanic`).WithArgs(int64(11), int64(1)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO service_mechanic`).WithArgs(int64(11), int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO service_inventory`).WithArgs(int64(11), int64(5)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ticket := &domain.ServiceTicket{
		VIN:         "1HGCM82633A004352",
		Description: "Brakes",
		ServiceDate: date,
		CustomerID:  7,
		Mechanics:   domain.NewAssociation(2, 1),
		Parts:       domain.NewAssociation(5),
	}
	err := NewPostgresStore(db).WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.ServiceTickets.Create(ctx, ticket)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), ticket.ID)
}

func TestPostgresStore_RollsBackOnLinkFailure(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now()
	fkErr := errors.New("violates foreign key constraint")

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO service_tickets`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(12), now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO service_mechanic`)).
		WithArgs(int64(12), int64(99)).
		WillReturnError(fkErr)
	mock.ExpectRollback()

	ticket := &domain.ServiceTicket{VIN: "1HGCM82633A004352", Description: "x", CustomerID: 7, Mechanics: domain.NewAssociation(99)}
	err := NewPostgresStore(db).WithinTx(context.Background(), func(ctx context.Context, repos Repositories) error {
		return repos.ServiceTickets.Create(ctx, ticket)
	})
	assert.ErrorIs(t, err, fkErr)
}
