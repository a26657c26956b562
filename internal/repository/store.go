package repository

import (
	"context"
	"database/sql"
)

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Customers      CustomerRepository
	Mechanics      MechanicRepository
	Inventory      InventoryRepository
	ServiceTickets ServiceTicketRepository
}

// NewRepositories binds every repository to db.
func NewRepositories(db DBTX) Repositories {
	return Repositories{
		Customers:      NewCustomerRepository(db),
		Mechanics:      NewMechanicRepository(db),
		Inventory:      NewInventoryRepository(db),
		ServiceTickets: NewServiceTicketRepository(db),
	}
}

// Store is the unit of work used by services. Repositories returns
// non-transactional access; WithinTx runs fn against repositories that share
// one transaction, committing only when fn returns nil.
type Store interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}

type postgresStore struct {
	db    *sql.DB
	repos Repositories
}

// NewPostgresStore returns a Store backed by db.
func NewPostgresStore(db *sql.DB) Store {
	return &postgresStore{db: db, repos: NewRepositories(db)}
}

func (s *postgresStore) Repositories() Repositories {
	return s.repos
}

func (s *postgresStore) WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return WithTx(ctx, s.db, nil, func(ctx context.Context, tx DBTX) error {
		return fn(ctx, NewRepositories(tx))
	})
}
