// Package memory provides an in-process repository.Store used when no
// Postgres DSN is configured and in service and handler tests.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

var errForeignKey = errors.New("foreign key violation")

type state struct {
	customers map[int64]domain.Customer
	mechanics map[int64]domain.Mechanic
	parts     map[int64]domain.Part
	tickets   map[int64]domain.ServiceTicket

	customerSeq int64
	mechanicSeq int64
	partSeq     int64
	ticketSeq   int64
}

func newState() *state {
	return &state{
		customers: make(map[int64]domain.Customer),
		mechanics: make(map[int64]domain.Mechanic),
		parts:     make(map[int64]domain.Part),
		tickets:   make(map[int64]domain.ServiceTicket),
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.customers {
		c.customers[k] = v
	}
	for k, v := range s.mechanics {
		c.mechanics[k] = v
	}
	for k, v := range s.parts {
		c.parts[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = cloneTicket(v)
	}
	c.customerSeq, c.mechanicSeq, c.partSeq, c.ticketSeq = s.customerSeq, s.mechanicSeq, s.partSeq, s.ticketSeq
	return c
}

func cloneTicket(t domain.ServiceTicket) domain.ServiceTicket {
	t.Mechanics = t.Mechanics.Clone()
	t.Parts = t.Parts.Clone()
	return t
}

// Store keeps every table in maps guarded by a single mutex. Transactions hold
// the mutex for their whole duration and restore a snapshot on failure.
type Store struct {
	mu   sync.Mutex
	data *state
	now  func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{data: newState(), now: func() time.Time { return time.Now().UTC() }}
}

// Repositories returns repositories that lock per call.
func (s *Store) Repositories() repository.Repositories {
	return s.bind(func() func() {
		s.mu.Lock()
		return s.mu.Unlock
	})
}

// WithinTx runs fn with exclusive access. Any error or panic discards fn's writes.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err = ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, s.bind(func() func() { return func() {} }))
}

func (s *Store) bind(lock func() func()) repository.Repositories {
	sess := &session{store: s, lock: lock}
	return repository.Repositories{
		Customers:      &customerRepo{sess},
		Mechanics:      &mechanicRepo{sess},
		Inventory:      &inventoryRepo{sess},
		ServiceTickets: &ticketRepo{sess},
	}
}

type session struct {
	store *Store
	lock  func() func()
}

func (s *session) db() *state { return s.store.data }

func paginate[T any](items []T, page repository.Page) []T {
	if page.Limit <= 0 {
		page.Limit = 10
	}
	if page.Offset < 0 {
		page.Offset = 0
	}
	if page.Offset >= len(items) {
		return nil
	}
	end := page.Offset + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[page.Offset:end]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type customerRepo struct{ *session }

func (r *customerRepo) emailTaken(email string, exceptID int64) bool {
	for id, c := range r.db().customers {
		if id != exceptID && strings.EqualFold(c.Email, email) {
			return true
		}
	}
	return false
}

func (r *customerRepo) Create(_ context.Context, customer *domain.Customer) error {
	defer r.lock()()
	if r.emailTaken(customer.Email, 0) {
		return fmt.Errorf("customers.email: %w", apperrors.ErrDuplicate)
	}
	db := r.db()
	db.customerSeq++
	customer.ID = db.customerSeq
	customer.CreatedAt = r.store.now()
	customer.UpdatedAt = customer.CreatedAt
	db.customers[customer.ID] = *customer
	return nil
}

func (r *customerRepo) Update(_ context.Context, customer *domain.Customer) error {
	defer r.lock()()
	existing, ok := r.db().customers[customer.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if r.emailTaken(customer.Email, customer.ID) {
		return fmt.Errorf("customers.email: %w", apperrors.ErrDuplicate)
	}
	customer.CreatedAt = existing.CreatedAt
	customer.UpdatedAt = r.store.now()
	r.db().customers[customer.ID] = *customer
	return nil
}

// Delete removes the customer and, like ON DELETE CASCADE, their tickets.
func (r *customerRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	db := r.db()
	if _, ok := db.customers[id]; !ok {
		return sql.ErrNoRows
	}
	delete(db.customers, id)
	for tid, t := range db.tickets {
		if t.CustomerID == id {
			delete(db.tickets, tid)
		}
	}
	return nil
}

func (r *customerRepo) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	defer r.lock()()
	c, ok := r.db().customers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (r *customerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	defer r.lock()()
	for _, c := range r.db().customers {
		if strings.EqualFold(c.Email, email) {
			return &c, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *customerRepo) List(_ context.Context, page repository.Page) ([]domain.Customer, error) {
	defer r.lock()()
	db := r.db()
	var all []domain.Customer
	for _, id := range sortedKeys(db.customers) {
		all = append(all, db.customers[id])
	}
	return paginate(all, page), nil
}

type mechanicRepo struct{ *session }

func (r *mechanicRepo) emailTaken(email string, exceptID int64) bool {
	for id, m := range r.db().mechanics {
		if id != exceptID && strings.EqualFold(m.Email, email) {
			return true
		}
	}
	return false
}

func (r *mechanicRepo) Create(_ context.Context, mechanic *domain.Mechanic) error {
	defer r.lock()()
	if r.emailTaken(mechanic.Email, 0) {
		return fmt.Errorf("mechanics.email: %w", apperrors.ErrDuplicate)
	}
	db := r.db()
	db.mechanicSeq++
	mechanic.ID = db.mechanicSeq
	mechanic.CreatedAt = r.store.now()
	mechanic.UpdatedAt = mechanic.CreatedAt
	db.mechanics[mechanic.ID] = *mechanic
	return nil
}

func (r *mechanicRepo) Update(_ context.Context, mechanic *domain.Mechanic) error {
	defer r.lock()()
	existing, ok := r.db().mechanics[mechanic.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if r.emailTaken(mechanic.Email, mechanic.ID) {
		return fmt.Errorf("mechanics.email: %w", apperrors.ErrDuplicate)
	}
	mechanic.CreatedAt = existing.CreatedAt
	mechanic.UpdatedAt = r.store.now()
	r.db().mechanics[mechanic.ID] = *mechanic
	return nil
}

func (r *mechanicRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	db := r.db()
	if _, ok := db.mechanics[id]; !ok {
		return sql.ErrNoRows
	}
	delete(db.mechanics, id)
	for _, t := range db.tickets {
		t.Mechanics.Remove(id)
	}
	return nil
}

func (r *mechanicRepo) GetByID(_ context.Context, id int64) (*domain.Mechanic, error) {
	defer r.lock()()
	m, ok := r.db().mechanics[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &m, nil
}

func (r *mechanicRepo) List(_ context.Context, page repository.Page) ([]domain.Mechanic, error) {
	defer r.lock()()
	db := r.db()
	var all []domain.Mechanic
	for _, id := range sortedKeys(db.mechanics) {
		all = append(all, db.mechanics[id])
	}
	return paginate(all, page), nil
}

func (r *mechanicRepo) RankByTicketCount(_ context.Context, page repository.Page) ([]domain.MechanicWorkload, error) {
	defer r.lock()()
	db := r.db()
	counts := make(map[int64]int, len(db.mechanics))
	for _, t := range db.tickets {
		for _, id := range t.MechanicIDs() {
			counts[id]++
		}
	}
	var all []domain.MechanicWorkload
	for _, id := range sortedKeys(db.mechanics) {
		all = append(all, domain.MechanicWorkload{Mechanic: db.mechanics[id], TicketCount: counts[id]})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].TicketCount > all[j].TicketCount })
	return paginate(all, page), nil
}

type inventoryRepo struct{ *session }

func (r *inventoryRepo) Create(_ context.Context, part *domain.Part) error {
	defer r.lock()()
	db := r.db()
	db.partSeq++
	part.ID = db.partSeq
	part.CreatedAt = r.store.now()
	part.UpdatedAt = part.CreatedAt
	db.parts[part.ID] = *part
	return nil
}

func (r *inventoryRepo) Update(_ context.Context, part *domain.Part) error {
	defer r.lock()()
	existing, ok := r.db().parts[part.ID]
	if !ok {
		return sql.ErrNoRows
	}
	part.CreatedAt = existing.CreatedAt
	part.UpdatedAt = r.store.now()
	r.db().parts[part.ID] = *part
	return nil
}

func (r *inventoryRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	db := r.db()
	if _, ok := db.parts[id]; !ok {
		return sql.ErrNoRows
	}
	delete(db.parts, id)
	for _, t := range db.tickets {
		t.Parts.Remove(id)
	}
	return nil
}

func (r *inventoryRepo) GetByID(_ context.Context, id int64) (*domain.Part, error) {
	defer r.lock()()
	p, ok := r.db().parts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (r *inventoryRepo) List(_ context.Context, filter repository.InventoryFilter) ([]domain.Part, error) {
	defer r.lock()()
	db := r.db()
	term := strings.ToLower(strings.TrimSpace(filter.Name))
	var all []domain.Part
	for _, id := range sortedKeys(db.parts) {
		p := db.parts[id]
		if term != "" && !strings.Contains(strings.ToLower(p.Name), term) {
			continue
		}
		all = append(all, p)
	}
	return paginate(all, filter.Page), nil
}

type ticketRepo struct{ *session }

func (r *ticketRepo) Create(_ context.Context, ticket *domain.ServiceTicket) error {
	defer r.lock()()
	db := r.db()
	if _, ok := db.customers[ticket.CustomerID]; !ok {
		return fmt.Errorf("service_tickets.customer_id: %w", errForeignKey)
	}
	for _, id := range ticket.MechanicIDs() {
		if _, ok := db.mechanics[id]; !ok {
			return fmt.Errorf("service_mechanic.mechanic_id: %w", errForeignKey)
		}
	}
	for _, id := range ticket.PartIDs() {
		if _, ok := db.parts[id]; !ok {
			return fmt.Errorf("service_inventory.inventory_id: %w", errForeignKey)
		}
	}
	db.ticketSeq++
	ticket.ID = db.ticketSeq
	ticket.CreatedAt = r.store.now()
	ticket.UpdatedAt = ticket.CreatedAt
	ticket.Mechanics = ticket.Mechanics.Clone()
	ticket.Parts = ticket.Parts.Clone()
	db.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepo) Delete(_ context.Context, id int64) error {
	defer r.lock()()
	if _, ok := r.db().tickets[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.db().tickets, id)
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.ServiceTicket, error) {
	defer r.lock()()
	t, ok := r.db().tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	t = cloneTicket(t)
	return &t, nil
}

// LockByID is GetByID; a transaction already holds the store mutex.
func (r *ticketRepo) LockByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return r.GetByID(ctx, id)
}

func (r *ticketRepo) List(_ context.Context, page repository.Page) ([]domain.ServiceTicket, error) {
	defer r.lock()()
	return paginate(r.collect(func(domain.ServiceTicket) bool { return true }), page), nil
}

func (r *ticketRepo) ListByCustomer(_ context.Context, customerID int64) ([]domain.ServiceTicket, error) {
	defer r.lock()()
	return r.collect(func(t domain.ServiceTicket) bool { return t.CustomerID == customerID }), nil
}

func (r *ticketRepo) collect(keep func(domain.ServiceTicket) bool) []domain.ServiceTicket {
	db := r.db()
	var out []domain.ServiceTicket
	for _, id := range sortedKeys(db.tickets) {
		if t := db.tickets[id]; keep(t) {
			out = append(out, cloneTicket(t))
		}
	}
	return out
}

func (r *ticketRepo) AddMechanic(_ context.Context, ticketID, mechanicID int64) (bool, error) {
	defer r.lock()()
	if _, ok := r.db().mechanics[mechanicID]; !ok {
		return false, fmt.Errorf("service_mechanic.mechanic_id: %w", errForeignKey)
	}
	return r.mutate(ticketID, func(t *domain.ServiceTicket) domain.AssociationOutcome {
		return t.Mechanics.Add(mechanicID)
	})
}

func (r *ticketRepo) RemoveMechanic(_ context.Context, ticketID, mechanicID int64) (bool, error) {
	defer r.lock()()
	return r.mutate(ticketID, func(t *domain.ServiceTicket) domain.AssociationOutcome {
		return t.Mechanics.Remove(mechanicID)
	})
}

func (r *ticketRepo) AddPart(_ context.Context, ticketID, partID int64) (bool, error) {
	defer r.lock()()
	if _, ok := r.db().parts[partID]; !ok {
		return false, fmt.Errorf("service_inventory.inventory_id: %w", errForeignKey)
	}
	return r.mutate(ticketID, func(t *domain.ServiceTicket) domain.AssociationOutcome {
		return t.Parts.Add(partID)
	})
}

func (r *ticketRepo) RemovePart(_ context.Context, ticketID, partID int64) (bool, error) {
	defer r.lock()()
	return r.mutate(ticketID, func(t *domain.ServiceTicket) domain.AssociationOutcome {
		return t.Parts.Remove(partID)
	})
}

// mutate applies op to the stored ticket. Stored tickets always carry
// non-nil associations, so op edits them in place.
func (r *ticketRepo) mutate(ticketID int64, op func(*domain.ServiceTicket) domain.AssociationOutcome) (bool, error) {
	t, ok := r.db().tickets[ticketID]
	if !ok {
		return false, fmt.Errorf("service_ticket_id: %w", errForeignKey)
	}
	outcome := op(&t)
	if outcome.Changed() {
		t.UpdatedAt = r.store.now()
		r.db().tickets[ticketID] = t
	}
	return outcome.Changed(), nil
}
