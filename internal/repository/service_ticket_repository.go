package repository

import (
	"context"

	"github.com/spec-kit/mechanic-shop/internal/domain"
)

// ServiceTicketRepository encapsulates ticket persistence along with the
// service_mechanic and service_inventory join tables.
type ServiceTicketRepository interface {
	Create(ctx context.Context, ticket *domain.ServiceTicket) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	LockByID(ctx context.Context, id int64) (*domain.ServiceTicket, error)
	List(ctx context.Context, page Page) ([]domain.ServiceTicket, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]domain.ServiceTicket, error)
	AddMechanic(ctx context.Context, ticketID, mechanicID int64) (bool, error)
	RemoveMechanic(ctx context.Context, ticketID, mechanicID int64) (bool, error)
	AddPart(ctx context.Context, ticketID, partID int64) (bool, error)
	RemovePart(ctx context.Context, ticketID, partID int64) (bool, error)
}

type serviceTicketRepository struct {
	db DBTX
}

// NewServiceTicketRepository instantiates repository.
func NewServiceTicketRepository(db DBTX) ServiceTicketRepository {
	return &serviceTicketRepository{db: db}
}

const ticketColumns = `id, vin, description, service_date, customer_id, created_at, updated_at`

// Create inserts the ticket and its initial mechanic and part links.
// Callers run it inside a transaction so a failed link insert discards the ticket.
func (r *serviceTicketRepository) Create(ctx context.Context, ticket *domain.ServiceTicket) error {
	const query = `
        INSERT INTO service_tickets (vin, description, service_date, customer_id)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at, updated_at`
	if err := r.db.QueryRowContext(ctx, query,
		ticket.VIN,
		ticket.Description,
		ticket.ServiceDate,
		ticket.CustomerID,
	).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt); err != nil {
		return err
	}

	for _, id := range ticket.MechanicIDs() {
		if _, err := r.AddMechanic(ctx, ticket.ID, id); err != nil {
			return err
		}
	}
	for _, id := range ticket.PartIDs() {
		if _, err := r.AddPart(ctx, ticket.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *serviceTicketRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM service_tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

func (r *serviceTicketRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM service_tickets WHERE id=$1`, id)
}

// LockByID loads the ticket and holds its row lock until the surrounding
// transaction ends, serializing concurrent relationship edits.
func (r *serviceTicketRepository) LockByID(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM service_tickets WHERE id=$1 FOR UPDATE`, id)
}

func (r *serviceTicketRepository) fetchSingle(ctx context.Context, query string, id int64) (*domain.ServiceTicket, error) {
	var ticket domain.ServiceTicket
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&ticket.ID,
		&ticket.VIN,
		&ticket.Description,
		&ticket.ServiceDate,
		&ticket.CustomerID,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := r.loadLinks(ctx, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *serviceTicketRepository) List(ctx context.Context, page Page) ([]domain.ServiceTicket, error) {
	page = page.normalized()
	return r.list(ctx, `SELECT `+ticketColumns+` FROM service_tickets ORDER BY id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
}

func (r *serviceTicketRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.ServiceTicket, error) {
	return r.list(ctx, `SELECT `+ticketColumns+` FROM service_tickets WHERE customer_id=$1 ORDER BY id`, customerID)
}

func (r *serviceTicketRepository) list(ctx context.Context, query string, args ...any) ([]domain.ServiceTicket, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	var result []domain.ServiceTicket
	for rows.Next() {
		var ticket domain.ServiceTicket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.VIN,
			&ticket.Description,
			&ticket.ServiceDate,
			&ticket.CustomerID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			rows.Close()
			return nil, err
		}
		result = append(result, ticket)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Close before issuing the link queries; a transaction holds one connection.
	rows.Close()

	for i := range result {
		if err := r.loadLinks(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *serviceTicketRepository) loadLinks(ctx context.Context, ticket *domain.ServiceTicket) error {
	mechanics, err := r.linkedIDs(ctx, `SELECT mechanic_id FROM service_mechanic WHERE service_ticket_id=$1`, ticket.ID)
	if err != nil {
		return err
	}
	parts, err := r.linkedIDs(ctx, `SELECT inventory_id FROM service_inventory WHERE service_ticket_id=$1`, ticket.ID)
	if err != nil {
		return err
	}
	ticket.Mechanics = domain.NewAssociation(mechanics...)
	ticket.Parts = domain.NewAssociation(parts...)
	return nil
}

func (r *serviceTicketRepository) linkedIDs(ctx context.Context, query string, ticketID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMechanic links a mechanic and reports whether a row was inserted.
func (r *serviceTicketRepository) AddMechanic(ctx context.Context, ticketID, mechanicID int64) (bool, error) {
	return r.exec(ctx, `
        INSERT INTO service_mechanic (service_ticket_id, mechanic_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING`, ticketID, mechanicID)
}

// RemoveMechanic unlinks a mechanic and reports whether a row was deleted.
func (r *serviceTicketRepository) RemoveMechanic(ctx context.Context, ticketID, mechanicID int64) (bool, error) {
	return r.exec(ctx, `DELETE FROM service_mechanic WHERE service_ticket_id=$1 AND mechanic_id=$2`, ticketID, mechanicID)
}

func (r *serviceTicketRepository) AddPart(ctx context.Context, ticketID, partID int64) (bool, error) {
	return r.exec(ctx, `
        INSERT INTO service_inventory (service_ticket_id, inventory_id)
        VALUES ($1,$2)
        ON CONFLICT DO NOTHING`, ticketID, partID)
}

func (r *serviceTicketRepository) RemovePart(ctx context.Context, ticketID, partID int64) (bool, error) {
	return r.exec(ctx, `DELETE FROM service_inventory WHERE service_ticket_id=$1 AND inventory_id=$2`, ticketID, partID)
}

func (r *serviceTicketRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
