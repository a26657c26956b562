package repository

import (
	"context"

	"github.com/spec-kit/mechanic-shop/internal/domain"
)

// MechanicRepository manages persistence for mechanics.
type MechanicRepository interface {
	Create(ctx context.Context, mechanic *domain.Mechanic) error
	Update(ctx context.Context, mechanic *domain.Mechanic) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Mechanic, error)
	List(ctx context.Context, page Page) ([]domain.Mechanic, error)
	RankByTicketCount(ctx context.Context, page Page) ([]domain.MechanicWorkload, error)
}

type mechanicRepository struct {
	db DBTX
}

// NewMechanicRepository constructs repository.
func NewMechanicRepository(db DBTX) MechanicRepository {
	return &mechanicRepository{db: db}
}

func (r *mechanicRepository) Create(ctx context.Context, mechanic *domain.Mechanic) error {
	const query = `
        INSERT INTO mechanics (name, email, phone, address, salary)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query,
		mechanic.Name,
		mechanic.Email,
		mechanic.Phone,
		mechanic.Address,
		mechanic.Salary,
	).Scan(&mechanic.ID, &mechanic.CreatedAt, &mechanic.UpdatedAt)
}

func (r *mechanicRepository) Update(ctx context.Context, mechanic *domain.Mechanic) error {
	const query = `
        UPDATE mechanics SET name=$1, email=$2, phone=$3, address=$4, salary=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query,
		mechanic.Name,
		mechanic.Email,
		mechanic.Phone,
		mechanic.Address,
		mechanic.Salary,
		mechanic.ID,
	).Scan(&mechanic.UpdatedAt)
}

func (r *mechanicRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mechanics WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

func (r *mechanicRepository) GetByID(ctx context.Context, id int64) (*domain.Mechanic, error) {
	const query = `
        SELECT id, name, email, phone, address, salary, created_at, updated_at
        FROM mechanics WHERE id=$1`
	var m domain.Mechanic
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Salary, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mechanicRepository) List(ctx context.Context, page Page) ([]domain.Mechanic, error) {
	page = page.normalized()
	const query = `
        SELECT id, name, email, phone, address, salary, created_at, updated_at
        FROM mechanics ORDER BY id LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Mechanic
	for rows.Next() {
		var m domain.Mechanic
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Salary, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// RankByTicketCount orders mechanics by how many tickets they are assigned to,
// busiest first; ties break on id.
func (r *mechanicRepository) RankByTicketCount(ctx context.Context, page Page) ([]domain.MechanicWorkload, error) {
	page = page.normalized()
	const query = `
        SELECT m.id, m.name, m.email, m.phone, m.address, m.salary, m.created_at, m.updated_at,
               COUNT(sm.service_ticket_id) AS ticket_count
        FROM mechanics m
        LEFT JOIN service_mechanic sm ON sm.mechanic_id = m.id
        GROUP BY m.id
        ORDER BY ticket_count DESC, m.id
        LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MechanicWorkload
	for rows.Next() {
		var w domain.MechanicWorkload
		m := &w.Mechanic
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Address, &m.Salary, &m.CreatedAt, &m.UpdatedAt, &w.TicketCount); err != nil {
			return nil, err
		}
		result = append(result, w)
	}
	return result, rows.Err()
}
