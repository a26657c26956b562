package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/spec-kit/mechanic-shop/internal/domain"
)

// InventoryFilter captures part search parameters.
type InventoryFilter struct {
	Name string
	Page Page
}

// InventoryRepository manages persistence for parts.
type InventoryRepository interface {
	Create(ctx context.Context, part *domain.Part) error
	Update(ctx context.Context, part *domain.Part) error
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*domain.Part, error)
	List(ctx context.Context, filter InventoryFilter) ([]domain.Part, error)
}

type inventoryRepository struct {
	db DBTX
}

// NewInventoryRepository constructs repository.
func NewInventoryRepository(db DBTX) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, part *domain.Part) error {
	const query = `
        INSERT INTO inventory (name, price)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, query, part.Name, part.Price).
		Scan(&part.ID, &part.CreatedAt, &part.UpdatedAt)
}

func (r *inventoryRepository) Update(ctx context.Context, part *domain.Part) error {
	const query = `
        UPDATE inventory SET name=$1, price=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.db.QueryRowContext(ctx, query, part.Name, part.Price, part.ID).Scan(&part.UpdatedAt)
}

func (r *inventoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM inventory WHERE id=$1`, id)
	if err != nil {
		return err
	}
	return rowsAffected(res)
}

func (r *inventoryRepository) GetByID(ctx context.Context, id int64) (*domain.Part, error) {
	const query = `SELECT id, name, price, created_at, updated_at FROM inventory WHERE id=$1`
	var p domain.Part
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *inventoryRepository) List(ctx context.Context, filter InventoryFilter) ([]domain.Part, error) {
	page := filter.Page.normalized()
	clauses := []string{"1=1"}
	args := []any{}

	if term := strings.TrimSpace(filter.Name); term != "" {
		args = append(args, "%"+strings.ToLower(term)+"%")
		clauses = append(clauses, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	args = append(args, page.Limit, page.Offset)

	query := fmt.Sprintf(`SELECT id, name, price, created_at, updated_at FROM inventory WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		strings.Join(clauses, " AND "), len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Part
	for rows.Next() {
		var p domain.Part
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}
