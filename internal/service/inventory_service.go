package service

import (
	"context"
	"strings"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

const partResource = "Inventory part"

// InventoryService manages the parts catalogue.
type InventoryService struct {
	store repository.Store
}

// PartInput describes a new part.
type PartInput struct {
	Name  string
	Price float64
}

// PartUpdateInput carries the fields to change; nil keeps the current value.
type PartUpdateInput struct {
	Name  *string
	Price *float64
}

// NewInventoryService constructs the service.
func NewInventoryService(store repository.Store) *InventoryService {
	return &InventoryService{store: store}
}

func (s *InventoryService) Create(ctx context.Context, input PartInput) (*domain.Part, error) {
	part := &domain.Part{Name: strings.TrimSpace(input.Name), Price: input.Price}
	if err := validatePart(part); err != nil {
		return nil, err
	}
	if err := s.store.Repositories().Inventory.Create(ctx, part); err != nil {
		return nil, apperrors.MapError(err)
	}
	return part, nil
}

func (s *InventoryService) Get(ctx context.Context, id int64) (*domain.Part, error) {
	part, err := s.store.Repositories().Inventory.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, partResource)
	}
	return part, nil
}

// List returns a page of parts, optionally filtered by a name fragment.
func (s *InventoryService) List(ctx context.Context, filter repository.InventoryFilter) ([]domain.Part, error) {
	parts, err := s.store.Repositories().Inventory.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return parts, nil
}

func (s *InventoryService) Update(ctx context.Context, id int64, input PartUpdateInput) (*domain.Part, error) {
	repo := s.store.Repositories().Inventory
	part, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, partResource)
	}
	if v := trimmed(input.Name); v != nil {
		part.Name = *v
	}
	if input.Price != nil {
		part.Price = *input.Price
	}
	if err := validatePart(part); err != nil {
		return nil, err
	}
	if err := repo.Update(ctx, part); err != nil {
		return nil, notFound(err, partResource)
	}
	return part, nil
}

// Delete removes a part and detaches it from every ticket.
func (s *InventoryService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Repositories().Inventory.Delete(ctx, id); err != nil {
		return notFound(err, partResource)
	}
	return nil
}

func validatePart(p *domain.Part) error {
	errs := fieldErrors{}
	errs.required("name", p.Name)
	errs.nonNegative("price", p.Price)
	return errs.err()
}
