package service

import (
	"context"
	"strings"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// MechanicService manages shop staff records.
type MechanicService struct {
	store repository.Store
}

// MechanicInput describes a new mechanic.
type MechanicInput struct {
	Name    string
	Email   string
	Phone   string
	Address string
	Salary  float64
}

// MechanicUpdateInput carries the fields to change; nil keeps the current value.
type MechanicUpdateInput struct {
	Name    *string
	Email   *string
	Phone   *string
	Address *string
	Salary  *float64
}

// NewMechanicService constructs the service.
func NewMechanicService(store repository.Store) *MechanicService {
	return &MechanicService{store: store}
}

func (s *MechanicService) Create(ctx context.Context, input MechanicInput) (*domain.Mechanic, error) {
	mechanic := &domain.Mechanic{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
		Salary:  input.Salary,
	}
	if err := validateMechanic(mechanic); err != nil {
		return nil, err
	}
	if err := s.store.Repositories().Mechanics.Create(ctx, mechanic); err != nil {
		return nil, conflictOnDuplicate(err, MsgEmailTaken)
	}
	return mechanic, nil
}

func (s *MechanicService) Get(ctx context.Context, id int64) (*domain.Mechanic, error) {
	mechanic, err := s.store.Repositories().Mechanics.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mechanic")
	}
	return mechanic, nil
}

func (s *MechanicService) List(ctx context.Context, page repository.Page) ([]domain.Mechanic, error) {
	mechanics, err := s.store.Repositories().Mechanics.List(ctx, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return mechanics, nil
}

// Ranking lists mechanics by the number of tickets they work on, busiest first.
func (s *MechanicService) Ranking(ctx context.Context, page repository.Page) ([]domain.MechanicWorkload, error) {
	ranking, err := s.store.Repositories().Mechanics.RankByTicketCount(ctx, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ranking, nil
}

func (s *MechanicService) Update(ctx context.Context, id int64, input MechanicUpdateInput) (*domain.Mechanic, error) {
	repo := s.store.Repositories().Mechanics
	mechanic, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Mechanic")
	}

	if v := trimmed(input.Name); v != nil {
		mechanic.Name = *v
	}
	if v := trimmed(input.Email); v != nil {
		mechanic.Email = *v
	}
	if v := trimmed(input.Phone); v != nil {
		mechanic.Phone = *v
	}
	if v := trimmed(input.Address); v != nil {
		mechanic.Address = *v
	}
	if input.Salary != nil {
		mechanic.Salary = *input.Salary
	}
	if err := validateMechanic(mechanic); err != nil {
		return nil, err
	}

	if err := repo.Update(ctx, mechanic); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, notFound(err, "Mechanic")
		}
		return nil, conflictOnDuplicate(err, MsgEmailTaken)
	}
	return mechanic, nil
}

// Delete removes a mechanic and unassigns them from every ticket.
func (s *MechanicService) Delete(ctx context.Context, id int64) error {
	if err := s.store.Repositories().Mechanics.Delete(ctx, id); err != nil {
		return notFound(err, "Mechanic")
	}
	return nil
}

func validateMechanic(m *domain.Mechanic) error {
	errs := fieldErrors{}
	errs.required("name", m.Name)
	errs.required("email", m.Email)
	errs.email("email", m.Email)
	errs.required("phone", m.Phone)
	errs.required("address", m.Address)
	errs.nonNegative("salary", m.Salary)
	return errs.err()
}
