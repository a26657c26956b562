package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/events"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// Relationship outcome messages.
const (
	MsgMechanicAlreadyAssigned = "Mechanic already assigned to this service ticket"
	MsgMechanicNotAssigned     = "Mechanic is not assigned to this service ticket"
	MsgPartAlreadyAdded        = "Part already added to this service ticket"
	MsgPartNotOnTicket         = "Part is not on this service ticket"
)

const ticketResource = "Service ticket"

// ServiceTicketService coordinates repair tickets and their mechanic and part
// relationships. Every relationship mutation runs in one transaction that
// locks the ticket row first.
type ServiceTicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
}

// ServiceTicketDependencies bundles collaborators.
type ServiceTicketDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
}

// TicketCreateInput describes a new ticket. Unknown mechanic and part ids are skipped.
type TicketCreateInput struct {
	VIN         string
	Description string
	ServiceDate string
	CustomerID  int64
	MechanicIDs []int64
	PartIDs     []int64
}

// MechanicsEditResult reports a batch edit.
type MechanicsEditResult struct {
	Ticket  *domain.ServiceTicket
	Changes []domain.AssociationChange
	Added   []int64
	Removed []int64
}

// NewServiceTicketService constructs the service.
func NewServiceTicketService(deps ServiceTicketDependencies) *ServiceTicketService {
	return &ServiceTicketService{store: deps.Store, dispatcher: deps.Dispatcher}
}

// Create validates and stores a ticket with its initial relationships.
func (s *ServiceTicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.ServiceTicket, error) {
	ticket, err := buildTicket(input)
	if err != nil {
		return nil, err
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Customers.GetByID(ctx, ticket.CustomerID); err != nil {
			return notFound(err, "Customer")
		}
		mechanics, err := existing(input.MechanicIDs, func(id int64) error {
			_, err := repos.Mechanics.GetByID(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		parts, err := existing(input.PartIDs, func(id int64) error {
			_, err := repos.Inventory.GetByID(ctx, id)
			return err
		})
		if err != nil {
			return err
		}
		ticket.Mechanics = domain.NewAssociation(mechanics...)
		ticket.Parts = domain.NewAssociation(parts...)
		return repos.ServiceTickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.NewEvent(events.EventTicketCreated, ticket.ID, ticket.CustomerID, events.TicketCreatedPayload{
		VIN:         ticket.VIN,
		ServiceDate: ticket.ServiceDate.Format(domain.ServiceDateLayout),
		MechanicIDs: ticket.MechanicIDs(),
		PartIDs:     ticket.PartIDs(),
	}))
	return ticket, nil
}

func buildTicket(input TicketCreateInput) (*domain.ServiceTicket, error) {
	ticket := &domain.ServiceTicket{
		VIN:         strings.ToUpper(strings.TrimSpace(input.VIN)),
		Description: strings.TrimSpace(input.Description),
		CustomerID:  input.CustomerID,
	}

	errs := fieldErrors{}
	if len(ticket.VIN) != domain.VINLength {
		errs["vin"] = "must be exactly 17 characters"
	}
	errs.required("description", ticket.Description)
	date, err := time.Parse(domain.ServiceDateLayout, strings.TrimSpace(input.ServiceDate))
	if err != nil {
		errs["service_date"] = "must be a date in YYYY-MM-DD format"
	}
	if ticket.CustomerID <= 0 {
		errs["customer_id"] = "is required"
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	ticket.ServiceDate = date
	return ticket, nil
}

// existing filters ids down to those lookup finds, preserving order.
func existing(ids []int64, lookup func(int64) error) ([]int64, error) {
	var found []int64
	for _, id := range ids {
		if err := lookup(id); err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		found = append(found, id)
	}
	return found, nil
}

func (s *ServiceTicketService) Get(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	ticket, err := s.store.Repositories().ServiceTickets.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ticketResource)
	}
	return ticket, nil
}

func (s *ServiceTicketService) List(ctx context.Context, page repository.Page) ([]domain.ServiceTicket, error) {
	tickets, err := s.store.Repositories().ServiceTickets.List(ctx, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func (s *ServiceTicketService) Delete(ctx context.Context, id int64) error {
	var customerID int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.ServiceTickets.LockByID(ctx, id)
		if err != nil {
			return notFound(err, ticketResource)
		}
		customerID = ticket.CustomerID
		return repos.ServiceTickets.Delete(ctx, id)
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.NewEvent(events.EventTicketDeleted, id, customerID, nil))
	return nil
}

// relation describes one many-to-many side of a ticket.
type relation struct {
	resource     string
	alreadyMsg   string
	notMemberMsg string
	addedEvent   events.EventType
	removedEvent events.EventType
	set          func(*domain.ServiceTicket) *domain.Association
	exists       func(ctx context.Context, repos repository.Repositories, id int64) error
	insert       func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error)
	remove       func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error)
}

var mechanicRelation = relation{
	resource:     "Mechanic",
	alreadyMsg:   MsgMechanicAlreadyAssigned,
	notMemberMsg: MsgMechanicNotAssigned,
	addedEvent:   events.EventMechanicAssigned,
	removedEvent: events.EventMechanicRemoved,
	set:          func(t *domain.ServiceTicket) *domain.Association { return t.Mechanics },
	exists: func(ctx context.Context, repos repository.Repositories, id int64) error {
		_, err := repos.Mechanics.GetByID(ctx, id)
		return err
	},
	insert: func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error) {
		return repos.ServiceTickets.AddMechanic(ctx, ticketID, id)
	},
	remove: func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error) {
		return repos.ServiceTickets.RemoveMechanic(ctx, ticketID, id)
	},
}

var partRelation = relation{
	resource:     partResource,
	alreadyMsg:   MsgPartAlreadyAdded,
	notMemberMsg: MsgPartNotOnTicket,
	addedEvent:   events.EventPartAdded,
	removedEvent: events.EventPartRemoved,
	set:          func(t *domain.ServiceTicket) *domain.Association { return t.Parts },
	exists: func(ctx context.Context, repos repository.Repositories, id int64) error {
		_, err := repos.Inventory.GetByID(ctx, id)
		return err
	},
	insert: func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error) {
		return repos.ServiceTickets.AddPart(ctx, ticketID, id)
	},
	remove: func(ctx context.Context, repos repository.Repositories, ticketID, id int64) (bool, error) {
		return repos.ServiceTickets.RemovePart(ctx, ticketID, id)
	},
}

// AssignMechanic links a mechanic to a ticket. Assigning twice is reported
// as an association conflict without changing anything.
func (s *ServiceTicketService) AssignMechanic(ctx context.Context, ticketID, mechanicID int64) (*domain.ServiceTicket, error) {
	return s.mutate(ctx, mechanicRelation, ticketID, mechanicID, true)
}

// RemoveMechanic unlinks a mechanic from a ticket.
func (s *ServiceTicketService) RemoveMechanic(ctx context.Context, ticketID, mechanicID int64) (*domain.ServiceTicket, error) {
	return s.mutate(ctx, mechanicRelation, ticketID, mechanicID, false)
}

// AddPart attaches an inventory part to a ticket.
func (s *ServiceTicketService) AddPart(ctx context.Context, ticketID, partID int64) (*domain.ServiceTicket, error) {
	return s.mutate(ctx, partRelation, ticketID, partID, true)
}

// RemovePart detaches an inventory part from a ticket.
func (s *ServiceTicketService) RemovePart(ctx context.Context, ticketID, partID int64) (*domain.ServiceTicket, error) {
	return s.mutate(ctx, partRelation, ticketID, partID, false)
}

func (s *ServiceTicketService) mutate(ctx context.Context, rel relation, ticketID, entityID int64, add bool) (*domain.ServiceTicket, error) {
	var ticket *domain.ServiceTicket
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		ticket, err = repos.ServiceTickets.LockByID(ctx, ticketID)
		if err != nil {
			return notFound(err, ticketResource)
		}
		if err := rel.exists(ctx, repos, entityID); err != nil {
			return notFound(err, rel.resource)
		}

		set := rel.set(ticket)
		if add {
			if set.Add(entityID) == domain.OutcomeAlreadyAssociated {
				return apperrors.NewAssociationConflict(rel.alreadyMsg)
			}
			inserted, err := rel.insert(ctx, repos, ticketID, entityID)
			if err != nil {
				return err
			}
			if !inserted {
				return apperrors.NewAssociationConflict(rel.alreadyMsg)
			}
			return nil
		}

		if set.Remove(entityID) == domain.OutcomeNotAssociated {
			return apperrors.NewAssociationConflict(rel.notMemberMsg)
		}
		deleted, err := rel.remove(ctx, repos, ticketID, entityID)
		if err != nil {
			return err
		}
		if !deleted {
			return apperrors.NewAssociationConflict(rel.notMemberMsg)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	eventType := rel.removedEvent
	if add {
		eventType = rel.addedEvent
	}
	s.publishEvent(ctx, events.NewEvent(eventType, ticket.ID, ticket.CustomerID, events.AssociationChangedPayload{EntityID: entityID}))
	return ticket, nil
}

// EditMechanics applies a batch: every id in removeIDs is unassigned, then
// every id in addIDs is assigned. Each step is individually idempotent and
// ids that do not name a mechanic are skipped.
func (s *ServiceTicketService) EditMechanics(ctx context.Context, ticketID int64, removeIDs, addIDs []int64) (*MechanicsEditResult, error) {
	result := &MechanicsEditResult{}
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		ticket, err := repos.ServiceTickets.LockByID(ctx, ticketID)
		if err != nil {
			return notFound(err, ticketResource)
		}

		known := map[int64]bool{}
		var lookupErr error
		exists := func(id int64) bool {
			if ok, seen := known[id]; seen {
				return ok
			}
			err := mechanicRelation.exists(ctx, repos, id)
			if err != nil && !apperrors.IsNotFound(err) && lookupErr == nil {
				lookupErr = err
			}
			known[id] = err == nil
			return known[id]
		}

		before := ticket.Mechanics.Clone()
		result.Changes = ticket.Mechanics.ApplyBatch(removeIDs, addIDs, exists)
		if lookupErr != nil {
			return lookupErr
		}

		result.Added, result.Removed = domain.Diff(before, ticket.Mechanics)
		for _, id := range result.Removed {
			if _, err := repos.ServiceTickets.RemoveMechanic(ctx, ticketID, id); err != nil {
				return err
			}
		}
		for _, id := range result.Added {
			if _, err := repos.ServiceTickets.AddMechanic(ctx, ticketID, id); err != nil {
				return err
			}
		}
		result.Ticket = ticket
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(result.Added) > 0 || len(result.Removed) > 0 {
		s.publishEvent(ctx, events.NewEvent(events.EventMechanicsEdited, result.Ticket.ID, result.Ticket.CustomerID,
			events.MechanicsEditedPayload{Added: result.Added, Removed: result.Removed}))
	}
	return result, nil
}

func (s *ServiceTicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
