package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/mechanic-shop/internal/auth"
	"github.com/spec-kit/mechanic-shop/internal/domain"
	"github.com/spec-kit/mechanic-shop/internal/repository"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

// Customer-facing failure messages.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgUpdateNotOwner     = "Unauthorized to update this customer"
	MsgDeleteNotOwner     = "Unauthorized to delete this customer"
	MsgEmailTaken         = "Email already registered"
)

const minPasswordBytes = 6

// CustomerService coordinates customer accounts, login and self-service.
type CustomerService struct {
	store  repository.Store
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager

	dummyOnce sync.Once
	dummyHash string
}

// CustomerDependencies bundles collaborators for the customer service.
type CustomerDependencies struct {
	Store  repository.Store
	Hasher *auth.PasswordHasher
	Tokens *auth.TokenManager
}

// CustomerInput describes a new customer.
type CustomerInput struct {
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
}

// CustomerUpdateInput carries the fields to change; nil keeps the current value.
type CustomerUpdateInput struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Password *string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	CustomerID int64
	Token      string
	ExpiresAt  time.Time
}

// NewCustomerService constructs the service.
func NewCustomerService(deps CustomerDependencies) *CustomerService {
	return &CustomerService{
		store:  deps.Store,
		hasher: deps.Hasher,
		tokens: deps.Tokens,
	}
}

// Create registers a customer with a hashed password.
func (s *CustomerService) Create(ctx context.Context, input CustomerInput) (*domain.Customer, error) {
	customer := &domain.Customer{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Phone:   strings.TrimSpace(input.Phone),
		Address: strings.TrimSpace(input.Address),
	}
	errs := validateCustomer(customer)
	validatePassword(errs, input.Password)
	if err := errs.err(); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	customer.PasswordHash = hash

	if err := s.store.Repositories().Customers.Create(ctx, customer); err != nil {
		return nil, conflictOnDuplicate(err, MsgEmailTaken)
	}
	return customer, nil
}

// Login verifies credentials and issues a bearer token. Unknown emails and
// wrong passwords produce the same error.
func (s *CustomerService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	errs := fieldErrors{}
	errs.required("email", email)
	errs.required("password", password)
	if err := errs.err(); err != nil {
		return nil, err
	}

	customer, err := s.store.Repositories().Customers.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, apperrors.MapError(err)
		}
		// Spend a hash comparison anyway so response time does not reveal
		// whether the email exists.
		s.hasher.Verify(password, s.fallbackHash())
		return nil, apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	if !s.hasher.Verify(password, customer.PasswordHash) {
		return nil, apperrors.NewUnauthorized(MsgInvalidCredentials)
	}

	token, exp, err := s.tokens.Issue(customer.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &LoginResult{CustomerID: customer.ID, Token: token, ExpiresAt: exp}, nil
}

func (s *CustomerService) fallbackHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("mechanic-shop-placeholder")
	})
	return s.dummyHash
}

// Get returns a single customer.
func (s *CustomerService) Get(ctx context.Context, id int64) (*domain.Customer, error) {
	customer, err := s.store.Repositories().Customers.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Customer")
	}
	return customer, nil
}

// List returns one page of customers.
func (s *CustomerService) List(ctx context.Context, page repository.Page) ([]domain.Customer, error) {
	customers, err := s.store.Repositories().Customers.List(ctx, page)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return customers, nil
}

// Update changes a customer's own record. Ownership is checked before the
// target is loaded so other accounts' existence is not revealed.
func (s *CustomerService) Update(ctx context.Context, callerID, id int64, input CustomerUpdateInput) (*domain.Customer, error) {
	if err := auth.RequireOwner(callerID, id, MsgUpdateNotOwner); err != nil {
		return nil, err
	}

	repo := s.store.Repositories().Customers
	customer, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Customer")
	}

	if v := trimmed(input.Name); v != nil {
		customer.Name = *v
	}
	if v := trimmed(input.Email); v != nil {
		customer.Email = *v
	}
	if v := trimmed(input.Phone); v != nil {
		customer.Phone = *v
	}
	if v := trimmed(input.Address); v != nil {
		customer.Address = *v
	}

	errs := validateCustomer(customer)
	if input.Password != nil {
		validatePassword(errs, *input.Password)
	}
	if err := errs.err(); err != nil {
		return nil, err
	}

	if input.Password != nil {
		hash, err := s.hasher.Hash(*input.Password)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		customer.PasswordHash = hash
	}

	if err := repo.Update(ctx, customer); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, notFound(err, "Customer")
		}
		return nil, conflictOnDuplicate(err, MsgEmailTaken)
	}
	return customer, nil
}

// Delete removes the caller's own account along with their tickets.
func (s *CustomerService) Delete(ctx context.Context, callerID, id int64) error {
	if err := auth.RequireOwner(callerID, id, MsgDeleteNotOwner); err != nil {
		return err
	}
	if err := s.store.Repositories().Customers.Delete(ctx, id); err != nil {
		return notFound(err, "Customer")
	}
	return nil
}

// MyTickets lists the tickets owned by the authenticated customer.
func (s *CustomerService) MyTickets(ctx context.Context, customerID int64) ([]domain.ServiceTicket, error) {
	customer, err := s.store.Repositories().Customers.GetByID(ctx, customerID)
	if err != nil {
		return nil, notFound(err, "Customer")
	}
	return s.TicketsOf(ctx, customer)
}

// TicketsOf lists the tickets of a customer the caller has already loaded,
// such as the principal resolved by the auth gate.
func (s *CustomerService) TicketsOf(ctx context.Context, customer *domain.Customer) ([]domain.ServiceTicket, error) {
	tickets, err := s.store.Repositories().ServiceTickets.ListByCustomer(ctx, customer.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

func validateCustomer(c *domain.Customer) fieldErrors {
	errs := fieldErrors{}
	errs.required("name", c.Name)
	errs.required("email", c.Email)
	errs.email("email", c.Email)
	errs.required("phone", c.Phone)
	errs.required("address", c.Address)
	return errs
}

func validatePassword(errs fieldErrors, password string) {
	switch {
	case password == "":
		errs["password"] = "is required"
	case len(password) < minPasswordBytes:
		errs["password"] = "must be at least 6 characters"
	case len(password) > auth.MaxPasswordBytes:
		errs["password"] = "must be at most 72 bytes"
	}
}
