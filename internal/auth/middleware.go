package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Authentication failure messages.
const (
	MsgMissingToken   = "missing token"
	MsgMalformedToken = "malformed token"
	MsgInvalidToken   = "invalid or expired token"
	MsgUnknownSubject = "unknown subject"
)

// Principal represents the authenticated customer.
type Principal struct {
	CustomerID int64
	Customer   *domain.Customer
}

// CredentialStore resolves a token subject to a live customer.
type CredentialStore interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
}

// ProtectedHandler receives the authenticated customer id ahead of the request.
type ProtectedHandler func(customerID int64, c *fiber.Ctx) error

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens    *TokenManager
	customers CredentialStore
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, customers CredentialStore) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, customers: customers}
}

// Handle enforces authentication for a group of routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if _, err := m.authenticate(c); err != nil {
		return err
	}
	return c.Next()
}

// Protect wraps next so it only runs for authenticated customers, passing
// the resolved customer id as its first argument.
func (m *AuthMiddleware) Protect(next ProtectedHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.authenticate(c)
		if err != nil {
			return err
		}
		return next(principal.CustomerID, c)
	}
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	tokenStr, err := BearerToken(c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}

	customerID, err := m.tokens.Verify(tokenStr)
	if err != nil {
		return nil, apperrors.NewUnauthorized(MsgInvalidToken)
	}

	customer, err := m.customers.GetByID(c.UserContext(), customerID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewUnauthorized(MsgUnknownSubject)
		}
		return nil, apperrors.MapError(err)
	}

	principal := &Principal{CustomerID: customerID, Customer: customer}
	c.Locals(principalKey, principal)
	return principal, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperrors.NewUnauthorized(MsgMissingToken)
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthorized(MsgMalformedToken)
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", apperrors.NewUnauthorized(MsgMalformedToken)
	}
	return token, nil
}

// PrincipalFromContext retrieves the authenticated customer.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
