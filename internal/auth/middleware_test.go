package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/mechanic-shop/internal/domain"
	apperrors "github.com/spec-kit/mechanic-shop/pkg/util/errorutil"
)

type fakeCustomers struct {
	byID map[int64]*domain.Customer
	err  error
}

func (f *fakeCustomers) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	if f.err != nil {
		return nil, f.err
	}
	c, ok := f.byID[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func newTestApp(t *testing.T, store CredentialStore) (*fiber.App, *TokenManager) {
	t.Helper()
	tokens := NewTokenManager("test-secret", time.Hour)
	mw := NewAuthMiddleware(tokens, store)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(de.Body())
		},
	})
	app.Get("/me", mw.Protect(func(customerID int64, c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"customer_id": customerID})
	}))
	app.Get("/group/me", mw.Handle, func(c *fiber.Ctx) error {
		p, ok := PrincipalFromContext(c)
		if !ok {
			return errors.New("principal missing")
		}
		return c.JSON(fiber.Map{"customer_id": p.CustomerID, "email": p.Customer.Email})
	})
	return app, tokens
}

func doGet(t *testing.T, app *fiber.App, path, authorization string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	store := &fakeCustomers{byID: map[int64]*domain.Customer{7: {ID: 7, Email: "john@example.com"}}}
	app, tokens := newTestApp(t, store)

	ghost, _, err := tokens.Issue(99)
	require.NoError(t, err)
	foreign, _, err := NewTokenManager("other-secret", time.Hour).Issue(7)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"missing header", "", MsgMissingToken},
		{"scheme only", "Bearer", MsgMalformedToken},
		{"no separator", "Bearertoken", MsgMalformedToken},
		{"wrong scheme", "Basic abc:def", MsgMalformedToken},
		{"blank token", "Bearer    ", MsgMalformedToken},
		{"garbage token", "Bearer not.a.jwt", MsgInvalidToken},
		{"foreign signature", "Bearer " + foreign, MsgInvalidToken},
		{"deleted customer", "Bearer " + ghost, MsgUnknownSubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, path := range []string{"/me", "/group/me"} {
				status, body := doGet(t, app, path, tc.header)
				assert.Equal(t, http.StatusUnauthorized, status, path)
				assert.Equal(t, tc.wantMsg, body["error"], path)
			}
		})
	}
}

func TestAuthMiddleware_InjectsCustomerID(t *testing.T) {
	store := &fakeCustomers{byID: map[int64]*domain.Customer{7: {ID: 7, Email: "john@example.com"}}}
	app, tokens := newTestApp(t, store)

	tok, _, err := tokens.Issue(7)
	require.NoError(t, err)

	status, body := doGet(t, app, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(7), body["customer_id"])

	status, body = doGet(t, app, "/group/me", "bearer "+tok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "john@example.com", body["email"])
}

func TestAuthMiddleware_StoreFailureIsInternal(t *testing.T) {
	store := &fakeCustomers{err: errors.New("connection reset")}
	app, tokens := newTestApp(t, store)

	tok, _, err := tokens.Issue(1)
	require.NoError(t, err)

	status, body := doGet(t, app, "/me", "Bearer "+tok)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", body["error"])
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	_, err = BearerToken("")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, MsgMissingToken, de.Message)
}

func TestRequireOwner(t *testing.T) {
	assert.NoError(t, RequireOwner(7, 7, "x"))

	err := RequireOwner(7, 5, "Unauthorized to update this customer")
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusForbidden, de.HTTPStatus)
	assert.Equal(t, "Unauthorized to update this customer", de.Message)
}
