package errorutil

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"domain error passes through", NewForbidden("nope"), http.StatusForbidden, CodeForbidden},
		{"wrapped domain error", fmt.Errorf("ctx: %w", NewUnauthorized("missing token")), http.StatusUnauthorized, CodeUnauthorized},
		{"no rows", sql.ErrNoRows, http.StatusNotFound, CodeNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict, CodeConflict},
		{"wrapped duplicate", fmt.Errorf("customers.email: %w", ErrDuplicate), http.StatusConflict, CodeConflict},
		{"anything else", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ToDomainError(tc.err)
			require.NotNil(t, got)
			assert.Equal(t, tc.wantStatus, got.HTTPStatus)
			assert.Equal(t, tc.wantCode, got.Code)
		})
	}
	assert.Nil(t, ToDomainError(nil))
}

func TestBody(t *testing.T) {
	var de *DomainError

	require.True(t, errors.As(NewAssociationConflict("Mechanic already assigned to this service ticket"), &de))
	assert.Equal(t, map[string]any{
		"message": "Mechanic already assigned to this service ticket",
		"code":    CodeAssociation,
	}, de.Body())

	require.True(t, errors.As(NewValidationError("validation failed", map[string]any{"email": "is required"}), &de))
	body := de.Body()
	assert.Equal(t, "validation failed", body["error"])
	assert.Equal(t, map[string]any{"email": "is required"}, body["details"])
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound("Customer", nil)
	assert.Equal(t, "Customer not found", err.Error())
}
