// AngelaMos | 2026
// response_test.go

package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"app error wins", InsufficientStockError(3, 1), http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"wrapped app error", fmt.Errorf("place: %w", ForbiddenError("")), http.StatusForbidden, "FORBIDDEN"},
		{"not found", fmt.Errorf("get: %w", ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"duplicate", ErrDuplicateKey, http.StatusConflict, "DUPLICATE"},
		{"duplicate domain record", DuplicateDomainError("Customer already exist in your account"), http.StatusConflict, "DUPLICATE"},
		{"conflict", ConflictError("order number already issued"), http.StatusConflict, "CONFLICT"},
		{"invalid", ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleServiceError(rec, tt.err, "truck")

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestInsufficientStockDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, InsufficientStockError(5, 2))

	resp := decode(t, rec)
	assert.Equal(t, "5", resp.Error.Details["requested"])
	assert.Equal(t, "2", resp.Error.Details["available"])
	assert.ErrorIs(t, InsufficientStockError(5, 2), ErrInsufficientStock)
}

func TestPaginated(t *testing.T) {
	rec := httptest.NewRecorder()
	Paginated(rec, []string{"a", "b"}, 2, 2, 5)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 3, resp.Meta.TotalPages)
	assert.Equal(t, 5, resp.Meta.Total)
}

func TestCreatedWithMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	CreatedWithMessage(rec, "ENJOY!", map[string]int{"qty": 1})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ENJOY!", decode(t, rec).Message)
}

func TestPgErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "orders_truck_number_key",
	})
	check := &pgconn.PgError{Code: "23514", ConstraintName: "store_items_qty_check"}

	assert.True(t, IsDuplicateKeyError(unique, ""))
	assert.True(t, IsDuplicateKeyError(unique, "orders_truck_number_key"))
	assert.False(t, IsDuplicateKeyError(unique, "users_email_key"))
	assert.False(t, IsDuplicateKeyError(check, ""))

	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(unique))
	assert.False(t, IsCheckViolation(errors.New("plain")))
}
