package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewRequestValidator()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return &resp
}

func TestHandleServiceError_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", NewFieldError("currency", "The currency must be 3 characters."), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"not found", NewNotFoundError("Quotation"), http.StatusNotFound, "NOT_FOUND"},
		{"wrapped not found", fmt.Errorf("load: %w", NewNotFoundError("Unit")), http.StatusNotFound, "NOT_FOUND"},
		{"no rows", pgx.ErrNoRows, http.StatusNotFound, "NOT_FOUND"},
		{"conflict", NewConflictError("CUSTOMER_HAS_QUOTATIONS", "Customer has quotations"), http.StatusConflict, "CUSTOMER_HAS_QUOTATIONS"},
		{"state", NewStateError("INVALID_STATUS_TRANSITION", "cannot accept a draft"), http.StatusUnprocessableEntity, "INVALID_STATUS_TRANSITION"},
		{"foreign key", &pgconn.PgError{Code: "23503", ConstraintName: "tenant_units_rental_tenant_id_fkey"}, http.StatusConflict, "RESOURCE_IN_USE"},
		{"wrapped foreign key", fmt.Errorf("delete: %w", &pgconn.PgError{Code: "23503"}), http.StatusConflict, "RESOURCE_IN_USE"},
		{"unknown", errors.New("connection reset"), http.StatusInternalServerError, "SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newTestContext()
			require.NoError(t, HandleServiceError(c, tt.err))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.code, decodeError(t, rec).Error.Code)
		})
	}
}

func TestHandleServiceError_ServerErrorHidesCause(t *testing.T) {
	c, rec := newTestContext()
	require.NoError(t, HandleServiceError(c, errors.New("password=hunter2")))
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestFieldErrors(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Err())

	fe.Add("amount", "first")
	fe.Add("amount", "second")
	err := fe.Err()
	require.Error(t, err)

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "first", domainErr.Fields["amount"])
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	c, rec := newTestContext()
	NewHTTPErrorHandler()(echo.NewHTTPError(http.StatusUnauthorized, "Invalid token"), c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
	assert.Equal(t, "Invalid token", resp.Error.Message)
}

type sampleRequest struct {
	Name     string          `json:"name" validate:"required"`
	Currency string          `json:"currency" validate:"omitempty,len=3"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Items    []sampleItem    `json:"items" validate:"required,min=1,dive"`
}

type sampleItem struct {
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0.01"`
}

func TestRequestValidator_FieldNamesUseJSONTags(t *testing.T) {
	v := NewRequestValidator()
	err := v.Validate(&sampleRequest{
		Currency: "EURO",
		Amount:   decimal.Zero,
		Items:    []sampleItem{{Quantity: decimal.NewFromFloat(0.001)}},
	})
	require.Error(t, err)

	var domainErr *DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Contains(t, domainErr.Fields, "name")
	assert.Contains(t, domainErr.Fields, "currency")
	assert.Contains(t, domainErr.Fields, "amount")
	assert.Contains(t, domainErr.Fields, "items[0].quantity")
}

func TestRequestValidator_Valid(t *testing.T) {
	v := NewRequestValidator()
	err := v.Validate(&sampleRequest{
		Name:   "Coral Bay",
		Amount: decimal.NewFromInt(10),
		Items:  []sampleItem{{Quantity: decimal.NewFromInt(1)}},
	})
	assert.NoError(t, err)
}
