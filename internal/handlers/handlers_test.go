package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// newTestServer builds an echo instance wired like the real server.
// A nil tenantID leaves the request unauthenticated.
func newTestServer(tenantID *uuid.UUID) *echo.Echo {
	e := echo.New()
	e.Validator = common.NewRequestValidator()
	e.HTTPErrorHandler = common.NewHTTPErrorHandler()
	if tenantID != nil {
		userID := uuid.New()
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				ctx := context.WithValue(c.Request().Context(), common.TenantIDKey, *tenantID)
				ctx = context.WithValue(ctx, common.UserIDKey, userID)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}
		})
	}
	return e
}

func doRequest(e *echo.Echo, method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	return doRequest(e, method, target, strings.NewReader(body))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// service mocks embed the interface so only the methods a test exercises need bodies

type customerServiceMock struct {
	services.CustomerService
	mock.Mock
}

func (m *customerServiceMock) Create(ctx context.Context, tenantID uuid.UUID, in *services.CustomerInput) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, in)
	c, _ := args.Get(0).(*models.Customer)
	return c, args.Error(1)
}

func (m *customerServiceMock) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	c, _ := args.Get(0).(*models.Customer)
	return c, args.Error(1)
}

func (m *customerServiceMock) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return m.Called(ctx, tenantID, id).Error(0)
}

func (m *customerServiceMock) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error) {
	args := m.Called(ctx, tenantID, filter)
	cs, _ := args.Get(0).([]*models.Customer)
	return cs, args.Int(1), args.Error(2)
}

func (m *customerServiceMock) BulkImport(ctx context.Context, tenantID uuid.UUID, rows []services.CustomerInput) (*models.BulkImportResult, error) {
	args := m.Called(ctx, tenantID, rows)
	r, _ := args.Get(0).(*models.BulkImportResult)
	return r, args.Error(1)
}

type quotationServiceMock struct {
	services.QuotationService
	mock.Mock
}

func (m *quotationServiceMock) List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error) {
	args := m.Called(ctx, tenantID, filter)
	qs, _ := args.Get(0).([]*models.Quotation)
	return qs, args.Int(1), args.Error(2)
}

func (m *quotationServiceMock) Accept(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	args := m.Called(ctx, tenantID, id)
	q, _ := args.Get(0).(*models.Quotation)
	return q, args.Error(1)
}

func (m *quotationServiceMock) PreviewNumber(ctx context.Context, tenantID, customerID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID, customerID)
	return args.String(0), args.Error(1)
}

type maintenanceServiceMock struct {
	services.MaintenanceService
	mock.Mock
}

func (m *maintenanceServiceMock) List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error) {
	args := m.Called(ctx, tenantID, filter)
	rs, _ := args.Get(0).([]*models.MaintenanceRequest)
	return rs, args.Int(1), args.Error(2)
}

type authServiceMock struct {
	services.AuthService
	mock.Mock
}

func (m *authServiceMock) Login(ctx context.Context, req *services.LoginRequest) (*models.TokenResponse, error) {
	args := m.Called(ctx, req)
	t, _ := args.Get(0).(*models.TokenResponse)
	return t, args.Error(1)
}

type auditServiceMock struct {
	services.AuditLogsService
	mock.Mock
}

func (m *auditServiceMock) LogActivity(ctx context.Context, tenantID uuid.UUID, entry models.AuditEntry) error {
	return m.Called(ctx, tenantID, entry).Error(0)
}

type pingerStub struct{ err error }

func (p pingerStub) Ping(context.Context) error { return p.err }

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
