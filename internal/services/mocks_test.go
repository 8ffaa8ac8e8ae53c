package services

import (
	"context"
	"io"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Create(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*models.Tenant, error) {
	args := m.Called(ctx, subdomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Update(ctx context.Context, tenant *models.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) List(ctx context.Context, limit int, offset int) ([]*models.Tenant, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantRepository) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) CreateAccount(ctx context.Context, tenant *models.Tenant, user *models.User, role *models.Role, permissions []string) error {
	args := m.Called(ctx, tenant, user, role, permissions)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]*models.User, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *models.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Role, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Role), args.Error(1)
}

func (m *MockRoleRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRoleRepository) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]*models.Role, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Role), args.Error(1)
}

func (m *MockRoleRepository) GrantPermissions(ctx context.Context, roleID uuid.UUID, permissions []string) error {
	args := m.Called(ctx, roleID, permissions)
	return args.Error(0)
}

func (m *MockRoleRepository) AssignToUser(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, roleID uuid.UUID) error {
	args := m.Called(ctx, tenantID, userID, roleID)
	return args.Error(0)
}

func (m *MockRoleRepository) GetUserPermissions(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error) {
	args := m.Called(ctx, tenantID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Int(1), args.Error(2)
}

func (m *MockAuditLogsRepository) GetStatistics(ctx context.Context, tenantID uuid.UUID, since time.Time) (*models.AuditStatistics, error) {
	args := m.Called(ctx, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditStatistics), args.Error(1)
}

type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Category, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCategoryRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Category), args.Error(1)
}

func (m *MockCategoryRepository) Usage(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (children int, products int, err error) {
	args := m.Called(ctx, tenantID, id)
	return args.Int(0), args.Int(1), args.Error(2)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Product), args.Int(1), args.Error(2)
}

func (m *MockProductRepository) SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) CountQuotationItems(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) SetLandedCost(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, landedCost decimal.Decimal) error {
	args := m.Called(ctx, tenantID, id, landedCost)
	return args.Error(0)
}

func (m *MockProductRepository) CreateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockProductRepository) GetCostPrice(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.ProductCostPrice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductCostPrice), args.Error(1)
}

func (m *MockProductRepository) UpdateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error {
	args := m.Called(ctx, cp)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteCostPrice(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductRepository) ListCostPrices(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, limit int, offset int) ([]*models.ProductCostPrice, error) {
	args := m.Called(ctx, tenantID, productID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProductCostPrice), args.Error(1)
}

func (m *MockProductRepository) LatestCostPrice(ctx context.Context, tenantID uuid.UUID, productID uuid.UUID, date time.Time) (*models.ProductCostPrice, error) {
	args := m.Called(ctx, tenantID, productID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProductCostPrice), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Customer), args.Int(1), args.Error(2)
}

func (m *MockCustomerRepository) ResortCodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, code, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) ExistingNames(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockCustomerRepository) CountQuotations(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Int(0), args.Error(1)
}

type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *models.Quotation, numberFor func(seq int) string) error {
	args := m.Called(ctx, q, numberFor)
	return args.Error(0)
}

func (m *MockQuotationRepository) PeekSequence(ctx context.Context, tenantID uuid.UUID, year int) (int, error) {
	args := m.Called(ctx, tenantID, year)
	return args.Int(0), args.Error(1)
}

func (m *MockQuotationRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Quotation, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) GetItems(ctx context.Context, quotationID uuid.UUID) ([]*models.QuotationItem, error) {
	args := m.Called(ctx, quotationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationItem), args.Error(1)
}

func (m *MockQuotationRepository) Update(ctx context.Context, q *models.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuotationRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotationRepository) Transition(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, change models.StatusChange) (bool, error) {
	args := m.Called(ctx, tenantID, id, change)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotationRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Quotation), args.Int(1), args.Error(2)
}

func (m *MockQuotationRepository) StatusHistory(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) ([]*models.QuotationStatusHistory, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationStatusHistory), args.Error(1)
}

func (m *MockQuotationRepository) ListSentBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.Quotation, error) {
	args := m.Called(ctx, tenantID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Quotation), args.Error(1)
}

type MockFollowupRepository struct {
	mock.Mock
}

func (m *MockFollowupRepository) Replace(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID, followups []*models.QuotationFollowup) error {
	args := m.Called(ctx, tenantID, quotationID, followups)
	return args.Error(0)
}

func (m *MockFollowupRepository) SkipPending(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID, reason string) (int, error) {
	args := m.Called(ctx, tenantID, quotationID, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockFollowupRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupRepository) GetDue(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupRepository) MarkSent(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowupRepository) Skip(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, reason string) (bool, error) {
	args := m.Called(ctx, tenantID, id, reason)
	return args.Bool(0), args.Error(1)
}

func (m *MockFollowupRepository) ListPending(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupRepository) ListForQuotation(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, quotationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupRepository) Statistics(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupStatistics, error) {
	args := m.Called(ctx, tenantID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowupStatistics), args.Error(1)
}

type MockShipmentRepository struct {
	mock.Mock
}

func (m *MockShipmentRepository) Create(ctx context.Context, shipment *models.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

func (m *MockShipmentRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Shipment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) List(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]*models.Shipment, int, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Shipment), args.Int(1), args.Error(2)
}

func (m *MockShipmentRepository) Finalize(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, id)
	return args.Bool(0), args.Error(1)
}

type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) Create(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Property, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyRepository) Update(ctx context.Context, property *models.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}

func (m *MockPropertyRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockPropertyRepository) List(ctx context.Context, tenantID uuid.UUID, search string, limit int, offset int) ([]*models.Property, int, error) {
	args := m.Called(ctx, tenantID, search, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Property), args.Int(1), args.Error(2)
}

type MockUnitRepository struct {
	mock.Mock
}

func (m *MockUnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) CreateMany(ctx context.Context, units []*models.Unit) error {
	args := m.Called(ctx, units)
	return args.Error(0)
}

func (m *MockUnitRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.Unit, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) GetByNumber(ctx context.Context, tenantID uuid.UUID, propertyID uuid.UUID, unitNumber string) (*models.Unit, error) {
	args := m.Called(ctx, tenantID, propertyID, unitNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Unit), args.Error(1)
}

func (m *MockUnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *MockUnitRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockUnitRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.UnitFilter) ([]*models.Unit, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Unit), args.Int(1), args.Error(2)
}

func (m *MockUnitRepository) ExistingNumbers(ctx context.Context, tenantID uuid.UUID, propertyID uuid.UUID) (map[string]bool, error) {
	args := m.Called(ctx, tenantID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]bool), args.Error(1)
}

func (m *MockUnitRepository) CountForProperty(ctx context.Context, tenantID uuid.UUID, propertyID uuid.UUID) (int, error) {
	args := m.Called(ctx, tenantID, propertyID)
	return args.Int(0), args.Error(1)
}

func (m *MockUnitRepository) SyncOccupancy(ctx context.Context, tenantID uuid.UUID, unitID uuid.UUID) error {
	args := m.Called(ctx, tenantID, unitID)
	return args.Error(0)
}

type MockRentalTenantRepository struct {
	mock.Mock
}

func (m *MockRentalTenantRepository) Create(ctx context.Context, rt *models.RentalTenant) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRentalTenantRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.RentalTenant, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentalTenant), args.Error(1)
}

func (m *MockRentalTenantRepository) Update(ctx context.Context, rt *models.RentalTenant) error {
	args := m.Called(ctx, rt)
	return args.Error(0)
}

func (m *MockRentalTenantRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockRentalTenantRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentalTenantFilter) ([]*models.RentalTenant, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.RentalTenant), args.Int(1), args.Error(2)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Create(ctx context.Context, lease *models.TenantUnit) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.TenantUnit, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TenantUnit), args.Error(1)
}

func (m *MockLeaseRepository) Update(ctx context.Context, lease *models.TenantUnit, previousUnitID uuid.UUID) error {
	args := m.Called(ctx, lease, previousUnitID)
	return args.Error(0)
}

func (m *MockLeaseRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockLeaseRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.TenantUnitFilter) ([]*models.TenantUnit, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.TenantUnit), args.Int(1), args.Error(2)
}

func (m *MockLeaseRepository) HasActiveLease(ctx context.Context, tenantID uuid.UUID, unitID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, tenantID, unitID, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantUnit, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TenantUnit), args.Error(1)
}

func (m *MockLeaseRepository) EndLease(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, moveOut time.Time, notes *string) (bool, error) {
	args := m.Called(ctx, tenantID, id, moveOut, notes)
	return args.Bool(0), args.Error(1)
}

func (m *MockLeaseRepository) SetDocumentPath(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, path string) error {
	args := m.Called(ctx, tenantID, id, path)
	return args.Error(0)
}

func (m *MockLeaseRepository) OccupancyHistory(ctx context.Context, tenantID uuid.UUID, unitID uuid.UUID) ([]*models.OccupancyHistory, error) {
	args := m.Called(ctx, tenantID, unitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.OccupancyHistory), args.Error(1)
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error {
	args := m.Called(ctx, p, settleInvoice)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.PaymentEntry, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentEntry), args.Error(1)
}

func (m *MockPaymentRepository) UpdateState(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error {
	args := m.Called(ctx, p, settleInvoice)
	return args.Error(0)
}

func (m *MockPaymentRepository) ListUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]*models.UnifiedPayment, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.UnifiedPayment), args.Int(1), args.Error(2)
}

func (m *MockPaymentRepository) Summary(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) (*models.PaymentSummary, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PaymentSummary), args.Error(1)
}

type MockRentInvoiceRepository struct {
	mock.Mock
}

func (m *MockRentInvoiceRepository) Create(ctx context.Context, inv *models.RentInvoice, numberFor func(seq int) string) error {
	args := m.Called(ctx, inv, numberFor)
	return args.Error(0)
}

func (m *MockRentInvoiceRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.RentInvoice, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RentInvoice), args.Error(1)
}

func (m *MockRentInvoiceRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentInvoiceFilter) ([]*models.RentInvoice, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.RentInvoice), args.Int(1), args.Error(2)
}

func (m *MockRentInvoiceRepository) ExistsForLeaseMonth(ctx context.Context, tenantID uuid.UUID, tenantUnitID uuid.UUID, monthStart time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, tenantUnitID, monthStart)
	return args.Bool(0), args.Error(1)
}

func (m *MockRentInvoiceRepository) MarkOverdue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	args := m.Called(ctx, tenantID, today)
	return args.Int(0), args.Error(1)
}

type MockMaintenanceRepository struct {
	mock.Mock
}

func (m *MockMaintenanceRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.MaintenanceRequest, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MaintenanceRequest), args.Error(1)
}

func (m *MockMaintenanceRepository) Update(ctx context.Context, req *models.MaintenanceRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) Delete(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockMaintenanceRepository) List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.MaintenanceRequest), args.Int(1), args.Error(2)
}

type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetProduct(ctx context.Context, tenantID uuid.UUID, productID uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, tenantID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCacheService) SetProduct(ctx context.Context, tenantID uuid.UUID, product *models.Product, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, product, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteProduct(ctx context.Context, tenantID uuid.UUID, productID uuid.UUID) error {
	args := m.Called(ctx, tenantID, productID)
	return args.Error(0)
}

func (m *MockCacheService) GetQuotation(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID) (*models.Quotation, error) {
	args := m.Called(ctx, tenantID, quotationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Quotation), args.Error(1)
}

func (m *MockCacheService) SetQuotation(ctx context.Context, tenantID uuid.UUID, quotation *models.Quotation, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, quotation, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteQuotation(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID) error {
	args := m.Called(ctx, tenantID, quotationID)
	return args.Error(0)
}

func (m *MockCacheService) GetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, dest interface{}) (bool, error) {
	args := m.Called(ctx, tenantID, queryKey, dest)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) SetCustomerList(ctx context.Context, tenantID uuid.UUID, queryKey string, value interface{}, ttl time.Duration) error {
	args := m.Called(ctx, tenantID, queryKey, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateCustomerLists(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantID uuid.UUID) error {
	args := m.Called(ctx, tenantID)
	return args.Error(0)
}

func (m *MockCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheService) GetString(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCacheService) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockMinioService struct {
	mock.Mock
}

func (m *MockMinioService) UploadObject(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockMinioService) GetPresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockMinioService) DeleteObject(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockMinioService) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockMinioService) BucketExists(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type MockAuditLogsService struct {
	mock.Mock
}

func (m *MockAuditLogsService) LogActivity(ctx context.Context, tenantID uuid.UUID, entry models.AuditEntry) error {
	args := m.Called(ctx, tenantID, entry)
	return args.Error(0)
}

func (m *MockAuditLogsService) GetAuditLog(ctx context.Context, tenantID uuid.UUID, auditLogID uuid.UUID) (*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, auditLogID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsService) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error) {
	args := m.Called(ctx, tenantID, filters)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Int(1), args.Error(2)
}

func (m *MockAuditLogsService) GetModelHistory(ctx context.Context, tenantID uuid.UUID, modelType string, modelID string, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, modelType, modelID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsService) GetUserActivity(ctx context.Context, tenantID uuid.UUID, userID uuid.UUID, limit int, offset int) ([]*models.AuditLog, int, error) {
	args := m.Called(ctx, tenantID, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.AuditLog), args.Int(1), args.Error(2)
}

func (m *MockAuditLogsService) GetRecentActivity(ctx context.Context, tenantID uuid.UUID, hours int, limit int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tenantID, hours, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsService) GetStatistics(ctx context.Context, tenantID uuid.UUID, days int) (*models.AuditStatistics, error) {
	args := m.Called(ctx, tenantID, days)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditStatistics), args.Error(1)
}

func (m *MockAuditLogsService) LogEntityCreate(ctx context.Context, tenantID uuid.UUID, modelType string, modelID string, newValues models.JSONB) error {
	args := m.Called(ctx, tenantID, modelType, modelID, newValues)
	return args.Error(0)
}

func (m *MockAuditLogsService) LogEntityUpdate(ctx context.Context, tenantID uuid.UUID, modelType string, modelID string, oldValues models.JSONB, newValues models.JSONB) error {
	args := m.Called(ctx, tenantID, modelType, modelID, oldValues, newValues)
	return args.Error(0)
}

func (m *MockAuditLogsService) LogEntityDelete(ctx context.Context, tenantID uuid.UUID, modelType string, modelID string, oldValues models.JSONB) error {
	args := m.Called(ctx, tenantID, modelType, modelID, oldValues)
	return args.Error(0)
}

func (m *MockAuditLogsService) LogStatusChange(ctx context.Context, tenantID uuid.UUID, modelType string, modelID string, from string, to string, description string) error {
	args := m.Called(ctx, tenantID, modelType, modelID, from, to, description)
	return args.Error(0)
}

func (m *MockAuditLogsService) ValidateAuditFilters(filters *models.AuditLogFilters) error {
	args := m.Called(filters)
	return args.Error(0)
}

type MockFollowupService struct {
	mock.Mock
}

func (m *MockFollowupService) ScheduleForQuotation(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID, sentDate time.Time) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, quotationID, sentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) CancelPending(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID, reason string) (int, error) {
	args := m.Called(ctx, tenantID, quotationID, reason)
	return args.Int(0), args.Error(1)
}

func (m *MockFollowupService) GetDue(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) MarkSent(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) Skip(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, reason string) (*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) ListPending(ctx context.Context, tenantID uuid.UUID, limit int, offset int) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) ListForQuotation(ctx context.Context, tenantID uuid.UUID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error) {
	args := m.Called(ctx, tenantID, quotationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QuotationFollowup), args.Error(1)
}

func (m *MockFollowupService) Statistics(ctx context.Context, tenantID uuid.UUID) (*models.FollowupStatistics, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowupStatistics), args.Error(1)
}

func (m *MockFollowupService) ProcessDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupRunResult, error) {
	args := m.Called(ctx, tenantID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FollowupRunResult), args.Error(1)
}

func (m *MockFollowupService) AutoExpire(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	args := m.Called(ctx, tenantID, today)
	return args.Int(0), args.Error(1)
}

type MockRBACService struct {
	mock.Mock
}

func (m *MockRBACService) UserHasPermission(ctx context.Context, userID uuid.UUID, tenantID uuid.UUID, permissionName string) (bool, error) {
	args := m.Called(ctx, userID, tenantID, permissionName)
	return args.Bool(0), args.Error(1)
}

func (m *MockRBACService) GetUserPermissions(ctx context.Context, userID uuid.UUID, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

