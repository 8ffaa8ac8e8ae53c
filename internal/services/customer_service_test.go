package services

import (
	"context"
	"errors"
	"testing"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CustomerServiceTestSuite struct {
	suite.Suite
	repo    *MockCustomerRepository
	cache   *MockCacheService
	service CustomerService
	ctx     context.Context
}

func (suite *CustomerServiceTestSuite) SetupTest() {
	suite.repo = &MockCustomerRepository{}
	suite.cache = &MockCacheService{}
	suite.service = NewCustomerService(suite.repo, suite.cache, newAuditMock())
	suite.ctx = context.Background()
}

func (suite *CustomerServiceTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceTestSuite))
}

func (suite *CustomerServiceTestSuite) TestCreate_DerivesResortCode() {
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "CBR", (*uuid.UUID)(nil)).Return(false, nil)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(nil)
	suite.cache.On("InvalidateCustomerLists", suite.ctx, testTenantID).Return(nil)

	customer, err := suite.service.Create(suite.ctx, testTenantID, &CustomerInput{ResortName: " Coral Bay Resort "})
	suite.Require().NoError(err)
	suite.Equal("CBR", customer.ResortCode)
	suite.Equal("Coral Bay Resort", customer.ResortName)
	suite.True(customer.IsActive)
}

func (suite *CustomerServiceTestSuite) TestCreate_CodeCollisionFallsBack() {
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "CBR", (*uuid.UUID)(nil)).Return(true, nil)
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "CB2", (*uuid.UUID)(nil)).Return(true, nil)
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "CB3", (*uuid.UUID)(nil)).Return(false, nil)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(nil)
	suite.cache.On("InvalidateCustomerLists", suite.ctx, testTenantID).Return(nil)

	customer, err := suite.service.Create(suite.ctx, testTenantID, &CustomerInput{ResortName: "Coral Beach Retreat"})
	suite.Require().NoError(err)
	suite.Equal("CB3", customer.ResortCode)
}

func (suite *CustomerServiceTestSuite) TestCreate_ExplicitCodeTaken() {
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "SUN", (*uuid.UUID)(nil)).Return(true, nil)

	_, err := suite.service.Create(suite.ctx, testTenantID, &CustomerInput{ResortName: "Sunset Isle", ResortCode: "sun"})
	requireField(suite.T(), err, "resort_code")
}

func (suite *CustomerServiceTestSuite) TestCreate_CacheInvalidationFailureIgnored() {
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "PLM", (*uuid.UUID)(nil)).Return(false, nil)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(nil)
	suite.cache.On("InvalidateCustomerLists", suite.ctx, testTenantID).Return(errors.New("redis down"))

	_, err := suite.service.Create(suite.ctx, testTenantID, &CustomerInput{ResortName: "Palm", ResortCode: "plm"})
	suite.NoError(err)
}

func (suite *CustomerServiceTestSuite) TestDelete_HasQuotations() {
	id := uuid.New()
	suite.repo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.Customer{ID: id}, nil)
	suite.repo.On("CountQuotations", suite.ctx, testTenantID, id).Return(2, nil)

	err := suite.service.Delete(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "CUSTOMER_HAS_QUOTATIONS")
}

func (suite *CustomerServiceTestSuite) TestList_CacheHit() {
	cachedRow := &models.Customer{ID: uuid.New(), ResortName: "Cached"}
	suite.cache.On("GetCustomerList", suite.ctx, testTenantID, mock.AnythingOfType("string"), mock.Anything).
		Return(true, nil).
		Run(func(args mock.Arguments) {
			page := args.Get(3).(*customerPage)
			page.Items = []*models.Customer{cachedRow}
			page.Total = 1
		})

	customers, total, err := suite.service.List(suite.ctx, testTenantID, &models.CustomerFilter{Search: "cached"})
	suite.NoError(err)
	suite.Equal(1, total)
	suite.Equal([]*models.Customer{cachedRow}, customers)
}

func (suite *CustomerServiceTestSuite) TestList_CacheMissStoresPage() {
	rows := []*models.Customer{{ID: uuid.New()}}
	suite.cache.On("GetCustomerList", suite.ctx, testTenantID, mock.AnythingOfType("string"), mock.Anything).Return(false, nil)
	suite.repo.On("List", suite.ctx, testTenantID, mock.MatchedBy(func(f *models.CustomerFilter) bool {
		return f.Limit == 50 && f.Offset == 0
	})).Return(rows, 1, nil)
	suite.cache.On("SetCustomerList", suite.ctx, testTenantID, mock.AnythingOfType("string"), customerPage{Items: rows, Total: 1}, customerListTTL).Return(nil)

	customers, total, err := suite.service.List(suite.ctx, testTenantID, nil)
	suite.NoError(err)
	suite.Equal(1, total)
	suite.Len(customers, 1)
}

func (suite *CustomerServiceTestSuite) TestBulkImport_ReportsRows() {
	suite.repo.On("ExistingNames", suite.ctx, testTenantID).Return(map[string]bool{"lagoon lodge": true}, nil)
	suite.repo.On("ResortCodeExists", suite.ctx, testTenantID, "SIX", (*uuid.UUID)(nil)).Return(false, nil)
	suite.repo.On("Create", suite.ctx, mock.AnythingOfType("*models.Customer")).Return(nil).Once()
	suite.cache.On("InvalidateCustomerLists", suite.ctx, testTenantID).Return(nil)

	badEmail := "not-an-email"
	result, err := suite.service.BulkImport(suite.ctx, testTenantID, []CustomerInput{
		{ResortName: "Sunset Isle Xanadu"},
		{ResortName: "Lagoon Lodge"},
		{ResortName: "", Email: &badEmail},
		{ResortName: "sunset isle xanadu"},
	})
	suite.Require().NoError(err)
	suite.Equal(1, result.Created)
	suite.Equal(3, result.Failed)
	suite.Require().Len(result.Errors, 3)
	suite.Equal(2, result.Errors[0].Row)
	suite.Equal([]string{"Resort with this name already exists"}, result.Errors[0].Errors)
	suite.Equal(3, result.Errors[1].Row)
	suite.Len(result.Errors[1].Errors, 2)
	suite.Equal(4, result.Errors[2].Row)
}

func (suite *CustomerServiceTestSuite) TestBulkImport_Empty() {
	_, err := suite.service.BulkImport(suite.ctx, testTenantID, nil)
	requireField(suite.T(), err, "customers")
}
