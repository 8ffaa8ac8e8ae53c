package services

import (
	"context"
	"testing"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type PropertyServiceTestSuite struct {
	suite.Suite
	propertyRepo *MockPropertyRepository
	unitRepo     *MockUnitRepository
	service      PropertyService
	ctx          context.Context
}

func (suite *PropertyServiceTestSuite) SetupTest() {
	suite.propertyRepo = &MockPropertyRepository{}
	suite.unitRepo = &MockUnitRepository{}
	suite.service = NewPropertyService(suite.propertyRepo, suite.unitRepo, newAuditMock())
	suite.ctx = context.Background()
}

func (suite *PropertyServiceTestSuite) TearDownTest() {
	suite.propertyRepo.AssertExpectations(suite.T())
	suite.unitRepo.AssertExpectations(suite.T())
}

func TestPropertyServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PropertyServiceTestSuite))
}

func (suite *PropertyServiceTestSuite) TestCreate_Defaults() {
	suite.propertyRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Property")).Return(nil)

	p, err := suite.service.Create(suite.ctx, testTenantID, &PropertyInput{Name: "  Marina Heights ", NumberOfUnits: 24})
	suite.Require().NoError(err)
	suite.Equal("Marina Heights", p.Name)
	suite.Equal(models.PropertyTypeResidential, p.Type)
	suite.Equal(testTenantID, p.TenantID)
}

func (suite *PropertyServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.ctx, testTenantID, &PropertyInput{Name: " ", Type: "industrial", NumberOfUnits: -1})
	requireField(suite.T(), err, "name")
	requireField(suite.T(), err, "type")
	requireField(suite.T(), err, "number_of_units")
}

func (suite *PropertyServiceTestSuite) TestUpdate_CannotShrinkBelowUnitCount() {
	existing := &models.Property{ID: uuid.New(), TenantID: testTenantID, Name: "Marina Heights", Type: models.PropertyTypeResidential, NumberOfUnits: 10}
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, existing.ID).Return(existing, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, existing.ID).Return(8, nil)

	_, err := suite.service.Update(suite.ctx, testTenantID, existing.ID, &PropertyInput{Name: "Marina Heights", NumberOfUnits: 6})
	requireField(suite.T(), err, "number_of_units")
}

func (suite *PropertyServiceTestSuite) TestUpdate_UnlimitedSkipsCount() {
	existing := &models.Property{ID: uuid.New(), TenantID: testTenantID, Name: "Marina Heights", NumberOfUnits: 10}
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, existing.ID).Return(existing, nil)
	suite.propertyRepo.On("Update", suite.ctx, mock.AnythingOfType("*models.Property")).Return(nil)

	p, err := suite.service.Update(suite.ctx, testTenantID, existing.ID, &PropertyInput{Name: "Marina Towers", Type: models.PropertyTypeCommercial})
	suite.Require().NoError(err)
	suite.Equal("Marina Towers", p.Name)
	suite.Equal(0, p.NumberOfUnits)
	suite.Equal("Marina Heights", existing.Name)
}

func (suite *PropertyServiceTestSuite) TestDelete_NotFound() {
	id := uuid.New()
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, id).Return(nil, pgx.ErrNoRows)

	err := suite.service.Delete(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "NOT_FOUND")
}

func (suite *PropertyServiceTestSuite) TestList_SanitizesSearch() {
	suite.propertyRepo.On("List", suite.ctx, testTenantID, "marina", 1000, 0).Return([]*models.Property{}, 0, nil)

	_, _, err := suite.service.List(suite.ctx, testTenantID, " marina% ", 5000, -1)
	suite.NoError(err)
}
