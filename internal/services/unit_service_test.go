package services

import (
	"context"
	"errors"
	"testing"

	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type UnitServiceTestSuite struct {
	suite.Suite
	unitRepo     *MockUnitRepository
	propertyRepo *MockPropertyRepository
	leaseRepo    *MockLeaseRepository
	service      UnitService
	ctx          context.Context
	property     *models.Property
}

func (suite *UnitServiceTestSuite) SetupTest() {
	suite.unitRepo = &MockUnitRepository{}
	suite.propertyRepo = &MockPropertyRepository{}
	suite.leaseRepo = &MockLeaseRepository{}
	suite.service = NewUnitService(suite.unitRepo, suite.propertyRepo, suite.leaseRepo, newAuditMock())
	suite.ctx = context.Background()
	suite.property = &models.Property{ID: uuid.New(), TenantID: testTenantID, Name: "Palm Court", NumberOfUnits: 10}
}

func (suite *UnitServiceTestSuite) TearDownTest() {
	suite.unitRepo.AssertExpectations(suite.T())
	suite.propertyRepo.AssertExpectations(suite.T())
	suite.leaseRepo.AssertExpectations(suite.T())
}

func TestUnitServiceTestSuite(t *testing.T) {
	suite.Run(t, new(UnitServiceTestSuite))
}

func (suite *UnitServiceTestSuite) generateRequest(preview bool) *models.GenerateUnitsRequest {
	return &models.GenerateUnitsRequest{
		Numbering:  models.UnitNumbering{Mode: models.NumberingSequential, Prefix: "A-", Start: 1, Count: 3, Padding: 2},
		RentAmount: dec("1200"),
		Preview:    preview,
	}
}

func (suite *UnitServiceTestSuite) TestGenerateUnits_PreviewWritesNothing() {
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, suite.property.ID).Return(suite.property, nil)
	suite.unitRepo.On("ExistingNumbers", suite.ctx, testTenantID, suite.property.ID).Return(map[string]bool{"A-02": true}, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, suite.property.ID).Return(1, nil)

	result, err := suite.service.GenerateUnits(suite.ctx, testTenantID, suite.property.ID, suite.generateRequest(true))
	suite.Require().NoError(err)
	suite.Equal([]string{"A-01", "A-02", "A-03"}, result.Generated)
	suite.Equal([]string{"A-01", "A-03"}, result.New)
	suite.Equal([]string{"A-02"}, result.Duplicates)
	suite.True(result.Preview)
	suite.Zero(result.Created)
	suite.unitRepo.AssertNotCalled(suite.T(), "CreateMany", mock.Anything, mock.Anything)
}

func (suite *UnitServiceTestSuite) TestGenerateUnits_CreatesFreshNumbers() {
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, suite.property.ID).Return(suite.property, nil)
	suite.unitRepo.On("ExistingNumbers", suite.ctx, testTenantID, suite.property.ID).Return(map[string]bool{"A-02": true}, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, suite.property.ID).Return(1, nil)
	suite.unitRepo.On("CreateMany", suite.ctx, mock.MatchedBy(func(units []*models.Unit) bool {
		return len(units) == 2 && units[0].UnitNumber == "A-01" && units[1].UnitNumber == "A-03" &&
			units[0].Currency == "USD" && units[0].PropertyID == suite.property.ID
	})).Return(nil)

	result, err := suite.service.GenerateUnits(suite.ctx, testTenantID, suite.property.ID, suite.generateRequest(false))
	suite.Require().NoError(err)
	suite.Equal(2, result.Created)
	suite.Len(result.Units, 2)
}

func (suite *UnitServiceTestSuite) TestGenerateUnits_CapacityExceeded() {
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, suite.property.ID).Return(suite.property, nil)
	suite.unitRepo.On("ExistingNumbers", suite.ctx, testTenantID, suite.property.ID).Return(map[string]bool{}, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, suite.property.ID).Return(9, nil)

	_, err := suite.service.GenerateUnits(suite.ctx, testTenantID, suite.property.ID, suite.generateRequest(true))
	requireCode(suite.T(), err, "PROPERTY_CAPACITY_EXCEEDED")
}

func (suite *UnitServiceTestSuite) TestGenerateUnits_BadNumbering() {
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, suite.property.ID).Return(suite.property, nil)

	req := suite.generateRequest(true)
	req.Numbering = models.UnitNumbering{Mode: models.NumberingCustom, CustomList: " , ,"}
	_, err := suite.service.GenerateUnits(suite.ctx, testTenantID, suite.property.ID, req)
	requireField(suite.T(), err, "numbering")
}

func (suite *UnitServiceTestSuite) TestCreate_DuplicateNumber() {
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, suite.property.ID).Return(suite.property, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, suite.property.ID).Return(3, nil)
	suite.unitRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Unit")).Return(repositories.ErrDuplicateUnitNumber)

	_, err := suite.service.Create(suite.ctx, testTenantID, &UnitInput{
		PropertyID: suite.property.ID,
		UnitNumber: "101",
		RentAmount: dec("900"),
	})
	requireCode(suite.T(), err, "DUPLICATE_UNIT_NUMBER")
}

func (suite *UnitServiceTestSuite) TestCreate_Validation() {
	_, err := suite.service.Create(suite.ctx, testTenantID, &UnitInput{PropertyID: suite.property.ID, RentAmount: dec("0")})
	requireField(suite.T(), err, "unit_number")
	requireField(suite.T(), err, "rent_amount")
}

func (suite *UnitServiceTestSuite) TestDelete_ActiveLease() {
	id := uuid.New()
	suite.unitRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.Unit{ID: id}, nil)
	suite.leaseRepo.On("HasActiveLease", suite.ctx, testTenantID, id, (*uuid.UUID)(nil)).Return(true, nil)

	err := suite.service.Delete(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "UNIT_HAS_ACTIVE_LEASE")
}

func (suite *UnitServiceTestSuite) TestBulkImport_CreateModeReportsRows() {
	p := suite.property
	suite.propertyRepo.On("GetByName", suite.ctx, testTenantID, "Palm Court").Return(p, nil).Once()
	suite.propertyRepo.On("GetByName", suite.ctx, testTenantID, "Nowhere").Return(nil, pgx.ErrNoRows)
	suite.unitRepo.On("GetByNumber", suite.ctx, testTenantID, p.ID, "101").Return(nil, pgx.ErrNoRows)
	suite.unitRepo.On("GetByNumber", suite.ctx, testTenantID, p.ID, "102").Return(&models.Unit{ID: uuid.New(), UnitNumber: "102"}, nil)
	suite.unitRepo.On("CountForProperty", suite.ctx, testTenantID, p.ID).Return(4, nil)
	suite.unitRepo.On("Create", suite.ctx, mock.MatchedBy(func(u *models.Unit) bool {
		return u.UnitNumber == "101" && u.RentAmount.Equal(dec("950")) && u.Currency == "EUR"
	})).Return(nil)

	result, err := suite.service.BulkImport(suite.ctx, testTenantID, "", []models.UnitImportRow{
		{PropertyName: "Palm Court", UnitNumber: "101", RentAmount: "950", Currency: "eur"},
		{PropertyName: "palm court", UnitNumber: "101", RentAmount: "950"},
		{PropertyName: "Palm Court", UnitNumber: "102", RentAmount: "1000"},
		{PropertyName: "Nowhere", UnitNumber: "1", RentAmount: "10"},
		{PropertyName: "Palm Court", UnitNumber: "103", RentAmount: "abc"},
		{UnitNumber: "104", RentAmount: "10"},
	})
	suite.Require().NoError(err)
	suite.Equal(1, result.Created)
	suite.Equal(5, result.Failed)
	suite.Equal([]string{"unit_number is repeated in this import"}, result.Errors[0].Errors)
	suite.Equal([]string{"unit_number already exists on this property"}, result.Errors[1].Errors)
	suite.Equal(4, result.Errors[2].Row)
	suite.Equal([]string{"rent_amount must be a number"}, result.Errors[3].Errors)
	suite.Equal([]string{"property_id or property_name is required"}, result.Errors[4].Errors)
}

func (suite *UnitServiceTestSuite) TestBulkImport_UpsertUpdatesExisting() {
	p := suite.property
	existing := &models.Unit{ID: uuid.New(), PropertyID: p.ID, UnitNumber: "102", RentAmount: dec("800")}
	suite.propertyRepo.On("GetByID", suite.ctx, testTenantID, p.ID).Return(p, nil).Once()
	suite.unitRepo.On("GetByNumber", suite.ctx, testTenantID, p.ID, "102").Return(existing, nil)
	suite.unitRepo.On("Update", suite.ctx, existing).Return(nil)

	result, err := suite.service.BulkImport(suite.ctx, testTenantID, models.ImportModeUpsert, []models.UnitImportRow{
		{PropertyID: p.ID.String(), UnitNumber: "102", RentAmount: "1000", UnitType: "2BR"},
	})
	suite.Require().NoError(err)
	suite.Equal(1, result.Updated)
	suite.Equal(0, result.Created)
	suite.True(existing.RentAmount.Equal(dec("1000")))
	suite.Equal("2BR", *existing.UnitType)
}

func (suite *UnitServiceTestSuite) TestBulkImport_StorageErrorAborts() {
	suite.propertyRepo.On("GetByName", suite.ctx, testTenantID, "Palm Court").Return(nil, errors.New("connection refused"))

	_, err := suite.service.BulkImport(suite.ctx, testTenantID, models.ImportModeCreate, []models.UnitImportRow{
		{PropertyName: "Palm Court", UnitNumber: "1", RentAmount: "10"},
	})
	suite.EqualError(err, "connection refused")
}

func (suite *UnitServiceTestSuite) TestBulkImport_BadMode() {
	_, err := suite.service.BulkImport(suite.ctx, testTenantID, "replace", []models.UnitImportRow{{}})
	requireField(suite.T(), err, "mode")
}
