package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizsuite/internal/config"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func TestRentInvoiceNumber(t *testing.T) {
	month := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "RINV-202403-007", RentInvoiceNumber("RINV", month, 7))
	assert.Equal(t, "RI-202403-1234", RentInvoiceNumber("RI", month, 1234))
}

type RentInvoiceServiceTestSuite struct {
	suite.Suite
	rentInvoiceRepo *MockRentInvoiceRepository
	leaseRepo       *MockLeaseRepository
	storage         *MockMinioService
	ctx             context.Context
	monthStart      time.Time
}

func (suite *RentInvoiceServiceTestSuite) SetupTest() {
	suite.rentInvoiceRepo = &MockRentInvoiceRepository{}
	suite.leaseRepo = &MockLeaseRepository{}
	suite.storage = &MockMinioService{}
	suite.ctx = context.Background()
	suite.monthStart = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
}

func (suite *RentInvoiceServiceTestSuite) TearDownTest() {
	suite.rentInvoiceRepo.AssertExpectations(suite.T())
	suite.leaseRepo.AssertExpectations(suite.T())
}

func TestRentInvoiceServiceTestSuite(t *testing.T) {
	suite.Run(t, new(RentInvoiceServiceTestSuite))
}

func (suite *RentInvoiceServiceTestSuite) newService(cfg config.RentConfig, today time.Time) *rentInvoiceService {
	svc := NewRentInvoiceService(suite.rentInvoiceRepo, suite.leaseRepo, suite.storage, newAuditMock(), nil, cfg, "Coral Bay Estates").(*rentInvoiceService)
	svc.now = fixedClock(today)
	return svc
}

func (suite *RentInvoiceServiceTestSuite) lease(start time.Time, end *time.Time) *models.TenantUnit {
	return &models.TenantUnit{
		ID:             uuid.New(),
		RentalTenantID: uuid.New(),
		UnitID:         uuid.New(),
		PropertyID:     uuid.New(),
		LeaseStart:     start,
		LeaseEnd:       end,
		MonthlyRent:    dec("1500.00"),
		Status:         models.LeaseStatusActive,
		TenantName:     "Amal Haddad",
		UnitNumber:     "A-01",
	}
}

func (suite *RentInvoiceServiceTestSuite) TestGenerate_DisabledIsANoop() {
	svc := suite.newService(config.RentConfig{AutoGenerate: false, GenerationDay: 1}, suite.monthStart)

	summary, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "", false)
	suite.Require().NoError(err)
	suite.False(summary.Ran)
	suite.Equal("automatic rent invoice generation is disabled", summary.Reason)
	suite.Equal("2024-03", summary.Month)
}

func (suite *RentInvoiceServiceTestSuite) TestGenerate_WrongDayIsANoop() {
	svc := suite.newService(config.RentConfig{AutoGenerate: true, GenerationDay: 1}, suite.monthStart.AddDate(0, 0, 4))

	summary, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "", false)
	suite.Require().NoError(err)
	suite.False(summary.Ran)
	suite.Contains(summary.Reason, "day 1")
}

func (suite *RentInvoiceServiceTestSuite) TestGenerate_ForceBillsEligibleLeases() {
	svc := suite.newService(config.RentConfig{DueOffsetDays: 5, DefaultCurrency: "AED"}, suite.monthStart.AddDate(0, 0, 9))

	billed := suite.lease(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	future := suite.lease(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), nil)
	ended := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	finished := suite.lease(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), &ended)
	duplicate := suite.lease(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	broken := suite.lease(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), nil)

	suite.leaseRepo.On("ListActive", suite.ctx, testTenantID).
		Return([]*models.TenantUnit{billed, future, finished, duplicate, broken}, nil)
	suite.rentInvoiceRepo.On("ExistsForLeaseMonth", suite.ctx, testTenantID, billed.ID, suite.monthStart).Return(false, nil)
	suite.rentInvoiceRepo.On("ExistsForLeaseMonth", suite.ctx, testTenantID, duplicate.ID, suite.monthStart).Return(true, nil)
	suite.rentInvoiceRepo.On("ExistsForLeaseMonth", suite.ctx, testTenantID, broken.ID, suite.monthStart).Return(false, errors.New("timeout"))
	suite.rentInvoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.RentInvoice"), mock.Anything).
		Run(func(args mock.Arguments) {
			inv := args.Get(1).(*models.RentInvoice)
			inv.InvoiceNumber = args.Get(2).(func(int) string)(4)
		}).Return(nil).Once()

	summary, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "2024-03", true)
	suite.Require().NoError(err)
	suite.True(summary.Ran)
	suite.Equal(1, summary.Generated)
	suite.Equal(1, summary.Duplicates)
	suite.Len(summary.Errors, 1)
	suite.Require().Len(summary.Skipped, 2)
	suite.Equal(future.ID, summary.Skipped[0].TenantUnitID)
	suite.Equal("lease starts after the billing month", summary.Skipped[0].Reason)
	suite.Equal("lease ended before the billing month", summary.Skipped[1].Reason)

	inv := summary.Invoices[0]
	suite.Equal("RINV-202403-004", inv.InvoiceNumber)
	suite.Equal(suite.monthStart, inv.InvoiceDate)
	suite.Equal(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC), inv.DueDate)
	suite.Equal("AED", inv.Currency)
	suite.True(inv.TotalAmount.Equal(dec("1500")))
	suite.Equal(billed.RentalTenantID, inv.RentalTenantID)
	suite.Equal(models.RentInvoiceStatusPending, inv.Status)
}

// a concurrent run that billed the lease first leaves a duplicate, not an error
func (suite *RentInvoiceServiceTestSuite) TestGenerate_LostRaceCountsAsDuplicate() {
	svc := suite.newService(config.RentConfig{DefaultCurrency: "AED"}, suite.monthStart)

	lease := suite.lease(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	suite.leaseRepo.On("ListActive", suite.ctx, testTenantID).Return([]*models.TenantUnit{lease}, nil)
	suite.rentInvoiceRepo.On("ExistsForLeaseMonth", suite.ctx, testTenantID, lease.ID, suite.monthStart).Return(false, nil)
	suite.rentInvoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.RentInvoice"), mock.Anything).
		Return(repositories.ErrRentInvoiceExists).Once()

	summary, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "2024-03", true)
	suite.Require().NoError(err)
	suite.Equal(0, summary.Generated)
	suite.Equal(1, summary.Duplicates)
	suite.Empty(summary.Errors)
}

func (suite *RentInvoiceServiceTestSuite) TestGenerate_UsesUnitCurrency() {
	svc := suite.newService(config.RentConfig{DefaultCurrency: "AED"}, suite.monthStart)

	lease := suite.lease(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), nil)
	lease.Currency = "EUR"
	suite.leaseRepo.On("ListActive", suite.ctx, testTenantID).Return([]*models.TenantUnit{lease}, nil)
	suite.rentInvoiceRepo.On("ExistsForLeaseMonth", suite.ctx, testTenantID, lease.ID, suite.monthStart).Return(false, nil)
	suite.rentInvoiceRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.RentInvoice"), mock.Anything).Return(nil).Once()

	summary, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "2024-03", true)
	suite.Require().NoError(err)
	suite.Require().Len(summary.Invoices, 1)
	suite.Equal("EUR", summary.Invoices[0].Currency)
}

func (suite *RentInvoiceServiceTestSuite) TestGenerate_BadMonth() {
	svc := suite.newService(config.RentConfig{}, suite.monthStart)

	_, err := svc.GenerateRentInvoices(suite.ctx, testTenantID, "03/2024", true)
	requireField(suite.T(), err, "month")
}

func (suite *RentInvoiceServiceTestSuite) TestMarkOverdue_UsesToday() {
	now := time.Date(2024, 3, 12, 18, 45, 0, 0, time.UTC)
	svc := suite.newService(config.RentConfig{}, now)
	suite.rentInvoiceRepo.On("MarkOverdue", suite.ctx, testTenantID, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)).Return(3, nil)

	n, err := svc.MarkOverdue(suite.ctx, testTenantID)
	suite.NoError(err)
	suite.Equal(3, n)
}

func (suite *RentInvoiceServiceTestSuite) TestList_InvalidStatus() {
	svc := suite.newService(config.RentConfig{}, suite.monthStart)

	_, _, err := svc.List(suite.ctx, testTenantID, &models.RentInvoiceFilter{Status: "late"})
	requireField(suite.T(), err, "status")
}
