package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LeaseServiceTestSuite struct {
	suite.Suite
	leaseRepo        *MockLeaseRepository
	unitRepo         *MockUnitRepository
	rentalTenantRepo *MockRentalTenantRepository
	storage          *MockMinioService
	service          *leaseService
	ctx              context.Context
	unit             *models.Unit
	renter           *models.RentalTenant
}

func (suite *LeaseServiceTestSuite) SetupTest() {
	suite.leaseRepo = &MockLeaseRepository{}
	suite.unitRepo = &MockUnitRepository{}
	suite.rentalTenantRepo = &MockRentalTenantRepository{}
	suite.storage = &MockMinioService{}
	suite.ctx = context.Background()
	suite.unit = &models.Unit{ID: uuid.New(), PropertyID: uuid.New(), UnitNumber: "A-01", PropertyName: "Palm Court", RentAmount: dec("1200")}
	suite.renter = &models.RentalTenant{ID: uuid.New(), FullName: "Mariam Hassan"}

	svc := NewLeaseService(suite.leaseRepo, suite.unitRepo, suite.rentalTenantRepo, suite.storage, newAuditMock())
	suite.service = svc.(*leaseService)
	suite.service.now = fixedClock(time.Date(2024, 7, 1, 8, 0, 0, 0, time.UTC))
}

func (suite *LeaseServiceTestSuite) TearDownTest() {
	suite.leaseRepo.AssertExpectations(suite.T())
	suite.unitRepo.AssertExpectations(suite.T())
	suite.rentalTenantRepo.AssertExpectations(suite.T())
	suite.storage.AssertExpectations(suite.T())
}

func TestLeaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LeaseServiceTestSuite))
}

func (suite *LeaseServiceTestSuite) expectResolve() {
	suite.unitRepo.On("GetByID", suite.ctx, testTenantID, suite.unit.ID).Return(suite.unit, nil)
	suite.rentalTenantRepo.On("GetByID", suite.ctx, testTenantID, suite.renter.ID).Return(suite.renter, nil)
}

func (suite *LeaseServiceTestSuite) input() *LeaseInput {
	return &LeaseInput{
		RentalTenantID: suite.renter.ID,
		UnitID:         suite.unit.ID,
		LeaseStart:     "2024-07-01",
	}
}

func (suite *LeaseServiceTestSuite) TestCreate_Defaults() {
	suite.expectResolve()
	suite.leaseRepo.On("HasActiveLease", suite.ctx, testTenantID, suite.unit.ID, (*uuid.UUID)(nil)).Return(false, nil)
	suite.leaseRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.TenantUnit")).Return(nil)

	lease, err := suite.service.Create(suite.ctx, testTenantID, suite.input())
	suite.Require().NoError(err)
	suite.Equal(models.LeaseStatusActive, lease.Status)
	suite.True(lease.MonthlyRent.Equal(dec("1200")))
	suite.Equal(defaultNoticePeriodDays, lease.NoticePeriodDays)
	suite.Equal("Mariam Hassan", lease.TenantName)
	suite.Equal("Palm Court", lease.PropertyName)
	suite.Nil(lease.LeaseEnd)
}

func (suite *LeaseServiceTestSuite) TestCreate_UnitAlreadyLeased() {
	suite.expectResolve()
	suite.leaseRepo.On("HasActiveLease", suite.ctx, testTenantID, suite.unit.ID, (*uuid.UUID)(nil)).Return(true, nil)

	_, err := suite.service.Create(suite.ctx, testTenantID, suite.input())
	requireCode(suite.T(), err, "UNIT_ALREADY_LEASED")
}

func (suite *LeaseServiceTestSuite) TestCreate_LostRaceOnUniqueIndex() {
	suite.expectResolve()
	suite.leaseRepo.On("HasActiveLease", suite.ctx, testTenantID, suite.unit.ID, (*uuid.UUID)(nil)).Return(false, nil)
	suite.leaseRepo.On("Create", suite.ctx, mock.Anything).Return(repositories.ErrActiveLeaseExists)

	_, err := suite.service.Create(suite.ctx, testTenantID, suite.input())
	requireCode(suite.T(), err, "UNIT_ALREADY_LEASED")
}

func (suite *LeaseServiceTestSuite) TestCreate_EndBeforeStart() {
	suite.expectResolve()
	in := suite.input()
	in.LeaseEnd = "2024-06-30"

	_, err := suite.service.Create(suite.ctx, testTenantID, in)
	requireField(suite.T(), err, "lease_end")
}

func (suite *LeaseServiceTestSuite) TestCreate_ForeignUnitAndTenant() {
	suite.unitRepo.On("GetByID", suite.ctx, testTenantID, suite.unit.ID).Return(nil, pgx.ErrNoRows)
	suite.rentalTenantRepo.On("GetByID", suite.ctx, testTenantID, suite.renter.ID).Return(nil, pgx.ErrNoRows)

	_, err := suite.service.Create(suite.ctx, testTenantID, suite.input())
	requireField(suite.T(), err, "unit_id")
	requireField(suite.T(), err, "tenant_id")
}

func (suite *LeaseServiceTestSuite) TestDelete_InvoicedLease() {
	id := uuid.New()
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.TenantUnit{ID: id, Status: models.LeaseStatusEnded}, nil)
	suite.leaseRepo.On("Delete", suite.ctx, testTenantID, id).Return(repositories.ErrLeaseHasInvoices)

	err := suite.service.Delete(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "LEASE_HAS_INVOICES")
}

func (suite *LeaseServiceTestSuite) TestEndLease_NotActive() {
	id := uuid.New()
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.TenantUnit{ID: id, Status: models.LeaseStatusEnded}, nil)

	_, err := suite.service.EndLease(suite.ctx, testTenantID, id, &EndLeaseRequest{MoveOutDate: "2024-08-01"})
	requireCode(suite.T(), err, "LEASE_NOT_ACTIVE")
}

func (suite *LeaseServiceTestSuite) TestEndLease_MoveOutBeforeStart() {
	id := uuid.New()
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.TenantUnit{
		ID: id, Status: models.LeaseStatusActive, LeaseStart: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
	}, nil)

	_, err := suite.service.EndLease(suite.ctx, testTenantID, id, &EndLeaseRequest{MoveOutDate: "2024-06-01"})
	requireField(suite.T(), err, "move_out_date")
}

func (suite *LeaseServiceTestSuite) TestEndLease() {
	id := uuid.New()
	active := &models.TenantUnit{ID: id, Status: models.LeaseStatusActive, LeaseStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	ended := &models.TenantUnit{ID: id, Status: models.LeaseStatusEnded}
	moveOut := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)

	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(active, nil).Once()
	suite.leaseRepo.On("EndLease", suite.ctx, testTenantID, id, moveOut, (*string)(nil)).Return(true, nil)
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(ended, nil).Once()

	got, err := suite.service.EndLease(suite.ctx, testTenantID, id, &EndLeaseRequest{MoveOutDate: "2024-08-31"})
	suite.NoError(err)
	suite.Equal(models.LeaseStatusEnded, got.Status)
}

func (suite *LeaseServiceTestSuite) TestUploadDocument() {
	id := uuid.New()
	key := LeaseDocumentKey(testTenantID, id, "signed lease.pdf")
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.TenantUnit{ID: id}, nil)
	suite.storage.On("UploadObject", suite.ctx, key, mock.Anything, int64(4), "application/pdf").Return(nil)
	suite.leaseRepo.On("SetDocumentPath", suite.ctx, testTenantID, id, key).Return(nil)
	suite.storage.On("GetPresignedURL", suite.ctx, key, presignExpiry).Return("https://files.local/lease", nil)

	link, err := suite.service.UploadDocument(suite.ctx, testTenantID, id, "signed lease.pdf", strings.NewReader("%PDF"), 4, "application/pdf")
	suite.Require().NoError(err)
	suite.Equal(key, link.ObjectKey)
	suite.True(strings.HasSuffix(link.ObjectKey, "signed_lease.pdf"))
	suite.Equal("https://files.local/lease", link.URL)
}

func (suite *LeaseServiceTestSuite) TestUploadDocument_RejectsType() {
	id := uuid.New()
	suite.leaseRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.TenantUnit{ID: id}, nil)

	_, err := suite.service.UploadDocument(suite.ctx, testTenantID, id, "notes.txt", strings.NewReader("hi"), 2, "text/plain")
	requireField(suite.T(), err, "document")
}
