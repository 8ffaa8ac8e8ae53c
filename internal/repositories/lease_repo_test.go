package repositories

import (
	"context"
	"testing"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"
)

type LeaseRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo LeaseRepository
	ctx  context.Context
}

func (s *LeaseRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewLeaseRepo(mock)
	s.ctx = context.Background()
}

func (s *LeaseRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestLeaseRepoTestSuite(t *testing.T) {
	suite.Run(t, new(LeaseRepoTestSuite))
}

func (s *LeaseRepoTestSuite) newLease() *models.TenantUnit {
	return &models.TenantUnit{
		ID:             uuid.New(),
		TenantID:       uuid.New(),
		RentalTenantID: uuid.New(),
		UnitID:         uuid.New(),
		LeaseStart:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MonthlyRent:    dec("750"),
		Status:         models.LeaseStatusActive,
	}
}

func (s *LeaseRepoTestSuite) TestCreate_RecordsMoveInAndOccupancy() {
	lease := s.newLease()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO tenant_units`).WithArgs(anyArgs(15)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`INSERT INTO occupancy_history`).
		WithArgs(pgxmock.AnyArg(), lease.TenantID, lease.UnitID, lease.RentalTenantID, &lease.ID, models.OccupancyMoveIn,
			lease.LeaseStart, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`UPDATE units SET is_occupied = EXISTS`).WithArgs(lease.TenantID, lease.UnitID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Create(s.ctx, lease))
}

func (s *LeaseRepoTestSuite) TestCreate_ActiveLeaseConflict() {
	lease := s.newLease()

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO tenant_units`).WithArgs(anyArgs(15)...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: activeLeaseConstraint})
	s.mock.ExpectRollback()

	s.ErrorIs(s.repo.Create(s.ctx, lease), ErrActiveLeaseExists)
}

func (s *LeaseRepoTestSuite) TestCreate_EndedLeaseSkipsMoveIn() {
	lease := s.newLease()
	lease.Status = models.LeaseStatusEnded

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO tenant_units`).WithArgs(anyArgs(15)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`UPDATE units SET is_occupied = EXISTS`).WithArgs(lease.TenantID, lease.UnitID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Create(s.ctx, lease))
}

func (s *LeaseRepoTestSuite) TestDelete_ResyncsOccupancy() {
	tenantID, id, unitID := uuid.New(), uuid.New(), uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM rent_invoices`).WithArgs(tenantID, id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	s.mock.ExpectQuery(`DELETE FROM tenant_units`).WithArgs(tenantID, id).
		WillReturnRows(pgxmock.NewRows([]string{"unit_id"}).AddRow(unitID))
	s.mock.ExpectExec(`UPDATE units SET is_occupied`).WithArgs(tenantID, unitID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Delete(s.ctx, tenantID, id))
}

func (s *LeaseRepoTestSuite) TestDelete_InvoicedLeaseRefused() {
	tenantID, id := uuid.New(), uuid.New()

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM rent_invoices`).WithArgs(tenantID, id).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	s.mock.ExpectRollback()

	s.ErrorIs(s.repo.Delete(s.ctx, tenantID, id), ErrLeaseHasInvoices)
}

func (s *LeaseRepoTestSuite) TestEndLease() {
	tenantID, id, unitID, rentalTenantID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	moveOut := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`UPDATE tenant_units SET status = 'ended'`).
		WithArgs(moveOut, (*string)(nil), tenantID, id).
		WillReturnRows(pgxmock.NewRows([]string{"unit_id", "rental_tenant_id"}).AddRow(unitID, rentalTenantID))
	s.mock.ExpectExec(`INSERT INTO occupancy_history`).
		WithArgs(pgxmock.AnyArg(), tenantID, unitID, rentalTenantID, &id, models.OccupancyMoveOut, moveOut, (*string)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`UPDATE units SET is_occupied`).WithArgs(tenantID, unitID).WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectExec(`UPDATE rental_tenants SET status = 'former'`).WithArgs(tenantID, rentalTenantID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	ended, err := s.repo.EndLease(s.ctx, tenantID, id, moveOut, nil)
	s.Require().NoError(err)
	s.True(ended)
}

func (s *LeaseRepoTestSuite) TestEndLease_NotActive() {
	tenantID, id := uuid.New(), uuid.New()
	moveOut := time.Date(2024, 8, 31, 0, 0, 0, 0, time.UTC)

	s.mock.ExpectBegin()
	s.mock.ExpectQuery(`UPDATE tenant_units SET status = 'ended'`).
		WithArgs(moveOut, (*string)(nil), tenantID, id).
		WillReturnRows(pgxmock.NewRows([]string{"unit_id", "rental_tenant_id"}))
	s.mock.ExpectCommit()

	ended, err := s.repo.EndLease(s.ctx, tenantID, id, moveOut, nil)
	s.Require().NoError(err)
	s.False(ended)
}

func (s *LeaseRepoTestSuite) TestHasActiveLease() {
	tenantID, unitID := uuid.New(), uuid.New()

	s.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(tenantID, unitID, (*uuid.UUID)(nil)).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := s.repo.HasActiveLease(s.ctx, tenantID, unitID, nil)
	s.Require().NoError(err)
	s.True(exists)
}
