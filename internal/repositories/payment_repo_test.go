package repositories

import (
	"context"
	"testing"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/suite"
)

type PaymentRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo PaymentRepository
	ctx  context.Context
}

func (s *PaymentRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	s.Require().NoError(err)
	s.mock = mock
	s.repo = NewPaymentRepo(mock)
	s.ctx = context.Background()
}

func (s *PaymentRepoTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
	s.mock.Close()
}

func TestPaymentRepoTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentRepoTestSuite))
}

func (s *PaymentRepoTestSuite) TestCreate_SettlesRentInvoice() {
	invoiceID := uuid.New()
	source := models.SourceTypeRentInvoice
	txDate := testTime
	method := "bank_transfer"
	p := &models.PaymentEntry{
		ID:              uuid.New(),
		TenantID:        uuid.New(),
		PaymentType:     models.PaymentTypeRent,
		FlowDirection:   models.FlowIncome,
		Amount:          dec("750"),
		Currency:        "USD",
		Status:          models.PaymentStatusCompleted,
		PaymentMethod:   &method,
		TransactionDate: &txDate,
		SourceType:      &source,
		SourceID:        &invoiceID,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO payment_entries`).WithArgs(anyArgs(19)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectExec(`UPDATE rent_invoices SET status = 'paid'`).
		WithArgs(txDate, &method, p.TenantID, invoiceID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Create(s.ctx, p, true))
}

func (s *PaymentRepoTestSuite) TestCreate_WithoutSettlement() {
	p := &models.PaymentEntry{
		ID:            uuid.New(),
		TenantID:      uuid.New(),
		PaymentType:   models.PaymentTypeOtherIncome,
		FlowDirection: models.FlowIncome,
		Amount:        dec("20"),
		Currency:      "USD",
		Status:        models.PaymentStatusPending,
	}

	s.mock.ExpectBegin()
	s.mock.ExpectExec(`INSERT INTO payment_entries`).WithArgs(anyArgs(19)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	s.mock.ExpectCommit()

	s.NoError(s.repo.Create(s.ctx, p, false))
}

func (s *PaymentRepoTestSuite) TestListUnified_FiltersAndOrders() {
	tenantID := uuid.New()
	filter := &models.UnifiedPaymentFilter{FlowDirection: models.FlowIncome, Status: "pending", Limit: 20}

	s.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM unified_payments WHERE tenant_id = \$1 AND status = \$2 AND flow_direction = \$3`).
		WithArgs(tenantID, "pending", models.FlowIncome).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	sourceID := uuid.New()
	s.mock.ExpectQuery(`FROM unified_payments .* LIMIT \$4 OFFSET \$5`).
		WithArgs(tenantID, "pending", models.FlowIncome, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"composite_id", "entry_origin", "source_id", "tenant_id", "tenant_unit_id",
			"payment_type", "flow_direction", "amount", "currency", "status", "reference", "description", "transaction_date",
			"due_date", "created_at"}).
			AddRow("rent_invoice:"+sourceID.String(), models.OriginRentInvoice, sourceID, tenantID, nil, "rent",
				models.FlowIncome, dec("900"), "USD", "pending", stringPtr("RINV-202406-001"), nil, nil, &testTime, testTime))

	rows, total, err := s.repo.ListUnified(s.ctx, tenantID, filter)
	s.Require().NoError(err)
	s.Equal(1, total)
	s.Require().Len(rows, 1)
	s.Equal(models.OriginRentInvoice, rows[0].EntryOrigin)
	s.Equal("RINV-202406-001", *rows[0].Reference)
}

func (s *PaymentRepoTestSuite) TestSummary_ComputesNet() {
	tenantID := uuid.New()

	s.mock.ExpectQuery(`SUM\(amount\) FILTER .* AND status = 'completed'`).
		WithArgs(tenantID).
		WillReturnRows(pgxmock.NewRows([]string{"income", "outgoing", "count"}).AddRow(dec("1500"), dec("320.50"), 6))

	summary, err := s.repo.Summary(s.ctx, tenantID, nil)
	s.Require().NoError(err)
	s.True(dec("1179.50").Equal(summary.Net))
	s.Equal(6, summary.Count)
}
