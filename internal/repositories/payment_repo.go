package repositories

import (
	"context"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository interface {
	// Create inserts the entry; when settleInvoice is set the linked rent invoice is marked paid in the same transaction
	Create(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PaymentEntry, error)
	// UpdateState saves status, dates and metadata after a capture or void
	UpdateState(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error
	ListUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]*models.UnifiedPayment, int, error)
	// Summary totals completed rows of the unified view that match filter
	Summary(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) (*models.PaymentSummary, error)
}

type paymentRepo struct {
	db DBTX
}

func NewPaymentRepo(db DBTX) PaymentRepository {
	return &paymentRepo{db: db}
}

const paymentColumns = `id, tenant_id, tenant_unit_id, payment_type, flow_direction, amount, currency, status, payment_method,
	reference, description, transaction_date, due_date, source_type, source_id, metadata, captured_at, voided_at, created_by,
	created_at, updated_at`

func scanPayment(row pgx.Row) (*models.PaymentEntry, error) {
	p := &models.PaymentEntry{}
	var metadata []byte
	err := row.Scan(&p.ID, &p.TenantID, &p.TenantUnitID, &p.PaymentType, &p.FlowDirection, &p.Amount, &p.Currency, &p.Status,
		&p.PaymentMethod, &p.Reference, &p.Description, &p.TransactionDate, &p.DueDate, &p.SourceType, &p.SourceID,
		&metadata, &p.CapturedAt, &p.VoidedAt, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := unmarshalJSONB(metadata, &p.Metadata); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepo) settle(ctx context.Context, tx DBTX, p *models.PaymentEntry) error {
	if p.SourceID == nil || p.SourceType == nil || *p.SourceType != models.SourceTypeRentInvoice {
		return nil
	}
	paidDate := time.Now()
	if p.TransactionDate != nil {
		paidDate = *p.TransactionDate
	}
	return settleRentInvoice(ctx, tx, p.TenantID, *p.SourceID, paidDate, p.PaymentMethod)
}

func (r *paymentRepo) Create(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error {
	metadata, err := marshalJSONB(p.Metadata)
	if err != nil {
		return err
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO payment_entries (id, tenant_id, tenant_unit_id, payment_type, flow_direction, amount, currency, status,
				payment_method, reference, description, transaction_date, due_date, source_type, source_id, metadata,
				captured_at, voided_at, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, NOW(), NOW())`,
			p.ID, p.TenantID, p.TenantUnitID, p.PaymentType, p.FlowDirection, p.Amount, p.Currency, p.Status, p.PaymentMethod,
			p.Reference, p.Description, p.TransactionDate, p.DueDate, p.SourceType, p.SourceID, metadata, p.CapturedAt,
			p.VoidedAt, p.CreatedBy)
		if err != nil {
			return err
		}
		if settleInvoice {
			return r.settle(ctx, tx, p)
		}
		return nil
	})
}

func (r *paymentRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PaymentEntry, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payment_entries WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *paymentRepo) UpdateState(ctx context.Context, p *models.PaymentEntry, settleInvoice bool) error {
	metadata, err := marshalJSONB(p.Metadata)
	if err != nil {
		return err
	}

	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE payment_entries
			SET status = $1, transaction_date = $2, metadata = $3, captured_at = $4, voided_at = $5, updated_at = NOW()
			WHERE tenant_id = $6 AND id = $7`,
			p.Status, p.TransactionDate, metadata, p.CapturedAt, p.VoidedAt, p.TenantID, p.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if settleInvoice {
			return r.settle(ctx, tx, p)
		}
		return nil
	})
}

func unifiedFilter(tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) *filterBuilder {
	f := newFilterBuilder(tenantID)
	if filter.PaymentType != "" {
		f.add("payment_type = $%d", filter.PaymentType)
	}
	if filter.Status != "" {
		f.add("status = $%d", filter.Status)
	}
	if filter.FlowDirection != "" {
		f.add("flow_direction = $%d", filter.FlowDirection)
	}
	if filter.TenantUnitID != nil {
		f.add("tenant_unit_id = $%d", *filter.TenantUnitID)
	}
	if filter.DateFrom != nil {
		f.add("COALESCE(transaction_date, due_date) >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		f.add("COALESCE(transaction_date, due_date) <= $%d", *filter.DateTo)
	}
	if filter.Search != "" {
		f.add("(reference ILIKE $%d OR description ILIKE $%d)", likePattern(filter.Search))
	}
	return f
}

func (r *paymentRepo) ListUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]*models.UnifiedPayment, int, error) {
	if filter == nil {
		filter = &models.UnifiedPaymentFilter{Limit: 50}
	}
	f := unifiedFilter(tenantID, filter)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM unified_payments WHERE tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT composite_id, entry_origin, source_id, tenant_id, tenant_unit_id, payment_type, flow_direction, amount, currency,
			status, reference, description, transaction_date, due_date, created_at
		FROM unified_payments WHERE tenant_id = $1` + f.where + `
		ORDER BY COALESCE(transaction_date, due_date) DESC NULLS LAST, created_at DESC` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	payments := []*models.UnifiedPayment{}
	for rows.Next() {
		u := &models.UnifiedPayment{}
		if err := rows.Scan(&u.CompositeID, &u.EntryOrigin, &u.SourceID, &u.TenantID, &u.TenantUnitID, &u.PaymentType,
			&u.FlowDirection, &u.Amount, &u.Currency, &u.Status, &u.Reference, &u.Description, &u.TransactionDate,
			&u.DueDate, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		payments = append(payments, u)
	}
	return payments, total, rows.Err()
}

func (r *paymentRepo) Summary(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) (*models.PaymentSummary, error) {
	if filter == nil {
		filter = &models.UnifiedPaymentFilter{}
	}
	f := unifiedFilter(tenantID, filter)
	f.raw("status = 'completed'")

	summary := &models.PaymentSummary{}
	err := r.db.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE flow_direction = 'income'), 0),
			COALESCE(SUM(amount) FILTER (WHERE flow_direction = 'outgoing'), 0),
			COUNT(*)
		FROM unified_payments WHERE tenant_id = $1`+f.where, f.args...).
		Scan(&summary.TotalIncome, &summary.TotalOutgoing, &summary.Count)
	if err != nil {
		return nil, err
	}
	summary.Net = summary.TotalIncome.Sub(summary.TotalOutgoing)
	return summary, nil
}
