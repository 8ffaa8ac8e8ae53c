package repositories

import (
	"context"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type FollowupRepository interface {
	// Replace skips the quotation's pending follow-ups and inserts the new schedule atomically
	Replace(ctx context.Context, tenantID, quotationID uuid.UUID, followups []*models.QuotationFollowup) error
	SkipPending(ctx context.Context, tenantID, quotationID uuid.UUID, reason string) (int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.QuotationFollowup, error)
	// GetDue returns pending follow-ups due on or before day whose quotation is still sent
	GetDue(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.QuotationFollowup, error)
	MarkSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (bool, error)
	Skip(ctx context.Context, tenantID, id uuid.UUID, reason string) (bool, error)
	ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QuotationFollowup, error)
	ListForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error)
	Statistics(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupStatistics, error)
}

type followupRepo struct {
	db DBTX
}

func NewFollowupRepo(db DBTX) FollowupRepository {
	return &followupRepo{db: db}
}

const followupColumns = `f.id, f.tenant_id, f.quotation_id, f.followup_number, f.due_date, f.status, f.recipient_type, f.sent_at,
	f.notes, f.created_at, f.updated_at, q.quotation_number, c.resort_name`

const followupFrom = ` FROM quotation_followups f
	JOIN quotations q ON q.id = f.quotation_id
	JOIN customers c ON c.id = q.customer_id`

func scanFollowup(row pgx.Row) (*models.QuotationFollowup, error) {
	f := &models.QuotationFollowup{}
	err := row.Scan(&f.ID, &f.TenantID, &f.QuotationID, &f.FollowupNumber, &f.DueDate, &f.Status, &f.RecipientType,
		&f.SentAt, &f.Notes, &f.CreatedAt, &f.UpdatedAt, &f.QuotationNumber, &f.CustomerName)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func collectFollowups(rows pgx.Rows) ([]*models.QuotationFollowup, error) {
	defer rows.Close()
	followups := []*models.QuotationFollowup{}
	for rows.Next() {
		f, err := scanFollowup(rows)
		if err != nil {
			return nil, err
		}
		followups = append(followups, f)
	}
	return followups, rows.Err()
}

func skipPending(ctx context.Context, db DBTX, tenantID, quotationID uuid.UUID, reason string) (int, error) {
	tag, err := db.Exec(ctx, `
		UPDATE quotation_followups
		SET status = 'skipped', notes = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND quotation_id = $3 AND status = 'pending'`,
		reason, tenantID, quotationID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *followupRepo) Replace(ctx context.Context, tenantID, quotationID uuid.UUID, followups []*models.QuotationFollowup) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := skipPending(ctx, tx, tenantID, quotationID, "Rescheduled"); err != nil {
			return err
		}
		query := `
			INSERT INTO quotation_followups (id, tenant_id, quotation_id, followup_number, due_date, status, recipient_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		`
		for _, f := range followups {
			if _, err := tx.Exec(ctx, query, f.ID, tenantID, quotationID, f.FollowupNumber, f.DueDate, f.Status, f.RecipientType); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *followupRepo) SkipPending(ctx context.Context, tenantID, quotationID uuid.UUID, reason string) (int, error) {
	return skipPending(ctx, r.db, tenantID, quotationID, reason)
}

func (r *followupRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.QuotationFollowup, error) {
	query := `SELECT ` + followupColumns + followupFrom + ` WHERE f.tenant_id = $1 AND f.id = $2`
	return scanFollowup(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *followupRepo) GetDue(ctx context.Context, tenantID uuid.UUID, day time.Time) ([]*models.QuotationFollowup, error) {
	query := `SELECT ` + followupColumns + followupFrom + `
		WHERE f.tenant_id = $1 AND f.status = 'pending' AND f.due_date <= $2 AND q.status = 'sent'
		ORDER BY f.due_date, f.followup_number`
	rows, err := r.db.Query(ctx, query, tenantID, day)
	if err != nil {
		return nil, err
	}
	return collectFollowups(rows)
}

func (r *followupRepo) MarkSent(ctx context.Context, tenantID, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotation_followups
		SET status = 'sent', sent_at = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status = 'pending'`,
		at, tenantID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *followupRepo) Skip(ctx context.Context, tenantID, id uuid.UUID, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotation_followups
		SET status = 'skipped', notes = $1, updated_at = NOW()
		WHERE tenant_id = $2 AND id = $3 AND status = 'pending'`,
		reason, tenantID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *followupRepo) ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QuotationFollowup, error) {
	query := `SELECT ` + followupColumns + followupFrom + `
		WHERE f.tenant_id = $1 AND f.status = 'pending'
		ORDER BY f.due_date
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectFollowups(rows)
}

func (r *followupRepo) ListForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error) {
	query := `SELECT ` + followupColumns + followupFrom + `
		WHERE f.tenant_id = $1 AND f.quotation_id = $2
		ORDER BY f.followup_number, f.created_at`
	rows, err := r.db.Query(ctx, query, tenantID, quotationID)
	if err != nil {
		return nil, err
	}
	return collectFollowups(rows)
}

func (r *followupRepo) Statistics(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupStatistics, error) {
	stats := &models.FollowupStatistics{}
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'skipped'),
			COUNT(*) FILTER (WHERE status = 'pending' AND due_date < $2)
		FROM quotation_followups
		WHERE tenant_id = $1`, tenantID, today).Scan(&stats.Pending, &stats.Sent, &stats.Skipped, &stats.Overdue)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
