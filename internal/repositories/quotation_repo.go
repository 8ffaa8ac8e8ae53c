package repositories

import (
	"context"
	"fmt"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type QuotationRepository interface {
	// Create allocates the yearly sequence, builds the number with numberFor and inserts
	// the quotation with its items in one transaction
	Create(ctx context.Context, q *models.Quotation, numberFor func(seq int) string) error
	PeekSequence(ctx context.Context, tenantID uuid.UUID, year int) (int, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error)
	GetItems(ctx context.Context, quotationID uuid.UUID) ([]*models.QuotationItem, error)
	// Update replaces header and items while the quotation is still editable
	Update(ctx context.Context, q *models.Quotation) error
	// Delete removes a draft quotation; it reports false when none matched
	Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error)
	// Transition moves a quotation between statuses only if it is still in change.From
	Transition(ctx context.Context, tenantID, id uuid.UUID, change models.StatusChange) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error)
	StatusHistory(ctx context.Context, tenantID, id uuid.UUID) ([]*models.QuotationStatusHistory, error)
	ListSentBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.Quotation, error)
}

type quotationRepo struct {
	db DBTX
}

func NewQuotationRepo(db DBTX) QuotationRepository {
	return &quotationRepo{db: db}
}

const quotationColumns = `q.id, q.tenant_id, q.quotation_number, q.customer_id, q.status, q.valid_until, q.currency, q.exchange_rate,
	q.subtotal, q.discount_amount, q.discount_percentage, q.tax_amount, q.total_amount, q.notes, q.terms_conditions,
	q.created_by, q.sent_date, q.accepted_date, q.rejected_date, q.rejection_reason, q.created_at, q.updated_at, c.resort_name`

func scanQuotation(row pgx.Row) (*models.Quotation, error) {
	q := &models.Quotation{}
	err := row.Scan(&q.ID, &q.TenantID, &q.QuotationNumber, &q.CustomerID, &q.Status, &q.ValidUntil, &q.Currency,
		&q.ExchangeRate, &q.Subtotal, &q.DiscountAmount, &q.DiscountPercentage, &q.TaxAmount, &q.TotalAmount,
		&q.Notes, &q.TermsConditions, &q.CreatedBy, &q.SentDate, &q.AcceptedDate, &q.RejectedDate, &q.RejectionReason,
		&q.CreatedAt, &q.UpdatedAt, &q.CustomerName)
	if err != nil {
		return nil, err
	}
	return q, nil
}

func (r *quotationRepo) Create(ctx context.Context, q *models.Quotation, numberFor func(seq int) string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		seq, err := nextSequence(ctx, tx, q.TenantID, SequenceQuotation, fmt.Sprintf("%04d", q.CreatedAt.Year()))
		if err != nil {
			return fmt.Errorf("allocate quotation number: %w", err)
		}
		q.QuotationNumber = numberFor(seq)

		query := `
			INSERT INTO quotations (id, tenant_id, quotation_number, customer_id, status, valid_until, currency, exchange_rate,
				subtotal, discount_amount, discount_percentage, tax_amount, total_amount, notes, terms_conditions, created_by,
				created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
		`
		_, err = tx.Exec(ctx, query, q.ID, q.TenantID, q.QuotationNumber, q.CustomerID, q.Status, q.ValidUntil, q.Currency,
			q.ExchangeRate, q.Subtotal, q.DiscountAmount, q.DiscountPercentage, q.TaxAmount, q.TotalAmount, q.Notes,
			q.TermsConditions, q.CreatedBy, q.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert quotation: %w", err)
		}
		return insertQuotationItems(ctx, tx, q.ID, q.Items)
	})
}

func insertQuotationItems(ctx context.Context, db DBTX, quotationID uuid.UUID, items []*models.QuotationItem) error {
	query := `
		INSERT INTO quotation_items (id, quotation_id, product_id, item_type, description, quantity, unit_price, discount_type,
			discount_value, tax_rate, item_total, is_amc_line, parent_item_id, import_duty, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for _, item := range items {
		item.QuotationID = quotationID
		_, err := db.Exec(ctx, query, item.ID, item.QuotationID, item.ProductID, item.ItemType, item.Description,
			item.Quantity, item.UnitPrice, item.DiscountType, item.DiscountValue, item.TaxRate, item.ItemTotal,
			item.IsAMCLine, item.ParentItemID, item.ImportDuty, item.SortOrder)
		if err != nil {
			return fmt.Errorf("insert quotation item %d: %w", item.SortOrder, err)
		}
	}
	return nil
}

func (r *quotationRepo) PeekSequence(ctx context.Context, tenantID uuid.UUID, year int) (int, error) {
	return peekSequence(ctx, r.db, tenantID, SequenceQuotation, fmt.Sprintf("%04d", year))
}

func (r *quotationRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	query := `SELECT ` + quotationColumns + `
		FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.tenant_id = $1 AND q.id = $2`
	return scanQuotation(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *quotationRepo) GetItems(ctx context.Context, quotationID uuid.UUID) ([]*models.QuotationItem, error) {
	query := `
		SELECT id, quotation_id, product_id, item_type, description, quantity, unit_price, discount_type, discount_value,
			tax_rate, item_total, is_amc_line, parent_item_id, import_duty, sort_order
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY sort_order
	`
	rows, err := r.db.Query(ctx, query, quotationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*models.QuotationItem{}
	for rows.Next() {
		item := &models.QuotationItem{}
		if err := rows.Scan(&item.ID, &item.QuotationID, &item.ProductID, &item.ItemType, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.DiscountType, &item.DiscountValue, &item.TaxRate, &item.ItemTotal,
			&item.IsAMCLine, &item.ParentItemID, &item.ImportDuty, &item.SortOrder); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *quotationRepo) Update(ctx context.Context, q *models.Quotation) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE quotations
			SET customer_id = $1, valid_until = $2, currency = $3, exchange_rate = $4, subtotal = $5, discount_amount = $6,
				discount_percentage = $7, tax_amount = $8, total_amount = $9, notes = $10, terms_conditions = $11,
				updated_at = NOW()
			WHERE tenant_id = $12 AND id = $13 AND status IN ('draft', 'sent')
		`
		tag, err := tx.Exec(ctx, query, q.CustomerID, q.ValidUntil, q.Currency, q.ExchangeRate, q.Subtotal, q.DiscountAmount,
			q.DiscountPercentage, q.TaxAmount, q.TotalAmount, q.Notes, q.TermsConditions, q.TenantID, q.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}

		if _, err := tx.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, q.ID); err != nil {
			return err
		}
		return insertQuotationItems(ctx, tx, q.ID, q.Items)
	})
}

func (r *quotationRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotations WHERE tenant_id = $1 AND id = $2 AND status = 'draft'`, tenantID, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *quotationRepo) Transition(ctx context.Context, tenantID, id uuid.UUID, change models.StatusChange) (bool, error) {
	var dateColumn string
	switch change.To {
	case models.QuotationStatusSent:
		dateColumn = "sent_date"
	case models.QuotationStatusAccepted:
		dateColumn = "accepted_date"
	case models.QuotationStatusRejected:
		dateColumn = "rejected_date"
	}

	applied := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		args := []interface{}{change.To, change.Reason}
		query := `UPDATE quotations SET status = $1, rejection_reason = COALESCE($2, rejection_reason), updated_at = NOW()`
		if dateColumn != "" {
			args = append(args, change.At)
			query += fmt.Sprintf(", %s = $%d", dateColumn, len(args))
		}
		args = append(args, tenantID, id, change.From)
		query += fmt.Sprintf(" WHERE tenant_id = $%d AND id = $%d AND status = $%d", len(args)-2, len(args)-1, len(args))

		tag, err := tx.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return nil
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO quotation_status_history (id, tenant_id, quotation_id, from_status, to_status, changed_by, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			uuid.New(), tenantID, id, change.From, change.To, change.ChangedBy, change.Reason)
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	return applied, err
}

func (r *quotationRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error) {
	if filter == nil {
		filter = &models.QuotationFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.Status != nil {
		f.add("q.status = $%d", *filter.Status)
	}
	if filter.CustomerID != nil {
		f.add("q.customer_id = $%d", *filter.CustomerID)
	}
	if filter.Search != "" {
		f.add("(q.quotation_number ILIKE $%d OR c.resort_name ILIKE $%d)", likePattern(filter.Search))
	}
	if filter.DateFrom != nil {
		f.add("q.created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		f.add("q.created_at < $%d", filter.DateTo.AddDate(0, 0, 1))
	}

	from := ` FROM quotations q JOIN customers c ON c.id = q.customer_id WHERE q.tenant_id = $1`

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+from+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + quotationColumns + from + f.where + ` ORDER BY q.created_at DESC` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	quotations := []*models.Quotation{}
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, q)
	}
	return quotations, total, rows.Err()
}

func (r *quotationRepo) StatusHistory(ctx context.Context, tenantID, id uuid.UUID) ([]*models.QuotationStatusHistory, error) {
	query := `
		SELECT id, tenant_id, quotation_id, from_status, to_status, changed_by, notes, created_at
		FROM quotation_status_history
		WHERE tenant_id = $1 AND quotation_id = $2
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, tenantID, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []*models.QuotationStatusHistory{}
	for rows.Next() {
		h := &models.QuotationStatusHistory{}
		if err := rows.Scan(&h.ID, &h.TenantID, &h.QuotationID, &h.FromStatus, &h.ToStatus, &h.ChangedBy, &h.Notes, &h.CreatedAt); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

func (r *quotationRepo) ListSentBefore(ctx context.Context, tenantID uuid.UUID, cutoff time.Time) ([]*models.Quotation, error) {
	query := `SELECT ` + quotationColumns + `
		FROM quotations q
		JOIN customers c ON c.id = q.customer_id
		WHERE q.tenant_id = $1 AND q.status = 'sent' AND q.sent_date <= $2
		ORDER BY q.sent_date`
	rows, err := r.db.Query(ctx, query, tenantID, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quotations []*models.Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, err
		}
		quotations = append(quotations, q)
	}
	return quotations, rows.Err()
}
