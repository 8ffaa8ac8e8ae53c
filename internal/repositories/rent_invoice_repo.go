package repositories

import (
	"context"
	"errors"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRentInvoiceExists is returned when the lease already has an invoice for the month
var ErrRentInvoiceExists = errors.New("rent invoice already exists for lease and month")

const rentInvoiceLeaseMonthConstraint = "rent_invoices_one_per_lease_month"

type RentInvoiceRepository interface {
	// Create allocates the monthly sequence, builds the number with numberFor and inserts.
	// A second invoice for the same lease and invoice date fails with ErrRentInvoiceExists.
	Create(ctx context.Context, inv *models.RentInvoice, numberFor func(seq int) string) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentInvoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.RentInvoiceFilter) ([]*models.RentInvoice, int, error)
	// ExistsForLeaseMonth reports whether the lease already has an invoice dated in the month starting at monthStart
	ExistsForLeaseMonth(ctx context.Context, tenantID, tenantUnitID uuid.UUID, monthStart time.Time) (bool, error)
	// MarkOverdue flags pending and sent invoices whose due date is before today
	MarkOverdue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error)
}

type rentInvoiceRepo struct {
	db DBTX
}

func NewRentInvoiceRepo(db DBTX) RentInvoiceRepository {
	return &rentInvoiceRepo{db: db}
}

const rentInvoiceColumns = `ri.id, ri.tenant_id, ri.invoice_number, ri.tenant_unit_id, ri.rental_tenant_id, ri.unit_id, ri.property_id,
	ri.invoice_date, ri.due_date, ri.rent_amount, ri.late_fee, ri.total_amount, ri.currency, ri.status, ri.paid_date,
	ri.payment_method, ri.notes, ri.created_at, ri.updated_at, rt.full_name, u.unit_number, p.name`

const rentInvoiceFrom = ` FROM rent_invoices ri
	JOIN rental_tenants rt ON rt.id = ri.rental_tenant_id
	JOIN units u ON u.id = ri.unit_id
	JOIN properties p ON p.id = ri.property_id`

func scanRentInvoice(row pgx.Row) (*models.RentInvoice, error) {
	inv := &models.RentInvoice{}
	err := row.Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.TenantUnitID, &inv.RentalTenantID, &inv.UnitID,
		&inv.PropertyID, &inv.InvoiceDate, &inv.DueDate, &inv.RentAmount, &inv.LateFee, &inv.TotalAmount, &inv.Currency,
		&inv.Status, &inv.PaidDate, &inv.PaymentMethod, &inv.Notes, &inv.CreatedAt, &inv.UpdatedAt, &inv.TenantName,
		&inv.UnitNumber, &inv.PropertyName)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *rentInvoiceRepo) Create(ctx context.Context, inv *models.RentInvoice, numberFor func(seq int) string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		seq, err := nextSequence(ctx, tx, inv.TenantID, SequenceRentInvoice, inv.InvoiceDate.Format("200601"))
		if err != nil {
			return err
		}
		inv.InvoiceNumber = numberFor(seq)

		_, err = tx.Exec(ctx, `
			INSERT INTO rent_invoices (id, tenant_id, invoice_number, tenant_unit_id, rental_tenant_id, unit_id, property_id,
				invoice_date, due_date, rent_amount, late_fee, total_amount, currency, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`,
			inv.ID, inv.TenantID, inv.InvoiceNumber, inv.TenantUnitID, inv.RentalTenantID, inv.UnitID, inv.PropertyID,
			inv.InvoiceDate, inv.DueDate, inv.RentAmount, inv.LateFee, inv.TotalAmount, inv.Currency, inv.Status, inv.Notes)
		if isUniqueViolation(err, rentInvoiceLeaseMonthConstraint) {
			return ErrRentInvoiceExists
		}
		return err
	})
}

func (r *rentInvoiceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentInvoice, error) {
	query := `SELECT ` + rentInvoiceColumns + rentInvoiceFrom + ` WHERE ri.tenant_id = $1 AND ri.id = $2`
	return scanRentInvoice(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *rentInvoiceRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentInvoiceFilter) ([]*models.RentInvoice, int, error) {
	if filter == nil {
		filter = &models.RentInvoiceFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.Status != "" {
		f.add("ri.status = $%d", filter.Status)
	}
	if filter.TenantUnitID != nil {
		f.add("ri.tenant_unit_id = $%d", *filter.TenantUnitID)
	}
	if filter.PropertyID != nil {
		f.add("ri.property_id = $%d", *filter.PropertyID)
	}
	if filter.Month != nil {
		f.add("date_trunc('month', ri.invoice_date) = date_trunc('month', $%d::date)", *filter.Month)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rent_invoices ri WHERE ri.tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + rentInvoiceColumns + rentInvoiceFrom + ` WHERE ri.tenant_id = $1` + f.where +
		` ORDER BY ri.invoice_date DESC, ri.invoice_number DESC` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	invoices := []*models.RentInvoice{}
	for rows.Next() {
		inv, err := scanRentInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, total, rows.Err()
}

func (r *rentInvoiceRepo) ExistsForLeaseMonth(ctx context.Context, tenantID, tenantUnitID uuid.UUID, monthStart time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM rent_invoices
			WHERE tenant_id = $1 AND tenant_unit_id = $2 AND invoice_date >= $3 AND invoice_date < $4 AND status <> 'cancelled'
		)`, tenantID, tenantUnitID, monthStart, monthStart.AddDate(0, 1, 0)).Scan(&exists)
	return exists, err
}

func (r *rentInvoiceRepo) MarkOverdue(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE rent_invoices SET status = 'overdue', updated_at = NOW()
		WHERE tenant_id = $1 AND status IN ('pending', 'sent') AND due_date < $2`, tenantID, today)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

// settleRentInvoice marks an open invoice paid; paid and cancelled invoices are left alone
func settleRentInvoice(ctx context.Context, db DBTX, tenantID, invoiceID uuid.UUID, paidDate time.Time, method *string) error {
	_, err := db.Exec(ctx, `
		UPDATE rent_invoices
		SET status = 'paid', paid_date = $1, payment_method = COALESCE($2, payment_method), updated_at = NOW()
		WHERE tenant_id = $3 AND id = $4 AND status NOT IN ('paid', 'cancelled')`,
		paidDate, method, tenantID, invoiceID)
	return err
}
