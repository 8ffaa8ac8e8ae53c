package repositories

import (
	"context"
	"errors"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrActiveLeaseExists is returned when a unit already has an active lease
var (
	ErrActiveLeaseExists = errors.New("unit already has an active lease")
	ErrLeaseHasInvoices  = errors.New("lease has rent invoices")
)

type LeaseRepository interface {
	// Create inserts the lease and re-syncs unit occupancy; only an active lease records a move-in
	Create(ctx context.Context, lease *models.TenantUnit) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TenantUnit, error)
	// Update saves the lease and re-syncs occupancy of its unit and of previousUnitID when it moved
	Update(ctx context.Context, lease *models.TenantUnit, previousUnitID uuid.UUID) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.TenantUnitFilter) ([]*models.TenantUnit, int, error)
	HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, excludeID *uuid.UUID) (bool, error)
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantUnit, error)
	// EndLease returns false when the lease is not active
	EndLease(ctx context.Context, tenantID, id uuid.UUID, moveOut time.Time, notes *string) (bool, error)
	SetDocumentPath(ctx context.Context, tenantID, id uuid.UUID, path string) error
	OccupancyHistory(ctx context.Context, tenantID, unitID uuid.UUID) ([]*models.OccupancyHistory, error)
}

type leaseRepo struct {
	db DBTX
}

func NewLeaseRepo(db DBTX) LeaseRepository {
	return &leaseRepo{db: db}
}

const activeLeaseConstraint = "tenant_units_one_active_per_unit"

const leaseColumns = `tu.id, tu.tenant_id, tu.rental_tenant_id, tu.unit_id, tu.lease_start, tu.lease_end, tu.monthly_rent,
	tu.security_deposit_paid, tu.advance_rent_months, tu.advance_rent_amount, tu.notice_period_days, tu.lock_in_period_months,
	tu.lease_document_path, tu.status, tu.notes, tu.created_at, tu.updated_at, rt.full_name, u.unit_number, p.id, p.name, u.currency`

const leaseFrom = ` FROM tenant_units tu
	JOIN rental_tenants rt ON rt.id = tu.rental_tenant_id
	JOIN units u ON u.id = tu.unit_id
	JOIN properties p ON p.id = u.property_id`

func scanLease(row pgx.Row) (*models.TenantUnit, error) {
	l := &models.TenantUnit{}
	err := row.Scan(&l.ID, &l.TenantID, &l.RentalTenantID, &l.UnitID, &l.LeaseStart, &l.LeaseEnd, &l.MonthlyRent,
		&l.SecurityDepositPaid, &l.AdvanceRentMonths, &l.AdvanceRentAmount, &l.NoticePeriodDays, &l.LockInPeriodMonths,
		&l.LeaseDocumentPath, &l.Status, &l.Notes, &l.CreatedAt, &l.UpdatedAt, &l.TenantName, &l.UnitNumber,
		&l.PropertyID, &l.PropertyName, &l.Currency)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func collectLeases(rows pgx.Rows) ([]*models.TenantUnit, error) {
	defer rows.Close()
	leases := []*models.TenantUnit{}
	for rows.Next() {
		l, err := scanLease(rows)
		if err != nil {
			return nil, err
		}
		leases = append(leases, l)
	}
	return leases, rows.Err()
}

func insertOccupancyEvent(ctx context.Context, db DBTX, tenantID, unitID, rentalTenantID uuid.UUID, leaseID *uuid.UUID,
	event string, date time.Time, notes *string) error {
	_, err := db.Exec(ctx, `
		INSERT INTO occupancy_history (id, tenant_id, unit_id, rental_tenant_id, tenant_unit_id, event_type, event_date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())`,
		uuid.New(), tenantID, unitID, rentalTenantID, leaseID, event, date, notes)
	return err
}

func (r *leaseRepo) Create(ctx context.Context, l *models.TenantUnit) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO tenant_units (id, tenant_id, rental_tenant_id, unit_id, lease_start, lease_end, monthly_rent,
				security_deposit_paid, advance_rent_months, advance_rent_amount, notice_period_days, lock_in_period_months,
				lease_document_path, status, notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())`,
			l.ID, l.TenantID, l.RentalTenantID, l.UnitID, l.LeaseStart, l.LeaseEnd, l.MonthlyRent, l.SecurityDepositPaid,
			l.AdvanceRentMonths, l.AdvanceRentAmount, l.NoticePeriodDays, l.LockInPeriodMonths, l.LeaseDocumentPath,
			l.Status, l.Notes)
		if err != nil {
			return err
		}
		if l.Status == models.LeaseStatusActive {
			leaseID := l.ID
			if err := insertOccupancyEvent(ctx, tx, l.TenantID, l.UnitID, l.RentalTenantID, &leaseID,
				models.OccupancyMoveIn, l.LeaseStart, l.Notes); err != nil {
				return err
			}
		}
		return syncOccupancy(ctx, tx, l.TenantID, l.UnitID)
	})
	if isUniqueViolation(err, activeLeaseConstraint) {
		return ErrActiveLeaseExists
	}
	return err
}

func (r *leaseRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TenantUnit, error) {
	return scanLease(r.db.QueryRow(ctx, `SELECT `+leaseColumns+leaseFrom+` WHERE tu.tenant_id = $1 AND tu.id = $2`, tenantID, id))
}

func (r *leaseRepo) Update(ctx context.Context, l *models.TenantUnit, previousUnitID uuid.UUID) error {
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE tenant_units
			SET rental_tenant_id = $1, unit_id = $2, lease_start = $3, lease_end = $4, monthly_rent = $5,
				security_deposit_paid = $6, advance_rent_months = $7, advance_rent_amount = $8, notice_period_days = $9,
				lock_in_period_months = $10, status = $11, notes = $12, updated_at = NOW()
			WHERE tenant_id = $13 AND id = $14`,
			l.RentalTenantID, l.UnitID, l.LeaseStart, l.LeaseEnd, l.MonthlyRent, l.SecurityDepositPaid, l.AdvanceRentMonths,
			l.AdvanceRentAmount, l.NoticePeriodDays, l.LockInPeriodMonths, l.Status, l.Notes, l.TenantID, l.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		if err := syncOccupancy(ctx, tx, l.TenantID, l.UnitID); err != nil {
			return err
		}
		if previousUnitID != uuid.Nil && previousUnitID != l.UnitID {
			return syncOccupancy(ctx, tx, l.TenantID, previousUnitID)
		}
		return nil
	})
	if isUniqueViolation(err, activeLeaseConstraint) {
		return ErrActiveLeaseExists
	}
	return err
}

func (r *leaseRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var invoiced bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM rent_invoices WHERE tenant_id = $1 AND tenant_unit_id = $2)`,
			tenantID, id).Scan(&invoiced); err != nil {
			return err
		}
		if invoiced {
			return ErrLeaseHasInvoices
		}

		var unitID uuid.UUID
		err := tx.QueryRow(ctx, `DELETE FROM tenant_units WHERE tenant_id = $1 AND id = $2 RETURNING unit_id`, tenantID, id).Scan(&unitID)
		if err != nil {
			return err
		}
		return syncOccupancy(ctx, tx, tenantID, unitID)
	})
}

func (r *leaseRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.TenantUnitFilter) ([]*models.TenantUnit, int, error) {
	if filter == nil {
		filter = &models.TenantUnitFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.UnitID != nil {
		f.add("tu.unit_id = $%d", *filter.UnitID)
	}
	if filter.RentalTenantID != nil {
		f.add("tu.rental_tenant_id = $%d", *filter.RentalTenantID)
	}
	if filter.Status != "" {
		f.add("tu.status = $%d", filter.Status)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM tenant_units tu WHERE tu.tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + leaseColumns + leaseFrom + ` WHERE tu.tenant_id = $1` + f.where +
		` ORDER BY tu.lease_start DESC` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	leases, err := collectLeases(rows)
	return leases, total, err
}

func (r *leaseRepo) HasActiveLease(ctx context.Context, tenantID, unitID uuid.UUID, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM tenant_units
			WHERE tenant_id = $1 AND unit_id = $2 AND status = 'active' AND ($3::uuid IS NULL OR id <> $3)
		)`, tenantID, unitID, excludeID).Scan(&exists)
	return exists, err
}

func (r *leaseRepo) ListActive(ctx context.Context, tenantID uuid.UUID) ([]*models.TenantUnit, error) {
	rows, err := r.db.Query(ctx, `SELECT `+leaseColumns+leaseFrom+`
		WHERE tu.tenant_id = $1 AND tu.status = 'active'
		ORDER BY p.name, u.unit_number`, tenantID)
	if err != nil {
		return nil, err
	}
	return collectLeases(rows)
}

func (r *leaseRepo) EndLease(ctx context.Context, tenantID, id uuid.UUID, moveOut time.Time, notes *string) (bool, error) {
	ended := false
	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		var unitID, rentalTenantID uuid.UUID
		err := tx.QueryRow(ctx, `
			UPDATE tenant_units
			SET status = 'ended',
				lease_end = CASE WHEN lease_end IS NULL OR lease_end > $1 THEN $1 ELSE lease_end END,
				notes = COALESCE($2, notes),
				updated_at = NOW()
			WHERE tenant_id = $3 AND id = $4 AND status = 'active'
			RETURNING unit_id, rental_tenant_id`, moveOut, notes, tenantID, id).Scan(&unitID, &rentalTenantID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		leaseID := id
		if err := insertOccupancyEvent(ctx, tx, tenantID, unitID, rentalTenantID, &leaseID, models.OccupancyMoveOut, moveOut, notes); err != nil {
			return err
		}
		if err := syncOccupancy(ctx, tx, tenantID, unitID); err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE rental_tenants SET status = 'former', updated_at = NOW()
			WHERE tenant_id = $1 AND id = $2
				AND NOT EXISTS(SELECT 1 FROM tenant_units WHERE rental_tenant_id = $2 AND status = 'active')`,
			tenantID, rentalTenantID)
		if err != nil {
			return err
		}
		ended = true
		return nil
	})
	return ended, err
}

func (r *leaseRepo) SetDocumentPath(ctx context.Context, tenantID, id uuid.UUID, path string) error {
	tag, err := r.db.Exec(ctx, `UPDATE tenant_units SET lease_document_path = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`,
		path, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *leaseRepo) OccupancyHistory(ctx context.Context, tenantID, unitID uuid.UUID) ([]*models.OccupancyHistory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT h.id, h.tenant_id, h.unit_id, h.rental_tenant_id, h.tenant_unit_id, h.event_type, h.event_date, h.notes,
			h.created_at, rt.full_name
		FROM occupancy_history h
		JOIN rental_tenants rt ON rt.id = h.rental_tenant_id
		WHERE h.tenant_id = $1 AND h.unit_id = $2
		ORDER BY h.event_date DESC, h.created_at DESC`, tenantID, unitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := []*models.OccupancyHistory{}
	for rows.Next() {
		h := &models.OccupancyHistory{}
		if err := rows.Scan(&h.ID, &h.TenantID, &h.UnitID, &h.RentalTenantID, &h.TenantUnitID, &h.EventType, &h.EventDate,
			&h.Notes, &h.CreatedAt, &h.TenantName); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
