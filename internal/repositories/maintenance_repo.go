package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MaintenanceRepository interface {
	Create(ctx context.Context, m *models.MaintenanceRequest) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, m *models.MaintenanceRequest) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error)
}

type maintenanceRepo struct {
	db DBTX
}

func NewMaintenanceRepo(db DBTX) MaintenanceRepository {
	return &maintenanceRepo{db: db}
}

const maintenanceColumns = `m.id, m.tenant_id, m.unit_id, m.description, m.cost, m.currency, m.location, m.serviced_by,
	m.invoice_number, m.is_billable, m.billed_to_tenant, m.tenant_share, m.type, m.maintenance_date, m.created_at,
	m.updated_at, u.unit_number`

const maintenanceFrom = ` FROM maintenance_requests m JOIN units u ON u.id = m.unit_id`

func scanMaintenance(row pgx.Row) (*models.MaintenanceRequest, error) {
	m := &models.MaintenanceRequest{}
	err := row.Scan(&m.ID, &m.TenantID, &m.UnitID, &m.Description, &m.Cost, &m.Currency, &m.Location, &m.ServicedBy,
		&m.InvoiceNumber, &m.IsBillable, &m.BilledToTenant, &m.TenantShare, &m.Type, &m.MaintenanceDate, &m.CreatedAt,
		&m.UpdatedAt, &m.UnitNumber)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *maintenanceRepo) Create(ctx context.Context, m *models.MaintenanceRequest) error {
	query := `
		INSERT INTO maintenance_requests (id, tenant_id, unit_id, description, cost, currency, location, serviced_by,
			invoice_number, is_billable, billed_to_tenant, tenant_share, type, maintenance_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.TenantID, m.UnitID, m.Description, m.Cost, m.Currency, m.Location, m.ServicedBy,
		m.InvoiceNumber, m.IsBillable, m.BilledToTenant, m.TenantShare, m.Type, m.MaintenanceDate)
	return err
}

func (r *maintenanceRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MaintenanceRequest, error) {
	query := `SELECT ` + maintenanceColumns + maintenanceFrom + ` WHERE m.tenant_id = $1 AND m.id = $2`
	return scanMaintenance(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *maintenanceRepo) Update(ctx context.Context, m *models.MaintenanceRequest) error {
	query := `
		UPDATE maintenance_requests
		SET unit_id = $1, description = $2, cost = $3, currency = $4, location = $5, serviced_by = $6, invoice_number = $7,
			is_billable = $8, billed_to_tenant = $9, tenant_share = $10, type = $11, maintenance_date = $12, updated_at = NOW()
		WHERE tenant_id = $13 AND id = $14
	`
	tag, err := r.db.Exec(ctx, query, m.UnitID, m.Description, m.Cost, m.Currency, m.Location, m.ServicedBy, m.InvoiceNumber,
		m.IsBillable, m.BilledToTenant, m.TenantShare, m.Type, m.MaintenanceDate, m.TenantID, m.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *maintenanceRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM maintenance_requests WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List applies the date range only when both ends are given
func (r *maintenanceRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error) {
	if filter == nil {
		filter = &models.MaintenanceFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.UnitID != nil {
		f.add("m.unit_id = $%d", *filter.UnitID)
	}
	if filter.Type != "" {
		f.add("m.type = $%d", filter.Type)
	}
	if filter.IsBillable != nil {
		f.add("m.is_billable = $%d", *filter.IsBillable)
	}
	if filter.DateFrom != nil && filter.DateTo != nil {
		f.add("m.maintenance_date >= $%d", *filter.DateFrom)
		f.add("m.maintenance_date <= $%d", *filter.DateTo)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM maintenance_requests m WHERE m.tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + maintenanceColumns + maintenanceFrom + ` WHERE m.tenant_id = $1` + f.where +
		` ORDER BY m.maintenance_date DESC, m.created_at DESC` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	requests := []*models.MaintenanceRequest{}
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		requests = append(requests, m)
	}
	return requests, total, rows.Err()
}
