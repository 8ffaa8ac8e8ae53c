package repositories

import (
	"context"
	"errors"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrRentalTenantHasLeases is returned when leases or invoices still reference the rental tenant
var ErrRentalTenantHasLeases = errors.New("rental tenant has leases")

type RentalTenantRepository interface {
	Create(ctx context.Context, rt *models.RentalTenant) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentalTenant, error)
	Update(ctx context.Context, rt *models.RentalTenant) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.RentalTenantFilter) ([]*models.RentalTenant, int, error)
}

type rentalTenantRepo struct {
	db DBTX
}

func NewRentalTenantRepo(db DBTX) RentalTenantRepository {
	return &rentalTenantRepo{db: db}
}

const rentalTenantColumns = `id, tenant_id, full_name, email, phone, alternate_phone, emergency_contact_name, emergency_contact_phone,
	id_proof_type, id_proof_number, status, created_at, updated_at`

func scanRentalTenant(row pgx.Row) (*models.RentalTenant, error) {
	rt := &models.RentalTenant{}
	err := row.Scan(&rt.ID, &rt.TenantID, &rt.FullName, &rt.Email, &rt.Phone, &rt.AlternatePhone, &rt.EmergencyContactName,
		&rt.EmergencyContactPhone, &rt.IDProofType, &rt.IDProofNumber, &rt.Status, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalTenantRepo) Create(ctx context.Context, rt *models.RentalTenant) error {
	query := `
		INSERT INTO rental_tenants (id, tenant_id, full_name, email, phone, alternate_phone, emergency_contact_name,
			emergency_contact_phone, id_proof_type, id_proof_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, rt.ID, rt.TenantID, rt.FullName, rt.Email, rt.Phone, rt.AlternatePhone,
		rt.EmergencyContactName, rt.EmergencyContactPhone, rt.IDProofType, rt.IDProofNumber, rt.Status)
	return err
}

func (r *rentalTenantRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentalTenant, error) {
	query := `SELECT ` + rentalTenantColumns + ` FROM rental_tenants WHERE tenant_id = $1 AND id = $2`
	return scanRentalTenant(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *rentalTenantRepo) Update(ctx context.Context, rt *models.RentalTenant) error {
	query := `
		UPDATE rental_tenants
		SET full_name = $1, email = $2, phone = $3, alternate_phone = $4, emergency_contact_name = $5,
			emergency_contact_phone = $6, id_proof_type = $7, id_proof_number = $8, status = $9, updated_at = NOW()
		WHERE tenant_id = $10 AND id = $11
	`
	tag, err := r.db.Exec(ctx, query, rt.FullName, rt.Email, rt.Phone, rt.AlternatePhone, rt.EmergencyContactName,
		rt.EmergencyContactPhone, rt.IDProofType, rt.IDProofNumber, rt.Status, rt.TenantID, rt.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *rentalTenantRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM rental_tenants WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if isForeignKeyViolation(err) {
		return ErrRentalTenantHasLeases
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *rentalTenantRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentalTenantFilter) ([]*models.RentalTenant, int, error) {
	if filter == nil {
		filter = &models.RentalTenantFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.Status != "" {
		f.add("status = $%d", filter.Status)
	}
	if filter.Search != "" {
		f.add("(full_name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", likePattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM rental_tenants WHERE tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + rentalTenantColumns + ` FROM rental_tenants WHERE tenant_id = $1` + f.where +
		` ORDER BY full_name` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	tenants := []*models.RentalTenant{}
	for rows.Next() {
		rt, err := scanRentalTenant(rows)
		if err != nil {
			return nil, 0, err
		}
		tenants = append(tenants, rt)
	}
	return tenants, total, rows.Err()
}
