package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error)
	// GetByName matches case-insensitively
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Property, int, error)
}

type propertyRepo struct {
	db DBTX
}

func NewPropertyRepo(db DBTX) PropertyRepository {
	return &propertyRepo{db: db}
}

const propertyColumns = `p.id, p.tenant_id, p.name, p.address, p.type, p.number_of_units, p.created_at, p.updated_at,
	(SELECT COUNT(*) FROM units u WHERE u.property_id = p.id)`

func scanProperty(row pgx.Row) (*models.Property, error) {
	p := &models.Property{}
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Address, &p.Type, &p.NumberOfUnits, &p.CreatedAt, &p.UpdatedAt, &p.UnitCount)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	query := `
		INSERT INTO properties (id, tenant_id, name, address, type, number_of_units, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.TenantID, p.Name, p.Address, p.Type, p.NumberOfUnits)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.tenant_id = $1 AND p.id = $2`
	return scanProperty(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *propertyRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.tenant_id = $1 AND LOWER(p.name) = LOWER($2) LIMIT 1`
	return scanProperty(r.db.QueryRow(ctx, query, tenantID, name))
}

func (r *propertyRepo) Update(ctx context.Context, p *models.Property) error {
	query := `
		UPDATE properties
		SET name = $1, address = $2, type = $3, number_of_units = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, p.Name, p.Address, p.Type, p.NumberOfUnits, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Delete removes the property; units, leases and their history go with it through ON DELETE CASCADE
func (r *propertyRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM properties WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *propertyRepo) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Property, int, error) {
	f := newFilterBuilder(tenantID)
	if search != "" {
		f.add("(p.name ILIKE $%d OR p.address ILIKE $%d)", likePattern(search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM properties p WHERE p.tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + propertyColumns + ` FROM properties p WHERE p.tenant_id = $1` + f.where +
		` ORDER BY p.name` + f.page(limit, offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	properties := []*models.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, 0, err
		}
		properties = append(properties, p)
	}
	return properties, total, rows.Err()
}
