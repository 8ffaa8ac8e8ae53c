package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error)
	ResortCodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error)
	// ExistingNames returns the lower-cased resort names already stored for the tenant
	ExistingNames(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error)
	CountQuotations(ctx context.Context, tenantID, id uuid.UUID) (int, error)
}

type customerRepo struct {
	db DBTX
}

func NewCustomerRepo(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

const customerColumns = `id, tenant_id, resort_code, resort_name, holding_company, contact_person, email, phone, address,
	country, tax_number, payment_terms, is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	c := &models.Customer{}
	err := row.Scan(&c.ID, &c.TenantID, &c.ResortCode, &c.ResortName, &c.HoldingCompany, &c.ContactPerson, &c.Email,
		&c.Phone, &c.Address, &c.Country, &c.TaxNumber, &c.PaymentTerms, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepo) Create(ctx context.Context, c *models.Customer) error {
	query := `
		INSERT INTO customers (id, tenant_id, resort_code, resort_name, holding_company, contact_person, email, phone, address,
			country, tax_number, payment_terms, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, c.ID, c.TenantID, c.ResortCode, c.ResortName, c.HoldingCompany, c.ContactPerson,
		c.Email, c.Phone, c.Address, c.Country, c.TaxNumber, c.PaymentTerms, c.IsActive)
	return err
}

func (r *customerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1 AND id = $2`
	return scanCustomer(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *customerRepo) Update(ctx context.Context, c *models.Customer) error {
	query := `
		UPDATE customers
		SET resort_code = $1, resort_name = $2, holding_company = $3, contact_person = $4, email = $5, phone = $6,
			address = $7, country = $8, tax_number = $9, payment_terms = $10, is_active = $11, updated_at = NOW()
		WHERE tenant_id = $12 AND id = $13
	`
	tag, err := r.db.Exec(ctx, query, c.ResortCode, c.ResortName, c.HoldingCompany, c.ContactPerson, c.Email, c.Phone,
		c.Address, c.Country, c.TaxNumber, c.PaymentTerms, c.IsActive, c.TenantID, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *customerRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error) {
	if filter == nil {
		filter = &models.CustomerFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.Search != "" {
		f.add("(resort_name ILIKE $%d OR resort_code ILIKE $%d OR holding_company ILIKE $%d)", likePattern(filter.Search))
	}
	if filter.IsActive != nil {
		f.add("is_active = $%d", *filter.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + customerColumns + ` FROM customers WHERE tenant_id = $1` + f.where +
		` ORDER BY resort_name` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	customers := []*models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *customerRepo) ResortCodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE tenant_id = $1 AND resort_code = $2 AND ($3::uuid IS NULL OR id <> $3))`
	err := r.db.QueryRow(ctx, query, tenantID, code, excludeID).Scan(&exists)
	return exists, err
}

func (r *customerRepo) ExistingNames(ctx context.Context, tenantID uuid.UUID) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT LOWER(resort_name) FROM customers WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}

func (r *customerRepo) CountQuotations(ctx context.Context, tenantID, id uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM quotations WHERE tenant_id = $1 AND customer_id = $2`, tenantID, id).Scan(&count)
	return count, err
}
