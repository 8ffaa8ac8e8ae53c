package repositories

import (
	"context"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error)
	SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error)
	CountQuotationItems(ctx context.Context, tenantID, id uuid.UUID) (int, error)
	SetLandedCost(ctx context.Context, tenantID, id uuid.UUID, landedCost decimal.Decimal) error

	CreateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error
	GetCostPrice(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductCostPrice, error)
	UpdateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error
	DeleteCostPrice(ctx context.Context, tenantID, id uuid.UUID) error
	ListCostPrices(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.ProductCostPrice, error)
	// LatestCostPrice returns the newest cost price effective on or before date
	LatestCostPrice(ctx context.Context, tenantID, productID uuid.UUID, date time.Time) (*models.ProductCostPrice, error)
}

type productRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

const productColumns = `id, tenant_id, category_id, name, description, sku, unit_price, landed_cost, currency, tax_rate,
	has_amc_option, amc_unit_price, brand, model, part_number, is_man_day_based, is_discountable, is_refurbished,
	is_active, sort_order, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.TenantID, &p.CategoryID, &p.Name, &p.Description, &p.SKU, &p.UnitPrice, &p.LandedCost,
		&p.Currency, &p.TaxRate, &p.HasAMCOption, &p.AMCUnitPrice, &p.Brand, &p.Model, &p.PartNumber,
		&p.IsManDayBased, &p.IsDiscountable, &p.IsRefurbished, &p.IsActive, &p.SortOrder, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, category_id, name, description, sku, unit_price, landed_cost, currency, tax_rate,
			has_amc_option, amc_unit_price, brand, model, part_number, is_man_day_based, is_discountable, is_refurbished,
			is_active, sort_order, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.TenantID, p.CategoryID, p.Name, p.Description, p.SKU, p.UnitPrice, p.LandedCost,
		p.Currency, p.TaxRate, p.HasAMCOption, p.AMCUnitPrice, p.Brand, p.Model, p.PartNumber,
		p.IsManDayBased, p.IsDiscountable, p.IsRefurbished, p.IsActive, p.SortOrder)
	return err
}

func (r *productRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = $2`
	return scanProduct(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *productRepo) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*models.Product, error) {
	products := make(map[uuid.UUID]*models.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1 AND id = ANY($2)`
	rows, err := r.db.Query(ctx, query, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products[p.ID] = p
	}
	return products, rows.Err()
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	query := `
		UPDATE products
		SET category_id = $1, name = $2, description = $3, sku = $4, unit_price = $5, landed_cost = $6, currency = $7,
			tax_rate = $8, has_amc_option = $9, amc_unit_price = $10, brand = $11, model = $12, part_number = $13,
			is_man_day_based = $14, is_discountable = $15, is_refurbished = $16, is_active = $17, sort_order = $18,
			updated_at = NOW()
		WHERE tenant_id = $19 AND id = $20
	`
	tag, err := r.db.Exec(ctx, query, p.CategoryID, p.Name, p.Description, p.SKU, p.UnitPrice, p.LandedCost, p.Currency,
		p.TaxRate, p.HasAMCOption, p.AMCUnitPrice, p.Brand, p.Model, p.PartNumber,
		p.IsManDayBased, p.IsDiscountable, p.IsRefurbished, p.IsActive, p.SortOrder, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error) {
	if filter == nil {
		filter = &models.ProductFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.Search != "" {
		f.add("(name ILIKE $%d OR sku ILIKE $%d OR brand ILIKE $%d OR part_number ILIKE $%d)", likePattern(filter.Search))
	}
	if filter.CategoryID != nil {
		f.add("category_id = $%d", *filter.CategoryID)
	}
	if filter.IsActive != nil {
		f.add("is_active = $%d", *filter.IsActive)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1` + f.where +
		` ORDER BY sort_order, name` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := []*models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *productRepo) SKUExists(ctx context.Context, tenantID uuid.UUID, sku string, excludeID *uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM products WHERE tenant_id = $1 AND sku = $2 AND ($3::uuid IS NULL OR id <> $3))`
	err := r.db.QueryRow(ctx, query, tenantID, sku, excludeID).Scan(&exists)
	return exists, err
}

func (r *productRepo) CountQuotationItems(ctx context.Context, tenantID, id uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM quotation_items qi
		JOIN quotations q ON q.id = qi.quotation_id
		WHERE q.tenant_id = $1 AND qi.product_id = $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&count)
	return count, err
}

func (r *productRepo) SetLandedCost(ctx context.Context, tenantID, id uuid.UUID, landedCost decimal.Decimal) error {
	_, err := r.db.Exec(ctx, `UPDATE products SET landed_cost = $1, updated_at = NOW() WHERE tenant_id = $2 AND id = $3`,
		landedCost, tenantID, id)
	return err
}

const costPriceColumns = `id, tenant_id, product_id, cost_price, currency, effective_date, notes, created_at, updated_at`

func scanCostPrice(row pgx.Row) (*models.ProductCostPrice, error) {
	cp := &models.ProductCostPrice{}
	err := row.Scan(&cp.ID, &cp.TenantID, &cp.ProductID, &cp.CostPrice, &cp.Currency, &cp.EffectiveDate, &cp.Notes, &cp.CreatedAt, &cp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return cp, nil
}

func (r *productRepo) CreateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error {
	query := `
		INSERT INTO product_cost_prices (id, tenant_id, product_id, cost_price, currency, effective_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, cp.ID, cp.TenantID, cp.ProductID, cp.CostPrice, cp.Currency, cp.EffectiveDate, cp.Notes)
	return err
}

func (r *productRepo) GetCostPrice(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductCostPrice, error) {
	query := `SELECT ` + costPriceColumns + ` FROM product_cost_prices WHERE tenant_id = $1 AND id = $2`
	return scanCostPrice(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *productRepo) UpdateCostPrice(ctx context.Context, cp *models.ProductCostPrice) error {
	query := `
		UPDATE product_cost_prices
		SET cost_price = $1, currency = $2, effective_date = $3, notes = $4, updated_at = NOW()
		WHERE tenant_id = $5 AND id = $6
	`
	tag, err := r.db.Exec(ctx, query, cp.CostPrice, cp.Currency, cp.EffectiveDate, cp.Notes, cp.TenantID, cp.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) DeleteCostPrice(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM product_cost_prices WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *productRepo) ListCostPrices(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.ProductCostPrice, error) {
	f := newFilterBuilder(tenantID)
	if productID != nil {
		f.add("product_id = $%d", *productID)
	}
	query := `SELECT ` + costPriceColumns + ` FROM product_cost_prices WHERE tenant_id = $1` + f.where +
		` ORDER BY effective_date DESC` + f.page(limit, offset)

	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := []*models.ProductCostPrice{}
	for rows.Next() {
		cp, err := scanCostPrice(rows)
		if err != nil {
			return nil, err
		}
		prices = append(prices, cp)
	}
	return prices, rows.Err()
}

func (r *productRepo) LatestCostPrice(ctx context.Context, tenantID, productID uuid.UUID, date time.Time) (*models.ProductCostPrice, error) {
	query := `SELECT ` + costPriceColumns + ` FROM product_cost_prices
		WHERE tenant_id = $1 AND product_id = $2 AND effective_date <= $3
		ORDER BY effective_date DESC, created_at DESC
		LIMIT 1`
	return scanCostPrice(r.db.QueryRow(ctx, query, tenantID, productID, date))
}
