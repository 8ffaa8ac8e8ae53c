package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error)
	// Usage counts child categories and products referencing the category
	Usage(ctx context.Context, tenantID, id uuid.UUID) (children int, products int, err error)
}

type categoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, tenant_id, name, description, parent_id, sort_order, is_active, created_at, updated_at`

func scanCategory(row pgx.Row) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.Description, &c.ParentID, &c.SortOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, tenant_id, name, description, parent_id, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.TenantID, category.Name, category.Description,
		category.ParentID, category.SortOrder, category.IsActive)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE tenant_id = $1 AND id = $2`
	return scanCategory(r.db.QueryRow(ctx, query, tenantID, id))
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = $2, parent_id = $3, sort_order = $4, is_active = $5, updated_at = NOW()
		WHERE tenant_id = $6 AND id = $7
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Description, category.ParentID, category.SortOrder,
		category.IsActive, category.TenantID, category.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *categoryRepo) List(ctx context.Context, tenantID uuid.UUID) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE tenant_id = $1 ORDER BY sort_order, name`
	rows, err := r.db.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) Usage(ctx context.Context, tenantID, id uuid.UUID) (int, int, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM categories WHERE tenant_id = $1 AND parent_id = $2),
			(SELECT COUNT(*) FROM products WHERE tenant_id = $1 AND category_id = $2)
	`
	var children, products int
	err := r.db.QueryRow(ctx, query, tenantID, id).Scan(&children, &products)
	return children, products, err
}
