package repositories

import (
	"context"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RoleRepository covers roles, their permissions and user assignments
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error)
	GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error)
	GrantPermissions(ctx context.Context, roleID uuid.UUID, permissions []string) error
	AssignToUser(ctx context.Context, tenantID, userID, roleID uuid.UUID) error
	GetUserPermissions(ctx context.Context, tenantID, userID uuid.UUID) ([]string, error)
}

type roleRepo struct {
	db DBTX
}

func NewRoleRepo(db DBTX) RoleRepository {
	return &roleRepo{db: db}
}

const roleColumns = `id, tenant_id, name, description, created_at, updated_at`

func scanRole(row pgx.Row) (*models.Role, error) {
	role := &models.Role{}
	if err := row.Scan(&role.ID, &role.TenantID, &role.Name, &role.Description, &role.CreatedAt, &role.UpdatedAt); err != nil {
		return nil, err
	}
	return role, nil
}

// Create is idempotent on (tenant_id, name)
func (r *roleRepo) Create(ctx context.Context, role *models.Role) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO roles (id, tenant_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (tenant_id, name) DO NOTHING
	`, role.ID, role.TenantID, role.Name, role.Description)
	return err
}

func (r *roleRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Role, error) {
	return scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND id = $2`, tenantID, id))
}

func (r *roleRepo) GetByName(ctx context.Context, tenantID uuid.UUID, name string) (*models.Role, error) {
	return scanRole(r.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 AND name = $2`, tenantID, name))
}

func (r *roleRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM roles WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	return err
}

func (r *roleRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Role, error) {
	rows, err := r.db.Query(ctx, `SELECT `+roleColumns+` FROM roles WHERE tenant_id = $1 ORDER BY name LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Role, error) {
		return scanRole(row)
	})
}

// GrantPermissions links the named permissions to a role; unknown names are ignored
func (r *roleRepo) GrantPermissions(ctx context.Context, roleID uuid.UUID, permissions []string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO role_permissions (role_id, permission_id)
		SELECT $1, p.id FROM permissions p WHERE p.name = ANY($2)
		ON CONFLICT DO NOTHING
	`, roleID, permissions)
	return err
}

func (r *roleRepo) AssignToUser(ctx context.Context, tenantID, userID, roleID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (tenant_id, user_id, role_id, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT DO NOTHING
	`, tenantID, userID, roleID)
	return err
}

// GetUserPermissions resolves the effective permission names; an inactive user holds none
func (r *roleRepo) GetUserPermissions(ctx context.Context, tenantID, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT p.name
		FROM user_roles ur
		JOIN users u ON u.id = ur.user_id AND u.status = 'active'
		JOIN role_permissions rp ON rp.role_id = ur.role_id
		JOIN permissions p ON p.id = rp.permission_id
		WHERE ur.tenant_id = $1 AND ur.user_id = $2
		ORDER BY p.name
	`, tenantID, userID)
	if err != nil {
		return nil, err
	}
	perms, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if perms == nil {
		perms = []string{}
	}
	return perms, nil
}
