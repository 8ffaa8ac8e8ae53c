package repositories

import (
	"context"
	"fmt"
	"strings"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	// CreateAccount inserts a tenant, its first user and an admin role holding permissions, atomically
	CreateAccount(ctx context.Context, tenant *models.Tenant, user *models.User, role *models.Role, permissions []string) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, user *models.User) error
	List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error)
}

type userRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, tenant_id, email, password_hash, first_name, last_name, status, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.TenantID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Status, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func insertUser(ctx context.Context, db DBTX, user *models.User) error {
	query := `
		INSERT INTO users (id, tenant_id, email, password_hash, first_name, last_name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := db.Exec(ctx, query, user.ID, user.TenantID, strings.ToLower(user.Email), user.PasswordHash, user.FirstName, user.LastName, user.Status)
	return err
}

func (r *userRepo) Create(ctx context.Context, user *models.User) error {
	return insertUser(ctx, r.db, user)
}

func (r *userRepo) CreateAccount(ctx context.Context, tenant *models.Tenant, user *models.User, role *models.Role, permissions []string) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := NewTenantRepo(tx).Create(ctx, tenant); err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := insertUser(ctx, tx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		roles := NewRoleRepo(tx)
		if err := roles.Create(ctx, role); err != nil {
			return fmt.Errorf("create role: %w", err)
		}
		if err := roles.GrantPermissions(ctx, role.ID, permissions); err != nil {
			return fmt.Errorf("grant permissions: %w", err)
		}
		return roles.AssignToUser(ctx, tenant.ID, user.ID, role.ID)
	})
}

func (r *userRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`
	return scanUser(r.db.QueryRow(ctx, query, tenantID, id))
}

// GetByEmail looks a user up across tenants; emails are globally unique
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

func (r *userRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, strings.ToLower(strings.TrimSpace(email))).Scan(&exists)
	return exists, err
}

func (r *userRepo) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, status = $3, updated_at = NOW()
		WHERE tenant_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, user.FirstName, user.LastName, user.Status, user.TenantID, user.ID)
	return err
}

func (r *userRepo) List(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
