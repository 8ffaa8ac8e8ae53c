package repositories

import (
	"context"
	"errors"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrDuplicateUnitNumber is returned when the property already has a unit with that number
var ErrDuplicateUnitNumber = errors.New("unit number already exists on property")

type UnitRepository interface {
	Create(ctx context.Context, unit *models.Unit) error
	// CreateMany inserts all units in one transaction
	CreateMany(ctx context.Context, units []*models.Unit) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Unit, error)
	GetByNumber(ctx context.Context, tenantID, propertyID uuid.UUID, unitNumber string) (*models.Unit, error)
	Update(ctx context.Context, unit *models.Unit) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.UnitFilter) ([]*models.Unit, int, error)
	// ExistingNumbers returns the unit numbers already used on a property
	ExistingNumbers(ctx context.Context, tenantID, propertyID uuid.UUID) (map[string]bool, error)
	CountForProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (int, error)
	// SyncOccupancy sets is_occupied to whether the unit has an active lease
	SyncOccupancy(ctx context.Context, tenantID, unitID uuid.UUID) error
}

type unitRepo struct {
	db DBTX
}

func NewUnitRepo(db DBTX) UnitRepository {
	return &unitRepo{db: db}
}

const unitColumns = `u.id, u.tenant_id, u.property_id, u.unit_number, u.unit_type, u.rent_amount, u.security_deposit, u.currency,
	u.is_occupied, u.created_at, u.updated_at, p.name`

const unitFrom = ` FROM units u JOIN properties p ON p.id = u.property_id`

func scanUnit(row pgx.Row) (*models.Unit, error) {
	u := &models.Unit{}
	err := row.Scan(&u.ID, &u.TenantID, &u.PropertyID, &u.UnitNumber, &u.UnitType, &u.RentAmount, &u.SecurityDeposit,
		&u.Currency, &u.IsOccupied, &u.CreatedAt, &u.UpdatedAt, &u.PropertyName)
	if err != nil {
		return nil, err
	}
	return u, nil
}

const insertUnitQuery = `
	INSERT INTO units (id, tenant_id, property_id, unit_number, unit_type, rent_amount, security_deposit, currency, is_occupied,
		created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
`

func insertUnit(ctx context.Context, db DBTX, u *models.Unit) error {
	_, err := db.Exec(ctx, insertUnitQuery, u.ID, u.TenantID, u.PropertyID, u.UnitNumber, u.UnitType, u.RentAmount,
		u.SecurityDeposit, u.Currency, u.IsOccupied)
	if isUniqueViolation(err, "") {
		return ErrDuplicateUnitNumber
	}
	return err
}

func (r *unitRepo) Create(ctx context.Context, u *models.Unit) error {
	return insertUnit(ctx, r.db, u)
}

func (r *unitRepo) CreateMany(ctx context.Context, units []*models.Unit) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		for _, u := range units {
			if err := insertUnit(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *unitRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Unit, error) {
	return scanUnit(r.db.QueryRow(ctx, `SELECT `+unitColumns+unitFrom+` WHERE u.tenant_id = $1 AND u.id = $2`, tenantID, id))
}

func (r *unitRepo) GetByNumber(ctx context.Context, tenantID, propertyID uuid.UUID, unitNumber string) (*models.Unit, error) {
	query := `SELECT ` + unitColumns + unitFrom + ` WHERE u.tenant_id = $1 AND u.property_id = $2 AND u.unit_number = $3`
	return scanUnit(r.db.QueryRow(ctx, query, tenantID, propertyID, unitNumber))
}

func (r *unitRepo) Update(ctx context.Context, u *models.Unit) error {
	query := `
		UPDATE units
		SET property_id = $1, unit_number = $2, unit_type = $3, rent_amount = $4, security_deposit = $5, currency = $6,
			updated_at = NOW()
		WHERE tenant_id = $7 AND id = $8
	`
	tag, err := r.db.Exec(ctx, query, u.PropertyID, u.UnitNumber, u.UnitType, u.RentAmount, u.SecurityDeposit, u.Currency,
		u.TenantID, u.ID)
	if isUniqueViolation(err, "") {
		return ErrDuplicateUnitNumber
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM units WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *unitRepo) List(ctx context.Context, tenantID uuid.UUID, filter *models.UnitFilter) ([]*models.Unit, int, error) {
	if filter == nil {
		filter = &models.UnitFilter{Limit: 50}
	}

	f := newFilterBuilder(tenantID)
	if filter.PropertyID != nil {
		f.add("u.property_id = $%d", *filter.PropertyID)
	}
	if filter.IsOccupied != nil {
		f.add("u.is_occupied = $%d", *filter.IsOccupied)
	}
	if filter.Search != "" {
		f.add("(u.unit_number ILIKE $%d OR p.name ILIKE $%d)", likePattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*)`+unitFrom+` WHERE u.tenant_id = $1`+f.where, f.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + unitColumns + unitFrom + ` WHERE u.tenant_id = $1` + f.where +
		` ORDER BY p.name, u.unit_number` + f.page(filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, query, f.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	units := []*models.Unit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, 0, err
		}
		units = append(units, u)
	}
	return units, total, rows.Err()
}

func (r *unitRepo) ExistingNumbers(ctx context.Context, tenantID, propertyID uuid.UUID) (map[string]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT unit_number FROM units WHERE tenant_id = $1 AND property_id = $2`, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := make(map[string]bool)
	for rows.Next() {
		var number string
		if err := rows.Scan(&number); err != nil {
			return nil, err
		}
		existing[number] = true
	}
	return existing, rows.Err()
}

func (r *unitRepo) CountForProperty(ctx context.Context, tenantID, propertyID uuid.UUID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM units WHERE tenant_id = $1 AND property_id = $2`, tenantID, propertyID).Scan(&count)
	return count, err
}

func (r *unitRepo) SyncOccupancy(ctx context.Context, tenantID, unitID uuid.UUID) error {
	return syncOccupancy(ctx, r.db, tenantID, unitID)
}

func syncOccupancy(ctx context.Context, db DBTX, tenantID, unitID uuid.UUID) error {
	_, err := db.Exec(ctx, `
		UPDATE units
		SET is_occupied = EXISTS(SELECT 1 FROM tenant_units tu WHERE tu.unit_id = units.id AND tu.status = 'active'),
			updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2`, tenantID, unitID)
	return err
}
