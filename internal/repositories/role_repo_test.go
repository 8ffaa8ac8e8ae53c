package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type RoleRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      RoleRepository
	tenantID1 uuid.UUID
	tenantID2 uuid.UUID
	roleID    uuid.UUID
	context   context.Context
}

func (suite *RoleRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewRoleRepo(mock)
	suite.tenantID1 = uuid.New()
	suite.tenantID2 = uuid.New()
	suite.roleID = uuid.New()
	suite.context = context.Background()
}

func (suite *RoleRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestRoleRepoTestSuite(t *testing.T) {
	suite.Run(t, new(RoleRepoTestSuite))
}

func (suite *RoleRepoTestSuite) TestCreate_Success() {
	role := &models.Role{
		ID:          suite.roleID,
		TenantID:    suite.tenantID1,
		Name:        "admin",
		Description: stringPtr("Administrator role"),
	}

	suite.mock.ExpectExec(`INSERT INTO roles .* ON CONFLICT \(tenant_id, name\) DO NOTHING`).
		WithArgs(role.ID, role.TenantID, role.Name, role.Description).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, role)
	assert.NoError(suite.T(), err)
}

func (suite *RoleRepoTestSuite) TestCreate_DatabaseError() {
	role := &models.Role{ID: suite.roleID, TenantID: suite.tenantID1, Name: "viewer"}

	suite.mock.ExpectExec(`INSERT INTO roles`).
		WithArgs(role.ID, role.TenantID, role.Name, role.Description).
		WillReturnError(errors.New("connection refused"))

	err := suite.repo.Create(suite.context, role)
	assert.EqualError(suite.T(), err, "connection refused")
}

func (suite *RoleRepoTestSuite) TestGetByID_Success() {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "created_at", "updated_at"}).
		AddRow(suite.roleID, suite.tenantID1, "admin", stringPtr("All access"), now, now)

	suite.mock.ExpectQuery(`SELECT id, tenant_id, name, description, created_at, updated_at FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID1, suite.roleID).
		WillReturnRows(rows)

	role, err := suite.repo.GetByID(suite.context, suite.tenantID1, suite.roleID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "admin", role.Name)
	assert.Equal(suite.T(), "All access", *role.Description)
}

func (suite *RoleRepoTestSuite) TestGetByID_WrongTenant() {
	suite.mock.ExpectQuery(`FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID2, suite.roleID).
		WillReturnError(pgx.ErrNoRows)

	role, err := suite.repo.GetByID(suite.context, suite.tenantID2, suite.roleID)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), role)
}

func (suite *RoleRepoTestSuite) TestGetByName_Success() {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "created_at", "updated_at"}).
		AddRow(suite.roleID, suite.tenantID1, "admin", nil, now, now)

	suite.mock.ExpectQuery(`FROM roles WHERE tenant_id = \$1 AND name = \$2`).
		WithArgs(suite.tenantID1, "admin").
		WillReturnRows(rows)

	role, err := suite.repo.GetByName(suite.context, suite.tenantID1, "admin")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.roleID, role.ID)
	assert.Nil(suite.T(), role.Description)
}

func (suite *RoleRepoTestSuite) TestDelete_Success() {
	suite.mock.ExpectExec(`DELETE FROM roles WHERE tenant_id = \$1 AND id = \$2`).
		WithArgs(suite.tenantID1, suite.roleID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(suite.T(), suite.repo.Delete(suite.context, suite.tenantID1, suite.roleID))
}

func (suite *RoleRepoTestSuite) TestList_EmptyResult() {
	suite.mock.ExpectQuery(`FROM roles WHERE tenant_id = \$1 ORDER BY name LIMIT \$2 OFFSET \$3`).
		WithArgs(suite.tenantID1, 10, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "tenant_id", "name", "description", "created_at", "updated_at"}))

	roles, err := suite.repo.List(suite.context, suite.tenantID1, 10, 0)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), roles)
}

func (suite *RoleRepoTestSuite) TestGrantPermissions() {
	perms := []string{models.PermQuotationsRead, models.PermQuotationsWrite}

	suite.mock.ExpectExec(`INSERT INTO role_permissions .* WHERE p.name = ANY\(\$2\)`).
		WithArgs(suite.roleID, perms).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	assert.NoError(suite.T(), suite.repo.GrantPermissions(suite.context, suite.roleID, perms))
}

func (suite *RoleRepoTestSuite) TestGetUserPermissions() {
	userID := uuid.New()
	rows := pgxmock.NewRows([]string{"name"}).
		AddRow(models.PermPaymentsRead).
		AddRow(models.PermPaymentsWrite)

	suite.mock.ExpectQuery(`SELECT DISTINCT p.name FROM user_roles ur JOIN users u ON u.id = ur.user_id AND u.status = 'active'`).
		WithArgs(suite.tenantID1, userID).
		WillReturnRows(rows)

	perms, err := suite.repo.GetUserPermissions(suite.context, suite.tenantID1, userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{models.PermPaymentsRead, models.PermPaymentsWrite}, perms)
}

func (suite *RoleRepoTestSuite) TestGetUserPermissions_NoRoles() {
	userID := uuid.New()
	suite.mock.ExpectQuery(`SELECT DISTINCT p.name FROM user_roles ur`).
		WithArgs(suite.tenantID2, userID).
		WillReturnRows(pgxmock.NewRows([]string{"name"}))

	perms, err := suite.repo.GetUserPermissions(suite.context, suite.tenantID2, userID)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), perms)
	assert.Empty(suite.T(), perms)
}
