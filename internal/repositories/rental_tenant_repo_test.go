package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRentalTenantRepo_DeleteReferencedByLease(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRentalTenantRepo(mock)
	tenantID, id := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM rental_tenants`).WithArgs(tenantID, id).
		WillReturnError(&pgconn.PgError{Code: "23503", ConstraintName: "tenant_units_rental_tenant_id_fkey"})

	err = repo.Delete(context.Background(), tenantID, id)
	assert.ErrorIs(t, err, ErrRentalTenantHasLeases)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalTenantRepo_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRentalTenantRepo(mock)
	tenantID, id := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM rental_tenants`).WithArgs(tenantID, id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), tenantID, id)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
