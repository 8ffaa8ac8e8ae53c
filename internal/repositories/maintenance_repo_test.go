package repositories

import (
	"context"
	"testing"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaintenanceRepo_ListIgnoresHalfDateRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMaintenanceRepo(mock)
	tenantID := uuid.New()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM maintenance_requests m WHERE m.tenant_id = \$1 AND m.type = \$2`).
		WithArgs(tenantID, models.MaintenanceTypeRepair).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY m.maintenance_date DESC`).
		WithArgs(tenantID, models.MaintenanceTypeRepair, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	requests, total, err := repo.List(context.Background(), tenantID, &models.MaintenanceFilter{
		Type: models.MaintenanceTypeRepair, DateFrom: &from, Limit: 50,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, requests)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaintenanceRepo_DeleteMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMaintenanceRepo(mock)
	tenantID, id := uuid.New(), uuid.New()

	mock.ExpectExec(`DELETE FROM maintenance_requests`).WithArgs(tenantID, id).WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err = repo.Delete(context.Background(), tenantID, id)
	assert.Error(t, err)
}
