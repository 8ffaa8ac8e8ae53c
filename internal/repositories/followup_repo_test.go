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

func TestFollowupRepo_ReplaceSkipsPendingFirst(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewFollowupRepo(mock)
	tenantID, quotationID := uuid.New(), uuid.New()
	sent := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	followups := []*models.QuotationFollowup{
		{ID: uuid.New(), FollowupNumber: 1, DueDate: sent.AddDate(0, 0, 7), Status: models.FollowupStatusPending, RecipientType: models.RecipientCustomer},
		{ID: uuid.New(), FollowupNumber: 2, DueDate: sent.AddDate(0, 0, 14), Status: models.FollowupStatusPending, RecipientType: models.RecipientCustomer},
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE quotation_followups SET status = 'skipped'`).
		WithArgs("Rescheduled", tenantID, quotationID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))
	for _, f := range followups {
		mock.ExpectExec(`INSERT INTO quotation_followups`).
			WithArgs(f.ID, tenantID, quotationID, f.FollowupNumber, f.DueDate, f.Status, f.RecipientType).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Replace(context.Background(), tenantID, quotationID, followups))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowupRepo_MarkSentGuardsStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewFollowupRepo(mock)
	tenantID, id := uuid.New(), uuid.New()
	at := time.Now()

	mock.ExpectExec(`SET status = 'sent', sent_at = \$1, .* AND status = 'pending'`).
		WithArgs(at, tenantID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	ok, err := repo.MarkSent(context.Background(), tenantID, id, at)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowupRepo_Statistics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewFollowupRepo(mock)
	tenantID := uuid.New()
	today := time.Now()

	mock.ExpectQuery(`COUNT\(\*\) FILTER`).
		WithArgs(tenantID, today).
		WillReturnRows(pgxmock.NewRows([]string{"pending", "sent", "skipped", "overdue"}).AddRow(4, 10, 2, 1))

	stats, err := repo.Statistics(context.Background(), tenantID, today)
	require.NoError(t, err)
	assert.Equal(t, &models.FollowupStatistics{Pending: 4, Sent: 10, Skipped: 2, Overdue: 1}, stats)
}
