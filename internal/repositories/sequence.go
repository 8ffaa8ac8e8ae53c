package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Sequence scopes stored in document_sequences
const (
	SequenceQuotation   = "quotation"
	SequenceRentInvoice = "rent_invoice"
)

// nextSequence atomically allocates the next number for a tenant, scope and period
func nextSequence(ctx context.Context, db DBTX, tenantID uuid.UUID, scope, period string) (int, error) {
	query := `
		INSERT INTO document_sequences (tenant_id, scope, period, last_value)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (tenant_id, scope, period)
		DO UPDATE SET last_value = document_sequences.last_value + 1
		RETURNING last_value
	`
	var next int
	err := db.QueryRow(ctx, query, tenantID, scope, period).Scan(&next)
	return next, err
}

// peekSequence returns the number nextSequence would allocate, without consuming it
func peekSequence(ctx context.Context, db DBTX, tenantID uuid.UUID, scope, period string) (int, error) {
	var last int
	err := db.QueryRow(ctx, `SELECT last_value FROM document_sequences WHERE tenant_id = $1 AND scope = $2 AND period = $3`,
		tenantID, scope, period).Scan(&last)
	if errors.Is(err, pgx.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}
