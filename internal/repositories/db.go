package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bizsuite/internal/models"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock pools
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// withTx runs fn in a transaction, committing only when fn succeeds
func withTx(ctx context.Context, db DBTX, fn func(tx pgx.Tx) error) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func marshalJSONB(v models.JSONB) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal jsonb: %w", err)
	}
	return b, nil
}

func unmarshalJSONB(b []byte, dest interface{}) error {
	if len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return fmt.Errorf("failed to unmarshal jsonb: %w", err)
	}
	return nil
}

// filterBuilder accumulates WHERE conditions with numbered placeholders
type filterBuilder struct {
	where  string
	args   []interface{}
	argIdx int
}

func newFilterBuilder(args ...interface{}) *filterBuilder {
	return &filterBuilder{args: args, argIdx: len(args)}
}

// add appends a condition; each %d in cond receives the new placeholder index
func (f *filterBuilder) add(cond string, value interface{}) {
	f.argIdx++
	n := countVerbs(cond)
	idx := make([]interface{}, n)
	for i := range idx {
		idx[i] = f.argIdx
	}
	f.where += " AND " + fmt.Sprintf(cond, idx...)
	f.args = append(f.args, value)
}

func (f *filterBuilder) raw(cond string) {
	f.where += " AND " + cond
}

// page appends LIMIT/OFFSET placeholders
func (f *filterBuilder) page(limit, offset int) string {
	f.argIdx++
	s := fmt.Sprintf(" LIMIT $%d", f.argIdx)
	f.args = append(f.args, limit)
	f.argIdx++
	s += fmt.Sprintf(" OFFSET $%d", f.argIdx)
	f.args = append(f.args, offset)
	return s
}

func countVerbs(s string) int {
	n := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '%' && s[i+1] == 'd' {
			n++
		}
	}
	return n
}

func likePattern(s string) string {
	return "%" + s + "%"
}

// isUniqueViolation reports a unique constraint failure, optionally on a named constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// isForeignKeyViolation reports a row still referenced by another table
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation
}
