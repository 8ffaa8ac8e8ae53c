package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterBuilder(t *testing.T) {
	f := newFilterBuilder("tenant")
	f.add("status = $%d", "active")
	f.add("(name ILIKE $%d OR code ILIKE $%d)", "%x%")
	f.raw("deleted_at IS NULL")
	page := f.page(10, 20)

	assert.Equal(t, " AND status = $2 AND (name ILIKE $3 OR code ILIKE $3) AND deleted_at IS NULL", f.where)
	assert.Equal(t, " LIMIT $4 OFFSET $5", page)
	assert.Equal(t, []interface{}{"tenant", "active", "%x%", 10, 20}, f.args)
}
