package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	TenantID      uuid.UUID   `json:"tenant_id" db:"tenant_id"`
	Name          string      `json:"name" db:"name"`
	Description   *string     `json:"description" db:"description"`
	ParentID      *uuid.UUID  `json:"parent_id" db:"parent_id"`
	SortOrder     int         `json:"sort_order" db:"sort_order"`
	IsActive      bool        `json:"is_active" db:"is_active"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
	Subcategories []*Category `json:"subcategories,omitempty" db:"-"` // For nested responses
}
