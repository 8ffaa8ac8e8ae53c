package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer is a resort or company receiving quotations
type Customer struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       uuid.UUID `json:"tenant_id" db:"tenant_id"`
	ResortCode     string    `json:"resort_code" db:"resort_code"`
	ResortName     string    `json:"resort_name" db:"resort_name"`
	HoldingCompany *string   `json:"holding_company" db:"holding_company"`
	ContactPerson  *string   `json:"contact_person" db:"contact_person"`
	Email          *string   `json:"email" db:"email"`
	Phone          *string   `json:"phone" db:"phone"`
	Address        *string   `json:"address" db:"address"`
	Country        *string   `json:"country" db:"country"`
	TaxNumber      *string   `json:"tax_number" db:"tax_number"`
	PaymentTerms   *string   `json:"payment_terms" db:"payment_terms"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type CustomerFilter struct {
	Search   string
	IsActive *bool
	Limit    int
	Offset   int
}
