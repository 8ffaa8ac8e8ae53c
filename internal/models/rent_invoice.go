package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RentInvoiceStatusPending   = "pending"
	RentInvoiceStatusSent      = "sent"
	RentInvoiceStatusPaid      = "paid"
	RentInvoiceStatusOverdue   = "overdue"
	RentInvoiceStatusCancelled = "cancelled"
)

type RentInvoice struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	TenantID       uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	InvoiceNumber  string          `json:"invoice_number" db:"invoice_number"`
	TenantUnitID   uuid.UUID       `json:"tenant_unit_id" db:"tenant_unit_id"`
	RentalTenantID uuid.UUID       `json:"rental_tenant_id" db:"rental_tenant_id"`
	UnitID         uuid.UUID       `json:"unit_id" db:"unit_id"`
	PropertyID     uuid.UUID       `json:"property_id" db:"property_id"`
	InvoiceDate    time.Time       `json:"invoice_date" db:"invoice_date"`
	DueDate        time.Time       `json:"due_date" db:"due_date"`
	RentAmount     decimal.Decimal `json:"rent_amount" db:"rent_amount"`
	LateFee        decimal.Decimal `json:"late_fee" db:"late_fee"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	Currency       string          `json:"currency" db:"currency"`
	Status         string          `json:"status" db:"status"`
	PaidDate       *time.Time      `json:"paid_date" db:"paid_date"`
	PaymentMethod  *string         `json:"payment_method" db:"payment_method"`
	Notes          *string         `json:"notes" db:"notes"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`

	TenantName   string `json:"tenant_name,omitempty" db:"-"`
	UnitNumber   string `json:"unit_number,omitempty" db:"-"`
	PropertyName string `json:"property_name,omitempty" db:"-"`
}

type RentInvoiceFilter struct {
	Status       string
	TenantUnitID *uuid.UUID
	PropertyID   *uuid.UUID
	Month        *time.Time
	Limit        int
	Offset       int
}

// RentGenerationSummary reports the outcome of one generation run
type RentGenerationSummary struct {
	Month      string         `json:"month"`
	Generated  int            `json:"generated"`
	Skipped    []RentSkip     `json:"skipped"`
	Duplicates int            `json:"duplicates"`
	Errors     []string       `json:"errors"`
	Invoices   []*RentInvoice `json:"invoices,omitempty"`
	Ran        bool           `json:"ran"`
	Reason     string         `json:"reason,omitempty"`
}

type RentSkip struct {
	TenantUnitID uuid.UUID `json:"tenant_unit_id"`
	Reason       string    `json:"reason"`
}
