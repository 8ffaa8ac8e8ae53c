package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentType string

const (
	PaymentTypeRent               PaymentType = "rent"
	PaymentTypeMaintenanceExpense PaymentType = "maintenance_expense"
	PaymentTypeSecurityRefund     PaymentType = "security_refund"
	PaymentTypeFee                PaymentType = "fee"
	PaymentTypeOtherIncome        PaymentType = "other_income"
	PaymentTypeOtherOutgoing      PaymentType = "other_outgoing"
)

const (
	FlowIncome   = "income"
	FlowOutgoing = "outgoing"
)

type paymentTypeRule struct {
	flow          string
	requiresLease bool
}

var paymentTypeRules = map[PaymentType]paymentTypeRule{
	PaymentTypeRent:               {FlowIncome, true},
	PaymentTypeMaintenanceExpense: {FlowOutgoing, true},
	PaymentTypeSecurityRefund:     {FlowOutgoing, true},
	PaymentTypeFee:                {FlowIncome, true},
	PaymentTypeOtherIncome:        {FlowIncome, false},
	PaymentTypeOtherOutgoing:      {FlowOutgoing, false},
}

func (t PaymentType) Valid() bool {
	_, ok := paymentTypeRules[t]
	return ok
}

// FlowDirection is income or outgoing
func (t PaymentType) FlowDirection() string {
	return paymentTypeRules[t].flow
}

func (t PaymentType) RequiresLease() bool {
	return paymentTypeRules[t].requiresLease
}

type PaymentStatus string

const (
	PaymentStatusDraft     PaymentStatus = "draft"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusScheduled PaymentStatus = "scheduled"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusDraft, PaymentStatusPending, PaymentStatusScheduled, PaymentStatusCompleted,
		PaymentStatusPartial, PaymentStatusCancelled, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// IsCaptured is true for completed and partial payments
func (s PaymentStatus) IsCaptured() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusPartial
}

// IsVoided is true for cancelled, failed and refunded payments
func (s PaymentStatus) IsVoided() bool {
	return s == PaymentStatusCancelled || s == PaymentStatusFailed || s == PaymentStatusRefunded
}

const SourceTypeRentInvoice = "rent_invoice"

type PaymentEntry struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	TenantUnitID    *uuid.UUID      `json:"tenant_unit_id" db:"tenant_unit_id"`
	PaymentType     PaymentType     `json:"payment_type" db:"payment_type"`
	FlowDirection   string          `json:"flow_direction" db:"flow_direction"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Currency        string          `json:"currency" db:"currency"`
	Status          PaymentStatus   `json:"status" db:"status"`
	PaymentMethod   *string         `json:"payment_method" db:"payment_method"`
	Reference       *string         `json:"reference" db:"reference"`
	Description     *string         `json:"description" db:"description"`
	TransactionDate *time.Time      `json:"transaction_date" db:"transaction_date"`
	DueDate         *time.Time      `json:"due_date" db:"due_date"`
	SourceType      *string         `json:"source_type" db:"source_type"`
	SourceID        *uuid.UUID      `json:"source_id" db:"source_id"`
	Metadata        JSONB           `json:"metadata" db:"metadata"`
	CapturedAt      *time.Time      `json:"captured_at" db:"captured_at"`
	VoidedAt        *time.Time      `json:"voided_at" db:"voided_at"`
	CreatedBy       *uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

const (
	OriginNative             = "native"
	OriginRentInvoice        = "rent_invoice"
	OriginMaintenanceRequest = "maintenance_request"
)

// UnifiedPayment is a row of the unified_payments view
type UnifiedPayment struct {
	CompositeID     string          `json:"composite_id" db:"composite_id"`
	EntryOrigin     string          `json:"entry_origin" db:"entry_origin"`
	SourceID        uuid.UUID       `json:"source_id" db:"source_id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	TenantUnitID    *uuid.UUID      `json:"tenant_unit_id" db:"tenant_unit_id"`
	PaymentType     string          `json:"payment_type" db:"payment_type"`
	FlowDirection   string          `json:"flow_direction" db:"flow_direction"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	Currency        string          `json:"currency" db:"currency"`
	Status          string          `json:"status" db:"status"`
	Reference       *string         `json:"reference" db:"reference"`
	Description     *string         `json:"description" db:"description"`
	TransactionDate *time.Time      `json:"transaction_date" db:"transaction_date"`
	DueDate         *time.Time      `json:"due_date" db:"due_date"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type UnifiedPaymentFilter struct {
	PaymentType   string
	Status        string
	FlowDirection string
	TenantUnitID  *uuid.UUID
	DateFrom      *time.Time
	DateTo        *time.Time
	Search        string
	Limit         int
	Offset        int
}

type PaymentSummary struct {
	TotalIncome   decimal.Decimal `json:"total_income"`
	TotalOutgoing decimal.Decimal `json:"total_outgoing"`
	Net           decimal.Decimal `json:"net"`
	Count         int             `json:"count"`
}
