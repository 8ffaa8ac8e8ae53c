package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// quotationTransitions maps each status to the statuses it may move to
var quotationTransitions = map[QuotationStatus][]QuotationStatus{
	QuotationStatusDraft: {QuotationStatusSent},
	QuotationStatusSent:  {QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired},
}

// CanTransitionTo reports whether s may move to next
func (s QuotationStatus) CanTransitionTo(next QuotationStatus) bool {
	for _, allowed := range quotationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsEditable reports whether a quotation in s may have its content changed
func (s QuotationStatus) IsEditable() bool {
	return s == QuotationStatusDraft || s == QuotationStatusSent
}

func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected, QuotationStatusExpired:
		return true
	}
	return false
}

const (
	ItemTypeProduct = "product"
	ItemTypeService = "service"
	ItemTypeAMC     = "amc"

	DiscountTypeValue      = "value"
	DiscountTypePercentage = "percentage"
)

type Quotation struct {
	ID                 uuid.UUID       `json:"id" db:"id"`
	TenantID           uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	QuotationNumber    string          `json:"quotation_number" db:"quotation_number"`
	CustomerID         uuid.UUID       `json:"customer_id" db:"customer_id"`
	Status             QuotationStatus `json:"status" db:"status"`
	ValidUntil         time.Time       `json:"valid_until" db:"valid_until"`
	Currency           string          `json:"currency" db:"currency"`
	ExchangeRate       decimal.Decimal `json:"exchange_rate" db:"exchange_rate"`
	Subtotal           decimal.Decimal `json:"subtotal" db:"subtotal"`
	DiscountAmount     decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage" db:"discount_percentage"`
	TaxAmount          decimal.Decimal `json:"tax_amount" db:"tax_amount"`
	TotalAmount        decimal.Decimal `json:"total_amount" db:"total_amount"`
	Notes              *string         `json:"notes" db:"notes"`
	TermsConditions    *string         `json:"terms_conditions" db:"terms_conditions"`
	CreatedBy          *uuid.UUID      `json:"created_by" db:"created_by"`
	SentDate           *time.Time      `json:"sent_date" db:"sent_date"`
	AcceptedDate       *time.Time      `json:"accepted_date" db:"accepted_date"`
	RejectedDate       *time.Time      `json:"rejected_date" db:"rejected_date"`
	RejectionReason    *string         `json:"rejection_reason" db:"rejection_reason"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`

	Items        []*QuotationItem `json:"items,omitempty" db:"-"`
	Customer     *Customer        `json:"customer,omitempty" db:"-"`
	CostAnalysis *CostAnalysis    `json:"cost_analysis,omitempty" db:"-"`
	CustomerName string           `json:"customer_name,omitempty" db:"-"`
}

type QuotationItem struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	QuotationID   uuid.UUID       `json:"quotation_id" db:"quotation_id"`
	ProductID     *uuid.UUID      `json:"product_id" db:"product_id"`
	ItemType      string          `json:"item_type" db:"item_type"`
	Description   string          `json:"description" db:"description"`
	Quantity      decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice     decimal.Decimal `json:"unit_price" db:"unit_price"`
	DiscountType  string          `json:"discount_type" db:"discount_type"`
	DiscountValue decimal.Decimal `json:"discount_value" db:"discount_value"`
	TaxRate       decimal.Decimal `json:"tax_rate" db:"tax_rate"`
	ItemTotal     decimal.Decimal `json:"item_total" db:"item_total"`
	IsAMCLine     bool            `json:"is_amc_line" db:"is_amc_line"`
	ParentItemID  *uuid.UUID      `json:"parent_item_id" db:"parent_item_id"`
	ImportDuty    decimal.Decimal `json:"import_duty" db:"import_duty"`
	SortOrder     int             `json:"sort_order" db:"sort_order"`
}

// QuotationStatusHistory is one recorded status change
type QuotationStatusHistory struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	TenantID    uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	QuotationID uuid.UUID       `json:"quotation_id" db:"quotation_id"`
	FromStatus  QuotationStatus `json:"from_status" db:"from_status"`
	ToStatus    QuotationStatus `json:"to_status" db:"to_status"`
	ChangedBy   *uuid.UUID      `json:"changed_by" db:"changed_by"`
	Notes       *string         `json:"notes" db:"notes"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// StatusChange is the guarded update applied by QuotationRepository.Transition
type StatusChange struct {
	From      QuotationStatus
	To        QuotationStatus
	At        time.Time
	Reason    *string
	ChangedBy *uuid.UUID
}

type QuotationFilter struct {
	Status     *QuotationStatus
	CustomerID *uuid.UUID
	Search     string
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}

// CostAnalysis compares a quotation's total against the cost of its products
type CostAnalysis struct {
	TotalCost decimal.Decimal `json:"total_cost"`
	Profit    decimal.Decimal `json:"profit"`
	Margin    decimal.Decimal `json:"margin"`
	Lines     []CostLine      `json:"lines"`
}

type CostLine struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ProductID *uuid.UUID      `json:"product_id"`
	UnitCost  decimal.Decimal `json:"unit_cost"`
	LineCost  decimal.Decimal `json:"line_cost"`
	Source    string          `json:"source"` // cost_price, landed_cost or none
}
