package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	LeaseStatusActive    = "active"
	LeaseStatusEnded     = "ended"
	LeaseStatusCancelled = "cancelled"

	OccupancyMoveIn  = "move_in"
	OccupancyMoveOut = "move_out"
)

// TenantUnit is a lease binding a rental tenant to a unit
type TenantUnit struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	TenantID            uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	RentalTenantID      uuid.UUID       `json:"rental_tenant_id" db:"rental_tenant_id"`
	UnitID              uuid.UUID       `json:"unit_id" db:"unit_id"`
	LeaseStart          time.Time       `json:"lease_start" db:"lease_start"`
	LeaseEnd            *time.Time      `json:"lease_end" db:"lease_end"`
	MonthlyRent         decimal.Decimal `json:"monthly_rent" db:"monthly_rent"`
	SecurityDepositPaid decimal.Decimal `json:"security_deposit_paid" db:"security_deposit_paid"`
	AdvanceRentMonths   int             `json:"advance_rent_months" db:"advance_rent_months"`
	AdvanceRentAmount   decimal.Decimal `json:"advance_rent_amount" db:"advance_rent_amount"`
	NoticePeriodDays    int             `json:"notice_period_days" db:"notice_period_days"`
	LockInPeriodMonths  int             `json:"lock_in_period_months" db:"lock_in_period_months"`
	LeaseDocumentPath   *string         `json:"lease_document_path" db:"lease_document_path"`
	Status              string          `json:"status" db:"status"`
	Notes               *string         `json:"notes" db:"notes"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`

	TenantName   string    `json:"tenant_name,omitempty" db:"-"`
	UnitNumber   string    `json:"unit_number,omitempty" db:"-"`
	PropertyID   uuid.UUID `json:"property_id,omitempty" db:"-"`
	PropertyName string    `json:"property_name,omitempty" db:"-"`
	// Currency is the leased unit's currency
	Currency string `json:"currency,omitempty" db:"-"`
}

// Overlaps reports whether the lease covers any day in [from, to]
func (l *TenantUnit) Overlaps(from, to time.Time) bool {
	if l.LeaseStart.After(to) {
		return false
	}
	if l.LeaseEnd != nil && l.LeaseEnd.Before(from) {
		return false
	}
	return true
}

type TenantUnitFilter struct {
	UnitID         *uuid.UUID
	RentalTenantID *uuid.UUID
	Status         string
	Limit          int
	Offset         int
}

type OccupancyHistory struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UnitID         uuid.UUID  `json:"unit_id" db:"unit_id"`
	RentalTenantID uuid.UUID  `json:"rental_tenant_id" db:"rental_tenant_id"`
	TenantUnitID   *uuid.UUID `json:"tenant_unit_id" db:"tenant_unit_id"`
	EventType      string     `json:"event_type" db:"event_type"`
	EventDate      time.Time  `json:"event_date" db:"event_date"`
	Notes          *string    `json:"notes" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	TenantName string `json:"tenant_name,omitempty" db:"-"`
}
