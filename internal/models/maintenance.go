package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	MaintenanceTypeRepair      = "repair"
	MaintenanceTypeReplacement = "replacement"
	MaintenanceTypeService     = "service"
)

type MaintenanceRequest struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	TenantID        uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	UnitID          uuid.UUID        `json:"unit_id" db:"unit_id"`
	Description     string           `json:"description" db:"description"`
	Cost            decimal.Decimal  `json:"cost" db:"cost"`
	Currency        string           `json:"currency" db:"currency"`
	Location        *string          `json:"location" db:"location"`
	ServicedBy      *string          `json:"serviced_by" db:"serviced_by"`
	InvoiceNumber   *string          `json:"invoice_number" db:"invoice_number"`
	IsBillable      bool             `json:"is_billable" db:"is_billable"`
	BilledToTenant  bool             `json:"billed_to_tenant" db:"billed_to_tenant"`
	TenantShare     *decimal.Decimal `json:"tenant_share" db:"tenant_share"`
	Type            string           `json:"type" db:"type"`
	MaintenanceDate time.Time        `json:"maintenance_date" db:"maintenance_date"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`

	UnitNumber string `json:"unit_number,omitempty" db:"-"`
}

type MaintenanceFilter struct {
	UnitID     *uuid.UUID
	Type       string
	IsBillable *bool
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
