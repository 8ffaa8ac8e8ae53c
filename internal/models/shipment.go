package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AllocationMethod string

const (
	AllocationProportional  AllocationMethod = "proportional"
	AllocationEqual         AllocationMethod = "equal"
	AllocationWeightBased   AllocationMethod = "weight_based"
	AllocationQuantityBased AllocationMethod = "quantity_based"
)

func (m AllocationMethod) Valid() bool {
	switch m {
	case AllocationProportional, AllocationEqual, AllocationWeightBased, AllocationQuantityBased:
		return true
	}
	return false
}

const (
	ShipmentStatusDraft     = "draft"
	ShipmentStatusFinalized = "finalized"
)

type Shipment struct {
	ID              uuid.UUID        `json:"id" db:"id"`
	TenantID        uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	Reference       string           `json:"reference" db:"reference"`
	ShipmentDate    time.Time        `json:"shipment_date" db:"shipment_date"`
	Method          AllocationMethod `json:"allocation_method" db:"allocation_method"`
	BaseCurrency    string           `json:"base_currency" db:"base_currency"`
	ExchangeRate    decimal.Decimal  `json:"exchange_rate" db:"exchange_rate"`
	TotalBaseCost   decimal.Decimal  `json:"total_base_cost" db:"total_base_cost"`
	TotalSharedCost decimal.Decimal  `json:"total_shared_cost" db:"total_shared_cost"`
	GrandTotal      decimal.Decimal  `json:"grand_total_landed_cost" db:"grand_total_landed_cost"`
	Status          string           `json:"status" db:"status"`
	Notes           *string          `json:"notes" db:"notes"`
	FinalizedAt     *time.Time       `json:"finalized_at" db:"finalized_at"`
	CreatedBy       *uuid.UUID       `json:"created_by" db:"created_by"`
	CreatedAt       time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at" db:"updated_at"`

	Items       []*ShipmentItem         `json:"items,omitempty" db:"-"`
	SharedCosts []*SharedCost           `json:"shared_costs,omitempty" db:"-"`
	Allocations []*SharedCostAllocation `json:"allocations,omitempty" db:"-"`
}

type ShipmentItem struct {
	ID                  uuid.UUID        `json:"id" db:"id"`
	ShipmentID          uuid.UUID        `json:"shipment_id" db:"shipment_id"`
	ProductID           uuid.UUID        `json:"product_id" db:"product_id"`
	Quantity            decimal.Decimal  `json:"quantity" db:"quantity"`
	UnitCost            decimal.Decimal  `json:"unit_cost" db:"unit_cost"`
	Weight              *decimal.Decimal `json:"weight" db:"weight"`
	TotalItemCost       decimal.Decimal  `json:"total_item_cost" db:"total_item_cost"`
	AllocatedSharedCost decimal.Decimal  `json:"allocated_shared_cost" db:"allocated_shared_cost"`
	TotalLandedCost     decimal.Decimal  `json:"total_landed_cost" db:"total_landed_cost"`
	LandedCostPerUnit   decimal.Decimal  `json:"landed_cost_per_unit" db:"landed_cost_per_unit"`
	PercentageShare     decimal.Decimal  `json:"percentage_share" db:"percentage_share"`
}

type SharedCost struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	ShipmentID  uuid.UUID       `json:"shipment_id" db:"shipment_id"`
	Category    string          `json:"category" db:"category"`
	Description *string         `json:"description" db:"description"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
}

// SharedCostAllocation is the share of one shared cost assigned to one item
type SharedCostAllocation struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	SharedCostID   uuid.UUID       `json:"shared_cost_id" db:"shared_cost_id"`
	ShipmentItemID uuid.UUID       `json:"shipment_item_id" db:"shipment_item_id"`
	Amount         decimal.Decimal `json:"amount" db:"amount"`
	IsManual       bool            `json:"is_manual" db:"is_manual"`
}
