package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable catalog item quoted to customers
type Product struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	TenantID       uuid.UUID        `json:"tenant_id" db:"tenant_id"`
	CategoryID     *uuid.UUID       `json:"category_id" db:"category_id"`
	Name           string           `json:"name" db:"name"`
	Description    *string          `json:"description" db:"description"`
	SKU            *string          `json:"sku" db:"sku"`
	UnitPrice      decimal.Decimal  `json:"unit_price" db:"unit_price"`
	LandedCost     *decimal.Decimal `json:"landed_cost" db:"landed_cost"`
	Currency       string           `json:"currency" db:"currency"`
	TaxRate        decimal.Decimal  `json:"tax_rate" db:"tax_rate"`
	HasAMCOption   bool             `json:"has_amc_option" db:"has_amc_option"`
	AMCUnitPrice   *decimal.Decimal `json:"amc_unit_price" db:"amc_unit_price"`
	Brand          *string          `json:"brand" db:"brand"`
	Model          *string          `json:"model" db:"model"`
	PartNumber     *string          `json:"part_number" db:"part_number"`
	IsManDayBased  bool             `json:"is_man_day_based" db:"is_man_day_based"`
	IsDiscountable bool             `json:"is_discountable" db:"is_discountable"`
	IsRefurbished  bool             `json:"is_refurbished" db:"is_refurbished"`
	IsActive       bool             `json:"is_active" db:"is_active"`
	SortOrder      int              `json:"sort_order" db:"sort_order"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// ProductFilter holds list criteria for products
type ProductFilter struct {
	Search     string
	CategoryID *uuid.UUID
	IsActive   *bool
	Limit      int
	Offset     int
}

// ProductCostPrice is a dated purchase cost used for margin analysis
type ProductCostPrice struct {
	ID            uuid.UUID       `json:"id" db:"id"`
	TenantID      uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	ProductID     uuid.UUID       `json:"product_id" db:"product_id"`
	CostPrice     decimal.Decimal `json:"cost_price" db:"cost_price"`
	Currency      string          `json:"currency" db:"currency"`
	EffectiveDate time.Time       `json:"effective_date" db:"effective_date"`
	Notes         *string         `json:"notes" db:"notes"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at" db:"updated_at"`
}
