package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PropertyTypeResidential = "residential"
	PropertyTypeCommercial  = "commercial"
)

type Property struct {
	ID            uuid.UUID `json:"id" db:"id"`
	TenantID      uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name          string    `json:"name" db:"name"`
	Address       string    `json:"address" db:"address"`
	Type          string    `json:"type" db:"type"`
	NumberOfUnits int       `json:"number_of_units" db:"number_of_units"` // 0 means no capacity limit
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`

	UnitCount int `json:"unit_count" db:"-"`
}

type Unit struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TenantID        uuid.UUID       `json:"tenant_id" db:"tenant_id"`
	PropertyID      uuid.UUID       `json:"property_id" db:"property_id"`
	UnitNumber      string          `json:"unit_number" db:"unit_number"`
	UnitType        *string         `json:"unit_type" db:"unit_type"`
	RentAmount      decimal.Decimal `json:"rent_amount" db:"rent_amount"`
	SecurityDeposit decimal.Decimal `json:"security_deposit" db:"security_deposit"`
	Currency        string          `json:"currency" db:"currency"`
	IsOccupied      bool            `json:"is_occupied" db:"is_occupied"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`

	PropertyName string `json:"property_name,omitempty" db:"-"`
}

type UnitFilter struct {
	PropertyID *uuid.UUID
	IsOccupied *bool
	Search     string
	Limit      int
	Offset     int
}

const (
	NumberingSequential = "sequential"
	NumberingRange      = "range"
	NumberingCustom     = "custom"

	// MaxGeneratedUnits caps a single generation request
	MaxGeneratedUnits = 1000
)

// UnitNumbering describes how unit numbers are produced
type UnitNumbering struct {
	Mode       string `json:"mode" validate:"required,oneof=sequential range custom"`
	Start      int    `json:"start" validate:"omitempty,min=0"`
	Count      int    `json:"count" validate:"omitempty,min=1,max=1000"`
	Prefix     string `json:"prefix" validate:"max=20"`
	Suffix     string `json:"suffix" validate:"max=20"`
	Padding    int    `json:"padding" validate:"omitempty,min=0,max=10"`
	FloorStart int    `json:"floor_start" validate:"omitempty,min=0"`
	FloorEnd   int    `json:"floor_end" validate:"omitempty,gtefield=FloorStart"`
	UnitStart  int    `json:"unit_start" validate:"omitempty,min=0"`
	UnitEnd    int    `json:"unit_end" validate:"omitempty,gtefield=UnitStart"`
	CustomList string `json:"custom_list"`
}

type GenerateUnitsRequest struct {
	Numbering       UnitNumbering   `json:"numbering" validate:"required"`
	UnitType        *string         `json:"unit_type" validate:"omitempty,max=50"`
	RentAmount      decimal.Decimal `json:"rent_amount" validate:"gt=0"`
	SecurityDeposit decimal.Decimal `json:"security_deposit" validate:"gte=0"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	Preview         bool            `json:"preview"`
}

type GenerateUnitsResult struct {
	Generated  []string `json:"generated"`
	New        []string `json:"new"`
	Duplicates []string `json:"duplicates"`
	Created    int      `json:"created"`
	Preview    bool     `json:"preview"`
	Units      []*Unit  `json:"units,omitempty"`
}

const (
	ImportModeCreate = "create"
	ImportModeUpsert = "upsert"
)

// UnitImportRow is one row of a unit import; the property is matched by id or name
type UnitImportRow struct {
	PropertyID      string `json:"property_id"`
	PropertyName    string `json:"property_name"`
	UnitNumber      string `json:"unit_number"`
	UnitType        string `json:"unit_type"`
	RentAmount      string `json:"rent_amount"`
	SecurityDeposit string `json:"security_deposit"`
	Currency        string `json:"currency"`
}
