package models

import (
	"time"

	"github.com/google/uuid"
)

type Role struct {
	ID          uuid.UUID `json:"id" db:"id"`
	TenantID    uuid.UUID `json:"tenant_id" db:"tenant_id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Permission struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Permission names follow resource:action
const (
	PermAuditRead        = "audit_logs:read"
	PermCatalogRead      = "catalog:read"
	PermCatalogWrite     = "catalog:write"
	PermCustomersRead    = "customers:read"
	PermCustomersWrite   = "customers:write"
	PermQuotationsRead   = "quotations:read"
	PermQuotationsWrite  = "quotations:write"
	PermLandedCostWrite  = "landed_cost:write"
	PermPropertiesRead   = "properties:read"
	PermPropertiesWrite  = "properties:write"
	PermTenantsRead      = "rental_tenants:read"
	PermTenantsWrite     = "rental_tenants:write"
	PermLeasesWrite      = "leases:write"
	PermPaymentsRead     = "payments:read"
	PermPaymentsWrite    = "payments:write"
	PermMaintenanceWrite = "maintenance:write"
	PermAccountWrite     = "account:write"
)

// AllPermissions is granted to the admin role created at signup.
var AllPermissions = []string{
	PermAuditRead,
	PermCatalogRead, PermCatalogWrite,
	PermCustomersRead, PermCustomersWrite,
	PermQuotationsRead, PermQuotationsWrite,
	PermLandedCostWrite,
	PermPropertiesRead, PermPropertiesWrite,
	PermTenantsRead, PermTenantsWrite,
	PermLeasesWrite,
	PermPaymentsRead, PermPaymentsWrite,
	PermMaintenanceWrite,
	PermAccountWrite,
}
