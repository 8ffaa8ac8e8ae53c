package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RentalTenantStatusActive   = "active"
	RentalTenantStatusInactive = "inactive"
	RentalTenantStatusFormer   = "former"

	IDProofNationalID = "national_id"
	IDProofPassport   = "passport"
)

// RentalTenant is a person occupying units under a lease
type RentalTenant struct {
	ID                    uuid.UUID `json:"id" db:"id"`
	TenantID              uuid.UUID `json:"tenant_id" db:"tenant_id"`
	FullName              string    `json:"full_name" db:"full_name"`
	Email                 *string   `json:"email" db:"email"`
	Phone                 string    `json:"phone" db:"phone"`
	AlternatePhone        *string   `json:"alternate_phone" db:"alternate_phone"`
	EmergencyContactName  *string   `json:"emergency_contact_name" db:"emergency_contact_name"`
	EmergencyContactPhone *string   `json:"emergency_contact_phone" db:"emergency_contact_phone"`
	IDProofType           *string   `json:"id_proof_type" db:"id_proof_type"`
	IDProofNumber         *string   `json:"id_proof_number" db:"id_proof_number"`
	Status                string    `json:"status" db:"status"`
	CreatedAt             time.Time `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}

type RentalTenantFilter struct {
	Status string
	Search string
	Limit  int
	Offset int
}
