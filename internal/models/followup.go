package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	FollowupStatusPending = "pending"
	FollowupStatusSent    = "sent"
	FollowupStatusSkipped = "skipped"

	RecipientCustomer = "customer"
	RecipientInternal = "internal"
	RecipientBoth     = "both"
)

type QuotationFollowup struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	TenantID       uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	QuotationID    uuid.UUID  `json:"quotation_id" db:"quotation_id"`
	FollowupNumber int        `json:"followup_number" db:"followup_number"`
	DueDate        time.Time  `json:"due_date" db:"due_date"`
	Status         string     `json:"status" db:"status"`
	RecipientType  string     `json:"recipient_type" db:"recipient_type"`
	SentAt         *time.Time `json:"sent_at" db:"sent_at"`
	Notes          *string    `json:"notes" db:"notes"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`

	QuotationNumber string `json:"quotation_number,omitempty" db:"-"`
	CustomerName    string `json:"customer_name,omitempty" db:"-"`
}

type FollowupStatistics struct {
	Pending int `json:"pending"`
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Overdue int `json:"overdue"`
}

// FollowupRunResult summarises one pass of the follow-up job for a tenant
type FollowupRunResult struct {
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
	Expired   int `json:"expired"`
}
