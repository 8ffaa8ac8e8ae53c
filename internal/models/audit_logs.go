package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records a change to a business entity or a notable request
type AuditLog struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	TenantID        uuid.UUID  `json:"tenant_id" db:"tenant_id"`
	UserID          *uuid.UUID `json:"user_id" db:"user_id"`
	Action          string     `json:"action" db:"action"`
	ModelType       string     `json:"model_type" db:"model_type"`
	ModelID         *string    `json:"model_id" db:"model_id"`
	OldValues       JSONB      `json:"old_values" db:"old_values"`
	NewValues       JSONB      `json:"new_values" db:"new_values"`
	Changes         JSONB      `json:"changes" db:"changes"`
	Description     *string    `json:"description" db:"description"`
	IPAddress       *string    `json:"ip_address" db:"ip_address"`
	UserAgent       *string    `json:"user_agent" db:"user_agent"`
	RequestID       *string    `json:"request_id" db:"request_id"`
	Route           *string    `json:"route" db:"route"`
	Method          *string    `json:"method" db:"method"`
	URL             *string    `json:"url" db:"url"`
	ResponseStatus  *int       `json:"response_status" db:"response_status"`
	ExecutionTimeMs *int64     `json:"execution_time_ms" db:"execution_time_ms"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`

	UserName *string `json:"user_name,omitempty" db:"-"`
}

// Action constants for audit logs
const (
	ActionCreated       = "created"
	ActionUpdated       = "updated"
	ActionDeleted       = "deleted"
	ActionViewed        = "viewed"
	ActionLogin         = "login"
	ActionLogout        = "logout"
	ActionFailedLogin   = "failed_login"
	ActionExported      = "exported"
	ActionStatusChanged = "status_changed"
	ActionHTTPRequest   = "http_request"
)

// AuthActions are excluded or selected by the exclude_auth/only_auth filters
var AuthActions = []string{ActionLogin, ActionLogout, ActionFailedLogin}

// RequestInfo is the HTTP request context attached to audit entries
type RequestInfo struct {
	IPAddress       string
	UserAgent       string
	RequestID       string
	Route           string
	Method          string
	URL             string
	ResponseStatus  int
	ExecutionTimeMs int64
}

// AuditEntry is the input to AuditLogsService.LogActivity
type AuditEntry struct {
	Action      string
	ModelType   string
	ModelID     string
	UserID      *uuid.UUID
	OldValues   JSONB
	NewValues   JSONB
	Description string
	Request     *RequestInfo
}

// AuditLogFilters represents filters for querying audit logs
type AuditLogFilters struct {
	UserID      *uuid.UUID `json:"user_id"`
	Action      *string    `json:"action"`
	ModelType   *string    `json:"model_type"`
	ModelID     *string    `json:"model_id"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	RecentHours int        `json:"recent_hours"`
	ExcludeAuth bool       `json:"exclude_auth"`
	OnlyAuth    bool       `json:"only_auth"`
	Search      string     `json:"search"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}

// AuditStatistics summarises activity over a trailing window
type AuditStatistics struct {
	TenantID    uuid.UUID        `json:"tenant_id"`
	PeriodStart time.Time        `json:"period_start"`
	PeriodEnd   time.Time        `json:"period_end"`
	TotalLogs   int              `json:"total_logs"`
	ByAction    map[string]int   `json:"by_action"`
	ByModelType map[string]int   `json:"by_model_type"`
	TopUsers    []AuditUserCount `json:"top_users"`
	Timeline    []AuditDayCount  `json:"timeline"`
}

type AuditUserCount struct {
	UserID   *uuid.UUID `json:"user_id"`
	UserName string     `json:"user_name"`
	Count    int        `json:"count"`
}

type AuditDayCount struct {
	Day   time.Time `json:"day"`
	Count int       `json:"count"`
}
