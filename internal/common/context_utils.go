package common

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	TenantIDKey    contextKey = "tenant_id"
	RequestInfoKey contextKey = "request_info"
)

const (
	defaultPageSize = 50
	maxPageSize     = 1000
	maxOffset       = 1_000_000
	maxSearchLen    = 100
	maxDateWindow   = 10 * 365 * 24 * time.Hour
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

func CreateErrorResponse(code, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendValidationError sends a 422 carrying a single field message
func SendValidationError(c echo.Context, field, message string) error {
	return SendValidationErrors(c, map[string]string{field: message})
}

func SendValidationErrors(c echo.Context, details map[string]string) error {
	return c.JSON(http.StatusUnprocessableEntity, CreateErrorResponse("VALIDATION_ERROR", "Validation failed", details))
}

func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse("SERVER_ERROR", message, nil))
}

// ValidateUUID parses a canonical 36-character UUID, naming the field in every error
func ValidateUUID(raw, field string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return uuid.Nil, fmt.Errorf("%s is required", field)
	case len(raw) != 36:
		return uuid.Nil, fmt.Errorf("%s must be a 36 character UUID", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", field)
	}
	return id, nil
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(raw, field string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be in YYYY-MM-DD format", field)
	}
	return d, nil
}

// StringPtr returns nil for blank strings
func StringPtr(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func GetTenantIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	tenantID, ok := ctx.Value(TenantIDKey).(uuid.UUID)
	return tenantID, ok
}

// UserIDPtrFromContext returns the acting user, or nil for system actions such as scheduled jobs
func UserIDPtrFromContext(ctx context.Context) *uuid.UUID {
	if userID, ok := GetUserIDFromContext(ctx); ok && userID != uuid.Nil {
		return &userID
	}
	return nil
}

// SanitizeSearchQuery strips LIKE wildcards and caps the length of free-text search input
func SanitizeSearchQuery(query string) string {
	query = strings.NewReplacer("%", "", "_", "").Replace(strings.TrimSpace(query))
	if len(query) > maxSearchLen {
		query = query[:maxSearchLen]
	}
	return strings.TrimSpace(query)
}

// ValidatePaginationParams clamps limit to [1, 1000] with a default of 50
func ValidatePaginationParams(limit, offset int) (int, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	limit = min(limit, maxPageSize)
	offset = max(offset, 0)
	if offset > maxOffset {
		return 0, 0, errors.New("offset cannot exceed 1,000,000")
	}
	return limit, offset, nil
}

func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return errors.New("end date cannot be before start date")
	}
	if end.Sub(start) > maxDateWindow {
		return errors.New("date range cannot exceed 10 years")
	}
	return nil
}
