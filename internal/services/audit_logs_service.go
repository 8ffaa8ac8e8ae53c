package services

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultAuditPerPage = 50
	maxAuditPerPage     = 200
	defaultAuditDays    = 30
	redactedValue       = "***REDACTED***"
)

var sensitiveAuditKeys = map[string]bool{
	"password":              true,
	"password_confirmation": true,
	"token":                 true,
	"secret":                true,
	"api_key":               true,
	"remember_token":        true,
}

type AuditLogsService interface {
	// Create audit log entry
	LogActivity(ctx context.Context, tenantID uuid.UUID, entry models.AuditEntry) error

	// Query audit logs
	GetAuditLog(ctx context.Context, tenantID, auditLogID uuid.UUID) (*models.AuditLog, error)
	ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error)
	GetModelHistory(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, limit int) ([]*models.AuditLog, error)
	GetUserActivity(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, int, error)
	GetRecentActivity(ctx context.Context, tenantID uuid.UUID, hours, limit int) ([]*models.AuditLog, error)
	GetStatistics(ctx context.Context, tenantID uuid.UUID, days int) (*models.AuditStatistics, error)

	// Helper methods for common audit scenarios
	LogEntityCreate(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, newValues models.JSONB) error
	LogEntityUpdate(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, oldValues, newValues models.JSONB) error
	LogEntityDelete(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, oldValues models.JSONB) error
	LogStatusChange(ctx context.Context, tenantID uuid.UUID, modelType, modelID, from, to, description string) error

	ValidateAuditFilters(filters *models.AuditLogFilters) error
}

type auditLogsService struct {
	auditLogsRepo repositories.AuditLogsRepository
	now           func() time.Time
}

func NewAuditLogsService(auditLogsRepo repositories.AuditLogsRepository) AuditLogsService {
	return &auditLogsService{
		auditLogsRepo: auditLogsRepo,
		now:           time.Now,
	}
}

// WithRequestInfo stashes HTTP request details for audit entries written further down the call chain
func WithRequestInfo(ctx context.Context, info *models.RequestInfo) context.Context {
	return context.WithValue(ctx, common.RequestInfoKey, info)
}

// RequestInfoFromContext returns the request details stashed by the HTTP layer, if any
func RequestInfoFromContext(ctx context.Context) *models.RequestInfo {
	info, _ := ctx.Value(common.RequestInfoKey).(*models.RequestInfo)
	return info
}

// LogActivity creates a new audit log entry with validation
func (s *auditLogsService) LogActivity(ctx context.Context, tenantID uuid.UUID, entry models.AuditEntry) error {
	fields := common.FieldErrors{}
	if entry.Action == "" {
		fields.Add("action", "The action field is required.")
	}
	if entry.ModelType == "" {
		fields.Add("model_type", "The model_type field is required.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	oldValues := redactValues(entry.OldValues)
	newValues := redactValues(entry.NewValues)

	auditLog := &models.AuditLog{
		ID:        uuid.New(),
		TenantID:  tenantID,
		UserID:    entry.UserID,
		Action:    entry.Action,
		ModelType: entry.ModelType,
		ModelID:   common.StringPtr(entry.ModelID),
		OldValues: oldValues,
		NewValues: newValues,
		Changes:   diffValues(oldValues, newValues),
		CreatedAt: s.now(),
	}
	if auditLog.UserID == nil {
		auditLog.UserID = common.UserIDPtrFromContext(ctx)
	}
	if entry.Description != "" {
		auditLog.Description = &entry.Description
	}

	req := entry.Request
	if req == nil {
		req = RequestInfoFromContext(ctx)
	}
	if req != nil {
		auditLog.IPAddress = common.StringPtr(req.IPAddress)
		auditLog.UserAgent = common.StringPtr(req.UserAgent)
		auditLog.RequestID = common.StringPtr(req.RequestID)
		auditLog.Route = common.StringPtr(req.Route)
		auditLog.Method = common.StringPtr(req.Method)
		auditLog.URL = common.StringPtr(req.URL)
		if req.ResponseStatus != 0 {
			status := req.ResponseStatus
			auditLog.ResponseStatus = &status
		}
		if req.ExecutionTimeMs != 0 {
			ms := req.ExecutionTimeMs
			auditLog.ExecutionTimeMs = &ms
		}
	}

	return s.auditLogsRepo.Create(ctx, auditLog)
}

// redactValues masks sensitive keys, recursing into nested objects
func redactValues(values models.JSONB) models.JSONB {
	if values == nil {
		return nil
	}
	out := make(models.JSONB, len(values))
	for k, v := range values {
		if sensitiveAuditKeys[strings.ToLower(k)] {
			out[k] = redactedValue
			continue
		}
		switch nested := v.(type) {
		case map[string]interface{}:
			out[k] = map[string]interface{}(redactValues(nested))
		case models.JSONB:
			out[k] = redactValues(nested)
		default:
			out[k] = v
		}
	}
	return out
}

// diffValues returns {field: {old, new}} for every key whose value differs
func diffValues(oldValues, newValues models.JSONB) models.JSONB {
	if oldValues == nil || newValues == nil {
		return nil
	}
	changes := models.JSONB{}
	for k, nv := range newValues {
		ov, ok := oldValues[k]
		if !ok || !reflect.DeepEqual(ov, nv) {
			changes[k] = map[string]interface{}{"old": ov, "new": nv}
		}
	}
	for k, ov := range oldValues {
		if _, ok := newValues[k]; !ok {
			changes[k] = map[string]interface{}{"old": ov, "new": nil}
		}
	}
	if len(changes) == 0 {
		return nil
	}
	return changes
}

// ToJSONB converts a model into the generic map stored in audit entries
func ToJSONB(v interface{}) models.JSONB {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var out models.JSONB
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

// GetAuditLog retrieves a single audit log entry
func (s *auditLogsService) GetAuditLog(ctx context.Context, tenantID, auditLogID uuid.UUID) (*models.AuditLog, error) {
	log, err := s.auditLogsRepo.GetByID(ctx, tenantID, auditLogID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewNotFoundError("Audit log")
		}
		return nil, err
	}
	return log, nil
}

func normalizeAuditLimit(limit int) int {
	if limit <= 0 {
		return defaultAuditPerPage
	}
	if limit > maxAuditPerPage {
		return maxAuditPerPage
	}
	return limit
}

// ListAuditLogs retrieves audit entries newest first with the total matching count
func (s *auditLogsService) ListAuditLogs(ctx context.Context, tenantID uuid.UUID, filters *models.AuditLogFilters) ([]*models.AuditLog, int, error) {
	if filters == nil {
		filters = &models.AuditLogFilters{}
	}
	if err := s.ValidateAuditFilters(filters); err != nil {
		return nil, 0, err
	}
	filters.Limit = normalizeAuditLimit(filters.Limit)
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	filters.Search = common.SanitizeSearchQuery(filters.Search)

	return s.auditLogsRepo.List(ctx, tenantID, filters)
}

func (s *auditLogsService) GetModelHistory(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, limit int) ([]*models.AuditLog, error) {
	fields := common.FieldErrors{}
	if modelType == "" {
		fields.Add("model_type", "The model_type field is required.")
	}
	if modelID == "" {
		fields.Add("model_id", "The model_id field is required.")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	logs, _, err := s.auditLogsRepo.List(ctx, tenantID, &models.AuditLogFilters{
		ModelType: &modelType,
		ModelID:   &modelID,
		Limit:     normalizeAuditLimit(limit),
	})
	return logs, err
}

func (s *auditLogsService) GetUserActivity(ctx context.Context, tenantID, userID uuid.UUID, limit, offset int) ([]*models.AuditLog, int, error) {
	return s.auditLogsRepo.List(ctx, tenantID, &models.AuditLogFilters{
		UserID: &userID,
		Limit:  normalizeAuditLimit(limit),
		Offset: offset,
	})
}

func (s *auditLogsService) GetRecentActivity(ctx context.Context, tenantID uuid.UUID, hours, limit int) ([]*models.AuditLog, error) {
	if hours <= 0 {
		hours = 24
	}
	logs, _, err := s.auditLogsRepo.List(ctx, tenantID, &models.AuditLogFilters{
		RecentHours: hours,
		Limit:       normalizeAuditLimit(limit),
	})
	return logs, err
}

// GetStatistics aggregates activity over the trailing number of days
func (s *auditLogsService) GetStatistics(ctx context.Context, tenantID uuid.UUID, days int) (*models.AuditStatistics, error) {
	if days <= 0 {
		days = defaultAuditDays
	}
	if days > 365 {
		return nil, common.NewFieldError("days", "The days may not be greater than 365.")
	}

	now := s.now()
	since := now.AddDate(0, 0, -days)
	stats, err := s.auditLogsRepo.GetStatistics(ctx, tenantID, since)
	if err != nil {
		return nil, err
	}
	stats.TenantID = tenantID
	stats.PeriodStart = since
	stats.PeriodEnd = now
	return stats, nil
}

// LogEntityCreate logs the creation of a new entity
func (s *auditLogsService) LogEntityCreate(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, newValues models.JSONB) error {
	return s.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionCreated,
		ModelType:   modelType,
		ModelID:     modelID,
		NewValues:   newValues,
		Description: fmt.Sprintf("%s created", modelType),
	})
}

// LogEntityUpdate logs the update of an existing entity
func (s *auditLogsService) LogEntityUpdate(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, oldValues, newValues models.JSONB) error {
	return s.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionUpdated,
		ModelType:   modelType,
		ModelID:     modelID,
		OldValues:   oldValues,
		NewValues:   newValues,
		Description: fmt.Sprintf("%s updated", modelType),
	})
}

// LogEntityDelete logs the deletion of an entity
func (s *auditLogsService) LogEntityDelete(ctx context.Context, tenantID uuid.UUID, modelType, modelID string, oldValues models.JSONB) error {
	return s.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionDeleted,
		ModelType:   modelType,
		ModelID:     modelID,
		OldValues:   oldValues,
		Description: fmt.Sprintf("%s deleted", modelType),
	})
}

func (s *auditLogsService) LogStatusChange(ctx context.Context, tenantID uuid.UUID, modelType, modelID, from, to, description string) error {
	if description == "" {
		description = fmt.Sprintf("%s status changed from %s to %s", modelType, from, to)
	}
	return s.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionStatusChanged,
		ModelType:   modelType,
		ModelID:     modelID,
		OldValues:   models.JSONB{"status": from},
		NewValues:   models.JSONB{"status": to},
		Description: description,
	})
}

// ValidateAuditFilters performs security and performance validation on audit filters
func (s *auditLogsService) ValidateAuditFilters(filters *models.AuditLogFilters) error {
	if filters == nil {
		return nil
	}

	fields := common.FieldErrors{}
	if filters.StartDate != nil && filters.EndDate != nil {
		if filters.EndDate.Before(*filters.StartDate) {
			fields.Add("end_date", "The end_date must be on or after start_date.")
		} else if filters.EndDate.Sub(*filters.StartDate) > 365*24*time.Hour {
			fields.Add("end_date", "The date range cannot exceed 1 year.")
		}
	}
	if filters.ExcludeAuth && filters.OnlyAuth {
		fields.Add("only_auth", "The only_auth and exclude_auth filters cannot be combined.")
	}
	if filters.RecentHours < 0 {
		fields.Add("recent_hours", "The recent_hours must be at least 0.")
	}
	return fields.Err()
}

// recordAudit writes an audit entry without failing the calling operation
func recordAudit(ctx context.Context, err error, modelType, modelID string) {
	if err != nil {
		logger.FromContext(ctx).Warn("failed to write audit log",
			zap.String("model_type", modelType),
			zap.String("model_id", modelID),
			zap.Error(err),
		)
	}
}
