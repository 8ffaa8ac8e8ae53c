package handlers

import (
	"net/http"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit logs related HTTP requests
type AuditLogsHandlers struct {
	auditLogsService services.AuditLogsService
}

// NewAuditLogsHandlers creates a new audit logs handlers instance
func NewAuditLogsHandlers(auditLogsService services.AuditLogsService) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditLogsService: auditLogsService}
}

// auditPage reads page/per_page, falling back to limit/offset
func auditPage(c echo.Context) (int, int) {
	if c.QueryParam("page") != "" || c.QueryParam("per_page") != "" {
		perPage := common.QueryInt(c, "per_page", 50)
		page := max(common.QueryInt(c, "page", 1), 1)
		return perPage, (page - 1) * max(perPage, 0)
	}
	return common.QueryInt(c, "limit", 50), max(common.QueryInt(c, "offset", 0), 0)
}

func optionalQuery(c echo.Context, name string) *string {
	if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
		return &v
	}
	return nil
}

// ListAuditLogs handles GET /audit-logs
func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filters := &models.AuditLogFilters{
		Action:      optionalQuery(c, "action"),
		ModelType:   optionalQuery(c, "model_type"),
		ModelID:     optionalQuery(c, "model_id"),
		RecentHours: common.QueryInt(c, "recent_hours", 0),
		Search:      c.QueryParam("search"),
	}
	if filters.UserID, err = common.QueryUUID(c, "user_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	if filters.StartDate, filters.EndDate, err = queryDateRange(c, "start_date", "end_date"); err != nil {
		return common.HandleServiceError(c, err)
	}
	if v := common.QueryBool(c, "exclude_auth"); v != nil {
		filters.ExcludeAuth = *v
	}
	if v := common.QueryBool(c, "only_auth"); v != nil {
		filters.OnlyAuth = *v
	}
	filters.Limit, filters.Offset = auditPage(c)

	logs, total, err := h.auditLogsService.ListAuditLogs(c.Request().Context(), tenantID, filters)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	return c.JSON(http.StatusOK, ListResponse{Data: logs, Total: total, Limit: filters.Limit, Offset: filters.Offset})
}

// GetAuditLog handles GET /audit-logs/:id
func (h *AuditLogsHandlers) GetAuditLog(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	log, err := h.auditLogsService.GetAuditLog(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, log, err)
}

// GetModelHistory handles GET /audit-logs/model?model_type=&model_id=
func (h *AuditLogsHandlers) GetModelHistory(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	logs, err := h.auditLogsService.GetModelHistory(c.Request().Context(), tenantID,
		strings.TrimSpace(c.QueryParam("model_type")),
		strings.TrimSpace(c.QueryParam("model_id")),
		common.QueryInt(c, "limit", 50))
	return respond(c, http.StatusOK, map[string]interface{}{"data": logs}, err)
}

// GetUserActivity handles GET /audit-logs/user/:userId
func (h *AuditLogsHandlers) GetUserActivity(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	userID, err := common.PathUUID(c, "userId")
	if err != nil {
		return err
	}

	limit, offset := auditPage(c)
	logs, total, err := h.auditLogsService.GetUserActivity(c.Request().Context(), tenantID, userID, limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: logs, Total: total, Limit: limit, Offset: offset})
}

// GetRecentActivity handles GET /audit-logs/recent?hours=
func (h *AuditLogsHandlers) GetRecentActivity(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	logs, err := h.auditLogsService.GetRecentActivity(c.Request().Context(), tenantID,
		common.QueryInt(c, "hours", 24), common.QueryInt(c, "limit", 50))
	return respond(c, http.StatusOK, map[string]interface{}{"data": logs}, err)
}

// GetStatistics handles GET /audit-logs/statistics?days=
func (h *AuditLogsHandlers) GetStatistics(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.auditLogsService.GetStatistics(c.Request().Context(), tenantID, common.QueryInt(c, "days", 30))
	return respond(c, http.StatusOK, stats, err)
}
