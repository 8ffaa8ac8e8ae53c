package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Audit sensitivity levels
const (
	AuditLow    = "low"
	AuditMedium = "medium"
	AuditHigh   = "high"
)

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

var skipAuditPrefixes = []string{"/health", "/metrics", "/swagger", "/favicon", "/robots.txt"}

// AuditMiddleware provides automatic audit logging for HTTP requests
type AuditMiddleware struct {
	auditService services.AuditLogsService
	now          func() time.Time
}

// NewAuditMiddleware creates a new audit middleware instance
func NewAuditMiddleware(auditService services.AuditLogsService) *AuditMiddleware {
	return &AuditMiddleware{
		auditService: auditService,
		now:          time.Now,
	}
}

// AuditRequest stashes request details for service-level audit entries and records
// the request itself as an http_request entry. Low records mutations and errors,
// medium every non-static request, high adds query parameters and redacted headers.
func (m *AuditMiddleware) AuditRequest(level string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := m.now()
			req := c.Request()
			info := &models.RequestInfo{
				IPAddress: c.RealIP(),
				UserAgent: req.UserAgent(),
				RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
				Route:     c.Path(),
				Method:    req.Method,
				URL:       req.URL.String(),
			}
			if info.RequestID == "" {
				info.RequestID = req.Header.Get(echo.HeaderXRequestID)
			}
			c.SetRequest(req.WithContext(services.WithRequestInfo(req.Context(), info)))

			err := next(c)

			ctx := c.Request().Context()
			tenantID, ok := common.GetTenantIDFromContext(ctx)
			if !ok {
				return err
			}
			if !shouldAudit(level, info.Method, info.Route, err) {
				return err
			}

			info.ResponseStatus = responseStatus(c, err)
			info.ExecutionTimeMs = m.now().Sub(start).Milliseconds()

			values := models.JSONB{
				"method": info.Method,
				"path":   info.Route,
				"status": info.ResponseStatus,
			}
			if err != nil {
				values["error"] = err.Error()
			}
			if level == AuditHigh {
				values["query_params"] = c.QueryParams()
				values["headers"] = sanitizeHeaders(req.Header)
			}

			entry := models.AuditEntry{
				Action:      models.ActionHTTPRequest,
				ModelType:   "HttpRequest",
				ModelID:     info.Route,
				UserID:      common.UserIDPtrFromContext(ctx),
				NewValues:   values,
				Description: fmt.Sprintf("%s %s", info.Method, info.Route),
				Request:     info,
			}
			if auditErr := m.auditService.LogActivity(ctx, tenantID, entry); auditErr != nil {
				logger.FromContext(ctx).Warn("failed to record request audit", zap.Error(auditErr))
			}
			return err
		}
	}
}

func shouldAudit(level, method, path string, reqErr error) bool {
	if reqErr != nil {
		return true
	}
	switch level {
	case AuditHigh:
		return true
	case AuditMedium:
		if method != http.MethodGet {
			return true
		}
		for _, prefix := range skipAuditPrefixes {
			if strings.HasPrefix(path, prefix) {
				return false
			}
		}
		return true
	default:
		return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch || method == http.MethodDelete
	}
}

func responseStatus(c echo.Context, err error) int {
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr.Code
		}
		if !c.Response().Committed {
			return http.StatusInternalServerError
		}
	}
	return c.Response().Status
}

// sanitizeHeaders removes sensitive headers before logging
func sanitizeHeaders(headers http.Header) map[string]interface{} {
	sanitized := make(map[string]interface{}, len(headers))
	for key, values := range headers {
		if sensitiveHeaders[strings.ToLower(key)] {
			sanitized[key] = "[REDACTED]"
			continue
		}
		sanitized[key] = strings.Join(values, ", ")
	}
	return sanitized
}
