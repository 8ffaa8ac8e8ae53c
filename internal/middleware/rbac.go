package middleware

import (
	"net/http"
	"slices"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// permissionsKey holds the caller's permission set once the first guard on a request loaded it
const permissionsKey = "rbac.permissions"

type RBACMiddleware struct {
	rbacService services.RBACService
}

func NewRBACMiddleware(rbacService services.RBACService) *RBACMiddleware {
	return &RBACMiddleware{rbacService: rbacService}
}

// RequirePermission rejects the request with 403 unless the user holds permission (e.g. "quotations:write").
// Group and route guards on the same request share one permission lookup.
func (m *RBACMiddleware) RequirePermission(permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			perms, err := m.permissions(c)
			if err != nil {
				return err
			}
			if !slices.Contains(perms, permission) {
				logger.FromContext(c.Request().Context()).Debug("permission denied", zap.String("permission", permission))
				return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
			}
			return next(c)
		}
	}
}

func (m *RBACMiddleware) permissions(c echo.Context) ([]string, error) {
	if cached, ok := c.Get(permissionsKey).([]string); ok {
		return cached, nil
	}

	ctx := c.Request().Context()
	userID, ok := common.GetUserIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	tenantID, ok := common.GetTenantIDFromContext(ctx)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Tenant not found")
	}

	perms, err := m.rbacService.GetUserPermissions(ctx, userID, tenantID)
	if err != nil {
		logger.FromContext(ctx).Error("permission lookup failed", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Error checking permission")
	}
	if perms == nil {
		perms = []string{}
	}
	c.Set(permissionsKey, perms)
	return perms, nil
}
