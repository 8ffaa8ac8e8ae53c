package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// TenantHandlers exposes the caller's own tenant account
type TenantHandlers struct {
	tenantService services.TenantService
}

// NewTenantHandlers creates a new tenant handlers instance
func NewTenantHandlers(tenantService services.TenantService) *TenantHandlers {
	return &TenantHandlers{tenantService: tenantService}
}

// GetCurrentTenant handles GET /tenant
func (h *TenantHandlers) GetCurrentTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	tenant, err := h.tenantService.GetByID(c.Request().Context(), tenantID)
	return respond(c, http.StatusOK, tenant, err)
}

// UpdateCurrentTenant handles PUT /tenant
func (h *TenantHandlers) UpdateCurrentTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var req services.UpdateTenantRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}
	req.ID = tenantID

	if err := h.tenantService.Update(ctx, &req); err != nil {
		return common.HandleServiceError(c, err)
	}

	tenant, err := h.tenantService.GetByID(ctx, tenantID)
	return respond(c, http.StatusOK, tenant, err)
}
