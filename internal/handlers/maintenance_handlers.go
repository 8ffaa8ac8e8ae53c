package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

type MaintenanceHandlers struct {
	maintenanceService services.MaintenanceService
}

func NewMaintenanceHandlers(maintenanceService services.MaintenanceService) *MaintenanceHandlers {
	return &MaintenanceHandlers{maintenanceService: maintenanceService}
}

// ListMaintenanceRequests handles GET /maintenance-requests.
// The date window applies only when both bounds are given.
func (h *MaintenanceHandlers) ListMaintenanceRequests(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.MaintenanceFilter{
		Type:       c.QueryParam("type"),
		IsBillable: common.QueryBool(c, "is_billable"),
	}
	if filter.UnitID, err = common.QueryUUID(c, "unit_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	from, to, err := queryDateRange(c, "maintenance_date_from", "maintenance_date_to")
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	if from != nil && to != nil {
		filter.DateFrom, filter.DateTo = from, to
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	requests, total, err := h.maintenanceService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: requests, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateMaintenanceRequest handles POST /maintenance-requests
func (h *MaintenanceHandlers) CreateMaintenanceRequest(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.MaintenanceInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	mr, err := h.maintenanceService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, mr, err)
}

// GetMaintenanceRequest handles GET /maintenance-requests/:id
func (h *MaintenanceHandlers) GetMaintenanceRequest(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	mr, err := h.maintenanceService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, mr, err)
}

// UpdateMaintenanceRequest handles PUT /maintenance-requests/:id
func (h *MaintenanceHandlers) UpdateMaintenanceRequest(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.MaintenanceInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	mr, err := h.maintenanceService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, mr, err)
}

// DeleteMaintenanceRequest handles DELETE /maintenance-requests/:id
func (h *MaintenanceHandlers) DeleteMaintenanceRequest(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.maintenanceService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
