package handlers

import (
	"net/http"
	"path/filepath"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

const maxLeaseDocument = 10 << 20

// RentalHandlers handles rental tenants and their leases (tenant-units)
type RentalHandlers struct {
	rentalTenantService services.RentalTenantService
	leaseService        services.LeaseService
}

// NewRentalHandlers creates a new rental handlers instance
func NewRentalHandlers(rentalTenantService services.RentalTenantService, leaseService services.LeaseService) *RentalHandlers {
	return &RentalHandlers{
		rentalTenantService: rentalTenantService,
		leaseService:        leaseService,
	}
}

// ListRentalTenants handles GET /rental-tenants
func (h *RentalHandlers) ListRentalTenants(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.RentalTenantFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	tenants, total, err := h.rentalTenantService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: tenants, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateRentalTenant handles POST /rental-tenants
func (h *RentalHandlers) CreateRentalTenant(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.RentalTenantInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	rt, err := h.rentalTenantService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, rt, err)
}

// GetRentalTenant handles GET /rental-tenants/:id
func (h *RentalHandlers) GetRentalTenant(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	rt, err := h.rentalTenantService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, rt, err)
}

// UpdateRentalTenant handles PUT /rental-tenants/:id
func (h *RentalHandlers) UpdateRentalTenant(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.RentalTenantInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	rt, err := h.rentalTenantService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, rt, err)
}

// DeleteRentalTenant handles DELETE /rental-tenants/:id
func (h *RentalHandlers) DeleteRentalTenant(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.rentalTenantService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListLeases handles GET /tenant-units
func (h *RentalHandlers) ListLeases(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.TenantUnitFilter{Status: c.QueryParam("status")}
	if filter.UnitID, err = common.QueryUUID(c, "unit_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	if filter.RentalTenantID, err = common.QueryUUID(c, "tenant_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	leases, total, err := h.leaseService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: leases, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateLease handles POST /tenant-units
func (h *RentalHandlers) CreateLease(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.LeaseInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	lease, err := h.leaseService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, lease, err)
}

// GetLease handles GET /tenant-units/:id
func (h *RentalHandlers) GetLease(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	lease, err := h.leaseService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, lease, err)
}

// UpdateLease handles PUT /tenant-units/:id
func (h *RentalHandlers) UpdateLease(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.LeaseInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	lease, err := h.leaseService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, lease, err)
}

// DeleteLease handles DELETE /tenant-units/:id
func (h *RentalHandlers) DeleteLease(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.leaseService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EndLease handles POST /tenant-units/:id/end
func (h *RentalHandlers) EndLease(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.EndLeaseRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	lease, err := h.leaseService.EndLease(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, lease, err)
}

// UploadLeaseDocument handles POST /tenant-units/:id/document (multipart "document")
func (h *RentalHandlers) UploadLeaseDocument(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("document")
	if err != nil {
		return common.SendValidationError(c, "document", "The document field is required.")
	}
	if file.Size > maxLeaseDocument {
		return common.SendValidationError(c, "document", "The document may not be greater than 10 MB.")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Unable to read upload")
	}
	defer src.Close()

	link, err := h.leaseService.UploadDocument(c.Request().Context(), tenantID, id,
		filepath.Base(file.Filename), src, file.Size, file.Header.Get(echo.HeaderContentType))
	return respond(c, http.StatusOK, link, err)
}
