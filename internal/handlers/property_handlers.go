package handlers

import (
	"net/http"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

const maxImportUpload = 5 << 20

// PropertyHandlers handles properties and their units
type PropertyHandlers struct {
	propertyService services.PropertyService
	unitService     services.UnitService
}

// NewPropertyHandlers creates a new property handlers instance
func NewPropertyHandlers(propertyService services.PropertyService, unitService services.UnitService) *PropertyHandlers {
	return &PropertyHandlers{
		propertyService: propertyService,
		unitService:     unitService,
	}
}

// ListProperties handles GET /properties
func (h *PropertyHandlers) ListProperties(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	limit, offset := common.LimitOffset(c)
	properties, total, err := h.propertyService.List(c.Request().Context(), tenantID, c.QueryParam("search"), limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: properties, Total: total, Limit: limit, Offset: offset})
}

// CreateProperty handles POST /properties
func (h *PropertyHandlers) CreateProperty(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.PropertyInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	property, err := h.propertyService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, property, err)
}

// GetProperty handles GET /properties/:id
func (h *PropertyHandlers) GetProperty(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	property, err := h.propertyService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, property, err)
}

// UpdateProperty handles PUT /properties/:id
func (h *PropertyHandlers) UpdateProperty(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.PropertyInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	property, err := h.propertyService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, property, err)
}

// DeleteProperty handles DELETE /properties/:id. Units go with it.
func (h *PropertyHandlers) DeleteProperty(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.propertyService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GenerateUnits handles POST /properties/:id/units/generate
func (h *PropertyHandlers) GenerateUnits(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req models.GenerateUnitsRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.unitService.GenerateUnits(c.Request().Context(), tenantID, id, &req)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	status := http.StatusCreated
	if result.Preview {
		status = http.StatusOK
	}
	return c.JSON(status, result)
}

// ListUnits handles GET /units
func (h *PropertyHandlers) ListUnits(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.UnitFilter{
		Search:     c.QueryParam("search"),
		IsOccupied: common.QueryBool(c, "is_occupied"),
	}
	if filter.PropertyID, err = common.QueryUUID(c, "property_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	units, total, err := h.unitService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: units, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateUnit handles POST /units
func (h *PropertyHandlers) CreateUnit(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.UnitInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	unit, err := h.unitService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, unit, err)
}

// GetUnit handles GET /units/:id
func (h *PropertyHandlers) GetUnit(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	unit, err := h.unitService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, unit, err)
}

// UpdateUnit handles PUT /units/:id
func (h *PropertyHandlers) UpdateUnit(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.UnitInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	unit, err := h.unitService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, unit, err)
}

// DeleteUnit handles DELETE /units/:id
func (h *PropertyHandlers) DeleteUnit(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.unitService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkImportUnits handles POST /units/bulk-import.
// Accepts either a JSON body or a multipart upload with an xlsx "file" and a "mode" field.
func (h *PropertyHandlers) BulkImportUnits(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		file, err := c.FormFile("file")
		if err != nil {
			return common.SendValidationError(c, "file", "The file field is required.")
		}
		if file.Size > maxImportUpload {
			return common.SendValidationError(c, "file", "The file may not be greater than 5 MB.")
		}
		src, err := file.Open()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Unable to read upload")
		}
		defer src.Close()

		result, err := h.unitService.ImportWorkbook(ctx, tenantID, c.FormValue("mode"), src)
		return respond(c, http.StatusOK, result, err)
	}

	var req services.UnitImportRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.unitService.BulkImport(ctx, tenantID, req.Mode, req.Units)
	return respond(c, http.StatusOK, result, err)
}

// ImportTemplate handles GET /units/import-template
func (h *PropertyHandlers) ImportTemplate(c echo.Context) error {
	data, err := h.unitService.ImportTemplate()
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return sendXLSX(c, "unit-import-template.xlsx", data)
}

// OccupancyHistory handles GET /units/:id/occupancy-history
func (h *PropertyHandlers) OccupancyHistory(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	history, err := h.unitService.OccupancyHistory(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, map[string]interface{}{"data": history}, err)
}
