package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/landedcost"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// LandedCostHandlers handles landed cost calculation and shipments
type LandedCostHandlers struct {
	landedCostService services.LandedCostService
}

func NewLandedCostHandlers(landedCostService services.LandedCostService) *LandedCostHandlers {
	return &LandedCostHandlers{landedCostService: landedCostService}
}

// Calculate handles POST /landed-cost/calculate. Nothing is persisted.
func (h *LandedCostHandlers) Calculate(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req landedcost.Input
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.landedCostService.Calculate(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusOK, result, err)
}

// CreateShipment handles POST /landed-cost/shipments
func (h *LandedCostHandlers) CreateShipment(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.CreateShipmentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	shipment, err := h.landedCostService.CreateShipment(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, shipment, err)
}

// ListShipments handles GET /landed-cost/shipments
func (h *LandedCostHandlers) ListShipments(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	limit, offset := common.LimitOffset(c)
	shipments, total, err := h.landedCostService.ListShipments(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: shipments, Total: total, Limit: limit, Offset: offset})
}

// GetShipment handles GET /landed-cost/shipments/:id
func (h *LandedCostHandlers) GetShipment(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	shipment, err := h.landedCostService.GetShipment(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, shipment, err)
}

// FinalizeShipment handles POST /landed-cost/shipments/:id/finalize
func (h *LandedCostHandlers) FinalizeShipment(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	shipment, err := h.landedCostService.FinalizeShipment(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, shipment, err)
}
