package handlers

import (
	"net/http"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// CustomerHandlers handles HTTP requests for customers (resorts)
type CustomerHandlers struct {
	customerService services.CustomerService
}

// NewCustomerHandlers creates a new customer handlers instance
func NewCustomerHandlers(customerService services.CustomerService) *CustomerHandlers {
	return &CustomerHandlers{customerService: customerService}
}

// BulkImportCustomersRequest is the body of POST /customers/bulk-import
type BulkImportCustomersRequest struct {
	Customers []services.CustomerInput `json:"customers"`
}

// ListCustomers handles GET /customers
func (h *CustomerHandlers) ListCustomers(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.CustomerFilter{
		Search:   c.QueryParam("search"),
		IsActive: common.QueryBool(c, "is_active"),
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	customers, total, err := h.customerService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: customers, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateCustomer handles POST /customers
func (h *CustomerHandlers) CreateCustomer(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.CustomerInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	customer, err := h.customerService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, customer, err)
}

// GetCustomer handles GET /customers/:id
func (h *CustomerHandlers) GetCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	customer, err := h.customerService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, customer, err)
}

// UpdateCustomer handles PUT /customers/:id
func (h *CustomerHandlers) UpdateCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.CustomerInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	customer, err := h.customerService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, customer, err)
}

// DeleteCustomer handles DELETE /customers/:id
func (h *CustomerHandlers) DeleteCustomer(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.customerService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// BulkImportCustomers handles POST /customers/bulk-import.
// Rows are validated one by one by the service so a bad row does not fail the batch.
func (h *CustomerHandlers) BulkImportCustomers(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req BulkImportCustomersRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if len(req.Customers) == 0 {
		return common.SendValidationError(c, "customers", "The customers field is required.")
	}

	result, err := h.customerService.BulkImport(c.Request().Context(), tenantID, req.Customers)
	return respond(c, http.StatusOK, result, err)
}
