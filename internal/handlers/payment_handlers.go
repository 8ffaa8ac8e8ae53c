package handlers

import (
	"fmt"
	"net/http"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// PaymentHandlers handles payment entries, the unified payment view and rent invoices
type PaymentHandlers struct {
	paymentService     services.PaymentService
	rentInvoiceService services.RentInvoiceService
}

// NewPaymentHandlers creates a new payment handlers instance
func NewPaymentHandlers(paymentService services.PaymentService, rentInvoiceService services.RentInvoiceService) *PaymentHandlers {
	return &PaymentHandlers{
		paymentService:     paymentService,
		rentInvoiceService: rentInvoiceService,
	}
}

func unifiedFilter(c echo.Context) (*models.UnifiedPaymentFilter, error) {
	filter := &models.UnifiedPaymentFilter{
		PaymentType:   c.QueryParam("payment_type"),
		Status:        c.QueryParam("status"),
		FlowDirection: c.QueryParam("flow_direction"),
		Search:        c.QueryParam("search"),
	}

	var err error
	if filter.TenantUnitID, err = common.QueryUUID(c, "tenant_unit_id"); err != nil {
		return nil, err
	}
	if filter.DateFrom, filter.DateTo, err = queryDateRange(c, "date_from", "date_to"); err != nil {
		return nil, err
	}
	filter.Limit = common.QueryInt(c, "limit", 50)
	filter.Offset = common.QueryInt(c, "offset", 0)
	return filter, nil
}

// ListPayments handles GET /payments (unified view)
func (h *PaymentHandlers) ListPayments(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	filter, err := unifiedFilter(c)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	payments, total, err := h.paymentService.ListUnified(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: payments, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// PaymentSummary handles GET /payments/summary
func (h *PaymentHandlers) PaymentSummary(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	filter, err := unifiedFilter(c)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	summary, err := h.paymentService.Summary(c.Request().Context(), tenantID, filter)
	return respond(c, http.StatusOK, summary, err)
}

// ExportPayments handles GET /payments/export
func (h *PaymentHandlers) ExportPayments(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	filter, err := unifiedFilter(c)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	data, err := h.paymentService.ExportUnified(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return sendXLSX(c, fmt.Sprintf("payments-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}

// CreatePayment handles POST /payments
func (h *PaymentHandlers) CreatePayment(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.PaymentInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, payment, err)
}

// GetPayment handles GET /payments/:id
func (h *PaymentHandlers) GetPayment(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	payment, err := h.paymentService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, payment, err)
}

// CapturePayment handles POST /payments/:id/capture
func (h *PaymentHandlers) CapturePayment(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.CapturePaymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.Capture(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, payment, err)
}

// VoidPayment handles POST /payments/:id/void
func (h *PaymentHandlers) VoidPayment(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.VoidPaymentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	payment, err := h.paymentService.Void(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, payment, err)
}

// ListRentInvoices handles GET /rent-invoices
func (h *PaymentHandlers) ListRentInvoices(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	filter := &models.RentInvoiceFilter{Status: c.QueryParam("status")}
	if filter.TenantUnitID, err = common.QueryUUID(c, "tenant_unit_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	if filter.PropertyID, err = common.QueryUUID(c, "property_id"); err != nil {
		return common.HandleServiceError(c, err)
	}
	if raw := c.QueryParam("month"); raw != "" {
		month, err := time.Parse("2006-01", raw)
		if err != nil {
			return common.SendValidationError(c, "month", "The month must be a date in 2006-01 format.")
		}
		filter.Month = &month
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)

	invoices, total, err := h.rentInvoiceService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: invoices, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// GetRentInvoice handles GET /rent-invoices/:id
func (h *PaymentHandlers) GetRentInvoice(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	invoice, err := h.rentInvoiceService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, invoice, err)
}

// GenerateRentInvoices handles POST /rent-invoices/generate
func (h *PaymentHandlers) GenerateRentInvoices(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.GenerateRentInvoicesRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	summary, err := h.rentInvoiceService.GenerateRentInvoices(c.Request().Context(), tenantID, req.Month, req.Force)
	return respond(c, http.StatusOK, summary, err)
}

// RentInvoicePDF handles POST /rent-invoices/:id/pdf
func (h *PaymentHandlers) RentInvoicePDF(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	link, err := h.rentInvoiceService.GeneratePDF(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, link, err)
}
