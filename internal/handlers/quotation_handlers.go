package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/services"

	"github.com/labstack/echo/v4"
)

// QuotationHandlers handles HTTP requests for quotations and their follow-ups
type QuotationHandlers struct {
	quotationService services.QuotationService
	followupService  services.FollowupService
}

// NewQuotationHandlers creates a new quotation handlers instance
func NewQuotationHandlers(quotationService services.QuotationService, followupService services.FollowupService) *QuotationHandlers {
	return &QuotationHandlers{
		quotationService: quotationService,
		followupService:  followupService,
	}
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

type SkipFollowupRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

func quotationFilter(c echo.Context) (*models.QuotationFilter, error) {
	filter := &models.QuotationFilter{Search: c.QueryParam("search")}

	if raw := strings.TrimSpace(c.QueryParam("status")); raw != "" {
		status := models.QuotationStatus(raw)
		if !status.Valid() {
			return nil, common.NewFieldError("status", "The selected status is invalid.")
		}
		filter.Status = &status
	}

	var err error
	if filter.CustomerID, err = common.QueryUUID(c, "customer_id"); err != nil {
		return nil, err
	}
	if filter.DateFrom, filter.DateTo, err = queryDateRange(c, "date_from", "date_to"); err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = common.LimitOffset(c)
	return filter, nil
}

// ListQuotations handles GET /quotations
func (h *QuotationHandlers) ListQuotations(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	filter, err := quotationFilter(c)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	quotations, total, err := h.quotationService.List(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: quotations, Total: total, Limit: filter.Limit, Offset: filter.Offset})
}

// CreateQuotation handles POST /quotations
func (h *QuotationHandlers) CreateQuotation(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	var req services.QuotationInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	quotation, err := h.quotationService.Create(c.Request().Context(), tenantID, &req)
	return respond(c, http.StatusCreated, quotation, err)
}

// GetQuotation handles GET /quotations/:id
func (h *QuotationHandlers) GetQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	quotation, err := h.quotationService.GetByID(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, quotation, err)
}

// UpdateQuotation handles PUT /quotations/:id
func (h *QuotationHandlers) UpdateQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req services.QuotationInput
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	quotation, err := h.quotationService.Update(c.Request().Context(), tenantID, id, &req)
	return respond(c, http.StatusOK, quotation, err)
}

// DeleteQuotation handles DELETE /quotations/:id
func (h *QuotationHandlers) DeleteQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	if err := h.quotationService.Delete(c.Request().Context(), tenantID, id); err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SendQuotation handles POST /quotations/:id/send
func (h *QuotationHandlers) SendQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	quotation, err := h.quotationService.Send(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, quotation, err)
}

// AcceptQuotation handles POST /quotations/:id/accept
func (h *QuotationHandlers) AcceptQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	quotation, err := h.quotationService.Accept(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, quotation, err)
}

// RejectQuotation handles POST /quotations/:id/reject
func (h *QuotationHandlers) RejectQuotation(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req RejectQuotationRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	quotation, err := h.quotationService.Reject(c.Request().Context(), tenantID, id, strings.TrimSpace(req.Reason))
	return respond(c, http.StatusOK, quotation, err)
}

// StatusHistory handles GET /quotations/:id/status-history
func (h *QuotationHandlers) StatusHistory(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	history, err := h.quotationService.StatusHistory(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, map[string]interface{}{"data": history}, err)
}

// PreviewNumber handles GET /quotations/preview-number?customer_id=
func (h *QuotationHandlers) PreviewNumber(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	customerID, err := common.QueryUUID(c, "customer_id")
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	if customerID == nil {
		return common.SendValidationError(c, "customer_id", "The customer_id field is required.")
	}

	number, err := h.quotationService.PreviewNumber(c.Request().Context(), tenantID, *customerID)
	return respond(c, http.StatusOK, map[string]string{"quotation_number": number}, err)
}

// GeneratePDF handles POST /quotations/:id/pdf
func (h *QuotationHandlers) GeneratePDF(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	link, err := h.quotationService.GeneratePDF(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, link, err)
}

// ExportQuotations handles GET /quotations/export
func (h *QuotationHandlers) ExportQuotations(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}
	filter, err := quotationFilter(c)
	if err != nil {
		return common.HandleServiceError(c, err)
	}

	data, err := h.quotationService.Export(c.Request().Context(), tenantID, filter)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return sendXLSX(c, fmt.Sprintf("quotations-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}

// ListFollowups handles GET /quotations/:id/followups
func (h *QuotationHandlers) ListFollowups(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	followups, err := h.followupService.ListForQuotation(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, map[string]interface{}{"data": followups}, err)
}

// PendingFollowups handles GET /quotation-followups/pending
func (h *QuotationHandlers) PendingFollowups(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	limit, offset := common.LimitOffset(c)
	followups, err := h.followupService.ListPending(c.Request().Context(), tenantID, limit, offset)
	if err != nil {
		return common.HandleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, ListResponse{Data: followups, Total: len(followups), Limit: limit, Offset: offset})
}

// FollowupStatistics handles GET /quotation-followups/statistics
func (h *QuotationHandlers) FollowupStatistics(c echo.Context) error {
	tenantID, err := tenantFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.followupService.Statistics(c.Request().Context(), tenantID)
	return respond(c, http.StatusOK, stats, err)
}

// MarkFollowupSent handles POST /quotation-followups/:id/send
func (h *QuotationHandlers) MarkFollowupSent(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	followup, err := h.followupService.MarkSent(c.Request().Context(), tenantID, id)
	return respond(c, http.StatusOK, followup, err)
}

// SkipFollowup handles POST /quotation-followups/:id/skip
func (h *QuotationHandlers) SkipFollowup(c echo.Context) error {
	tenantID, id, err := tenantAndID(c)
	if err != nil {
		return err
	}

	var req SkipFollowupRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		return err
	}

	followup, err := h.followupService.Skip(c.Request().Context(), tenantID, id, strings.TrimSpace(req.Reason))
	return respond(c, http.StatusOK, followup, err)
}
