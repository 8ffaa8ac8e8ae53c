package services

import (
	"context"
	"fmt"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/documents"
	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxPaymentExport = 10000

// settlementTolerance absorbs rounding when comparing a payment to an invoice total
var settlementTolerance = decimal.RequireFromString("0.01")

type PaymentService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *PaymentInput) (*models.PaymentEntry, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PaymentEntry, error)
	Capture(ctx context.Context, tenantID, id uuid.UUID, req *CapturePaymentRequest) (*models.PaymentEntry, error)
	Void(ctx context.Context, tenantID, id uuid.UUID, req *VoidPaymentRequest) (*models.PaymentEntry, error)

	ListUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]*models.UnifiedPayment, int, error)
	Summary(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) (*models.PaymentSummary, error)
	ExportUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]byte, error)
}

type PaymentInput struct {
	TenantUnitID    *uuid.UUID      `json:"tenant_unit_id"`
	PaymentType     string          `json:"payment_type" validate:"required"`
	Amount          decimal.Decimal `json:"amount" validate:"gt=0"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
	Status          string          `json:"status"`
	PaymentMethod   *string         `json:"payment_method" validate:"omitempty,max=50"`
	Reference       *string         `json:"reference" validate:"omitempty,max=100"`
	Description     *string         `json:"description"`
	TransactionDate string          `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	DueDate         string          `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	SourceType      *string         `json:"source_type"`
	SourceID        *uuid.UUID      `json:"source_id"`
	Metadata        models.JSONB    `json:"metadata"`
}

type CapturePaymentRequest struct {
	Status          string       `json:"status" validate:"omitempty,oneof=completed partial"`
	TransactionDate string       `json:"transaction_date" validate:"omitempty,datetime=2006-01-02"`
	Metadata        models.JSONB `json:"metadata"`
}

type VoidPaymentRequest struct {
	Status string `json:"status" validate:"omitempty,oneof=cancelled failed refunded"`
	Reason string `json:"reason" validate:"max=1000"`
}

type paymentService struct {
	paymentRepo     repositories.PaymentRepository
	leaseRepo       repositories.LeaseRepository
	rentInvoiceRepo repositories.RentInvoiceRepository
	audit           AuditLogsService
	metrics         *metrics.Metrics
	now             func() time.Time
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	leaseRepo repositories.LeaseRepository,
	rentInvoiceRepo repositories.RentInvoiceRepository,
	audit AuditLogsService,
	m *metrics.Metrics,
) PaymentService {
	if m == nil {
		m = metrics.NewNop()
	}
	return &paymentService{
		paymentRepo:     paymentRepo,
		leaseRepo:       leaseRepo,
		rentInvoiceRepo: rentInvoiceRepo,
		audit:           audit,
		metrics:         m,
		now:             time.Now,
	}
}

func optionalDate(raw, field string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := common.ParseDate(raw, field)
	if err != nil {
		return nil, common.NewFieldError(field, err.Error())
	}
	return &d, nil
}

// linkedInvoice loads the rent invoice a payment settles, if any
func (s *paymentService) linkedInvoice(ctx context.Context, tenantID uuid.UUID, p *models.PaymentEntry) (*models.RentInvoice, error) {
	if p.SourceType == nil || p.SourceID == nil || *p.SourceType != models.SourceTypeRentInvoice {
		return nil, nil
	}
	inv, err := s.rentInvoiceRepo.GetByID(ctx, tenantID, *p.SourceID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewFieldError("source_id", "The selected source_id is invalid.")
		}
		return nil, err
	}
	return inv, nil
}

// settles reports whether p pays off inv in full
func settles(p *models.PaymentEntry, inv *models.RentInvoice) bool {
	if inv == nil || p.Status != models.PaymentStatusCompleted {
		return false
	}
	if inv.Status == models.RentInvoiceStatusPaid || inv.Status == models.RentInvoiceStatusCancelled {
		return false
	}
	return p.Amount.GreaterThanOrEqual(inv.TotalAmount.Sub(settlementTolerance))
}

func (s *paymentService) Create(ctx context.Context, tenantID uuid.UUID, in *PaymentInput) (*models.PaymentEntry, error) {
	fields := common.FieldErrors{}
	paymentType := models.PaymentType(in.PaymentType)
	if !paymentType.Valid() {
		fields.Add("payment_type", "The selected payment_type is invalid.")
	}
	status := models.PaymentStatus(in.Status)
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !status.Valid() {
		fields.Add("status", "The selected status is invalid.")
	}
	if !in.Amount.IsPositive() {
		fields.Add("amount", "The amount must be greater than 0.")
	}
	if in.SourceType != nil && *in.SourceType != models.SourceTypeRentInvoice {
		fields.Add("source_type", "The source_type must be one of: rent_invoice.")
	}
	if in.SourceType != nil && in.SourceID == nil {
		fields.Add("source_id", "The source_id field is required when source_type is present.")
	}
	if in.SourceID != nil && in.SourceType == nil {
		fields.Add("source_type", "The source_type field is required when source_id is present.")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	currency, err := normalizeCurrency(in.Currency, defaultCurrency)
	if err != nil {
		return nil, err
	}
	txDate, err := optionalDate(in.TransactionDate, "transaction_date")
	if err != nil {
		return nil, err
	}
	dueDate, err := optionalDate(in.DueDate, "due_date")
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := &models.PaymentEntry{
		ID:              uuid.New(),
		TenantID:        tenantID,
		TenantUnitID:    in.TenantUnitID,
		PaymentType:     paymentType,
		FlowDirection:   paymentType.FlowDirection(),
		Amount:          in.Amount,
		Currency:        currency,
		Status:          status,
		PaymentMethod:   in.PaymentMethod,
		Reference:       in.Reference,
		Description:     in.Description,
		TransactionDate: txDate,
		DueDate:         dueDate,
		SourceType:      in.SourceType,
		SourceID:        in.SourceID,
		Metadata:        in.Metadata,
		CreatedBy:       common.UserIDPtrFromContext(ctx),
	}
	if p.Metadata == nil {
		p.Metadata = models.JSONB{}
	}

	inv, err := s.linkedInvoice(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}
	if inv != nil {
		if p.TenantUnitID == nil {
			p.TenantUnitID = &inv.TenantUnitID
		} else if *p.TenantUnitID != inv.TenantUnitID {
			return nil, common.NewFieldError("source_id", "The rent invoice belongs to a different lease.")
		}
	}
	if p.TenantUnitID == nil && paymentType.RequiresLease() {
		return nil, common.NewFieldError("tenant_unit_id", fmt.Sprintf("The tenant_unit_id field is required for %s payments.", paymentType))
	}
	if p.TenantUnitID != nil {
		if _, err := s.leaseRepo.GetByID(ctx, tenantID, *p.TenantUnitID); err != nil {
			if common.IsNotFound(err) {
				return nil, common.NewFieldError("tenant_unit_id", "The selected tenant_unit_id is invalid.")
			}
			return nil, err
		}
	}

	if status.IsCaptured() {
		if p.TransactionDate == nil {
			today := truncateDay(now)
			p.TransactionDate = &today
		}
		p.CapturedAt = &now
	}
	if status == models.PaymentStatusCancelled {
		p.VoidedAt = &now
	}

	settle := status.IsCaptured() && settles(p, inv)
	if err := s.paymentRepo.Create(ctx, p, settle); err != nil {
		return nil, err
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(p.PaymentType), string(p.Status)).Inc()
	logger.FromContext(ctx).Info("payment recorded",
		zap.String("payment_id", p.ID.String()),
		zap.String("payment_type", string(p.PaymentType)),
		zap.String("status", string(p.Status)),
		zap.Bool("settled_invoice", settle),
	)
	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "PaymentEntry", p.ID.String(), ToJSONB(p)), "PaymentEntry", p.ID.String())
	return p, nil
}

func (s *paymentService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.PaymentEntry, error) {
	p, err := s.paymentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Payment")
	}
	return p, nil
}

// Capture moves an entry to completed or partial and settles its invoice when paid in full
func (s *paymentService) Capture(ctx context.Context, tenantID, id uuid.UUID, req *CapturePaymentRequest) (*models.PaymentEntry, error) {
	p, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Status.IsVoided() {
		return nil, common.NewStateError("PAYMENT_VOIDED", "Voided payments cannot be captured")
	}
	if p.Status == models.PaymentStatusCompleted {
		return nil, common.NewStateError("PAYMENT_ALREADY_CAPTURED", "Payment is already completed")
	}

	status := models.PaymentStatus(req.Status)
	if status == "" {
		status = models.PaymentStatusCompleted
	}
	if !status.IsCaptured() {
		return nil, common.NewFieldError("status", "The status must be one of: completed, partial.")
	}
	txDate, err := optionalDate(req.TransactionDate, "transaction_date")
	if err != nil {
		return nil, err
	}

	before := ToJSONB(p)
	now := s.now()
	from := p.Status
	p.Status = status
	if txDate == nil {
		today := truncateDay(now)
		txDate = &today
	}
	p.TransactionDate = txDate
	p.CapturedAt = &now
	p.Metadata = p.Metadata.Merge(req.Metadata)

	inv, err := s.linkedInvoice(ctx, tenantID, p)
	if err != nil {
		return nil, err
	}
	settle := settles(p, inv)
	if err := s.paymentRepo.UpdateState(ctx, p, settle); err != nil {
		return nil, notFound(err, "Payment")
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(p.PaymentType), string(p.Status)).Inc()
	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "PaymentEntry", id.String(), before, ToJSONB(p)), "PaymentEntry", id.String())
	logger.FromContext(ctx).Info("payment captured",
		zap.String("payment_id", id.String()),
		zap.String("from", string(from)),
		zap.String("to", string(status)),
		zap.Bool("settled_invoice", settle),
	)
	return p, nil
}

func (s *paymentService) Void(ctx context.Context, tenantID, id uuid.UUID, req *VoidPaymentRequest) (*models.PaymentEntry, error) {
	p, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if p.Status.IsVoided() {
		return nil, common.NewStateError("PAYMENT_VOIDED", "Payment is already voided")
	}

	status := models.PaymentStatus(req.Status)
	if status == "" {
		status = models.PaymentStatusCancelled
	}
	if !status.IsVoided() {
		return nil, common.NewFieldError("status", "The status must be one of: cancelled, failed, refunded.")
	}

	now := s.now()
	from := p.Status
	p.Status = status
	p.VoidedAt = &now
	if req.Reason != "" {
		p.Metadata = p.Metadata.Merge(models.JSONB{"void_reason": req.Reason})
	}

	if err := s.paymentRepo.UpdateState(ctx, p, false); err != nil {
		return nil, notFound(err, "Payment")
	}

	s.metrics.PaymentsRecorded.WithLabelValues(string(p.PaymentType), string(p.Status)).Inc()
	recordAudit(ctx, s.audit.LogStatusChange(ctx, tenantID, "PaymentEntry", id.String(), string(from), string(status), req.Reason), "PaymentEntry", id.String())
	return p, nil
}

func validateUnifiedFilter(filter *models.UnifiedPaymentFilter) error {
	fields := common.FieldErrors{}
	if filter.PaymentType != "" && !models.PaymentType(filter.PaymentType).Valid() {
		fields.Add("payment_type", "The selected payment_type is invalid.")
	}
	if filter.Status != "" && !models.PaymentStatus(filter.Status).Valid() {
		fields.Add("status", "The selected status is invalid.")
	}
	if filter.FlowDirection != "" && filter.FlowDirection != models.FlowIncome && filter.FlowDirection != models.FlowOutgoing {
		fields.Add("flow_direction", "The flow_direction must be one of: income, outgoing.")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		fields.Add("date_to", "The date_to must be on or after date_from.")
	}
	return fields.Err()
}

func (s *paymentService) ListUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]*models.UnifiedPayment, int, error) {
	if filter == nil {
		filter = &models.UnifiedPaymentFilter{}
	}
	if err := validateUnifiedFilter(filter); err != nil {
		return nil, 0, err
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.paymentRepo.ListUnified(ctx, tenantID, filter)
}

func (s *paymentService) Summary(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) (*models.PaymentSummary, error) {
	if filter == nil {
		filter = &models.UnifiedPaymentFilter{}
	}
	if err := validateUnifiedFilter(filter); err != nil {
		return nil, err
	}
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.paymentRepo.Summary(ctx, tenantID, filter)
}

func (s *paymentService) ExportUnified(ctx context.Context, tenantID uuid.UUID, filter *models.UnifiedPaymentFilter) ([]byte, error) {
	if filter == nil {
		filter = &models.UnifiedPaymentFilter{}
	}
	if err := validateUnifiedFilter(filter); err != nil {
		return nil, err
	}
	filter.Limit, filter.Offset = maxPaymentExport, 0
	filter.Search = common.SanitizeSearchQuery(filter.Search)

	rows, _, err := s.paymentRepo.ListUnified(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return documents.UnifiedPaymentsXLSX(rows)
}
