package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/config"
	"bizsuite/internal/documents"
	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultRentInvoicePrefix = "RINV"

type RentInvoiceService interface {
	// GenerateRentInvoices bills every active lease for month (YYYY-MM, empty for the current month)
	GenerateRentInvoices(ctx context.Context, tenantID uuid.UUID, month string, force bool) (*models.RentGenerationSummary, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentInvoice, error)
	List(ctx context.Context, tenantID uuid.UUID, filter *models.RentInvoiceFilter) ([]*models.RentInvoice, int, error)
	MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int, error)
	GeneratePDF(ctx context.Context, tenantID, id uuid.UUID) (*DocumentLink, error)
}

type GenerateRentInvoicesRequest struct {
	Month string `json:"month" validate:"omitempty,datetime=2006-01"`
	Force bool   `json:"force"`
}

type rentInvoiceService struct {
	rentInvoiceRepo repositories.RentInvoiceRepository
	leaseRepo       repositories.LeaseRepository
	storage         MinioService
	audit           AuditLogsService
	metrics         *metrics.Metrics
	cfg             config.RentConfig
	companyName     string
	now             func() time.Time
}

func NewRentInvoiceService(
	rentInvoiceRepo repositories.RentInvoiceRepository,
	leaseRepo repositories.LeaseRepository,
	storage MinioService,
	audit AuditLogsService,
	m *metrics.Metrics,
	cfg config.RentConfig,
	companyName string,
) RentInvoiceService {
	if m == nil {
		m = metrics.NewNop()
	}
	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = defaultRentInvoicePrefix
	}
	if cfg.GenerationDay <= 0 {
		cfg.GenerationDay = 1
	}
	if cfg.DueOffsetDays < 0 {
		cfg.DueOffsetDays = 0
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = defaultCurrency
	}
	return &rentInvoiceService{
		rentInvoiceRepo: rentInvoiceRepo,
		leaseRepo:       leaseRepo,
		storage:         storage,
		audit:           audit,
		metrics:         m,
		cfg:             cfg,
		companyName:     companyName,
		now:             time.Now,
	}
}

// RentInvoiceNumber formats {prefix}-{YYYYMM}-{SSS}
func RentInvoiceNumber(prefix string, month time.Time, seq int) string {
	return fmt.Sprintf("%s-%s-%03d", prefix, month.Format("200601"), seq)
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, -1)
}

func (s *rentInvoiceService) GenerateRentInvoices(ctx context.Context, tenantID uuid.UUID, month string, force bool) (*models.RentGenerationSummary, error) {
	today := truncateDay(s.now())
	target := today
	if month != "" {
		parsed, err := time.ParseInLocation("2006-01", month, today.Location())
		if err != nil {
			return nil, common.NewFieldError("month", "The month must be in YYYY-MM format.")
		}
		target = parsed
	}
	monthStart, monthEnd := monthBounds(target)

	summary := &models.RentGenerationSummary{
		Month:   monthStart.Format("2006-01"),
		Skipped: []models.RentSkip{},
		Errors:  []string{},
	}
	if !force && !s.cfg.AutoGenerate {
		summary.Reason = "automatic rent invoice generation is disabled"
		return summary, nil
	}
	if !force && today.Day() != s.cfg.GenerationDay {
		summary.Reason = fmt.Sprintf("invoices are generated on day %d of the month", s.cfg.GenerationDay)
		return summary, nil
	}
	summary.Ran = true

	leases, err := s.leaseRepo.ListActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	for _, lease := range leases {
		if lease.LeaseStart.After(monthEnd) {
			summary.Skipped = append(summary.Skipped, models.RentSkip{TenantUnitID: lease.ID, Reason: "lease starts after the billing month"})
			continue
		}
		if lease.LeaseEnd != nil && lease.LeaseEnd.Before(monthStart) {
			summary.Skipped = append(summary.Skipped, models.RentSkip{TenantUnitID: lease.ID, Reason: "lease ended before the billing month"})
			continue
		}

		exists, err := s.rentInvoiceRepo.ExistsForLeaseMonth(ctx, tenantID, lease.ID, monthStart)
		if err != nil {
			summary.Errors = append(summary.Errors, fmt.Sprintf("lease %s: %v", lease.ID, err))
			continue
		}
		if exists {
			summary.Duplicates++
			continue
		}

		inv := &models.RentInvoice{
			ID:             uuid.New(),
			TenantID:       tenantID,
			TenantUnitID:   lease.ID,
			RentalTenantID: lease.RentalTenantID,
			UnitID:         lease.UnitID,
			PropertyID:     lease.PropertyID,
			InvoiceDate:    monthStart,
			DueDate:        monthStart.AddDate(0, 0, s.cfg.DueOffsetDays),
			RentAmount:     lease.MonthlyRent,
			LateFee:        decimal.Zero,
			TotalAmount:    lease.MonthlyRent,
			Currency:       invoiceCurrency(lease, s.cfg.DefaultCurrency),
			Status:         models.RentInvoiceStatusPending,
			TenantName:     lease.TenantName,
			UnitNumber:     lease.UnitNumber,
			PropertyName:   lease.PropertyName,
		}
		err = s.rentInvoiceRepo.Create(ctx, inv, func(seq int) string {
			return RentInvoiceNumber(s.cfg.InvoicePrefix, monthStart, seq)
		})
		if errors.Is(err, repositories.ErrRentInvoiceExists) {
			summary.Duplicates++
			continue
		}
		if err != nil {
			log.Error("failed to create rent invoice", zap.String("lease_id", lease.ID.String()), zap.Error(err))
			summary.Errors = append(summary.Errors, fmt.Sprintf("lease %s: %v", lease.ID, err))
			continue
		}
		summary.Generated++
		summary.Invoices = append(summary.Invoices, inv)
	}

	s.metrics.RentInvoicesCreated.Add(float64(summary.Generated))
	log.Info("rent invoices generated",
		zap.String("tenant_id", tenantID.String()),
		zap.String("month", summary.Month),
		zap.Int("generated", summary.Generated),
		zap.Int("skipped", len(summary.Skipped)),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("errors", len(summary.Errors)),
	)
	if summary.Generated > 0 {
		recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
			Action:      models.ActionCreated,
			ModelType:   "RentInvoice",
			NewValues:   models.JSONB{"month": summary.Month, "generated": summary.Generated, "force": force},
			Description: fmt.Sprintf("Generated %d rent invoices for %s", summary.Generated, summary.Month),
		}), "RentInvoice", "")
	}
	return summary, nil
}

func invoiceCurrency(lease *models.TenantUnit, def string) string {
	if lease.Currency != "" {
		return lease.Currency
	}
	return def
}

func (s *rentInvoiceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentInvoice, error) {
	inv, err := s.rentInvoiceRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Rent invoice")
	}
	return inv, nil
}

func (s *rentInvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentInvoiceFilter) ([]*models.RentInvoice, int, error) {
	if filter == nil {
		filter = &models.RentInvoiceFilter{}
	}
	switch filter.Status {
	case "", models.RentInvoiceStatusPending, models.RentInvoiceStatusSent, models.RentInvoiceStatusPaid,
		models.RentInvoiceStatusOverdue, models.RentInvoiceStatusCancelled:
	default:
		return nil, 0, common.NewFieldError("status", "The selected status is invalid.")
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	return s.rentInvoiceRepo.List(ctx, tenantID, filter)
}

func (s *rentInvoiceService) MarkOverdue(ctx context.Context, tenantID uuid.UUID) (int, error) {
	n, err := s.rentInvoiceRepo.MarkOverdue(ctx, tenantID, truncateDay(s.now()))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.FromContext(ctx).Info("rent invoices marked overdue", zap.String("tenant_id", tenantID.String()), zap.Int("count", n))
	}
	return n, nil
}

func (s *rentInvoiceService) GeneratePDF(ctx context.Context, tenantID, id uuid.UUID) (*DocumentLink, error) {
	inv, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	content, err := documents.RentInvoicePDF(inv, s.companyName)
	if err != nil {
		return nil, err
	}

	key := RentInvoicePDFKey(tenantID, inv.InvoiceNumber)
	if err := s.storage.UploadObject(ctx, key, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload rent invoice pdf: %w", err)
	}
	url, err := s.storage.GetPresignedURL(ctx, key, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign rent invoice pdf: %w", err)
	}
	return &DocumentLink{ObjectKey: key, URL: url, ExpiresAt: s.now().Add(presignExpiry)}, nil
}
