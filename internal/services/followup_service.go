package services

import (
	"context"
	"fmt"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/config"
	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var defaultFollowupDays = []int{7, 14, 21}

type FollowupService interface {
	// ScheduleForQuotation replaces pending follow-ups with a fresh schedule counted from sentDate
	ScheduleForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID, sentDate time.Time) ([]*models.QuotationFollowup, error)
	CancelPending(ctx context.Context, tenantID, quotationID uuid.UUID, reason string) (int, error)
	GetDue(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]*models.QuotationFollowup, error)
	MarkSent(ctx context.Context, tenantID, id uuid.UUID) (*models.QuotationFollowup, error)
	Skip(ctx context.Context, tenantID, id uuid.UUID, reason string) (*models.QuotationFollowup, error)
	ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QuotationFollowup, error)
	ListForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error)
	Statistics(ctx context.Context, tenantID uuid.UUID) (*models.FollowupStatistics, error)

	// ProcessDue marks every due follow-up of the tenant as sent
	ProcessDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupRunResult, error)
	// AutoExpire expires sent quotations older than the configured window
	AutoExpire(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error)
}

type followupService struct {
	followupRepo  repositories.FollowupRepository
	quotationRepo repositories.QuotationRepository
	audit         AuditLogsService
	metrics       *metrics.Metrics
	cfg           config.QuotationConfig
	now           func() time.Time
}

func NewFollowupService(followupRepo repositories.FollowupRepository, quotationRepo repositories.QuotationRepository, audit AuditLogsService, m *metrics.Metrics, cfg config.QuotationConfig) FollowupService {
	if m == nil {
		m = metrics.NewNop()
	}
	if len(cfg.FollowupDays) == 0 {
		cfg.FollowupDays = defaultFollowupDays
	}
	if cfg.ExpireAfterDays <= 0 {
		cfg.ExpireAfterDays = 30
	}
	return &followupService{
		followupRepo:  followupRepo,
		quotationRepo: quotationRepo,
		audit:         audit,
		metrics:       m,
		cfg:           cfg,
		now:           time.Now,
	}
}

// recipientFor: the first reminders go to the customer, the last one also to staff
func recipientFor(number, total int) string {
	if number >= total && total > 1 {
		return models.RecipientBoth
	}
	return models.RecipientCustomer
}

func (s *followupService) ScheduleForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID, sentDate time.Time) ([]*models.QuotationFollowup, error) {
	base := truncateDay(sentDate)
	followups := make([]*models.QuotationFollowup, 0, len(s.cfg.FollowupDays))
	for i, days := range s.cfg.FollowupDays {
		followups = append(followups, &models.QuotationFollowup{
			ID:             uuid.New(),
			TenantID:       tenantID,
			QuotationID:    quotationID,
			FollowupNumber: i + 1,
			DueDate:        base.AddDate(0, 0, days),
			Status:         models.FollowupStatusPending,
			RecipientType:  recipientFor(i+1, len(s.cfg.FollowupDays)),
		})
	}

	if err := s.followupRepo.Replace(ctx, tenantID, quotationID, followups); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("follow-ups scheduled",
		zap.String("quotation_id", quotationID.String()),
		zap.Int("count", len(followups)),
	)
	return followups, nil
}

func (s *followupService) CancelPending(ctx context.Context, tenantID, quotationID uuid.UUID, reason string) (int, error) {
	return s.followupRepo.SkipPending(ctx, tenantID, quotationID, reason)
}

func (s *followupService) GetDue(ctx context.Context, tenantID uuid.UUID, today time.Time) ([]*models.QuotationFollowup, error) {
	return s.followupRepo.GetDue(ctx, tenantID, truncateDay(today))
}

func (s *followupService) MarkSent(ctx context.Context, tenantID, id uuid.UUID) (*models.QuotationFollowup, error) {
	ok, err := s.followupRepo.MarkSent(ctx, tenantID, id, s.now())
	if err != nil {
		return nil, err
	}
	return s.afterChange(ctx, tenantID, id, ok)
}

func (s *followupService) Skip(ctx context.Context, tenantID, id uuid.UUID, reason string) (*models.QuotationFollowup, error) {
	if reason == "" {
		reason = "Skipped manually"
	}
	ok, err := s.followupRepo.Skip(ctx, tenantID, id, reason)
	if err != nil {
		return nil, err
	}
	return s.afterChange(ctx, tenantID, id, ok)
}

// afterChange reloads the follow-up; an unapplied change means it was missing or no longer pending
func (s *followupService) afterChange(ctx context.Context, tenantID, id uuid.UUID, applied bool) (*models.QuotationFollowup, error) {
	f, err := s.followupRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Follow-up")
	}
	if !applied {
		return nil, common.NewStateError("FOLLOWUP_NOT_PENDING", fmt.Sprintf("Follow-up is already %s", f.Status))
	}
	return f, nil
}

func (s *followupService) ListPending(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.QuotationFollowup, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, common.NewFieldError("offset", err.Error())
	}
	return s.followupRepo.ListPending(ctx, tenantID, limit, offset)
}

func (s *followupService) ListForQuotation(ctx context.Context, tenantID, quotationID uuid.UUID) ([]*models.QuotationFollowup, error) {
	return s.followupRepo.ListForQuotation(ctx, tenantID, quotationID)
}

func (s *followupService) Statistics(ctx context.Context, tenantID uuid.UUID) (*models.FollowupStatistics, error) {
	return s.followupRepo.Statistics(ctx, tenantID, truncateDay(s.now()))
}

func (s *followupService) ProcessDue(ctx context.Context, tenantID uuid.UUID, today time.Time) (*models.FollowupRunResult, error) {
	log := logger.FromContext(ctx).With(zap.String("tenant_id", tenantID.String()))

	due, err := s.followupRepo.GetDue(ctx, tenantID, truncateDay(today))
	if err != nil {
		return nil, err
	}

	result := &models.FollowupRunResult{}
	for _, f := range due {
		ok, err := s.followupRepo.MarkSent(ctx, tenantID, f.ID, s.now())
		if err != nil {
			result.Failed++
			s.metrics.FollowupsProcessed.WithLabelValues("error").Inc()
			log.Error("failed to process follow-up", zap.String("followup_id", f.ID.String()), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		result.Processed++
		s.metrics.FollowupsProcessed.WithLabelValues("sent").Inc()
		log.Info("quotation follow-up reminder",
			zap.String("quotation_number", f.QuotationNumber),
			zap.String("customer", f.CustomerName),
			zap.Int("followup_number", f.FollowupNumber),
			zap.String("recipient_type", f.RecipientType),
		)
	}
	return result, nil
}

func (s *followupService) AutoExpire(ctx context.Context, tenantID uuid.UUID, today time.Time) (int, error) {
	log := logger.FromContext(ctx).With(zap.String("tenant_id", tenantID.String()))
	cutoff := truncateDay(today).AddDate(0, 0, -s.cfg.ExpireAfterDays)

	stale, err := s.quotationRepo.ListSentBefore(ctx, tenantID, cutoff)
	if err != nil {
		return 0, err
	}

	expired := 0
	reason := fmt.Sprintf("No response within %d days", s.cfg.ExpireAfterDays)
	for _, q := range stale {
		ok, err := s.quotationRepo.Transition(ctx, tenantID, q.ID, models.StatusChange{
			From:   models.QuotationStatusSent,
			To:     models.QuotationStatusExpired,
			At:     s.now(),
			Reason: &reason,
		})
		if err != nil {
			log.Error("failed to expire quotation", zap.String("quotation_id", q.ID.String()), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		expired++
		s.metrics.QuotationTransitions.WithLabelValues(string(models.QuotationStatusExpired)).Inc()

		if _, err := s.followupRepo.SkipPending(ctx, tenantID, q.ID, "Quotation expired"); err != nil {
			log.Warn("failed to skip follow-ups of expired quotation", zap.String("quotation_id", q.ID.String()), zap.Error(err))
		}
		recordAudit(ctx, s.audit.LogStatusChange(ctx, tenantID, "Quotation", q.ID.String(),
			string(models.QuotationStatusSent), string(models.QuotationStatusExpired), reason), "Quotation", q.ID.String())
	}
	return expired, nil
}
