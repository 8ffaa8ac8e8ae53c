package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultNoticePeriodDays = 30
	maxLeaseDocumentSize    = 10 << 20
)

var leaseDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type LeaseService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *LeaseInput) (*models.TenantUnit, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TenantUnit, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *LeaseInput) (*models.TenantUnit, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.TenantUnitFilter) ([]*models.TenantUnit, int, error)
	EndLease(ctx context.Context, tenantID, id uuid.UUID, req *EndLeaseRequest) (*models.TenantUnit, error)
	UploadDocument(ctx context.Context, tenantID, id uuid.UUID, filename string, r io.Reader, size int64, contentType string) (*DocumentLink, error)
}

type LeaseInput struct {
	RentalTenantID      uuid.UUID       `json:"tenant_id" validate:"required"`
	UnitID              uuid.UUID       `json:"unit_id" validate:"required"`
	LeaseStart          string          `json:"lease_start" validate:"required,datetime=2006-01-02"`
	LeaseEnd            string          `json:"lease_end" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRent         decimal.Decimal `json:"monthly_rent" validate:"gte=0"`
	SecurityDepositPaid decimal.Decimal `json:"security_deposit_paid" validate:"gte=0"`
	AdvanceRentMonths   int             `json:"advance_rent_months" validate:"gte=0"`
	AdvanceRentAmount   decimal.Decimal `json:"advance_rent_amount" validate:"gte=0"`
	NoticePeriodDays    *int            `json:"notice_period_days" validate:"omitempty,gte=0"`
	LockInPeriodMonths  int             `json:"lock_in_period_months" validate:"gte=0"`
	Status              string          `json:"status" validate:"omitempty,oneof=active ended cancelled"`
	Notes               *string         `json:"notes"`
}

type EndLeaseRequest struct {
	MoveOutDate string  `json:"move_out_date" validate:"required,datetime=2006-01-02"`
	Notes       *string `json:"notes"`
}

type leaseService struct {
	leaseRepo        repositories.LeaseRepository
	unitRepo         repositories.UnitRepository
	rentalTenantRepo repositories.RentalTenantRepository
	storage          MinioService
	audit            AuditLogsService
	now              func() time.Time
}

func NewLeaseService(
	leaseRepo repositories.LeaseRepository,
	unitRepo repositories.UnitRepository,
	rentalTenantRepo repositories.RentalTenantRepository,
	storage MinioService,
	audit AuditLogsService,
) LeaseService {
	return &leaseService{
		leaseRepo:        leaseRepo,
		unitRepo:         unitRepo,
		rentalTenantRepo: rentalTenantRepo,
		storage:          storage,
		audit:            audit,
		now:              time.Now,
	}
}

// resolve checks the unit and rental tenant both belong to the account
func (s *leaseService) resolve(ctx context.Context, tenantID uuid.UUID, in *LeaseInput) (*models.Unit, *models.RentalTenant, error) {
	fields := common.FieldErrors{}
	unit, err := s.unitRepo.GetByID(ctx, tenantID, in.UnitID)
	if err != nil {
		if !common.IsNotFound(err) {
			return nil, nil, err
		}
		fields.Add("unit_id", "The selected unit_id is invalid.")
	}
	rt, err := s.rentalTenantRepo.GetByID(ctx, tenantID, in.RentalTenantID)
	if err != nil {
		if !common.IsNotFound(err) {
			return nil, nil, err
		}
		fields.Add("tenant_id", "The selected tenant_id is invalid.")
	}
	if err := fields.Err(); err != nil {
		return nil, nil, err
	}
	return unit, rt, nil
}

func applyLeaseInput(l *models.TenantUnit, in *LeaseInput, unit *models.Unit) error {
	fields := common.FieldErrors{}
	start, err := common.ParseDate(in.LeaseStart, "lease_start")
	if err != nil {
		fields.Add("lease_start", err.Error())
	}
	var end *time.Time
	if in.LeaseEnd != "" {
		e, err := common.ParseDate(in.LeaseEnd, "lease_end")
		switch {
		case err != nil:
			fields.Add("lease_end", err.Error())
		case e.Before(start):
			fields.Add("lease_end", "The lease_end must be on or after lease_start.")
		default:
			end = &e
		}
	}
	if in.MonthlyRent.IsNegative() {
		fields.Add("monthly_rent", "The monthly_rent must be at least 0.")
	}
	if in.SecurityDepositPaid.IsNegative() {
		fields.Add("security_deposit_paid", "The security_deposit_paid must be at least 0.")
	}
	if in.AdvanceRentAmount.IsNegative() {
		fields.Add("advance_rent_amount", "The advance_rent_amount must be at least 0.")
	}
	if in.AdvanceRentMonths < 0 {
		fields.Add("advance_rent_months", "The advance_rent_months must be at least 0.")
	}
	if in.LockInPeriodMonths < 0 {
		fields.Add("lock_in_period_months", "The lock_in_period_months must be at least 0.")
	}
	status := in.Status
	if status == "" {
		status = l.Status
	}
	if status == "" {
		status = models.LeaseStatusActive
	}
	switch status {
	case models.LeaseStatusActive, models.LeaseStatusEnded, models.LeaseStatusCancelled:
	default:
		fields.Add("status", "The status must be one of: active, ended, cancelled.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	rent := in.MonthlyRent
	if rent.IsZero() {
		rent = unit.RentAmount
	}
	notice := defaultNoticePeriodDays
	if in.NoticePeriodDays != nil {
		notice = *in.NoticePeriodDays
	}

	l.RentalTenantID = in.RentalTenantID
	l.UnitID = unit.ID
	l.LeaseStart = start
	l.LeaseEnd = end
	l.MonthlyRent = rent
	l.SecurityDepositPaid = in.SecurityDepositPaid
	l.AdvanceRentMonths = in.AdvanceRentMonths
	l.AdvanceRentAmount = in.AdvanceRentAmount
	l.NoticePeriodDays = notice
	l.LockInPeriodMonths = in.LockInPeriodMonths
	l.Status = status
	l.Notes = in.Notes
	return nil
}

func activeLeaseConflict() error {
	return common.NewConflictError("UNIT_ALREADY_LEASED", "Unit already has an active lease")
}

func (s *leaseService) Create(ctx context.Context, tenantID uuid.UUID, in *LeaseInput) (*models.TenantUnit, error) {
	unit, rt, err := s.resolve(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}

	lease := &models.TenantUnit{ID: uuid.New(), TenantID: tenantID}
	if err := applyLeaseInput(lease, in, unit); err != nil {
		return nil, err
	}

	if lease.Status == models.LeaseStatusActive {
		active, err := s.leaseRepo.HasActiveLease(ctx, tenantID, unit.ID, nil)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, activeLeaseConflict()
		}
	}

	if err := s.leaseRepo.Create(ctx, lease); err != nil {
		if errors.Is(err, repositories.ErrActiveLeaseExists) {
			return nil, activeLeaseConflict()
		}
		return nil, err
	}
	lease.TenantName = rt.FullName
	lease.UnitNumber = unit.UnitNumber
	lease.PropertyID = unit.PropertyID
	lease.PropertyName = unit.PropertyName

	logger.FromContext(ctx).Info("lease created",
		zap.String("lease_id", lease.ID.String()),
		zap.String("unit_id", unit.ID.String()),
	)
	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "TenantUnit", lease.ID.String(), ToJSONB(lease)), "TenantUnit", lease.ID.String())
	return lease, nil
}

func (s *leaseService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.TenantUnit, error) {
	lease, err := s.leaseRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Lease")
	}
	return lease, nil
}

func (s *leaseService) Update(ctx context.Context, tenantID, id uuid.UUID, in *LeaseInput) (*models.TenantUnit, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	unit, rt, err := s.resolve(ctx, tenantID, in)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if err := applyLeaseInput(&updated, in, unit); err != nil {
		return nil, err
	}
	if updated.Status == models.LeaseStatusActive {
		active, err := s.leaseRepo.HasActiveLease(ctx, tenantID, unit.ID, &id)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, activeLeaseConflict()
		}
	}

	if err := s.leaseRepo.Update(ctx, &updated, existing.UnitID); err != nil {
		if errors.Is(err, repositories.ErrActiveLeaseExists) {
			return nil, activeLeaseConflict()
		}
		return nil, notFound(err, "Lease")
	}
	updated.TenantName = rt.FullName
	updated.UnitNumber = unit.UnitNumber
	updated.PropertyID = unit.PropertyID
	updated.PropertyName = unit.PropertyName

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "TenantUnit", id.String(), ToJSONB(existing), ToJSONB(&updated)), "TenantUnit", id.String())
	return &updated, nil
}

func (s *leaseService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.leaseRepo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repositories.ErrLeaseHasInvoices) {
			return common.NewConflictError("LEASE_HAS_INVOICES", "Lease has rent invoices; end it instead")
		}
		return notFound(err, "Lease")
	}

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "TenantUnit", id.String(), ToJSONB(existing)), "TenantUnit", id.String())
	return nil
}

func (s *leaseService) List(ctx context.Context, tenantID uuid.UUID, filter *models.TenantUnitFilter) ([]*models.TenantUnit, int, error) {
	if filter == nil {
		filter = &models.TenantUnitFilter{}
	}
	switch filter.Status {
	case "", models.LeaseStatusActive, models.LeaseStatusEnded, models.LeaseStatusCancelled:
	default:
		return nil, 0, common.NewFieldError("status", "The selected status is invalid.")
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	return s.leaseRepo.List(ctx, tenantID, filter)
}

// EndLease closes an active lease on the move-out date
func (s *leaseService) EndLease(ctx context.Context, tenantID, id uuid.UUID, req *EndLeaseRequest) (*models.TenantUnit, error) {
	lease, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if lease.Status != models.LeaseStatusActive {
		return nil, common.NewStateError("LEASE_NOT_ACTIVE", "Only active leases can be ended")
	}

	moveOut, err := common.ParseDate(req.MoveOutDate, "move_out_date")
	if err != nil {
		return nil, common.NewFieldError("move_out_date", err.Error())
	}
	if moveOut.Before(lease.LeaseStart) {
		return nil, common.NewFieldError("move_out_date", "The move_out_date must be on or after lease_start.")
	}

	ended, err := s.leaseRepo.EndLease(ctx, tenantID, id, moveOut, req.Notes)
	if err != nil {
		return nil, err
	}
	if !ended {
		return nil, common.NewStateError("LEASE_NOT_ACTIVE", "Only active leases can be ended")
	}

	logger.FromContext(ctx).Info("lease ended",
		zap.String("lease_id", id.String()),
		zap.Time("move_out_date", moveOut),
	)
	recordAudit(ctx, s.audit.LogStatusChange(ctx, tenantID, "TenantUnit", id.String(),
		models.LeaseStatusActive, models.LeaseStatusEnded, fmt.Sprintf("Moved out on %s", moveOut.Format("2006-01-02"))), "TenantUnit", id.String())

	return s.GetByID(ctx, tenantID, id)
}

// UploadDocument stores a signed lease and records its object key on the lease
func (s *leaseService) UploadDocument(ctx context.Context, tenantID, id uuid.UUID, filename string, r io.Reader, size int64, contentType string) (*DocumentLink, error) {
	if _, err := s.GetByID(ctx, tenantID, id); err != nil {
		return nil, err
	}
	if size <= 0 || size > maxLeaseDocumentSize {
		return nil, common.NewFieldError("document", "The document must be between 1 byte and 10 MB.")
	}
	if !leaseDocumentTypes[contentType] {
		return nil, common.NewFieldError("document", "The document must be a PDF, JPEG or PNG file.")
	}

	key := LeaseDocumentKey(tenantID, id, filename)
	if err := s.storage.UploadObject(ctx, key, r, size, contentType); err != nil {
		return nil, fmt.Errorf("upload lease document: %w", err)
	}
	if err := s.leaseRepo.SetDocumentPath(ctx, tenantID, id, key); err != nil {
		return nil, notFound(err, "Lease")
	}
	url, err := s.storage.GetPresignedURL(ctx, key, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign lease document: %w", err)
	}

	recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionUpdated,
		ModelType:   "TenantUnit",
		ModelID:     id.String(),
		NewValues:   models.JSONB{"lease_document_path": key},
		Description: "Lease document uploaded",
	}), "TenantUnit", id.String())

	return &DocumentLink{ObjectKey: key, URL: url, ExpiresAt: s.now().Add(presignExpiry)}, nil
}
