package services

import (
	"context"
	"errors"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
)

type RentalTenantService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *RentalTenantInput) (*models.RentalTenant, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentalTenant, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *RentalTenantInput) (*models.RentalTenant, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.RentalTenantFilter) ([]*models.RentalTenant, int, error)
}

type RentalTenantInput struct {
	FullName              string  `json:"full_name" validate:"required,max=255"`
	Email                 *string `json:"email" validate:"omitempty,email"`
	Phone                 string  `json:"phone" validate:"required,max=50"`
	AlternatePhone        *string `json:"alternate_phone" validate:"omitempty,max=50"`
	EmergencyContactName  *string `json:"emergency_contact_name" validate:"omitempty,max=255"`
	EmergencyContactPhone *string `json:"emergency_contact_phone" validate:"omitempty,max=50"`
	IDProofType           *string `json:"id_proof_type" validate:"omitempty,oneof=national_id passport"`
	IDProofNumber         *string `json:"id_proof_number" validate:"omitempty,max=100"`
	Status                string  `json:"status" validate:"omitempty,oneof=active inactive former"`
}

type rentalTenantService struct {
	repo  repositories.RentalTenantRepository
	audit AuditLogsService
}

func NewRentalTenantService(repo repositories.RentalTenantRepository, audit AuditLogsService) RentalTenantService {
	return &rentalTenantService{repo: repo, audit: audit}
}

func validRentalTenantStatus(status string) bool {
	switch status {
	case models.RentalTenantStatusActive, models.RentalTenantStatusInactive, models.RentalTenantStatusFormer:
		return true
	}
	return false
}

func applyRentalTenantInput(rt *models.RentalTenant, in *RentalTenantInput) error {
	fields := common.FieldErrors{}
	name := strings.TrimSpace(in.FullName)
	phone := strings.TrimSpace(in.Phone)
	if name == "" {
		fields.Add("full_name", "The full_name field is required.")
	}
	if phone == "" {
		fields.Add("phone", "The phone field is required.")
	}
	status := in.Status
	if status == "" {
		status = rt.Status
	}
	if status == "" {
		status = models.RentalTenantStatusActive
	}
	if !validRentalTenantStatus(status) {
		fields.Add("status", "The status must be one of: active, inactive, former.")
	}
	if in.IDProofType != nil && *in.IDProofType != models.IDProofNationalID && *in.IDProofType != models.IDProofPassport {
		fields.Add("id_proof_type", "The id_proof_type must be one of: national_id, passport.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	rt.FullName = name
	rt.Phone = phone
	rt.Email = in.Email
	rt.AlternatePhone = in.AlternatePhone
	rt.EmergencyContactName = in.EmergencyContactName
	rt.EmergencyContactPhone = in.EmergencyContactPhone
	rt.IDProofType = in.IDProofType
	rt.IDProofNumber = in.IDProofNumber
	rt.Status = status
	return nil
}

func (s *rentalTenantService) Create(ctx context.Context, tenantID uuid.UUID, in *RentalTenantInput) (*models.RentalTenant, error) {
	rt := &models.RentalTenant{ID: uuid.New(), TenantID: tenantID}
	if err := applyRentalTenantInput(rt, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, rt); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "RentalTenant", rt.ID.String(), ToJSONB(rt)), "RentalTenant", rt.ID.String())
	return rt, nil
}

func (s *rentalTenantService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.RentalTenant, error) {
	rt, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Rental tenant")
	}
	return rt, nil
}

func (s *rentalTenantService) Update(ctx context.Context, tenantID, id uuid.UUID, in *RentalTenantInput) (*models.RentalTenant, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	updated := *existing
	if err := applyRentalTenantInput(&updated, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, notFound(err, "Rental tenant")
	}

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "RentalTenant", id.String(), ToJSONB(existing), ToJSONB(&updated)), "RentalTenant", id.String())
	return &updated, nil
}

func (s *rentalTenantService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		if errors.Is(err, repositories.ErrRentalTenantHasLeases) {
			return common.NewConflictError("RENTAL_TENANT_HAS_LEASES", "Rental tenant has leases; end and remove them first")
		}
		return notFound(err, "Rental tenant")
	}

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "RentalTenant", id.String(), ToJSONB(existing)), "RentalTenant", id.String())
	return nil
}

func (s *rentalTenantService) List(ctx context.Context, tenantID uuid.UUID, filter *models.RentalTenantFilter) ([]*models.RentalTenant, int, error) {
	if filter == nil {
		filter = &models.RentalTenantFilter{}
	}
	if filter.Status != "" && !validRentalTenantStatus(filter.Status) {
		return nil, 0, common.NewFieldError("status", "The selected status is invalid.")
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.repo.List(ctx, tenantID, filter)
}
