package services

import (
	"context"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
)

type PropertyService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *PropertyInput) (*models.Property, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *PropertyInput) (*models.Property, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Property, int, error)
}

type PropertyInput struct {
	Name          string `json:"name" validate:"required,max=255"`
	Address       string `json:"address" validate:"max=1000"`
	Type          string `json:"type" validate:"omitempty,oneof=residential commercial"`
	NumberOfUnits int    `json:"number_of_units" validate:"gte=0"`
}

type propertyService struct {
	propertyRepo repositories.PropertyRepository
	unitRepo     repositories.UnitRepository
	audit        AuditLogsService
}

func NewPropertyService(propertyRepo repositories.PropertyRepository, unitRepo repositories.UnitRepository, audit AuditLogsService) PropertyService {
	return &propertyService{propertyRepo: propertyRepo, unitRepo: unitRepo, audit: audit}
}

func applyPropertyInput(p *models.Property, in *PropertyInput) error {
	fields := common.FieldErrors{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields.Add("name", "The name field is required.")
	}
	kind := in.Type
	if kind == "" {
		kind = models.PropertyTypeResidential
	}
	if kind != models.PropertyTypeResidential && kind != models.PropertyTypeCommercial {
		fields.Add("type", "The type must be one of: residential, commercial.")
	}
	if in.NumberOfUnits < 0 {
		fields.Add("number_of_units", "The number_of_units must be at least 0.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	p.Name = name
	p.Address = strings.TrimSpace(in.Address)
	p.Type = kind
	p.NumberOfUnits = in.NumberOfUnits
	return nil
}

func (s *propertyService) Create(ctx context.Context, tenantID uuid.UUID, in *PropertyInput) (*models.Property, error) {
	p := &models.Property{ID: uuid.New(), TenantID: tenantID}
	if err := applyPropertyInput(p, in); err != nil {
		return nil, err
	}
	if err := s.propertyRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Property", p.ID.String(), ToJSONB(p)), "Property", p.ID.String())
	return p, nil
}

func (s *propertyService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Property")
	}
	return p, nil
}

func (s *propertyService) Update(ctx context.Context, tenantID, id uuid.UUID, in *PropertyInput) (*models.Property, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	before := ToJSONB(existing)

	updated := *existing
	if err := applyPropertyInput(&updated, in); err != nil {
		return nil, err
	}
	if updated.NumberOfUnits > 0 {
		count, err := s.unitRepo.CountForProperty(ctx, tenantID, id)
		if err != nil {
			return nil, err
		}
		if count > updated.NumberOfUnits {
			return nil, common.NewFieldError("number_of_units", "The number_of_units may not be less than the existing unit count.")
		}
	}

	if err := s.propertyRepo.Update(ctx, &updated); err != nil {
		return nil, notFound(err, "Property")
	}

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "Property", id.String(), before, ToJSONB(&updated)), "Property", id.String())
	return &updated, nil
}

// Delete removes the property; units, leases and their history cascade
func (s *propertyService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.propertyRepo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err, "Property")
	}

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "Property", id.String(), ToJSONB(existing)), "Property", id.String())
	return nil
}

func (s *propertyService) List(ctx context.Context, tenantID uuid.UUID, search string, limit, offset int) ([]*models.Property, int, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	return s.propertyRepo.List(ctx, tenantID, common.SanitizeSearchQuery(search), limit, offset)
}
