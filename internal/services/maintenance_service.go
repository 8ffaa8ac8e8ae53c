package services

import (
	"context"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MaintenanceService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *MaintenanceInput) (*models.MaintenanceRequest, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MaintenanceRequest, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *MaintenanceInput) (*models.MaintenanceRequest, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error)
}

type MaintenanceInput struct {
	UnitID          uuid.UUID        `json:"unit_id" validate:"required"`
	Description     string           `json:"description" validate:"required"`
	Cost            decimal.Decimal  `json:"cost" validate:"gte=0"`
	Currency        string           `json:"currency" validate:"omitempty,len=3"`
	Location        *string          `json:"location" validate:"omitempty,max=255"`
	ServicedBy      *string          `json:"serviced_by" validate:"omitempty,max=255"`
	InvoiceNumber   *string          `json:"invoice_number" validate:"omitempty,max=100"`
	IsBillable      bool             `json:"is_billable"`
	BilledToTenant  bool             `json:"billed_to_tenant"`
	TenantShare     *decimal.Decimal `json:"tenant_share"`
	Type            string           `json:"type" validate:"omitempty,oneof=repair replacement service"`
	MaintenanceDate string           `json:"maintenance_date" validate:"required,datetime=2006-01-02"`
}

type maintenanceService struct {
	repo     repositories.MaintenanceRepository
	unitRepo repositories.UnitRepository
	audit    AuditLogsService
}

func NewMaintenanceService(repo repositories.MaintenanceRepository, unitRepo repositories.UnitRepository, audit AuditLogsService) MaintenanceService {
	return &maintenanceService{repo: repo, unitRepo: unitRepo, audit: audit}
}

func validMaintenanceType(t string) bool {
	switch t {
	case models.MaintenanceTypeRepair, models.MaintenanceTypeReplacement, models.MaintenanceTypeService:
		return true
	}
	return false
}

func (s *maintenanceService) apply(ctx context.Context, tenantID uuid.UUID, m *models.MaintenanceRequest, in *MaintenanceInput) error {
	fields := common.FieldErrors{}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		fields.Add("description", "The description field is required.")
	}
	if in.Cost.IsNegative() {
		fields.Add("cost", "The cost must be at least 0.")
	}
	kind := in.Type
	if kind == "" {
		kind = models.MaintenanceTypeRepair
	}
	if !validMaintenanceType(kind) {
		fields.Add("type", "The type must be one of: repair, replacement, service.")
	}
	date, err := common.ParseDate(in.MaintenanceDate, "maintenance_date")
	if err != nil {
		fields.Add("maintenance_date", err.Error())
	}

	switch {
	case in.BilledToTenant && in.TenantShare == nil:
		fields.Add("tenant_share", "The tenant_share field is required when billed_to_tenant is true.")
	case in.TenantShare != nil && in.TenantShare.IsNegative():
		fields.Add("tenant_share", "The tenant_share must be at least 0.")
	case in.TenantShare != nil && in.TenantShare.GreaterThan(in.Cost):
		fields.Add("tenant_share", "The tenant_share may not be greater than cost.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	currency, err := normalizeCurrency(in.Currency, defaultCurrency)
	if err != nil {
		return err
	}

	unit, err := s.unitRepo.GetByID(ctx, tenantID, in.UnitID)
	if err != nil {
		if common.IsNotFound(err) {
			return common.NewFieldError("unit_id", "The selected unit_id is invalid.")
		}
		return err
	}

	m.UnitID = unit.ID
	m.UnitNumber = unit.UnitNumber
	m.Description = description
	m.Cost = in.Cost
	m.Currency = currency
	m.Location = in.Location
	m.ServicedBy = in.ServicedBy
	m.InvoiceNumber = in.InvoiceNumber
	m.IsBillable = in.IsBillable
	m.BilledToTenant = in.BilledToTenant
	m.TenantShare = in.TenantShare
	m.Type = kind
	m.MaintenanceDate = date
	return nil
}

func (s *maintenanceService) Create(ctx context.Context, tenantID uuid.UUID, in *MaintenanceInput) (*models.MaintenanceRequest, error) {
	m := &models.MaintenanceRequest{ID: uuid.New(), TenantID: tenantID}
	if err := s.apply(ctx, tenantID, m, in); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "MaintenanceRequest", m.ID.String(), ToJSONB(m)), "MaintenanceRequest", m.ID.String())
	return m, nil
}

func (s *maintenanceService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.MaintenanceRequest, error) {
	m, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Maintenance request")
	}
	return m, nil
}

func (s *maintenanceService) Update(ctx context.Context, tenantID, id uuid.UUID, in *MaintenanceInput) (*models.MaintenanceRequest, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	updated := *existing
	if err := s.apply(ctx, tenantID, &updated, in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &updated); err != nil {
		return nil, notFound(err, "Maintenance request")
	}

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "MaintenanceRequest", id.String(), ToJSONB(existing), ToJSONB(&updated)), "MaintenanceRequest", id.String())
	return &updated, nil
}

func (s *maintenanceService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err, "Maintenance request")
	}

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "MaintenanceRequest", id.String(), ToJSONB(existing)), "MaintenanceRequest", id.String())
	return nil
}

// List applies the date range only when both ends are given
func (s *maintenanceService) List(ctx context.Context, tenantID uuid.UUID, filter *models.MaintenanceFilter) ([]*models.MaintenanceRequest, int, error) {
	if filter == nil {
		filter = &models.MaintenanceFilter{}
	}
	if filter.Type != "" && !validMaintenanceType(filter.Type) {
		return nil, 0, common.NewFieldError("type", "The selected type is invalid.")
	}
	if filter.DateFrom == nil || filter.DateTo == nil {
		filter.DateFrom, filter.DateTo = nil, nil
	} else if filter.DateTo.Before(*filter.DateFrom) {
		return nil, 0, common.NewFieldError("maintenance_date_to", "The maintenance_date_to must be on or after maintenance_date_from.")
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	return s.repo.List(ctx, tenantID, filter)
}
