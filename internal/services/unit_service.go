package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"bizsuite/internal/common"
	"bizsuite/internal/documents"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"
	"bizsuite/internal/unitgen"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxUnitImportRows = 1000

type UnitService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *UnitInput) (*models.Unit, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Unit, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *UnitInput) (*models.Unit, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.UnitFilter) ([]*models.Unit, int, error)

	GenerateUnits(ctx context.Context, tenantID, propertyID uuid.UUID, req *models.GenerateUnitsRequest) (*models.GenerateUnitsResult, error)
	BulkImport(ctx context.Context, tenantID uuid.UUID, mode string, rows []models.UnitImportRow) (*models.BulkImportResult, error)
	ImportWorkbook(ctx context.Context, tenantID uuid.UUID, mode string, r io.Reader) (*models.BulkImportResult, error)
	ImportTemplate() ([]byte, error)
	OccupancyHistory(ctx context.Context, tenantID, unitID uuid.UUID) ([]*models.OccupancyHistory, error)
}

type UnitInput struct {
	PropertyID      uuid.UUID       `json:"property_id" validate:"required"`
	UnitNumber      string          `json:"unit_number" validate:"required,max=50"`
	UnitType        *string         `json:"unit_type" validate:"omitempty,max=50"`
	RentAmount      decimal.Decimal `json:"rent_amount" validate:"gt=0"`
	SecurityDeposit decimal.Decimal `json:"security_deposit" validate:"gte=0"`
	Currency        string          `json:"currency" validate:"omitempty,len=3"`
}

type UnitImportRequest struct {
	Mode  string                 `json:"mode" validate:"omitempty,oneof=create upsert"`
	Units []models.UnitImportRow `json:"units" validate:"required,min=1"`
}

type unitService struct {
	unitRepo     repositories.UnitRepository
	propertyRepo repositories.PropertyRepository
	leaseRepo    repositories.LeaseRepository
	audit        AuditLogsService
}

func NewUnitService(unitRepo repositories.UnitRepository, propertyRepo repositories.PropertyRepository, leaseRepo repositories.LeaseRepository, audit AuditLogsService) UnitService {
	return &unitService{unitRepo: unitRepo, propertyRepo: propertyRepo, leaseRepo: leaseRepo, audit: audit}
}

func (s *unitService) property(ctx context.Context, tenantID, propertyID uuid.UUID) (*models.Property, error) {
	p, err := s.propertyRepo.GetByID(ctx, tenantID, propertyID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewFieldError("property_id", "The selected property_id is invalid.")
		}
		return nil, err
	}
	return p, nil
}

// checkCapacity fails when adding n units would exceed the property's number_of_units
func (s *unitService) checkCapacity(ctx context.Context, p *models.Property, n int) error {
	if p.NumberOfUnits <= 0 || n == 0 {
		return nil
	}
	count, err := s.unitRepo.CountForProperty(ctx, p.TenantID, p.ID)
	if err != nil {
		return err
	}
	if remaining := p.NumberOfUnits - count; n > remaining {
		return common.NewStateError("PROPERTY_CAPACITY_EXCEEDED",
			fmt.Sprintf("Property %s has room for %d more units, %d requested", p.Name, max(remaining, 0), n))
	}
	return nil
}

func validateUnitInput(in *UnitInput) (string, error) {
	fields := common.FieldErrors{}
	if strings.TrimSpace(in.UnitNumber) == "" {
		fields.Add("unit_number", "The unit_number field is required.")
	}
	if !in.RentAmount.IsPositive() {
		fields.Add("rent_amount", "The rent_amount must be greater than 0.")
	}
	if in.SecurityDeposit.IsNegative() {
		fields.Add("security_deposit", "The security_deposit must be at least 0.")
	}
	if err := fields.Err(); err != nil {
		return "", err
	}
	return normalizeCurrency(in.Currency, defaultCurrency)
}

func duplicateUnit(number string) error {
	return common.NewConflictError("DUPLICATE_UNIT_NUMBER", fmt.Sprintf("Unit %s already exists on this property", number))
}

func (s *unitService) Create(ctx context.Context, tenantID uuid.UUID, in *UnitInput) (*models.Unit, error) {
	currency, err := validateUnitInput(in)
	if err != nil {
		return nil, err
	}
	p, err := s.property(ctx, tenantID, in.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := s.checkCapacity(ctx, p, 1); err != nil {
		return nil, err
	}

	unit := &models.Unit{
		ID:              uuid.New(),
		TenantID:        tenantID,
		PropertyID:      p.ID,
		UnitNumber:      strings.TrimSpace(in.UnitNumber),
		UnitType:        in.UnitType,
		RentAmount:      in.RentAmount,
		SecurityDeposit: in.SecurityDeposit,
		Currency:        currency,
		PropertyName:    p.Name,
	}
	if err := s.unitRepo.Create(ctx, unit); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
			return nil, duplicateUnit(unit.UnitNumber)
		}
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Unit", unit.ID.String(), ToJSONB(unit)), "Unit", unit.ID.String())
	return unit, nil
}

func (s *unitService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Unit, error) {
	unit, err := s.unitRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Unit")
	}
	return unit, nil
}

func (s *unitService) Update(ctx context.Context, tenantID, id uuid.UUID, in *UnitInput) (*models.Unit, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	currency, err := validateUnitInput(in)
	if err != nil {
		return nil, err
	}

	updated := *existing
	if in.PropertyID != existing.PropertyID {
		p, err := s.property(ctx, tenantID, in.PropertyID)
		if err != nil {
			return nil, err
		}
		if err := s.checkCapacity(ctx, p, 1); err != nil {
			return nil, err
		}
		updated.PropertyID = p.ID
		updated.PropertyName = p.Name
	}
	updated.UnitNumber = strings.TrimSpace(in.UnitNumber)
	updated.UnitType = in.UnitType
	updated.RentAmount = in.RentAmount
	updated.SecurityDeposit = in.SecurityDeposit
	updated.Currency = currency

	if err := s.unitRepo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
			return nil, duplicateUnit(updated.UnitNumber)
		}
		return nil, notFound(err, "Unit")
	}

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "Unit", id.String(), ToJSONB(existing), ToJSONB(&updated)), "Unit", id.String())
	return &updated, nil
}

func (s *unitService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	active, err := s.leaseRepo.HasActiveLease(ctx, tenantID, id, nil)
	if err != nil {
		return err
	}
	if active {
		return common.NewConflictError("UNIT_HAS_ACTIVE_LEASE", "Unit has an active lease")
	}
	if err := s.unitRepo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err, "Unit")
	}

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "Unit", id.String(), ToJSONB(existing)), "Unit", id.String())
	return nil
}

func (s *unitService) List(ctx context.Context, tenantID uuid.UUID, filter *models.UnitFilter) ([]*models.Unit, int, error) {
	if filter == nil {
		filter = &models.UnitFilter{}
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.unitRepo.List(ctx, tenantID, filter)
}

// GenerateUnits expands a numbering scheme and creates the units not already on the property
func (s *unitService) GenerateUnits(ctx context.Context, tenantID, propertyID uuid.UUID, req *models.GenerateUnitsRequest) (*models.GenerateUnitsResult, error) {
	p, err := s.propertyRepo.GetByID(ctx, tenantID, propertyID)
	if err != nil {
		return nil, notFound(err, "Property")
	}
	if !req.RentAmount.IsPositive() {
		return nil, common.NewFieldError("rent_amount", "The rent_amount must be greater than 0.")
	}
	if req.SecurityDeposit.IsNegative() {
		return nil, common.NewFieldError("security_deposit", "The security_deposit must be at least 0.")
	}
	currency, err := normalizeCurrency(req.Currency, defaultCurrency)
	if err != nil {
		return nil, err
	}

	generated, err := unitgen.Generate(req.Numbering)
	if err != nil {
		return nil, common.NewFieldError("numbering", err.Error())
	}
	existing, err := s.unitRepo.ExistingNumbers(ctx, tenantID, propertyID)
	if err != nil {
		return nil, err
	}
	fresh, duplicates := unitgen.Split(generated, existing)

	result := &models.GenerateUnitsResult{
		Generated:  generated,
		New:        fresh,
		Duplicates: duplicates,
		Preview:    req.Preview,
	}
	if err := s.checkCapacity(ctx, p, len(fresh)); err != nil {
		return nil, err
	}
	if req.Preview || len(fresh) == 0 {
		return result, nil
	}

	units := make([]*models.Unit, 0, len(fresh))
	for _, number := range fresh {
		units = append(units, &models.Unit{
			ID:              uuid.New(),
			TenantID:        tenantID,
			PropertyID:      propertyID,
			UnitNumber:      number,
			UnitType:        req.UnitType,
			RentAmount:      req.RentAmount,
			SecurityDeposit: req.SecurityDeposit,
			Currency:        currency,
			PropertyName:    p.Name,
		})
	}
	if err := s.unitRepo.CreateMany(ctx, units); err != nil {
		if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
			return nil, common.NewConflictError("DUPLICATE_UNIT_NUMBER", "Some units were created concurrently, retry the generation")
		}
		return nil, err
	}
	result.Created = len(units)
	result.Units = units

	logger.FromContext(ctx).Info("units generated",
		zap.String("property_id", propertyID.String()),
		zap.Int("created", len(units)),
		zap.Int("duplicates", len(duplicates)),
	)
	recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionCreated,
		ModelType:   "Property",
		ModelID:     propertyID.String(),
		NewValues:   models.JSONB{"mode": req.Numbering.Mode, "created": len(units), "duplicates": duplicates},
		Description: fmt.Sprintf("Generated %d units for %s", len(units), p.Name),
	}), "Property", propertyID.String())
	return result, nil
}

// importState caches property lookups across a batch
type importState struct {
	byID     map[uuid.UUID]*models.Property
	byName   map[string]*models.Property
	seenKeys map[string]bool
}

func (s *unitService) resolveProperty(ctx context.Context, tenantID uuid.UUID, st *importState, row models.UnitImportRow) (*models.Property, error) {
	if raw := strings.TrimSpace(row.PropertyID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, rowErrorf("property_id must be a valid UUID")
		}
		if p, ok := st.byID[id]; ok {
			return p, nil
		}
		p, err := s.propertyRepo.GetByID(ctx, tenantID, id)
		if err != nil {
			if common.IsNotFound(err) {
				return nil, rowErrorf("property %s not found", raw)
			}
			return nil, err
		}
		st.byID[p.ID] = p
		return p, nil
	}

	name := strings.TrimSpace(row.PropertyName)
	if name == "" {
		return nil, rowErrorf("property_id or property_name is required")
	}
	key := strings.ToLower(name)
	if p, ok := st.byName[key]; ok {
		return p, nil
	}
	p, err := s.propertyRepo.GetByName(ctx, tenantID, name)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, rowErrorf("property %q not found", name)
		}
		return nil, err
	}
	st.byName[key] = p
	st.byID[p.ID] = p
	return p, nil
}

func parseImportDecimal(raw, field string, required bool) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if required {
			return decimal.Zero, fmt.Errorf("%s is required", field)
		}
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be a number", field)
	}
	return d, nil
}

// BulkImport creates units row by row; in upsert mode an existing
// (property, unit_number) pair is updated instead of rejected
func (s *unitService) BulkImport(ctx context.Context, tenantID uuid.UUID, mode string, rows []models.UnitImportRow) (*models.BulkImportResult, error) {
	if mode == "" {
		mode = models.ImportModeCreate
	}
	if mode != models.ImportModeCreate && mode != models.ImportModeUpsert {
		return nil, common.NewFieldError("mode", "The mode must be one of: create, upsert.")
	}
	if len(rows) == 0 {
		return nil, common.NewFieldError("units", "The units must have at least 1 items.")
	}
	if len(rows) > maxUnitImportRows {
		return nil, common.NewFieldError("units", fmt.Sprintf("The units may not have more than %d items.", maxUnitImportRows))
	}

	result := &models.BulkImportResult{Errors: []models.BulkRowError{}}
	st := &importState{
		byID:     map[uuid.UUID]*models.Property{},
		byName:   map[string]*models.Property{},
		seenKeys: map[string]bool{},
	}

	for i, row := range rows {
		rowNum := i + 1
		number := strings.TrimSpace(row.UnitNumber)
		key := number

		p, err := s.resolveProperty(ctx, tenantID, st, row)
		if err != nil {
			if !isRowError(err) {
				return nil, err
			}
			result.Fail(rowNum, key, err.Error())
			continue
		}
		key = p.Name + "/" + number

		var errs []string
		if number == "" {
			errs = append(errs, "unit_number is required")
		}
		rent, err := parseImportDecimal(row.RentAmount, "rent_amount", true)
		if err != nil {
			errs = append(errs, err.Error())
		} else if !rent.IsPositive() {
			errs = append(errs, "rent_amount must be greater than 0")
		}
		deposit, err := parseImportDecimal(row.SecurityDeposit, "security_deposit", false)
		if err != nil {
			errs = append(errs, err.Error())
		} else if deposit.IsNegative() {
			errs = append(errs, "security_deposit must be at least 0")
		}
		currency, err := normalizeCurrency(row.Currency, defaultCurrency)
		if err != nil {
			errs = append(errs, "currency must be 3 characters")
		}
		seenKey := p.ID.String() + "/" + number
		if number != "" && st.seenKeys[seenKey] {
			errs = append(errs, "unit_number is repeated in this import")
		}
		if len(errs) > 0 {
			result.Fail(rowNum, key, errs...)
			continue
		}
		st.seenKeys[seenKey] = true

		existing, err := s.unitRepo.GetByNumber(ctx, tenantID, p.ID, number)
		if err != nil && !common.IsNotFound(err) {
			return nil, err
		}

		if existing != nil {
			if mode != models.ImportModeUpsert {
				result.Fail(rowNum, key, "unit_number already exists on this property")
				continue
			}
			existing.UnitType = common.StringPtr(row.UnitType)
			existing.RentAmount = rent
			existing.SecurityDeposit = deposit
			existing.Currency = currency
			if err := s.unitRepo.Update(ctx, existing); err != nil {
				return nil, err
			}
			result.Updated++
			continue
		}

		if p.NumberOfUnits > 0 {
			count, err := s.unitRepo.CountForProperty(ctx, tenantID, p.ID)
			if err != nil {
				return nil, err
			}
			if count >= p.NumberOfUnits {
				result.Fail(rowNum, key, fmt.Sprintf("property %s is at capacity", p.Name))
				continue
			}
		}

		unit := &models.Unit{
			ID:              uuid.New(),
			TenantID:        tenantID,
			PropertyID:      p.ID,
			UnitNumber:      number,
			UnitType:        common.StringPtr(row.UnitType),
			RentAmount:      rent,
			SecurityDeposit: deposit,
			Currency:        currency,
		}
		if err := s.unitRepo.Create(ctx, unit); err != nil {
			if errors.Is(err, repositories.ErrDuplicateUnitNumber) {
				result.Fail(rowNum, key, "unit_number already exists on this property")
				continue
			}
			return nil, err
		}
		result.Created++
	}

	logger.FromContext(ctx).Info("unit import finished",
		zap.String("mode", mode),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
	)
	recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionCreated,
		ModelType:   "Unit",
		NewValues:   models.JSONB{"mode": mode, "created": result.Created, "updated": result.Updated, "failed": result.Failed},
		Description: fmt.Sprintf("Unit import: %d created, %d updated, %d failed", result.Created, result.Updated, result.Failed),
	}), "Unit", "")
	return result, nil
}

// rowError marks a per-row import failure as opposed to a storage error
type rowError struct{ msg string }

func (e *rowError) Error() string { return e.msg }

func rowErrorf(format string, args ...interface{}) error {
	return &rowError{msg: fmt.Sprintf(format, args...)}
}

func isRowError(err error) bool {
	var re *rowError
	return errors.As(err, &re)
}

func (s *unitService) ImportWorkbook(ctx context.Context, tenantID uuid.UUID, mode string, r io.Reader) (*models.BulkImportResult, error) {
	records, err := documents.ReadRows(r)
	if err != nil {
		return nil, common.NewFieldError("file", "The file must be a valid xlsx workbook.")
	}
	rows := make([]models.UnitImportRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, models.UnitImportRow{
			PropertyID:      rec["property_id"],
			PropertyName:    rec["property_name"],
			UnitNumber:      rec["unit_number"],
			UnitType:        rec["unit_type"],
			RentAmount:      rec["rent_amount"],
			SecurityDeposit: rec["security_deposit"],
			Currency:        rec["currency"],
		})
	}
	return s.BulkImport(ctx, tenantID, mode, rows)
}

func (s *unitService) ImportTemplate() ([]byte, error) {
	return documents.UnitImportTemplate()
}

func (s *unitService) OccupancyHistory(ctx context.Context, tenantID, unitID uuid.UUID) ([]*models.OccupancyHistory, error) {
	if _, err := s.GetByID(ctx, tenantID, unitID); err != nil {
		return nil, err
	}
	return s.leaseRepo.OccupancyHistory(ctx, tenantID, unitID)
}
