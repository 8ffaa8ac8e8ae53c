package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"

	"bizsuite/internal/caching"
	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/pricing"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	customerListTTL        = 300 * time.Second
	maxResortCodeAttempts  = 99
	maxCustomerImportBatch = 1000
)

type CustomerService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *CustomerInput) (*models.Customer, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *CustomerInput) (*models.Customer, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error)
	BulkImport(ctx context.Context, tenantID uuid.UUID, rows []CustomerInput) (*models.BulkImportResult, error)
}

type CustomerInput struct {
	ResortCode     string  `json:"resort_code" validate:"omitempty,max=50"`
	ResortName     string  `json:"resort_name" validate:"required,max=255"`
	HoldingCompany *string `json:"holding_company" validate:"omitempty,max=255"`
	ContactPerson  *string `json:"contact_person" validate:"omitempty,max=255"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Phone          *string `json:"phone" validate:"omitempty,max=50"`
	Address        *string `json:"address"`
	Country        *string `json:"country" validate:"omitempty,max=100"`
	TaxNumber      *string `json:"tax_number" validate:"omitempty,max=100"`
	PaymentTerms   *string `json:"payment_terms" validate:"omitempty,max=100"`
	IsActive       *bool   `json:"is_active"`
}

type BulkCustomerImportRequest struct {
	Customers []CustomerInput `json:"customers" validate:"required,min=1"`
}

// customerPage is the cached shape of a customer list query
type customerPage struct {
	Items []*models.Customer `json:"items"`
	Total int                `json:"total"`
}

type customerService struct {
	customerRepo repositories.CustomerRepository
	cacheService caching.CacheService
	audit        AuditLogsService
}

func NewCustomerService(customerRepo repositories.CustomerRepository, cacheService caching.CacheService, audit AuditLogsService) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		cacheService: cacheService,
		audit:        audit,
	}
}

func validateCustomerInput(in *CustomerInput) common.FieldErrors {
	fields := common.FieldErrors{}
	if strings.TrimSpace(in.ResortName) == "" {
		fields.Add("resort_name", "The resort_name field is required.")
	} else if len(in.ResortName) > 255 {
		fields.Add("resort_name", "The resort_name may not be greater than 255 characters.")
	}
	if len(in.ResortCode) > 50 {
		fields.Add("resort_code", "The resort_code may not be greater than 50 characters.")
	}
	if in.Email != nil && *in.Email != "" && !strings.Contains(*in.Email, "@") {
		fields.Add("email", "The email must be a valid email address.")
	}
	return fields
}

// messages flattens field errors in a stable order for import reports
func messages(fields common.FieldErrors) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fields[k])
	}
	return out
}

// uniqueResortCode derives a code from the resort name and walks the fallback
// candidates until one is free
func (s *customerService) uniqueResortCode(ctx context.Context, tenantID uuid.UUID, name string) (string, error) {
	base := pricing.ResortCode(name)
	exists, err := s.customerRepo.ResortCodeExists(ctx, tenantID, base, nil)
	if err != nil {
		return "", err
	}
	if !exists {
		return base, nil
	}
	for n := 2; n <= maxResortCodeAttempts; n++ {
		candidate := pricing.ResortCodeCandidate(base, n)
		exists, err := s.customerRepo.ResortCodeExists(ctx, tenantID, candidate, nil)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", common.NewConflictError("RESORT_CODE_EXHAUSTED", fmt.Sprintf("No free resort code derived from %q", base))
}

func (s *customerService) resolveCode(ctx context.Context, tenantID uuid.UUID, in *CustomerInput, excludeID *uuid.UUID) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(in.ResortCode))
	if code == "" {
		return s.uniqueResortCode(ctx, tenantID, in.ResortName)
	}
	exists, err := s.customerRepo.ResortCodeExists(ctx, tenantID, code, excludeID)
	if err != nil {
		return "", err
	}
	if exists {
		return "", common.NewFieldError("resort_code", "The resort_code has already been taken.")
	}
	return code, nil
}

func applyCustomerInput(c *models.Customer, in *CustomerInput) {
	c.ResortName = strings.TrimSpace(in.ResortName)
	c.HoldingCompany = in.HoldingCompany
	c.ContactPerson = in.ContactPerson
	c.Email = in.Email
	c.Phone = in.Phone
	c.Address = in.Address
	c.Country = in.Country
	c.TaxNumber = in.TaxNumber
	c.PaymentTerms = in.PaymentTerms
	c.IsActive = boolOr(in.IsActive, true)
}

func (s *customerService) invalidateLists(ctx context.Context, tenantID uuid.UUID) {
	if err := s.cacheService.InvalidateCustomerLists(ctx, tenantID); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate customer list cache", zap.Error(err))
	}
}

func (s *customerService) Create(ctx context.Context, tenantID uuid.UUID, in *CustomerInput) (*models.Customer, error) {
	if err := validateCustomerInput(in).Err(); err != nil {
		return nil, err
	}
	code, err := s.resolveCode(ctx, tenantID, in, nil)
	if err != nil {
		return nil, err
	}

	customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, ResortCode: code}
	applyCustomerInput(customer, in)

	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx, tenantID)

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Customer", customer.ID.String(), ToJSONB(customer)), "Customer", customer.ID.String())
	return customer, nil
}

func (s *customerService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Customer")
	}
	return customer, nil
}

func (s *customerService) Update(ctx context.Context, tenantID, id uuid.UUID, in *CustomerInput) (*models.Customer, error) {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := validateCustomerInput(in).Err(); err != nil {
		return nil, err
	}

	updated := *existing
	if code := strings.ToUpper(strings.TrimSpace(in.ResortCode)); code != "" && code != existing.ResortCode {
		if updated.ResortCode, err = s.resolveCode(ctx, tenantID, in, &id); err != nil {
			return nil, err
		}
	}
	applyCustomerInput(&updated, in)
	if in.IsActive == nil {
		updated.IsActive = existing.IsActive
	}

	if err := s.customerRepo.Update(ctx, &updated); err != nil {
		return nil, notFound(err, "Customer")
	}
	s.invalidateLists(ctx, tenantID)

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "Customer", id.String(), ToJSONB(existing), ToJSONB(&updated)), "Customer", id.String())
	return &updated, nil
}

func (s *customerService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	count, err := s.customerRepo.CountQuotations(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.NewConflictError("CUSTOMER_HAS_QUOTATIONS", "Cannot delete customer with existing quotations")
	}

	if err := s.customerRepo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err, "Customer")
	}
	s.invalidateLists(ctx, tenantID)

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "Customer", id.String(), ToJSONB(existing)), "Customer", id.String())
	return nil
}

// customerQueryKey is a stable digest of the list criteria
func customerQueryKey(f *models.CustomerFilter) string {
	active := "any"
	if f.IsActive != nil {
		active = fmt.Sprintf("%t", *f.IsActive)
	}
	sum := sha1.Sum([]byte(fmt.Sprintf("%s|%s|%d|%d", strings.ToLower(f.Search), active, f.Limit, f.Offset)))
	return hex.EncodeToString(sum[:])
}

func (s *customerService) List(ctx context.Context, tenantID uuid.UUID, filter *models.CustomerFilter) ([]*models.Customer, int, error) {
	if filter == nil {
		filter = &models.CustomerFilter{}
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)

	log := logger.FromContext(ctx)
	key := customerQueryKey(filter)

	var cached customerPage
	if found, err := s.cacheService.GetCustomerList(ctx, tenantID, key, &cached); err != nil {
		log.Warn("customer list cache read failed", zap.Error(err))
	} else if found {
		return cached.Items, cached.Total, nil
	}

	customers, total, err := s.customerRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cacheService.SetCustomerList(ctx, tenantID, key, customerPage{Items: customers, Total: total}, customerListTTL); err != nil {
		log.Warn("failed to cache customer list", zap.Error(err))
	}
	return customers, total, nil
}

// BulkImport creates customers row by row; a bad or duplicate row is reported and skipped
func (s *customerService) BulkImport(ctx context.Context, tenantID uuid.UUID, rows []CustomerInput) (*models.BulkImportResult, error) {
	if len(rows) == 0 {
		return nil, common.NewFieldError("customers", "The customers field is required.")
	}
	if len(rows) > maxCustomerImportBatch {
		return nil, common.NewFieldError("customers", fmt.Sprintf("The customers may not have more than %d items.", maxCustomerImportBatch))
	}

	existing, err := s.customerRepo.ExistingNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := &models.BulkImportResult{Errors: []models.BulkRowError{}}
	for i := range rows {
		in := &rows[i]
		row := i + 1
		if fields := validateCustomerInput(in); len(fields) > 0 {
			result.Fail(row, in.ResortName, messages(fields)...)
			continue
		}

		nameKey := strings.ToLower(strings.TrimSpace(in.ResortName))
		if existing[nameKey] {
			result.Fail(row, in.ResortName, "Resort with this name already exists")
			continue
		}

		code, err := s.resolveCode(ctx, tenantID, in, nil)
		if err != nil {
			result.Fail(row, in.ResortName, err.Error())
			continue
		}

		customer := &models.Customer{ID: uuid.New(), TenantID: tenantID, ResortCode: code}
		applyCustomerInput(customer, in)
		if err := s.customerRepo.Create(ctx, customer); err != nil {
			logger.FromContext(ctx).Warn("customer import row failed", zap.Int("row", row), zap.Error(err))
			result.Fail(row, in.ResortName, "Could not save customer")
			continue
		}
		existing[nameKey] = true
		result.Created++
	}

	if result.Created > 0 {
		s.invalidateLists(ctx, tenantID)
		recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
			Action:      models.ActionCreated,
			ModelType:   "Customer",
			Description: fmt.Sprintf("Bulk imported %d customers", result.Created),
			NewValues:   models.JSONB{"created": result.Created, "failed": result.Failed},
		}), "Customer", "")
	}
	return result, nil
}
