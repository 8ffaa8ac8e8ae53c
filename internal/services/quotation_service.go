package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"bizsuite/internal/caching"
	"bizsuite/internal/common"
	"bizsuite/internal/config"
	"bizsuite/internal/documents"
	"bizsuite/internal/logger"
	"bizsuite/internal/metrics"
	"bizsuite/internal/models"
	"bizsuite/internal/pricing"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	quotationCacheTTL  = 10 * time.Minute
	maxQuotationExport = 5000
)

type QuotationService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *QuotationInput) (*models.Quotation, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *QuotationInput) (*models.Quotation, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error)

	Send(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error)
	Accept(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error)
	Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*models.Quotation, error)
	StatusHistory(ctx context.Context, tenantID, id uuid.UUID) ([]*models.QuotationStatusHistory, error)

	PreviewNumber(ctx context.Context, tenantID, customerID uuid.UUID) (string, error)
	GeneratePDF(ctx context.Context, tenantID, id uuid.UUID) (*DocumentLink, error)
	Export(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]byte, error)
}

type QuotationInput struct {
	CustomerID         uuid.UUID            `json:"customer_id" validate:"required"`
	ValidUntil         string               `json:"valid_until" validate:"omitempty,datetime=2006-01-02"`
	Currency           string               `json:"currency" validate:"omitempty,len=3"`
	ExchangeRate       *decimal.Decimal     `json:"exchange_rate"`
	DiscountPercentage decimal.Decimal      `json:"discount_percentage" validate:"gte=0,lte=100"`
	Notes              *string              `json:"notes"`
	TermsConditions    *string              `json:"terms_conditions"`
	Items              []QuotationItemInput `json:"items" validate:"required,min=1,dive"`
}

type QuotationItemInput struct {
	ProductID     *uuid.UUID      `json:"product_id"`
	ItemType      string          `json:"item_type" validate:"omitempty,oneof=product service amc"`
	Description   string          `json:"description" validate:"max=1000"`
	Quantity      decimal.Decimal `json:"quantity" validate:"gte=0.01"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"gte=0"`
	DiscountType  string          `json:"discount_type" validate:"omitempty,oneof=value percentage"`
	DiscountValue decimal.Decimal `json:"discount_value" validate:"gte=0"`
	TaxRate       decimal.Decimal `json:"tax_rate" validate:"gte=0,lte=100"`
	ImportDuty    decimal.Decimal `json:"import_duty" validate:"gte=0"`
}

type RejectQuotationRequest struct {
	Reason string `json:"reason" validate:"max=1000"`
}

// DocumentLink points at a generated document in object storage
type DocumentLink struct {
	ObjectKey string    `json:"object_key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

var minQuantity = decimal.RequireFromString("0.01")

type quotationService struct {
	quotationRepo repositories.QuotationRepository
	customerRepo  repositories.CustomerRepository
	productRepo   repositories.ProductRepository
	followups     FollowupService
	audit         AuditLogsService
	cacheService  caching.CacheService
	storage       MinioService
	metrics       *metrics.Metrics
	cfg           config.QuotationConfig
	companyName   string
	now           func() time.Time
}

func NewQuotationService(
	quotationRepo repositories.QuotationRepository,
	customerRepo repositories.CustomerRepository,
	productRepo repositories.ProductRepository,
	followups FollowupService,
	audit AuditLogsService,
	cacheService caching.CacheService,
	storage MinioService,
	m *metrics.Metrics,
	cfg config.QuotationConfig,
	companyName string,
) QuotationService {
	if m == nil {
		m = metrics.NewNop()
	}
	if cfg.ValidityDays <= 0 {
		cfg.ValidityDays = 14
	}
	if cfg.NumberFormat == "" {
		cfg.NumberFormat = pricing.DefaultNumberFormat
	}
	return &quotationService{
		quotationRepo: quotationRepo,
		customerRepo:  customerRepo,
		productRepo:   productRepo,
		followups:     followups,
		audit:         audit,
		cacheService:  cacheService,
		storage:       storage,
		metrics:       m,
		cfg:           cfg,
		companyName:   companyName,
		now:           time.Now,
	}
}

func (s *quotationService) customer(ctx context.Context, tenantID, customerID uuid.UUID) (*models.Customer, error) {
	c, err := s.customerRepo.GetByID(ctx, tenantID, customerID)
	if err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewFieldError("customer_id", "The selected customer_id is invalid.")
		}
		return nil, err
	}
	return c, nil
}

// buildItems validates the lines, resolves products and runs AMC detection
func (s *quotationService) buildItems(ctx context.Context, tenantID uuid.UUID, inputs []QuotationItemInput) ([]*models.QuotationItem, error) {
	if len(inputs) == 0 {
		return nil, common.NewFieldError("items", "The items must have at least 1 items.")
	}

	var productIDs []uuid.UUID
	for _, in := range inputs {
		if in.ProductID != nil {
			productIDs = append(productIDs, *in.ProductID)
		}
	}
	products := map[uuid.UUID]*models.Product{}
	if len(productIDs) > 0 {
		var err error
		if products, err = s.productRepo.GetByIDs(ctx, tenantID, productIDs); err != nil {
			return nil, err
		}
	}

	fields := common.FieldErrors{}
	items := make([]*models.QuotationItem, 0, len(inputs))
	for i, in := range inputs {
		item := &models.QuotationItem{
			ID:            uuid.New(),
			ProductID:     in.ProductID,
			ItemType:      in.ItemType,
			Description:   strings.TrimSpace(in.Description),
			Quantity:      in.Quantity,
			UnitPrice:     in.UnitPrice,
			DiscountType:  in.DiscountType,
			DiscountValue: in.DiscountValue,
			TaxRate:       in.TaxRate,
			ImportDuty:    in.ImportDuty,
			SortOrder:     i,
		}
		if item.ItemType == "" {
			item.ItemType = models.ItemTypeProduct
			if in.ProductID == nil {
				item.ItemType = models.ItemTypeService
			}
		}
		if item.DiscountType == "" {
			item.DiscountType = models.DiscountTypeValue
		}

		if in.ProductID != nil {
			product, ok := products[*in.ProductID]
			if !ok {
				fields.Add(indexedField("items", i, "product_id"), "The selected product_id is invalid.")
			} else if item.Description == "" {
				item.Description = product.Name
			}
		}
		if item.Description == "" {
			fields.Add(indexedField("items", i, "description"), "The description field is required.")
		}
		if item.Quantity.LessThan(minQuantity) {
			fields.Add(indexedField("items", i, "quantity"), "The quantity must be at least 0.01.")
		}
		if item.UnitPrice.IsNegative() {
			fields.Add(indexedField("items", i, "unit_price"), "The unit_price must be at least 0.")
		}
		if item.DiscountValue.IsNegative() {
			fields.Add(indexedField("items", i, "discount_value"), "The discount_value must be at least 0.")
		}
		if item.DiscountType == models.DiscountTypePercentage && item.DiscountValue.GreaterThan(hundred) {
			fields.Add(indexedField("items", i, "discount_value"), "The discount_value may not be greater than 100.")
		}
		if item.TaxRate.IsNegative() || item.TaxRate.GreaterThan(hundred) {
			fields.Add(indexedField("items", i, "tax_rate"), "The tax_rate must be between 0 and 100.")
		}
		items = append(items, item)
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}

	pricing.DetectAMCLines(items)
	return items, nil
}

// applyInput fills the header fields shared by create and update
func (s *quotationService) applyInput(q *models.Quotation, in *QuotationInput, items []*models.QuotationItem) error {
	fields := common.FieldErrors{}
	if in.DiscountPercentage.IsNegative() || in.DiscountPercentage.GreaterThan(hundred) {
		fields.Add("discount_percentage", "The discount_percentage must be between 0 and 100.")
	}
	if in.ExchangeRate != nil && !in.ExchangeRate.IsPositive() {
		fields.Add("exchange_rate", "The exchange_rate must be greater than 0.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	currency, err := normalizeCurrency(in.Currency, defaultCurrency)
	if err != nil {
		return err
	}

	validUntil := truncateDay(s.now()).AddDate(0, 0, s.cfg.ValidityDays)
	if in.ValidUntil != "" {
		if validUntil, err = common.ParseDate(in.ValidUntil, "valid_until"); err != nil {
			return common.NewFieldError("valid_until", err.Error())
		}
	}

	q.CustomerID = in.CustomerID
	q.ValidUntil = validUntil
	q.Currency = currency
	q.ExchangeRate = decimal.NewFromInt(1)
	if in.ExchangeRate != nil {
		q.ExchangeRate = *in.ExchangeRate
	}
	q.DiscountPercentage = in.DiscountPercentage
	q.Notes = in.Notes
	q.TermsConditions = in.TermsConditions
	q.Items = items
	pricing.Apply(q)
	return nil
}

func (s *quotationService) Create(ctx context.Context, tenantID uuid.UUID, in *QuotationInput) (*models.Quotation, error) {
	customer, err := s.customer(ctx, tenantID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, tenantID, in.Items)
	if err != nil {
		return nil, err
	}

	q := &models.Quotation{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Status:    models.QuotationStatusDraft,
		CreatedBy: common.UserIDPtrFromContext(ctx),
		CreatedAt: s.now(),
	}
	if err := s.applyInput(q, in, items); err != nil {
		return nil, err
	}

	err = s.quotationRepo.Create(ctx, q, func(seq int) string {
		return pricing.FormatNumber(s.cfg.NumberFormat, s.cfg.Prefix, q.CreatedAt, seq, customer.ResortCode)
	})
	if err != nil {
		return nil, err
	}
	q.Customer = customer
	q.CustomerName = customer.ResortName

	s.metrics.QuotationsCreated.Inc()
	logger.FromContext(ctx).Info("quotation created",
		zap.String("quotation_id", q.ID.String()),
		zap.String("quotation_number", q.QuotationNumber),
	)
	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Quotation", q.ID.String(), ToJSONB(q)), "Quotation", q.ID.String())
	return q, nil
}

// load reads a quotation with items and customer, through the cache
func (s *quotationService) load(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	log := logger.FromContext(ctx)
	if cached, err := s.cacheService.GetQuotation(ctx, tenantID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Warn("quotation cache read failed", zap.String("quotation_id", id.String()), zap.Error(err))
	}

	q, err := s.quotationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Quotation")
	}
	if q.Items, err = s.quotationRepo.GetItems(ctx, q.ID); err != nil {
		return nil, err
	}
	if q.Customer, err = s.customerRepo.GetByID(ctx, tenantID, q.CustomerID); err != nil && !common.IsNotFound(err) {
		return nil, err
	}

	if err := s.cacheService.SetQuotation(ctx, tenantID, q, quotationCacheTTL); err != nil {
		log.Warn("failed to cache quotation", zap.String("quotation_id", id.String()), zap.Error(err))
	}
	return q, nil
}

func (s *quotationService) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	if err := s.cacheService.DeleteQuotation(ctx, tenantID, id); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate quotation cache", zap.String("quotation_id", id.String()), zap.Error(err))
	}
}

func (s *quotationService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	q, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if q.CostAnalysis, err = s.costAnalysis(ctx, tenantID, q); err != nil {
		return nil, err
	}
	return q, nil
}

// costAnalysis prices each product line at the latest cost on or before the
// quotation date, falling back to the product's landed cost
func (s *quotationService) costAnalysis(ctx context.Context, tenantID uuid.UUID, q *models.Quotation) (*models.CostAnalysis, error) {
	var productIDs []uuid.UUID
	for _, item := range q.Items {
		if item.ProductID != nil {
			productIDs = append(productIDs, *item.ProductID)
		}
	}
	products := map[uuid.UUID]*models.Product{}
	if len(productIDs) > 0 {
		var err error
		if products, err = s.productRepo.GetByIDs(ctx, tenantID, productIDs); err != nil {
			return nil, err
		}
	}

	analysis := &models.CostAnalysis{TotalCost: decimal.Zero, Lines: []models.CostLine{}}
	for _, item := range q.Items {
		line := models.CostLine{ItemID: item.ID, ProductID: item.ProductID, UnitCost: decimal.Zero, Source: "none"}
		if item.ProductID != nil {
			cp, err := s.productRepo.LatestCostPrice(ctx, tenantID, *item.ProductID, q.CreatedAt)
			switch {
			case err == nil:
				line.UnitCost = cp.CostPrice
				line.Source = "cost_price"
			case !common.IsNotFound(err):
				return nil, err
			default:
				if p, ok := products[*item.ProductID]; ok && p.LandedCost != nil {
					line.UnitCost = *p.LandedCost
					line.Source = "landed_cost"
				}
			}
		}
		line.LineCost = line.UnitCost.Mul(item.Quantity).Round(2)
		analysis.TotalCost = analysis.TotalCost.Add(line.LineCost)
		analysis.Lines = append(analysis.Lines, line)
	}
	analysis.Profit, analysis.Margin = pricing.Margin(q.TotalAmount, analysis.TotalCost)
	return analysis, nil
}

func (s *quotationService) Update(ctx context.Context, tenantID, id uuid.UUID, in *QuotationInput) (*models.Quotation, error) {
	existing, err := s.quotationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Quotation")
	}
	if !existing.Status.IsEditable() {
		return nil, common.NewStateError("QUOTATION_NOT_EDITABLE", fmt.Sprintf("Quotations in %s status cannot be edited", existing.Status))
	}

	customer, err := s.customer(ctx, tenantID, in.CustomerID)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, tenantID, in.Items)
	if err != nil {
		return nil, err
	}

	before := ToJSONB(existing)
	updated := *existing
	if in.ValidUntil == "" {
		in.ValidUntil = existing.ValidUntil.Format("2006-01-02")
	}
	if err := s.applyInput(&updated, in, items); err != nil {
		return nil, err
	}

	if err := s.quotationRepo.Update(ctx, &updated); err != nil {
		if common.IsNotFound(err) {
			return nil, common.NewStateError("QUOTATION_NOT_EDITABLE", "Quotation is no longer editable")
		}
		return nil, err
	}
	s.invalidate(ctx, tenantID, id)
	updated.Customer = customer
	updated.CustomerName = customer.ResortName

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "Quotation", id.String(), before, ToJSONB(&updated)), "Quotation", id.String())
	return &updated, nil
}

func (s *quotationService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.quotationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return notFound(err, "Quotation")
	}
	if existing.Status != models.QuotationStatusDraft {
		return common.NewStateError("QUOTATION_NOT_DRAFT", "Only draft quotations can be deleted")
	}

	deleted, err := s.quotationRepo.Delete(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return common.NewStateError("QUOTATION_NOT_DRAFT", "Only draft quotations can be deleted")
	}
	s.invalidate(ctx, tenantID, id)

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "Quotation", id.String(), ToJSONB(existing)), "Quotation", id.String())
	return nil
}

func (s *quotationService) List(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]*models.Quotation, int, error) {
	if filter == nil {
		filter = &models.QuotationFilter{}
	}
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, 0, common.NewFieldError("status", "The selected status is invalid.")
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, 0, common.NewFieldError("date_to", "The date_to must be on or after date_from.")
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.quotationRepo.List(ctx, tenantID, filter)
}

// transition applies a guarded status change and records it
func (s *quotationService) transition(ctx context.Context, tenantID, id uuid.UUID, to models.QuotationStatus, reason *string) (*models.Quotation, time.Time, error) {
	q, err := s.quotationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, time.Time{}, notFound(err, "Quotation")
	}
	if !q.Status.CanTransitionTo(to) {
		return nil, time.Time{}, common.NewStateError("INVALID_STATUS_TRANSITION",
			fmt.Sprintf("Cannot change quotation status from %s to %s", q.Status, to))
	}

	at := s.now()
	applied, err := s.quotationRepo.Transition(ctx, tenantID, id, models.StatusChange{
		From:      q.Status,
		To:        to,
		At:        at,
		Reason:    reason,
		ChangedBy: common.UserIDPtrFromContext(ctx),
	})
	if err != nil {
		return nil, time.Time{}, err
	}
	if !applied {
		return nil, time.Time{}, common.NewStateError("INVALID_STATUS_TRANSITION", "Quotation status changed concurrently")
	}
	s.invalidate(ctx, tenantID, id)
	s.metrics.QuotationTransitions.WithLabelValues(string(to)).Inc()

	description := ""
	if reason != nil {
		description = fmt.Sprintf("Quotation %s: %s", to, *reason)
	}
	recordAudit(ctx, s.audit.LogStatusChange(ctx, tenantID, "Quotation", id.String(), string(q.Status), string(to), description), "Quotation", id.String())

	fresh, err := s.GetByID(ctx, tenantID, id)
	return fresh, at, err
}

func (s *quotationService) Send(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	q, sentAt, err := s.transition(ctx, tenantID, id, models.QuotationStatusSent, nil)
	if err != nil {
		return nil, err
	}
	if _, err := s.followups.ScheduleForQuotation(ctx, tenantID, id, sentAt); err != nil {
		logger.FromContext(ctx).Error("failed to schedule follow-ups", zap.String("quotation_id", id.String()), zap.Error(err))
	}
	return q, nil
}

func (s *quotationService) Accept(ctx context.Context, tenantID, id uuid.UUID) (*models.Quotation, error) {
	q, _, err := s.transition(ctx, tenantID, id, models.QuotationStatusAccepted, nil)
	if err != nil {
		return nil, err
	}
	s.cancelFollowups(ctx, tenantID, id, "Quotation accepted")
	return q, nil
}

func (s *quotationService) Reject(ctx context.Context, tenantID, id uuid.UUID, reason string) (*models.Quotation, error) {
	var r *string
	if strings.TrimSpace(reason) != "" {
		trimmed := strings.TrimSpace(reason)
		r = &trimmed
	}
	q, _, err := s.transition(ctx, tenantID, id, models.QuotationStatusRejected, r)
	if err != nil {
		return nil, err
	}
	s.cancelFollowups(ctx, tenantID, id, "Quotation rejected")
	return q, nil
}

func (s *quotationService) cancelFollowups(ctx context.Context, tenantID, id uuid.UUID, reason string) {
	if _, err := s.followups.CancelPending(ctx, tenantID, id, reason); err != nil {
		logger.FromContext(ctx).Error("failed to cancel follow-ups", zap.String("quotation_id", id.String()), zap.Error(err))
	}
}

func (s *quotationService) StatusHistory(ctx context.Context, tenantID, id uuid.UUID) ([]*models.QuotationStatusHistory, error) {
	if _, err := s.quotationRepo.GetByID(ctx, tenantID, id); err != nil {
		return nil, notFound(err, "Quotation")
	}
	return s.quotationRepo.StatusHistory(ctx, tenantID, id)
}

// PreviewNumber shows the number the next quotation for the customer would get
func (s *quotationService) PreviewNumber(ctx context.Context, tenantID, customerID uuid.UUID) (string, error) {
	customer, err := s.customer(ctx, tenantID, customerID)
	if err != nil {
		return "", err
	}
	now := s.now()
	seq, err := s.quotationRepo.PeekSequence(ctx, tenantID, now.Year())
	if err != nil {
		return "", err
	}
	return pricing.FormatNumber(s.cfg.NumberFormat, s.cfg.Prefix, now, seq, customer.ResortCode), nil
}

func (s *quotationService) GeneratePDF(ctx context.Context, tenantID, id uuid.UUID) (*DocumentLink, error) {
	q, err := s.load(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	content, err := documents.QuotationPDF(q, s.companyName)
	if err != nil {
		return nil, err
	}

	key := QuotationPDFKey(tenantID, q.QuotationNumber)
	if err := s.storage.UploadObject(ctx, key, bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		return nil, fmt.Errorf("upload quotation pdf: %w", err)
	}
	url, err := s.storage.GetPresignedURL(ctx, key, presignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign quotation pdf: %w", err)
	}

	recordAudit(ctx, s.audit.LogActivity(ctx, tenantID, models.AuditEntry{
		Action:      models.ActionExported,
		ModelType:   "Quotation",
		ModelID:     id.String(),
		Description: fmt.Sprintf("PDF generated for %s", q.QuotationNumber),
	}), "Quotation", id.String())

	return &DocumentLink{ObjectKey: key, URL: url, ExpiresAt: s.now().Add(presignExpiry)}, nil
}

func (s *quotationService) Export(ctx context.Context, tenantID uuid.UUID, filter *models.QuotationFilter) ([]byte, error) {
	if filter == nil {
		filter = &models.QuotationFilter{}
	}
	filter.Limit = maxQuotationExport
	filter.Offset = 0
	filter.Search = common.SanitizeSearchQuery(filter.Search)

	quotations, _, err := s.quotationRepo.List(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}
	return documents.QuotationsXLSX(quotations)
}
