package services

import (
	"context"
	"strings"
	"time"

	"bizsuite/internal/caching"
	"bizsuite/internal/common"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const productCacheTTL = 15 * time.Minute

var hundred = decimal.NewFromInt(100)

type ProductService interface {
	Create(ctx context.Context, tenantID uuid.UUID, in *ProductInput) (*models.Product, error)
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, tenantID, id uuid.UUID, in *ProductInput) (*models.Product, error)
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
	List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error)

	CreateCostPrice(ctx context.Context, tenantID uuid.UUID, in *CostPriceInput) (*models.ProductCostPrice, error)
	GetCostPrice(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductCostPrice, error)
	UpdateCostPrice(ctx context.Context, tenantID, id uuid.UUID, in *CostPriceInput) (*models.ProductCostPrice, error)
	DeleteCostPrice(ctx context.Context, tenantID, id uuid.UUID) error
	ListCostPrices(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.ProductCostPrice, error)
	LatestCostPrice(ctx context.Context, tenantID, productID uuid.UUID, date time.Time) (*models.ProductCostPrice, error)
}

type ProductInput struct {
	Name           string           `json:"name" validate:"required,max=255"`
	Description    *string          `json:"description"`
	SKU            *string          `json:"sku" validate:"omitempty,max=100"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	UnitPrice      decimal.Decimal  `json:"unit_price" validate:"gte=0"`
	LandedCost     *decimal.Decimal `json:"landed_cost"`
	Currency       string           `json:"currency" validate:"omitempty,len=3"`
	TaxRate        decimal.Decimal  `json:"tax_rate" validate:"gte=0,lte=100"`
	HasAMCOption   bool             `json:"has_amc_option"`
	AMCUnitPrice   *decimal.Decimal `json:"amc_unit_price"`
	Brand          *string          `json:"brand"`
	Model          *string          `json:"model"`
	PartNumber     *string          `json:"part_number"`
	IsManDayBased  bool             `json:"is_man_day_based"`
	IsDiscountable *bool            `json:"is_discountable"`
	IsRefurbished  bool             `json:"is_refurbished"`
	IsActive       *bool            `json:"is_active"`
	SortOrder      int              `json:"sort_order"`
}

type CostPriceInput struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	CostPrice     decimal.Decimal `json:"cost_price" validate:"gte=0"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	EffectiveDate string          `json:"effective_date" validate:"required,datetime=2006-01-02"`
	Notes         *string         `json:"notes"`
}

type productService struct {
	productRepo  repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	cacheService caching.CacheService
	audit        AuditLogsService
}

func NewProductService(productRepo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, cacheService caching.CacheService, audit AuditLogsService) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		cacheService: cacheService,
		audit:        audit,
	}
}

func (s *productService) validate(ctx context.Context, tenantID uuid.UUID, in *ProductInput, excludeID *uuid.UUID) error {
	fields := common.FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		fields.Add("name", "The name field is required.")
	}
	if in.UnitPrice.IsNegative() {
		fields.Add("unit_price", "The unit_price must be at least 0.")
	}
	if in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(hundred) {
		fields.Add("tax_rate", "The tax_rate must be between 0 and 100.")
	}
	if in.LandedCost != nil && in.LandedCost.IsNegative() {
		fields.Add("landed_cost", "The landed_cost must be at least 0.")
	}
	if in.AMCUnitPrice != nil && in.AMCUnitPrice.IsNegative() {
		fields.Add("amc_unit_price", "The amc_unit_price must be at least 0.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" {
		exists, err := s.productRepo.SKUExists(ctx, tenantID, strings.TrimSpace(*in.SKU), excludeID)
		if err != nil {
			return err
		}
		if exists {
			return common.NewFieldError("sku", "The sku has already been taken.")
		}
	}

	if in.CategoryID != nil {
		if _, err := s.categoryRepo.GetByID(ctx, tenantID, *in.CategoryID); err != nil {
			if common.IsNotFound(err) {
				return common.NewFieldError("category_id", "The selected category_id is invalid.")
			}
			return err
		}
	}
	return nil
}

func applyProductInput(p *models.Product, in *ProductInput, currency string) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.SKU = nil
	if in.SKU != nil && strings.TrimSpace(*in.SKU) != "" {
		sku := strings.TrimSpace(*in.SKU)
		p.SKU = &sku
	}
	p.CategoryID = in.CategoryID
	p.UnitPrice = in.UnitPrice
	p.LandedCost = in.LandedCost
	p.Currency = currency
	p.TaxRate = in.TaxRate
	p.HasAMCOption = in.HasAMCOption
	p.AMCUnitPrice = in.AMCUnitPrice
	p.Brand = in.Brand
	p.Model = in.Model
	p.PartNumber = in.PartNumber
	p.IsManDayBased = in.IsManDayBased
	p.IsDiscountable = boolOr(in.IsDiscountable, true)
	p.IsRefurbished = in.IsRefurbished
	p.IsActive = boolOr(in.IsActive, true)
	p.SortOrder = in.SortOrder
}

func (s *productService) Create(ctx context.Context, tenantID uuid.UUID, in *ProductInput) (*models.Product, error) {
	if err := s.validate(ctx, tenantID, in, nil); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, defaultCurrency)
	if err != nil {
		return nil, err
	}

	product := &models.Product{ID: uuid.New(), TenantID: tenantID}
	applyProductInput(product, in, currency)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Product", product.ID.String(), ToJSONB(product)), "Product", product.ID.String())
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Product, error) {
	log := logger.FromContext(ctx)

	if cached, err := s.cacheService.GetProduct(ctx, tenantID, id); cached != nil {
		return cached, nil
	} else if err != nil {
		log.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}

	product, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Product")
	}

	if err := s.cacheService.SetProduct(ctx, tenantID, product, productCacheTTL); err != nil {
		log.Warn("failed to cache product", zap.String("product_id", id.String()), zap.Error(err))
	}

	return product, nil
}

func (s *productService) invalidate(ctx context.Context, tenantID, id uuid.UUID) {
	if err := s.cacheService.DeleteProduct(ctx, tenantID, id); err != nil {
		logger.FromContext(ctx).Warn("failed to invalidate product cache", zap.String("product_id", id.String()), zap.Error(err))
	}
}

func (s *productService) Update(ctx context.Context, tenantID, id uuid.UUID, in *ProductInput) (*models.Product, error) {
	existing, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Product")
	}
	if err := s.validate(ctx, tenantID, in, &id); err != nil {
		return nil, err
	}
	currency, err := normalizeCurrency(in.Currency, existing.Currency)
	if err != nil {
		return nil, err
	}

	before := ToJSONB(existing)
	updated := *existing
	applyProductInput(&updated, in, currency)

	if err := s.productRepo.Update(ctx, &updated); err != nil {
		return nil, notFound(err, "Product")
	}
	s.invalidate(ctx, tenantID, id)

	recordAudit(ctx, s.audit.LogEntityUpdate(ctx, tenantID, "Product", id.String(), before, ToJSONB(&updated)), "Product", id.String())
	return &updated, nil
}

func (s *productService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	existing, err := s.productRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return notFound(err, "Product")
	}

	used, err := s.productRepo.CountQuotationItems(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if used > 0 {
		return common.NewConflictError("PRODUCT_IN_USE", "Product is used in quotations and cannot be deleted")
	}

	if err := s.productRepo.Delete(ctx, tenantID, id); err != nil {
		return notFound(err, "Product")
	}
	s.invalidate(ctx, tenantID, id)

	recordAudit(ctx, s.audit.LogEntityDelete(ctx, tenantID, "Product", id.String(), ToJSONB(existing)), "Product", id.String())
	return nil
}

func (s *productService) List(ctx context.Context, tenantID uuid.UUID, filter *models.ProductFilter) ([]*models.Product, int, error) {
	if filter == nil {
		filter = &models.ProductFilter{}
	}
	limit, offset, err := common.ValidatePaginationParams(filter.Limit, filter.Offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	filter.Limit, filter.Offset = limit, offset
	filter.Search = common.SanitizeSearchQuery(filter.Search)
	return s.productRepo.List(ctx, tenantID, filter)
}

func (s *productService) buildCostPrice(ctx context.Context, tenantID uuid.UUID, in *CostPriceInput, cp *models.ProductCostPrice) error {
	if in.CostPrice.IsNegative() {
		return common.NewFieldError("cost_price", "The cost_price must be at least 0.")
	}
	effective, err := common.ParseDate(in.EffectiveDate, "effective_date")
	if err != nil {
		return common.NewFieldError("effective_date", err.Error())
	}
	product, err := s.productRepo.GetByID(ctx, tenantID, in.ProductID)
	if err != nil {
		if common.IsNotFound(err) {
			return common.NewFieldError("product_id", "The selected product_id is invalid.")
		}
		return err
	}
	currency, err := normalizeCurrency(in.Currency, product.Currency)
	if err != nil {
		return err
	}

	cp.ProductID = in.ProductID
	cp.CostPrice = in.CostPrice
	cp.Currency = currency
	cp.EffectiveDate = effective
	cp.Notes = in.Notes
	return nil
}

func (s *productService) CreateCostPrice(ctx context.Context, tenantID uuid.UUID, in *CostPriceInput) (*models.ProductCostPrice, error) {
	cp := &models.ProductCostPrice{ID: uuid.New(), TenantID: tenantID}
	if err := s.buildCostPrice(ctx, tenantID, in, cp); err != nil {
		return nil, err
	}
	if err := s.productRepo.CreateCostPrice(ctx, cp); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *productService) GetCostPrice(ctx context.Context, tenantID, id uuid.UUID) (*models.ProductCostPrice, error) {
	cp, err := s.productRepo.GetCostPrice(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Cost price")
	}
	return cp, nil
}

func (s *productService) UpdateCostPrice(ctx context.Context, tenantID, id uuid.UUID, in *CostPriceInput) (*models.ProductCostPrice, error) {
	cp, err := s.GetCostPrice(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.buildCostPrice(ctx, tenantID, in, cp); err != nil {
		return nil, err
	}
	if err := s.productRepo.UpdateCostPrice(ctx, cp); err != nil {
		return nil, notFound(err, "Cost price")
	}
	return cp, nil
}

func (s *productService) DeleteCostPrice(ctx context.Context, tenantID, id uuid.UUID) error {
	return notFound(s.productRepo.DeleteCostPrice(ctx, tenantID, id), "Cost price")
}

func (s *productService) ListCostPrices(ctx context.Context, tenantID uuid.UUID, productID *uuid.UUID, limit, offset int) ([]*models.ProductCostPrice, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, common.NewFieldError("offset", err.Error())
	}
	return s.productRepo.ListCostPrices(ctx, tenantID, productID, limit, offset)
}

// LatestCostPrice returns the newest cost price effective on or before date
func (s *productService) LatestCostPrice(ctx context.Context, tenantID, productID uuid.UUID, date time.Time) (*models.ProductCostPrice, error) {
	cp, err := s.productRepo.LatestCostPrice(ctx, tenantID, productID, date)
	if err != nil {
		return nil, notFound(err, "Cost price")
	}
	return cp, nil
}
