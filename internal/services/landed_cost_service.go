package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"bizsuite/internal/caching"
	"bizsuite/internal/common"
	"bizsuite/internal/landedcost"
	"bizsuite/internal/logger"
	"bizsuite/internal/models"
	"bizsuite/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type LandedCostService interface {
	Calculate(ctx context.Context, tenantID uuid.UUID, in *landedcost.Input) (*landedcost.Result, error)
	CreateShipment(ctx context.Context, tenantID uuid.UUID, req *CreateShipmentRequest) (*models.Shipment, error)
	GetShipment(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error)
	ListShipments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shipment, int, error)
	FinalizeShipment(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error)
}

type CreateShipmentRequest struct {
	landedcost.Input
	Reference    string  `json:"reference" validate:"required,max=100"`
	ShipmentDate string  `json:"shipment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes        *string `json:"notes"`
}

type landedCostService struct {
	shipmentRepo repositories.ShipmentRepository
	productRepo  repositories.ProductRepository
	cacheService caching.CacheService
	audit        AuditLogsService
	now          func() time.Time
}

func NewLandedCostService(shipmentRepo repositories.ShipmentRepository, productRepo repositories.ProductRepository, cache caching.CacheService, audit AuditLogsService) LandedCostService {
	return &landedCostService{
		shipmentRepo: shipmentRepo,
		productRepo:  productRepo,
		cacheService: cache,
		audit:        audit,
		now:          time.Now,
	}
}

// Calculate checks the products belong to the tenant and runs the allocation
func (s *landedCostService) Calculate(ctx context.Context, tenantID uuid.UUID, in *landedcost.Input) (*landedcost.Result, error) {
	if err := s.validateInput(ctx, tenantID, in); err != nil {
		return nil, err
	}
	result, err := landedcost.Calculate(*in)
	if err != nil {
		var inputErr *landedcost.InputError
		if errors.As(err, &inputErr) {
			return nil, common.NewFieldError(inputErr.Field, inputErr.Message)
		}
		return nil, err
	}
	return result, nil
}

func (s *landedCostService) validateInput(ctx context.Context, tenantID uuid.UUID, in *landedcost.Input) error {
	fields := common.FieldErrors{}
	if len(in.Items) == 0 {
		fields.Add("items", "The items must have at least 1 items.")
	}
	if !in.Method.Valid() {
		fields.Add("allocation_method", "The allocation_method must be one of: proportional, equal, weight_based, quantity_based.")
	}
	if in.ExchangeRate.IsNegative() {
		fields.Add("exchange_rate", "The exchange_rate must be greater than 0.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	currency, err := normalizeCurrency(in.BaseCurrency, defaultCurrency)
	if err != nil {
		return err
	}
	in.BaseCurrency = currency

	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.productRepo.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return err
	}
	for i, it := range in.Items {
		if _, ok := products[it.ProductID]; !ok {
			fields.Add(indexedField("items", i, "product_id"), "The selected product_id is invalid.")
		}
		if !it.Quantity.IsPositive() {
			fields.Add(indexedField("items", i, "quantity"), "The quantity must be greater than 0.")
		}
		if it.UnitCost.IsNegative() {
			fields.Add(indexedField("items", i, "unit_cost"), "The unit_cost must be at least 0.")
		}
		if it.Weight != nil && it.Weight.IsNegative() {
			fields.Add(indexedField("items", i, "weight"), "The weight must be at least 0.")
		}
	}
	for i, sc := range in.SharedCosts {
		if strings.TrimSpace(sc.Category) == "" {
			fields.Add(indexedField("shared_costs", i, "category"), "The category field is required.")
		}
		if sc.Amount.IsNegative() {
			fields.Add(indexedField("shared_costs", i, "amount"), "The amount must be at least 0.")
		}
	}
	return fields.Err()
}

func (s *landedCostService) CreateShipment(ctx context.Context, tenantID uuid.UUID, req *CreateShipmentRequest) (*models.Shipment, error) {
	if strings.TrimSpace(req.Reference) == "" {
		return nil, common.NewFieldError("reference", "The reference field is required.")
	}
	shipmentDate := truncateDay(s.now())
	if req.ShipmentDate != "" {
		d, err := common.ParseDate(req.ShipmentDate, "shipment_date")
		if err != nil {
			return nil, common.NewFieldError("shipment_date", err.Error())
		}
		shipmentDate = d
	}

	result, err := s.Calculate(ctx, tenantID, &req.Input)
	if err != nil {
		return nil, err
	}

	shipment := &models.Shipment{
		ID:              uuid.New(),
		TenantID:        tenantID,
		Reference:       strings.TrimSpace(req.Reference),
		ShipmentDate:    shipmentDate,
		Method:          result.Summary.Method,
		BaseCurrency:    result.Summary.BaseCurrency,
		ExchangeRate:    result.Summary.ExchangeRate,
		TotalBaseCost:   result.Summary.TotalBaseCost,
		TotalSharedCost: result.Summary.TotalSharedCost,
		GrandTotal:      result.Summary.GrandTotalLandedCost,
		Status:          models.ShipmentStatusDraft,
		Notes:           req.Notes,
		CreatedBy:       common.UserIDPtrFromContext(ctx),
	}

	itemIDs := make([]uuid.UUID, len(result.Items))
	for i, it := range result.Items {
		itemIDs[i] = uuid.New()
		shipment.Items = append(shipment.Items, &models.ShipmentItem{
			ID:                  itemIDs[i],
			ShipmentID:          shipment.ID,
			ProductID:           it.ProductID,
			Quantity:            it.Quantity,
			UnitCost:            it.UnitCost,
			Weight:              it.Weight,
			TotalItemCost:       it.TotalItemCost,
			AllocatedSharedCost: it.AllocatedSharedCost,
			TotalLandedCost:     it.TotalLandedCost,
			LandedCostPerUnit:   it.LandedCostPerUnit,
			PercentageShare:     it.PercentageShare,
		})
	}
	costIDs := make([]uuid.UUID, len(req.SharedCosts))
	for i, sc := range req.SharedCosts {
		costIDs[i] = uuid.New()
		shipment.SharedCosts = append(shipment.SharedCosts, &models.SharedCost{
			ID:          costIDs[i],
			ShipmentID:  shipment.ID,
			Category:    strings.TrimSpace(sc.Category),
			Description: common.StringPtr(sc.Description),
			Amount:      sc.Amount,
		})
	}
	for _, a := range result.Allocations {
		shipment.Allocations = append(shipment.Allocations, &models.SharedCostAllocation{
			ID:             uuid.New(),
			SharedCostID:   costIDs[a.SharedCostIndex],
			ShipmentItemID: itemIDs[a.ItemIndex],
			Amount:         a.Amount,
			IsManual:       a.IsManual,
		})
	}

	if err := s.shipmentRepo.Create(ctx, shipment); err != nil {
		return nil, err
	}

	recordAudit(ctx, s.audit.LogEntityCreate(ctx, tenantID, "Shipment", shipment.ID.String(), models.JSONB{
		"reference":               shipment.Reference,
		"allocation_method":       string(shipment.Method),
		"grand_total_landed_cost": shipment.GrandTotal.String(),
		"items":                   len(shipment.Items),
	}), "Shipment", shipment.ID.String())
	return shipment, nil
}

func (s *landedCostService) GetShipment(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Shipment")
	}
	return shipment, nil
}

func (s *landedCostService) ListShipments(ctx context.Context, tenantID uuid.UUID, limit, offset int) ([]*models.Shipment, int, error) {
	limit, offset, err := common.ValidatePaginationParams(limit, offset)
	if err != nil {
		return nil, 0, common.NewFieldError("offset", err.Error())
	}
	return s.shipmentRepo.List(ctx, tenantID, limit, offset)
}

// FinalizeShipment pushes each item's landed cost per unit onto its product
func (s *landedCostService) FinalizeShipment(ctx context.Context, tenantID, id uuid.UUID) (*models.Shipment, error) {
	shipment, err := s.shipmentRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, notFound(err, "Shipment")
	}
	if shipment.Status == models.ShipmentStatusFinalized {
		return nil, common.NewStateError("SHIPMENT_FINALIZED", "Shipment is already finalized")
	}

	applied, err := s.shipmentRepo.Finalize(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, common.NewStateError("SHIPMENT_FINALIZED", "Shipment is already finalized")
	}

	log := logger.FromContext(ctx)
	for _, item := range shipment.Items {
		if err := s.cacheService.DeleteProduct(ctx, tenantID, item.ProductID); err != nil {
			log.Warn("failed to invalidate product cache", zap.String("product_id", item.ProductID.String()), zap.Error(err))
		}
	}
	log.Info("shipment finalized", zap.String("shipment_id", id.String()), zap.Int("items", len(shipment.Items)))

	recordAudit(ctx, s.audit.LogStatusChange(ctx, tenantID, "Shipment", id.String(),
		models.ShipmentStatusDraft, models.ShipmentStatusFinalized, "Landed costs applied to products"), "Shipment", id.String())

	return s.GetShipment(ctx, tenantID, id)
}
