package services

import (
	"context"
	"testing"
	"time"

	"bizsuite/internal/landedcost"
	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type LandedCostServiceTestSuite struct {
	suite.Suite
	shipmentRepo *MockShipmentRepository
	productRepo  *MockProductRepository
	cache        *MockCacheService
	service      *landedCostService
	ctx          context.Context
}

func (suite *LandedCostServiceTestSuite) SetupTest() {
	suite.shipmentRepo = &MockShipmentRepository{}
	suite.productRepo = &MockProductRepository{}
	suite.cache = &MockCacheService{}
	suite.ctx = context.Background()
	svc := NewLandedCostService(suite.shipmentRepo, suite.productRepo, suite.cache, newAuditMock())
	suite.service = svc.(*landedCostService)
	suite.service.now = fixedClock(time.Date(2024, 4, 2, 11, 0, 0, 0, time.UTC))
}

func (suite *LandedCostServiceTestSuite) TearDownTest() {
	suite.shipmentRepo.AssertExpectations(suite.T())
	suite.productRepo.AssertExpectations(suite.T())
	suite.cache.AssertExpectations(suite.T())
}

func TestLandedCostServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LandedCostServiceTestSuite))
}

func (suite *LandedCostServiceTestSuite) TestCalculate_UnknownProduct() {
	known, unknown := uuid.New(), uuid.New()
	suite.productRepo.On("GetByIDs", suite.ctx, testTenantID, []uuid.UUID{known, unknown}).
		Return(map[uuid.UUID]*models.Product{known: {ID: known}}, nil)

	_, err := suite.service.Calculate(suite.ctx, testTenantID, &landedcost.Input{
		Method: models.AllocationEqual,
		Items: []landedcost.Item{
			{ProductID: known, Quantity: dec("1"), UnitCost: dec("10")},
			{ProductID: unknown, Quantity: dec("0"), UnitCost: dec("10")},
		},
	})
	requireField(suite.T(), err, "items[1].product_id")
	requireField(suite.T(), err, "items[1].quantity")
}

func (suite *LandedCostServiceTestSuite) TestCalculate_BadMethod() {
	_, err := suite.service.Calculate(suite.ctx, testTenantID, &landedcost.Input{
		Method: "by_volume",
		Items:  []landedcost.Item{{ProductID: uuid.New(), Quantity: dec("1")}},
	})
	requireField(suite.T(), err, "allocation_method")
}

func (suite *LandedCostServiceTestSuite) TestCalculate_NegativeManualAllocation() {
	a := uuid.New()
	suite.productRepo.On("GetByIDs", suite.ctx, testTenantID, []uuid.UUID{a}).
		Return(map[uuid.UUID]*models.Product{a: {ID: a}}, nil)

	_, err := suite.service.Calculate(suite.ctx, testTenantID, &landedcost.Input{
		Method:            models.AllocationEqual,
		Items:             []landedcost.Item{{ProductID: a, Quantity: dec("1"), UnitCost: dec("10")}},
		SharedCosts:       []landedcost.SharedCost{{Category: "freight", Amount: dec("5")}},
		ManualAllocations: map[int]map[int]decimal.Decimal{0: {0: dec("-5")}},
	})
	requireField(suite.T(), err, "manual_allocations")
}

func (suite *LandedCostServiceTestSuite) TestCalculate_NegativeWeight() {
	a := uuid.New()
	weight := dec("-2")
	suite.productRepo.On("GetByIDs", suite.ctx, testTenantID, []uuid.UUID{a}).
		Return(map[uuid.UUID]*models.Product{a: {ID: a}}, nil)

	_, err := suite.service.Calculate(suite.ctx, testTenantID, &landedcost.Input{
		Method: models.AllocationWeightBased,
		Items:  []landedcost.Item{{ProductID: a, Quantity: dec("1"), UnitCost: dec("10"), Weight: &weight}},
	})
	requireField(suite.T(), err, "items[0].weight")
}

func (suite *LandedCostServiceTestSuite) TestCreateShipment_LinksAllocations() {
	a, b := uuid.New(), uuid.New()
	suite.productRepo.On("GetByIDs", suite.ctx, testTenantID, []uuid.UUID{a, b}).
		Return(map[uuid.UUID]*models.Product{a: {ID: a}, b: {ID: b}}, nil)

	var saved *models.Shipment
	suite.shipmentRepo.On("Create", suite.ctx, mock.AnythingOfType("*models.Shipment")).Return(nil).Run(func(args mock.Arguments) {
		saved = args.Get(1).(*models.Shipment)
	})

	shipment, err := suite.service.CreateShipment(suite.ctx, testTenantID, &CreateShipmentRequest{
		Reference: " SHP-0042 ",
		Input: landedcost.Input{
			Method: models.AllocationEqual,
			Items: []landedcost.Item{
				{ProductID: a, Quantity: dec("10"), UnitCost: dec("20")},
				{ProductID: b, Quantity: dec("5"), UnitCost: dec("40")},
			},
			SharedCosts: []landedcost.SharedCost{{Category: "freight", Amount: dec("100")}},
		},
	})
	suite.Require().NoError(err)
	suite.Same(saved, shipment)

	suite.Equal("SHP-0042", shipment.Reference)
	suite.Equal(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), shipment.ShipmentDate)
	suite.Equal(models.ShipmentStatusDraft, shipment.Status)
	suite.Equal("USD", shipment.BaseCurrency)
	suite.Equal("500", shipment.GrandTotal.String())

	suite.Require().Len(shipment.Items, 2)
	suite.Require().Len(shipment.SharedCosts, 1)
	suite.Require().Len(shipment.Allocations, 2)
	for i, alloc := range shipment.Allocations {
		suite.Equal(shipment.SharedCosts[0].ID, alloc.SharedCostID)
		suite.Equal(shipment.Items[i].ID, alloc.ShipmentItemID)
		suite.Equal("50", alloc.Amount.String())
	}
	suite.Equal("25", shipment.Items[0].LandedCostPerUnit.String())
	suite.Equal("50", shipment.Items[1].LandedCostPerUnit.String())
}

func (suite *LandedCostServiceTestSuite) TestCreateShipment_RequiresReference() {
	_, err := suite.service.CreateShipment(suite.ctx, testTenantID, &CreateShipmentRequest{Reference: "  "})
	requireField(suite.T(), err, "reference")
}

func (suite *LandedCostServiceTestSuite) TestFinalizeShipment() {
	id, productID := uuid.New(), uuid.New()
	draft := &models.Shipment{ID: id, Status: models.ShipmentStatusDraft, Items: []*models.ShipmentItem{{ProductID: productID}}}
	finalized := &models.Shipment{ID: id, Status: models.ShipmentStatusFinalized}

	suite.shipmentRepo.On("GetByID", suite.ctx, testTenantID, id).Return(draft, nil).Once()
	suite.shipmentRepo.On("Finalize", suite.ctx, testTenantID, id).Return(true, nil)
	suite.cache.On("DeleteProduct", suite.ctx, testTenantID, productID).Return(nil)
	suite.shipmentRepo.On("GetByID", suite.ctx, testTenantID, id).Return(finalized, nil).Once()

	got, err := suite.service.FinalizeShipment(suite.ctx, testTenantID, id)
	suite.NoError(err)
	suite.Equal(models.ShipmentStatusFinalized, got.Status)
}

func (suite *LandedCostServiceTestSuite) TestFinalizeShipment_Twice() {
	id := uuid.New()
	suite.shipmentRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.Shipment{ID: id, Status: models.ShipmentStatusFinalized}, nil)

	_, err := suite.service.FinalizeShipment(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "SHIPMENT_FINALIZED")
}

func (suite *LandedCostServiceTestSuite) TestFinalizeShipment_LostRace() {
	id := uuid.New()
	suite.shipmentRepo.On("GetByID", suite.ctx, testTenantID, id).Return(&models.Shipment{ID: id, Status: models.ShipmentStatusDraft}, nil)
	suite.shipmentRepo.On("Finalize", suite.ctx, testTenantID, id).Return(false, nil)

	_, err := suite.service.FinalizeShipment(suite.ctx, testTenantID, id)
	requireCode(suite.T(), err, "SHIPMENT_FINALIZED")
}
