// Package landedcost spreads shared shipment costs (freight, duty,
// insurance) over the shipped items.
package landedcost

import (
	"fmt"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

type Item struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"gt=0"`
	UnitCost  decimal.Decimal  `json:"unit_cost" validate:"gte=0"`
	Weight    *decimal.Decimal `json:"weight"`
}

type SharedCost struct {
	Category    string          `json:"category" validate:"required,max=100"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0"`
}

type Input struct {
	Items        []Item                  `json:"items" validate:"required,min=1,dive"`
	SharedCosts  []SharedCost            `json:"shared_costs" validate:"dive"`
	Method       models.AllocationMethod `json:"allocation_method" validate:"required,oneof=proportional equal weight_based quantity_based"`
	BaseCurrency string                  `json:"base_currency" validate:"omitempty,len=3"`
	ExchangeRate decimal.Decimal         `json:"exchange_rate"`
	// ManualAllocations maps a shared cost index to item index -> amount
	ManualAllocations map[int]map[int]decimal.Decimal `json:"manual_allocations"`
}

type ItemResult struct {
	Index               int              `json:"index"`
	ProductID           uuid.UUID        `json:"product_id"`
	Quantity            decimal.Decimal  `json:"quantity"`
	UnitCost            decimal.Decimal  `json:"unit_cost"`
	Weight              *decimal.Decimal `json:"weight,omitempty"`
	TotalItemCost       decimal.Decimal  `json:"total_item_cost"`
	AllocatedSharedCost decimal.Decimal  `json:"allocated_shared_cost"`
	TotalLandedCost     decimal.Decimal  `json:"total_landed_cost"`
	LandedCostPerUnit   decimal.Decimal  `json:"landed_cost_per_unit"`
	PercentageShare     decimal.Decimal  `json:"percentage_share"`
}

// Allocation is the amount of one shared cost assigned to one item
type Allocation struct {
	SharedCostIndex int             `json:"shared_cost_index"`
	ItemIndex       int             `json:"item_index"`
	Amount          decimal.Decimal `json:"amount"`
	IsManual        bool            `json:"is_manual"`
}

type Summary struct {
	TotalBaseCost        decimal.Decimal         `json:"total_base_cost"`
	TotalSharedCost      decimal.Decimal         `json:"total_shared_cost"`
	GrandTotalLandedCost decimal.Decimal         `json:"grand_total_landed_cost"`
	Method               models.AllocationMethod `json:"allocation_method"`
	BaseCurrency         string                  `json:"base_currency"`
	ExchangeRate         decimal.Decimal         `json:"exchange_rate"`
}

type Result struct {
	Items       []ItemResult `json:"items"`
	Allocations []Allocation `json:"allocations"`
	Summary     Summary      `json:"summary"`
}

// InputError rejects one field of a calculation input
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Field + ": " + e.Message
}

func inputErr(field, format string, args ...any) error {
	return &InputError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func validate(in Input) error {
	if len(in.Items) == 0 {
		return inputErr("items", "at least one item is required")
	}
	if !in.Method.Valid() {
		return inputErr("allocation_method", "unknown allocation method %q", in.Method)
	}
	for i, it := range in.Items {
		if !it.Quantity.IsPositive() {
			return inputErr(fmt.Sprintf("items[%d].quantity", i), "quantity must be greater than 0")
		}
		if it.UnitCost.IsNegative() {
			return inputErr(fmt.Sprintf("items[%d].unit_cost", i), "unit cost must not be negative")
		}
		if it.Weight != nil && it.Weight.IsNegative() {
			return inputErr(fmt.Sprintf("items[%d].weight", i), "weight must not be negative")
		}
	}
	for i, sc := range in.SharedCosts {
		if sc.Amount.IsNegative() {
			return inputErr(fmt.Sprintf("shared_costs[%d].amount", i), "amount must not be negative")
		}
	}
	for sc, alloc := range in.ManualAllocations {
		if sc < 0 || sc >= len(in.SharedCosts) {
			return inputErr("manual_allocations", "manual allocation references shared cost %d", sc)
		}
		for idx, amount := range alloc {
			if idx < 0 || idx >= len(in.Items) {
				return inputErr("manual_allocations", "manual allocation references item %d", idx)
			}
			if amount.IsNegative() {
				return inputErr("manual_allocations", "manual allocation for item %d is negative", idx)
			}
		}
	}
	return nil
}

// Calculate computes landed costs without touching storage
func Calculate(in Input) (*Result, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	currency := in.BaseCurrency
	if currency == "" {
		currency = "USD"
	}
	rate := in.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}

	items := make([]ItemResult, len(in.Items))
	totalCost := decimal.Zero
	for i, it := range in.Items {
		cost := it.Quantity.Mul(it.UnitCost)
		items[i] = ItemResult{
			Index:               i,
			ProductID:           it.ProductID,
			Quantity:            it.Quantity,
			UnitCost:            it.UnitCost,
			Weight:              it.Weight,
			TotalItemCost:       cost,
			AllocatedSharedCost: decimal.Zero,
		}
		totalCost = totalCost.Add(cost)
	}

	ratios := allocationRatios(in.Items, items, totalCost, in.Method)

	var allocations []Allocation
	totalShared := decimal.Zero
	for sc, shared := range in.SharedCosts {
		totalShared = totalShared.Add(shared.Amount)

		if manual, ok := in.ManualAllocations[sc]; ok && len(manual) > 0 {
			for idx := range items {
				amount, ok := manual[idx]
				if !ok {
					continue
				}
				amount = amount.Round(2)
				items[idx].AllocatedSharedCost = items[idx].AllocatedSharedCost.Add(amount)
				allocations = append(allocations, Allocation{SharedCostIndex: sc, ItemIndex: idx, Amount: amount, IsManual: true})
			}
			continue
		}

		for idx, amount := range splitRounded(shared.Amount, ratios) {
			items[idx].AllocatedSharedCost = items[idx].AllocatedSharedCost.Add(amount)
			allocations = append(allocations, Allocation{SharedCostIndex: sc, ItemIndex: idx, Amount: amount})
		}
	}

	grand := decimal.Zero
	for i := range items {
		item := &items[i]
		item.TotalLandedCost = item.TotalItemCost.Add(item.AllocatedSharedCost)
		item.LandedCostPerUnit = item.TotalLandedCost.Div(item.Quantity).Round(4)
		if totalCost.IsZero() {
			item.PercentageShare = decimal.Zero
		} else {
			item.PercentageShare = item.TotalItemCost.Div(totalCost).Mul(hundred).Round(2)
		}
		grand = grand.Add(item.TotalLandedCost)

		item.TotalItemCost = item.TotalItemCost.Round(2)
		item.AllocatedSharedCost = item.AllocatedSharedCost.Round(2)
		item.TotalLandedCost = item.TotalLandedCost.Round(2)
	}

	return &Result{
		Items:       items,
		Allocations: allocations,
		Summary: Summary{
			TotalBaseCost:        totalCost.Round(2),
			TotalSharedCost:      totalShared.Round(2),
			GrandTotalLandedCost: grand.Round(2),
			Method:               in.Method,
			BaseCurrency:         currency,
			ExchangeRate:         rate,
		},
	}, nil
}

// splitRounded shares amount by ratios in cents. The last line with a
// non-zero ratio takes the rounding remainder so the lines add up.
func splitRounded(amount decimal.Decimal, ratios []decimal.Decimal) []decimal.Decimal {
	lines := make([]decimal.Decimal, len(ratios))
	exact, distributed := decimal.Zero, decimal.Zero
	last := -1
	for i, r := range ratios {
		share := amount.Mul(r)
		exact = exact.Add(share)
		lines[i] = share.Round(2)
		distributed = distributed.Add(lines[i])
		if !r.IsZero() {
			last = i
		}
	}
	if last >= 0 {
		lines[last] = lines[last].Add(exact.Round(2).Sub(distributed))
	}
	return lines
}

func allocationRatios(in []Item, items []ItemResult, totalCost decimal.Decimal, method models.AllocationMethod) []decimal.Decimal {
	ratios := make([]decimal.Decimal, len(items))
	n := decimal.NewFromInt(int64(len(items)))

	switch method {
	case models.AllocationEqual:
		for i := range ratios {
			ratios[i] = decimal.NewFromInt(1).Div(n)
		}
	case models.AllocationWeightBased:
		totalWeight := decimal.Zero
		for _, it := range in {
			if it.Weight != nil {
				totalWeight = totalWeight.Add(*it.Weight)
			}
		}
		if totalWeight.IsZero() {
			totalWeight = decimal.NewFromInt(1)
		}
		for i, it := range in {
			if it.Weight != nil {
				ratios[i] = it.Weight.Div(totalWeight)
			}
		}
	case models.AllocationQuantityBased:
		totalQty := decimal.Zero
		for _, it := range in {
			totalQty = totalQty.Add(it.Quantity)
		}
		for i, it := range in {
			ratios[i] = it.Quantity.Div(totalQty)
		}
	default:
		for i, item := range items {
			if totalCost.IsZero() {
				ratios[i] = decimal.Zero
				continue
			}
			ratios[i] = item.TotalItemCost.Div(totalCost)
		}
	}
	return ratios
}
