package landedcost

import (
	"testing"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func dp(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func twoItems(method models.AllocationMethod) Input {
	return Input{
		Items: []Item{
			{ProductID: uuid.New(), Quantity: d("10"), UnitCost: d("30"), Weight: dp("1")},
			{ProductID: uuid.New(), Quantity: d("30"), UnitCost: d("10"), Weight: dp("3")},
		},
		SharedCosts: []SharedCost{
			{Category: "freight", Amount: d("100")},
			{Category: "duty", Amount: d("20")},
		},
		Method: method,
	}
}

func TestCalculate_Proportional(t *testing.T) {
	in := twoItems(models.AllocationProportional)
	in.Items[1].UnitCost = d("30") // 300 vs 900

	res, err := Calculate(in)
	require.NoError(t, err)

	assert.True(t, d("30").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("90").Equal(res.Items[1].AllocatedSharedCost))
	assert.True(t, d("330").Equal(res.Items[0].TotalLandedCost))
	assert.True(t, d("33").Equal(res.Items[0].LandedCostPerUnit))
	assert.True(t, d("25").Equal(res.Items[0].PercentageShare))
	assert.True(t, d("1200").Equal(res.Summary.TotalBaseCost))
	assert.True(t, d("120").Equal(res.Summary.TotalSharedCost))
	assert.True(t, d("1320").Equal(res.Summary.GrandTotalLandedCost))
	assert.Equal(t, "USD", res.Summary.BaseCurrency)
	assert.Len(t, res.Allocations, 4)
}

func TestCalculate_Equal(t *testing.T) {
	res, err := Calculate(twoItems(models.AllocationEqual))
	require.NoError(t, err)

	assert.True(t, d("60").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("60").Equal(res.Items[1].AllocatedSharedCost))
}

func TestCalculate_WeightBased(t *testing.T) {
	res, err := Calculate(twoItems(models.AllocationWeightBased))
	require.NoError(t, err)

	assert.True(t, d("30").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("90").Equal(res.Items[1].AllocatedSharedCost))
}

func TestCalculate_WeightBasedWithoutWeights(t *testing.T) {
	in := twoItems(models.AllocationWeightBased)
	in.Items[0].Weight = nil
	in.Items[1].Weight = nil

	res, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, res.Items[0].AllocatedSharedCost.IsZero())
	assert.True(t, d("120").Equal(res.Summary.TotalSharedCost))
}

func TestCalculate_QuantityBased(t *testing.T) {
	res, err := Calculate(twoItems(models.AllocationQuantityBased))
	require.NoError(t, err)

	assert.True(t, d("30").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("90").Equal(res.Items[1].AllocatedSharedCost))
}

func TestCalculate_ManualAllocation(t *testing.T) {
	in := twoItems(models.AllocationEqual)
	in.ManualAllocations = map[int]map[int]decimal.Decimal{
		0: {1: d("100")},
	}

	res, err := Calculate(in)
	require.NoError(t, err)

	// freight goes entirely to item 1, duty splits equally
	assert.True(t, d("10").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("110").Equal(res.Items[1].AllocatedSharedCost))

	var manual int
	for _, a := range res.Allocations {
		if a.IsManual {
			manual++
		}
	}
	assert.Equal(t, 1, manual)
}

func TestCalculate_ZeroCostProportional(t *testing.T) {
	in := twoItems(models.AllocationProportional)
	in.Items[0].UnitCost = decimal.Zero
	in.Items[1].UnitCost = decimal.Zero

	res, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, res.Items[0].AllocatedSharedCost.IsZero())
	assert.True(t, res.Items[0].PercentageShare.IsZero())
}

func TestCalculate_Errors(t *testing.T) {
	_, err := Calculate(Input{Method: models.AllocationEqual})
	assert.Error(t, err)

	in := twoItems("volume")
	_, err = Calculate(in)
	assert.Error(t, err)

	in = twoItems(models.AllocationEqual)
	in.ManualAllocations = map[int]map[int]decimal.Decimal{5: {0: d("1")}}
	_, err = Calculate(in)
	assert.Error(t, err)
}

func TestCalculate_RemainderOnLastLine(t *testing.T) {
	in := Input{
		Items: []Item{
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("10")},
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("10")},
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("10")},
		},
		SharedCosts: []SharedCost{{Category: "freight", Amount: d("100")}},
		Method:      models.AllocationEqual,
	}

	res, err := Calculate(in)
	require.NoError(t, err)

	assert.True(t, d("33.33").Equal(res.Allocations[0].Amount))
	assert.True(t, d("33.33").Equal(res.Allocations[1].Amount))
	assert.True(t, d("33.34").Equal(res.Allocations[2].Amount))

	sum := decimal.Zero
	for _, item := range res.Items {
		sum = sum.Add(item.AllocatedSharedCost)
	}
	assert.True(t, d("100").Equal(sum))
	assert.True(t, d("130").Equal(res.Summary.GrandTotalLandedCost))
}

func TestCalculate_RemainderSkipsUnweightedItems(t *testing.T) {
	in := Input{
		Items: []Item{
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("1"), Weight: dp("1")},
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("1"), Weight: dp("2")},
			{ProductID: uuid.New(), Quantity: d("1"), UnitCost: d("1")},
		},
		SharedCosts: []SharedCost{{Category: "duty", Amount: d("10")}},
		Method:      models.AllocationWeightBased,
	}

	res, err := Calculate(in)
	require.NoError(t, err)

	assert.True(t, d("3.33").Equal(res.Items[0].AllocatedSharedCost))
	assert.True(t, d("6.67").Equal(res.Items[1].AllocatedSharedCost))
	assert.True(t, res.Items[2].AllocatedSharedCost.IsZero())
}

func TestCalculate_RejectsNegativeInputs(t *testing.T) {
	cases := map[string]struct {
		mutate func(in *Input)
		field  string
	}{
		"zero quantity":   {func(in *Input) { in.Items[0].Quantity = decimal.Zero }, "items[0].quantity"},
		"negative cost":   {func(in *Input) { in.Items[1].UnitCost = d("-1") }, "items[1].unit_cost"},
		"negative weight": {func(in *Input) { in.Items[1].Weight = dp("-3") }, "items[1].weight"},
		"negative shared": {func(in *Input) { in.SharedCosts[0].Amount = d("-100") }, "shared_costs[0].amount"},
		"negative manual": {func(in *Input) { in.ManualAllocations = map[int]map[int]decimal.Decimal{0: {0: d("-1")}} }, "manual_allocations"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := twoItems(models.AllocationWeightBased)
			tc.mutate(&in)

			_, err := Calculate(in)
			var inputErr *InputError
			require.ErrorAs(t, err, &inputErr)
			assert.Equal(t, tc.field, inputErr.Field)
		})
	}
}
