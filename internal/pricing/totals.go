// Package pricing holds the quotation arithmetic: line totals, document
// totals, AMC line detection, numbering and resort codes.
package pricing

import (
	"bizsuite/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are the computed header amounts of a quotation
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// LineTotal is quantity * unit price less the line discount, never negative
func LineTotal(item *models.QuotationItem) decimal.Decimal {
	gross := item.Quantity.Mul(item.UnitPrice)

	var discount decimal.Decimal
	switch item.DiscountType {
	case models.DiscountTypePercentage:
		discount = gross.Mul(item.DiscountValue).Div(hundred)
	default:
		discount = item.DiscountValue
	}

	total := gross.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return total.Round(2)
}

// Calculate sets ItemTotal on every item and returns the header totals
func Calculate(items []*models.QuotationItem, discountPercentage decimal.Decimal) Totals {
	subtotal := decimal.Zero
	tax := decimal.Zero

	for _, item := range items {
		item.ItemTotal = LineTotal(item)
		subtotal = subtotal.Add(item.ItemTotal)
		tax = tax.Add(item.ItemTotal.Mul(item.TaxRate).Div(hundred))
	}

	subtotal = subtotal.Round(2)
	discount := subtotal.Mul(discountPercentage).Div(hundred).Round(2)
	tax = tax.Round(2)

	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(tax).Round(2),
	}
}

// Apply copies computed totals onto the quotation
func Apply(q *models.Quotation) {
	t := Calculate(q.Items, q.DiscountPercentage)
	q.Subtotal = t.Subtotal
	q.DiscountAmount = t.DiscountAmount
	q.TaxAmount = t.TaxAmount
	q.TotalAmount = t.Total
}

// Margin returns profit and margin percentage for a total and its cost
func Margin(total, cost decimal.Decimal) (profit, margin decimal.Decimal) {
	profit = total.Sub(cost).Round(2)
	if total.IsZero() {
		return profit, decimal.Zero
	}
	return profit, profit.Div(total).Mul(hundred).Round(2)
}
