package documents

import (
	"bytes"
	"testing"
	"time"

	"bizsuite/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuotation() *models.Quotation {
	notes := "Prices exclude freight"
	productID := uuid.New()
	return &models.Quotation{
		ID:                 uuid.New(),
		QuotationNumber:    "HT-2024-007-CBR",
		Status:             models.QuotationStatusDraft,
		Currency:           "USD",
		ValidUntil:         time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Subtotal:           decimal.RequireFromString("1000"),
		DiscountPercentage: decimal.RequireFromString("5"),
		DiscountAmount:     decimal.RequireFromString("50"),
		TaxAmount:          decimal.RequireFromString("80"),
		TotalAmount:        decimal.RequireFromString("1030"),
		Notes:              &notes,
		CustomerName:       "Coral Bay Resort",
		CreatedAt:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Items: []*models.QuotationItem{
			{ProductID: &productID, Description: "Access point", Quantity: decimal.NewFromInt(4), UnitPrice: decimal.NewFromInt(250), TaxRate: decimal.NewFromInt(8), ItemTotal: decimal.NewFromInt(1000)},
		},
	}
}

func TestQuotationPDF(t *testing.T) {
	out, err := QuotationPDF(sampleQuotation(), "Bizsuite Ltd")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestQuotationQRContent(t *testing.T) {
	assert.Equal(t, "HT-2024-007-CBR|USD 1030.00", QuotationQRContent(sampleQuotation()))
}

func TestRentInvoicePDF(t *testing.T) {
	inv := &models.RentInvoice{
		InvoiceNumber: "RINV-202406-001",
		InvoiceDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		RentAmount:    decimal.NewFromInt(1200),
		TotalAmount:   decimal.NewFromInt(1200),
		Currency:      "USD",
		Status:        models.RentInvoiceStatusPending,
		TenantName:    "Jane Doe",
		UnitNumber:    "A-101",
		PropertyName:  "Palm Court",
	}
	out, err := RentInvoicePDF(inv, "Bizsuite Ltd")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestUnitImportTemplateRoundTrip(t *testing.T) {
	out, err := UnitImportTemplate()
	require.NoError(t, err)

	rows, err := ReadRows(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Palm Court", rows[0]["property_name"])
	assert.Equal(t, "A-101", rows[0]["unit_number"])
	assert.Equal(t, "1200", rows[0]["rent_amount"])
}

func TestQuotationsXLSX(t *testing.T) {
	out, err := QuotationsXLSX([]*models.Quotation{sampleQuotation()})
	require.NoError(t, err)

	rows, err := ReadRows(bytes.NewReader(out))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "HT-2024-007-CBR", rows[0]["quotation number"])
	assert.Equal(t, "Coral Bay Resort", rows[0]["customer"])
}

func TestReadRows_InvalidWorkbook(t *testing.T) {
	_, err := ReadRows(bytes.NewReader([]byte("not a workbook")))
	assert.Error(t, err)
}
