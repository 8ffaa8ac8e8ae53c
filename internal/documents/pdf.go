// Package documents renders quotation and rent invoice PDFs and the xlsx
// exports and templates served by the API.
package documents

import (
	"bytes"
	"fmt"
	"time"

	"bizsuite/internal/models"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

const (
	marginX = 15.0
	marginY = 15.0
)

func newDocument() (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)
	pdf.AddPage()
	return pdf, pdf.UnicodeTranslatorFromDescriptor("")
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func date(t time.Time) string {
	return t.Format("02-Jan-2006")
}

func output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// QuotationQRContent is the text encoded in the verification QR code
func QuotationQRContent(q *models.Quotation) string {
	return fmt.Sprintf("%s|%s %s", q.QuotationNumber, q.Currency, money(q.TotalAmount))
}

// QuotationPDF renders a quotation with its items, totals and a verification QR code
func QuotationPDF(q *models.Quotation, companyName string) ([]byte, error) {
	pdf, tr := newDocument()

	qr, err := qrcode.Encode(QuotationQRContent(q), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	pdf.RegisterImageOptionsReader("qr", gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qr))
	pdf.ImageOptions("qr", 165, marginY, 30, 30, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, tr(companyName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "QUOTATION")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Number: %s", q.QuotationNumber)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", date(q.CreatedAt)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Valid until: %s", date(q.ValidUntil)))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", q.Status))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	if q.Customer != nil {
		pdf.Cell(0, 6, tr(fmt.Sprintf("%s (%s)", q.Customer.ResortName, q.Customer.ResortCode)))
		pdf.Ln(6)
		if q.Customer.Address != nil {
			pdf.MultiCell(0, 5, tr(*q.Customer.Address), "", "L", false)
		}
	} else {
		pdf.Cell(0, 6, tr(q.CustomerName))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	headers := []string{"#", "Description", "Qty", "Unit Price", "Discount", "Tax %", "Total"}
	widths := []float64{8, 72, 15, 25, 20, 15, 25}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(240, 240, 240)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	for i, item := range q.Items {
		desc := item.Description
		if item.IsAMCLine {
			desc = "  AMC: " + desc
		}
		if len(desc) > 48 {
			desc = desc[:45] + "..."
		}
		discount := money(item.DiscountValue)
		if item.DiscountType == models.DiscountTypePercentage {
			discount = item.DiscountValue.String() + "%"
		}
		pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 7, tr(desc), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 7, item.Quantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, money(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, discount, "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, item.TaxRate.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 7, money(item.ItemTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(7)
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal:", money(q.Subtotal)},
		{fmt.Sprintf("Discount (%s%%):", q.DiscountPercentage.String()), "-" + money(q.DiscountAmount)},
		{"Tax:", money(q.TaxAmount)},
	}
	pdf.SetFont("Arial", "", 10)
	for _, row := range totals {
		pdf.CellFormat(140, 6, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "", 0, "R", false, 0, "")
		pdf.Ln(6)
	}
	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 8, fmt.Sprintf("TOTAL (%s):", q.Currency), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 8, money(q.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	if q.TermsConditions != nil && *q.TermsConditions != "" {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Terms & Conditions")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, tr(*q.TermsConditions), "", "L", false)
	}
	if q.Notes != nil && *q.Notes != "" {
		pdf.Ln(2)
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(*q.Notes), "", "L", false)
	}

	return output(pdf)
}

// RentInvoicePDF renders a single-line rent invoice
func RentInvoicePDF(inv *models.RentInvoice, companyName string) ([]byte, error) {
	pdf, tr := newDocument()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(companyName))
	pdf.Ln(10)
	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(0, 8, "RENT INVOICE")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	lines := []string{
		fmt.Sprintf("Invoice Number: %s", inv.InvoiceNumber),
		fmt.Sprintf("Invoice Date: %s", date(inv.InvoiceDate)),
		fmt.Sprintf("Due Date: %s", date(inv.DueDate)),
		fmt.Sprintf("Status: %s", inv.Status),
	}
	for _, l := range lines {
		pdf.Cell(0, 6, tr(l))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 7, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(inv.TenantName))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s, Unit %s", inv.PropertyName, inv.UnitNumber)))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(140, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 8, "Amount", "1", 0, "R", true, 0, "")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(140, 8, fmt.Sprintf("Rent for %s", inv.InvoiceDate.Format("January 2006")), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, money(inv.RentAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	if !inv.LateFee.IsZero() {
		pdf.CellFormat(140, 8, "Late fee", "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 8, money(inv.LateFee), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(140, 9, fmt.Sprintf("TOTAL (%s):", inv.Currency), "", 0, "R", false, 0, "")
	pdf.CellFormat(40, 9, money(inv.TotalAmount), "", 0, "R", false, 0, "")
	pdf.Ln(12)

	if inv.Notes != nil && *inv.Notes != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.MultiCell(0, 5, tr(*inv.Notes), "", "L", false)
	}

	return output(pdf)
}
