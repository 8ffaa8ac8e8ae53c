package documents

import (
	"fmt"
	"io"
	"strings"

	"bizsuite/internal/models"

	"github.com/xuri/excelize/v2"
)

// UnitImportHeaders are the columns of the unit import template
var UnitImportHeaders = []string{"property_name", "unit_number", "unit_type", "rent_amount", "security_deposit", "currency"}

// sheet builds a single-sheet workbook with a bold header row
func sheet(name string, headers []string, rows [][]interface{}) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return nil, err
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := f.SetCellStyle(name, "A1", lastHeader, style); err != nil {
		return nil, err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := f.SetColWidth(name, "A", lastCol, 18); err != nil {
		return nil, err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(name, cell, &r); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func QuotationsXLSX(quotations []*models.Quotation) ([]byte, error) {
	headers := []string{"Quotation Number", "Customer", "Status", "Currency", "Subtotal", "Discount", "Tax", "Total", "Valid Until", "Created At"}
	rows := make([][]interface{}, 0, len(quotations))
	for _, q := range quotations {
		rows = append(rows, []interface{}{
			q.QuotationNumber,
			q.CustomerName,
			string(q.Status),
			q.Currency,
			q.Subtotal.InexactFloat64(),
			q.DiscountAmount.InexactFloat64(),
			q.TaxAmount.InexactFloat64(),
			q.TotalAmount.InexactFloat64(),
			q.ValidUntil.Format("2006-01-02"),
			q.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	return sheet("Quotations", headers, rows)
}

func UnifiedPaymentsXLSX(payments []*models.UnifiedPayment) ([]byte, error) {
	headers := []string{"ID", "Origin", "Type", "Direction", "Amount", "Currency", "Status", "Reference", "Description", "Transaction Date", "Due Date"}
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		txDate, dueDate := "", ""
		if p.TransactionDate != nil {
			txDate = p.TransactionDate.Format("2006-01-02")
		}
		if p.DueDate != nil {
			dueDate = p.DueDate.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			p.CompositeID,
			p.EntryOrigin,
			p.PaymentType,
			p.FlowDirection,
			p.Amount.InexactFloat64(),
			p.Currency,
			p.Status,
			optional(p.Reference),
			optional(p.Description),
			txDate,
			dueDate,
		})
	}
	return sheet("Payments", headers, rows)
}

// UnitImportTemplate is an empty workbook with the import header and one example row
func UnitImportTemplate() ([]byte, error) {
	return sheet("Units", UnitImportHeaders, [][]interface{}{
		{"Palm Court", "A-101", "1BR", 1200, 2400, "USD"},
	})
}

// ReadRows reads the first sheet of a workbook into header-keyed rows.
// Header names are lower-cased and trimmed; blank rows are dropped.
func ReadRows(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	header := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}

	out := make([]map[string]string, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(map[string]string, len(header))
		blank := true
		for i, key := range header {
			if i < len(cells) && key != "" {
				v := strings.TrimSpace(cells[i])
				row[key] = v
				if v != "" {
					blank = false
				}
			}
		}
		if !blank {
			out = append(out, row)
		}
	}
	return out, nil
}
