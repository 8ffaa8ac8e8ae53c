package pricing

import (
	"strings"

	"bizsuite/internal/models"
)

var amcKeywords = []string{"maintenance", "support", "amc"}

// DetectAMCLines marks items that follow a line for the same product with a
// zero-duty maintenance description as AMC lines of that line.
// Items must already carry their IDs.
func DetectAMCLines(items []*models.QuotationItem) {
	for i := 1; i < len(items); i++ {
		prev, item := items[i-1], items[i]
		if item.ProductID == nil || prev.ProductID == nil || *item.ProductID != *prev.ProductID {
			continue
		}
		if !item.ImportDuty.IsZero() {
			continue
		}
		if !isMaintenanceDescription(item.Description) {
			continue
		}

		parentID := prev.ID
		item.ItemType = models.ItemTypeAMC
		item.IsAMCLine = true
		item.ParentItemID = &parentID
	}
}

func isMaintenanceDescription(desc string) bool {
	lower := strings.ToLower(desc)
	for _, kw := range amcKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
