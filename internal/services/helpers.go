package services

import (
	"fmt"
	"strings"
	"time"

	"bizsuite/internal/common"
)

const defaultCurrency = "USD"

// notFound converts a missing-row error into a named 404
func notFound(err error, resource string) error {
	if common.IsNotFound(err) {
		return common.NewNotFoundError(resource)
	}
	return err
}

// normalizeCurrency upper-cases a currency code, falling back to def when empty
func normalizeCurrency(code, def string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = def
	}
	if len(code) != 3 {
		return "", common.NewFieldError("currency", "The currency must be 3 characters.")
	}
	return code, nil
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// indexedField names a field inside a list, e.g. items[2].quantity
func indexedField(list string, i int, field string) string {
	return fmt.Sprintf("%s[%d].%s", list, i, field)
}
