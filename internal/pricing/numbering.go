package pricing

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// DefaultNumberFormat produces numbers like HT-2024-007-CBR
const DefaultNumberFormat = "{prefix}-{year}-{sequence}-{resort_code}"

// FormatNumber expands the placeholders of a quotation number format
func FormatNumber(format, prefix string, date time.Time, sequence int, resortCode string) string {
	if format == "" {
		format = DefaultNumberFormat
	}
	r := strings.NewReplacer(
		"{prefix}", prefix,
		"{year}", fmt.Sprintf("%04d", date.Year()),
		"{month}", fmt.Sprintf("%02d", int(date.Month())),
		"{day}", fmt.Sprintf("%02d", date.Day()),
		"{sequence}", fmt.Sprintf("%03d", sequence),
		"{resort_code}", resortCode,
	)
	return r.Replace(format)
}

// ResortCode derives a three letter code from the initials of the first three words
func ResortCode(name string) string {
	var code []rune
	for _, word := range strings.Fields(name) {
		if len(code) == 3 {
			break
		}
		for _, r := range word {
			if unicode.IsLetter(r) {
				code = append(code, unicode.ToUpper(r))
				break
			}
		}
	}
	if len(code) == 0 {
		return "UNK"
	}
	for len(code) < 3 {
		code = append(code, 'X')
	}
	return string(code)
}

// ResortCodeCandidate returns the n-th fallback for a colliding base code:
// its first two letters followed by n (2..99)
func ResortCodeCandidate(base string, n int) string {
	runes := []rune(base)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return fmt.Sprintf("%s%d", string(runes), n)
}
