// Package unitgen produces unit numbers for bulk unit creation.
package unitgen

import (
	"fmt"
	"math"
	"strings"

	"bizsuite/internal/models"
)

// Generate expands a numbering request into unit numbers in order
func Generate(n models.UnitNumbering) ([]string, error) {
	var numbers []string

	switch n.Mode {
	case models.NumberingSequential:
		if n.Count <= 0 {
			return nil, fmt.Errorf("count must be at least 1")
		}
		if n.Count > models.MaxGeneratedUnits {
			return nil, fmt.Errorf("cannot generate more than %d units", models.MaxGeneratedUnits)
		}
		if n.Start < 0 || n.Start > math.MaxInt-n.Count {
			return nil, fmt.Errorf("start must be between 0 and %d", math.MaxInt-n.Count)
		}
		for i := 0; i < n.Count; i++ {
			numbers = append(numbers, n.Prefix+pad(n.Start+i, n.Padding)+n.Suffix)
		}

	case models.NumberingRange:
		if n.FloorStart < 0 || n.UnitStart < 0 {
			return nil, fmt.Errorf("range start must not be negative")
		}
		if n.FloorEnd < n.FloorStart || n.UnitEnd < n.UnitStart {
			return nil, fmt.Errorf("range end must not precede range start")
		}
		// each span is bounded before multiplying so the product cannot wrap
		floors, units := n.FloorEnd-n.FloorStart, n.UnitEnd-n.UnitStart
		if floors >= models.MaxGeneratedUnits || units >= models.MaxGeneratedUnits ||
			(floors+1)*(units+1) > models.MaxGeneratedUnits {
			return nil, fmt.Errorf("cannot generate more than %d units", models.MaxGeneratedUnits)
		}
		for floor := n.FloorStart; floor <= n.FloorEnd; floor++ {
			for unit := n.UnitStart; unit <= n.UnitEnd; unit++ {
				numbers = append(numbers, fmt.Sprintf("%d%s", floor, pad(unit, 2)))
			}
		}

	case models.NumberingCustom:
		seen := make(map[string]bool)
		for _, raw := range strings.Split(n.CustomList, ",") {
			num := strings.TrimSpace(raw)
			if num == "" || seen[num] {
				continue
			}
			seen[num] = true
			numbers = append(numbers, num)
		}
		if len(numbers) == 0 {
			return nil, fmt.Errorf("custom list contains no unit numbers")
		}
		if len(numbers) > models.MaxGeneratedUnits {
			return nil, fmt.Errorf("cannot generate more than %d units", models.MaxGeneratedUnits)
		}

	default:
		return nil, fmt.Errorf("unknown numbering mode %q", n.Mode)
	}

	return numbers, nil
}

// Split separates generated numbers into those not yet taken and duplicates
func Split(generated []string, existing map[string]bool) (fresh, duplicates []string) {
	fresh = []string{}
	duplicates = []string{}
	for _, num := range generated {
		if existing[num] {
			duplicates = append(duplicates, num)
			continue
		}
		fresh = append(fresh, num)
	}
	return fresh, duplicates
}

func pad(v, width int) string {
	if width <= 0 {
		return fmt.Sprintf("%d", v)
	}
	return fmt.Sprintf("%0*d", width, v)
}
