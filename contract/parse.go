package contract

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CELL PARSERS - master-data cells are strings typed by humans
// =============================================================================

func normalizeUpper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ParsePercent parses a human-typed percent cell such as "10%", "7.5 %"
// or "7,5%" (comma and dot both accepted as decimal separator) into the
// percentage value, e.g. "10%" -> 10.
func ParsePercent(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	cleaned = strings.TrimSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	if cleaned == "" {
		return decimal.Zero, fmt.Errorf("%w: empty percent", ErrInvalidNumber)
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a percent", ErrInvalidNumber, s)
	}
	return d, nil
}

// ParsePlan parses an installment plan cell. Blank cells mean the fee was
// paid upfront, matching the master-sheet default.
func ParsePlan(s string) Plan {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "2 cuotas":
		return PlanTwoInstallments
	case "3 cuotas":
		return PlanThreeInstallments
	default:
		return PlanPaidUpfront
	}
}

// ParseAmount parses an optional monetary cell. Blank or unparseable
// cells default to zero: fixed charges are best-effort pass-throughs.
func ParseAmount(s string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if cleaned == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}
